package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role describes a participant's role in a session.
type Role int

const (
	// RoleUnspecified represents an invalid role value.
	RoleUnspecified Role = iota
	// RoleTechnoMonk favors ethical over technological impact.
	RoleTechnoMonk
	// RoleShadowBroker favors temporal over ethical impact.
	RoleShadowBroker
	// RoleChronoDiplomat favors temporal impact and timeline connections.
	RoleChronoDiplomat
	// RoleBioSmith favors technological impact.
	RoleBioSmith
)

// String returns the wire representation of the role.
func (r Role) String() string {
	switch r {
	case RoleTechnoMonk:
		return "Techno Monk"
	case RoleShadowBroker:
		return "Shadow Broker"
	case RoleChronoDiplomat:
		return "Chrono Diplomat"
	case RoleBioSmith:
		return "Bio-Smith"
	default:
		return "unspecified"
	}
}

// ParseRole maps a wire role name to its domain value.
func ParseRole(value string) (Role, error) {
	switch strings.TrimSpace(value) {
	case "Techno Monk":
		return RoleTechnoMonk, nil
	case "Shadow Broker":
		return RoleShadowBroker, nil
	case "Chrono Diplomat":
		return RoleChronoDiplomat, nil
	case "Bio-Smith":
		return RoleBioSmith, nil
	default:
		return RoleUnspecified, ErrInvalidRole
	}
}

var (
	// ErrEmptyUserID indicates a missing user ID.
	ErrEmptyUserID = errors.New("user id is required")
	// ErrEmptyDisplayName indicates a missing display name.
	ErrEmptyDisplayName = errors.New("display name is required")
	// ErrInvalidRole indicates a missing or invalid role.
	ErrInvalidRole = errors.New("role is required")
)

// ResourcePool holds the three tracked resource kinds.
type ResourcePool struct {
	Energy    int
	Knowledge int
	Materials int
}

// Participant represents a player bound to a specific session.
type Participant struct {
	ID          string
	SessionID   string
	UserID      string
	DisplayName string
	Role        Role
	Karma       int
	Ready       bool
	Active      bool
	TurnOrder   int
	Resources   ResourcePool
	TechLevel   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateParticipantInput describes the metadata needed to join a session.
type CreateParticipantInput struct {
	SessionID   string
	UserID      string
	DisplayName string
	Role        Role
	TurnOrder   int
}

// CreateParticipant creates a new participant with a generated ID and
// timestamps. Participants start not ready and inactive; the turn engine
// activates them when the session starts.
func CreateParticipant(input CreateParticipantInput, now func() time.Time, idGenerator func() (string, error)) (Participant, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = NewID
	}

	normalized, err := NormalizeCreateParticipantInput(input)
	if err != nil {
		return Participant{}, err
	}

	participantID, err := idGenerator()
	if err != nil {
		return Participant{}, fmt.Errorf("generate participant id: %w", err)
	}

	createdAt := now().UTC()
	return Participant{
		ID:          participantID,
		SessionID:   normalized.SessionID,
		UserID:      normalized.UserID,
		DisplayName: normalized.DisplayName,
		Role:        normalized.Role,
		Karma:       0,
		Ready:       false,
		Active:      false,
		TurnOrder:   normalized.TurnOrder,
		Resources:   ResourcePool{Energy: 3, Knowledge: 3, Materials: 3},
		TechLevel:   1,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}

// NormalizeCreateParticipantInput trims and validates participant input.
func NormalizeCreateParticipantInput(input CreateParticipantInput) (CreateParticipantInput, error) {
	input.SessionID = strings.TrimSpace(input.SessionID)
	if input.SessionID == "" {
		return CreateParticipantInput{}, ErrEmptySessionID
	}
	input.UserID = strings.TrimSpace(input.UserID)
	if input.UserID == "" {
		return CreateParticipantInput{}, ErrEmptyUserID
	}
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if input.DisplayName == "" {
		return CreateParticipantInput{}, ErrEmptyDisplayName
	}
	if input.Role == RoleUnspecified {
		return CreateParticipantInput{}, ErrInvalidRole
	}
	return input, nil
}
