package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// SessionStatus describes the lifecycle state of a session.
type SessionStatus int

const (
	// SessionStatusUnspecified represents an invalid session status value.
	SessionStatusUnspecified SessionStatus = iota
	// SessionStatusWaiting indicates the session is gathering participants.
	SessionStatusWaiting
	// SessionStatusActive indicates the session is being played.
	SessionStatusActive
	// SessionStatusCompleted indicates the session finished normally.
	SessionStatusCompleted
	// SessionStatusAbandoned indicates the session was abandoned.
	SessionStatusAbandoned
)

// String returns the wire representation of the status.
func (s SessionStatus) String() string {
	switch s {
	case SessionStatusWaiting:
		return "waiting"
	case SessionStatusActive:
		return "active"
	case SessionStatusCompleted:
		return "completed"
	case SessionStatusAbandoned:
		return "abandoned"
	default:
		return "unspecified"
	}
}

// Era describes the phase of the game derived from the turn number.
type Era string

const (
	EraInitiation  Era = "Initiation"
	EraProgression Era = "Progression"
	EraDistortion  Era = "Distortion"
	EraEquilibrium Era = "Equilibrium"
)

// EraForTurn derives the era from a turn number. Eras advance every ten
// turns and settle at Equilibrium from turn 30 on.
func EraForTurn(turn int) Era {
	switch {
	case turn < 10:
		return EraInitiation
	case turn < 20:
		return EraProgression
	case turn < 30:
		return EraDistortion
	default:
		return EraEquilibrium
	}
}

const (
	// MinParticipants is the smallest roster a session can start with.
	MinParticipants = 2
	// MaxParticipantsLimit is the largest roster a session may allow.
	MaxParticipantsLimit = 8
)

var (
	// ErrEmptySessionName indicates a missing session name.
	ErrEmptySessionName = errors.New("session name is required")
	// ErrInvalidMaxParticipants indicates an out-of-range participant cap.
	ErrInvalidMaxParticipants = fmt.Errorf("max participants must be between %d and %d", MinParticipants, MaxParticipantsLimit)
)

// Session represents one instance of a game being played by a roster of
// participants.
type Session struct {
	ID                string
	Name              string
	Status            SessionStatus
	MaxParticipants   int
	WinCondition      string
	CurrentTurn       int
	ActivePlayerIndex int
	GlobalKarma       int
	CreatorUserID     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Era returns the era in effect for the session's current turn.
func (s Session) Era() Era {
	return EraForTurn(s.CurrentTurn)
}

// CreateSessionInput describes the metadata needed to create a session.
type CreateSessionInput struct {
	Name            string
	MaxParticipants int
	WinCondition    string
	CreatorUserID   string
}

// CreateSession creates a new session in waiting status with a generated ID
// and timestamps.
func CreateSession(input CreateSessionInput, now func() time.Time, idGenerator func() (string, error)) (Session, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = NewID
	}

	normalized, err := NormalizeCreateSessionInput(input)
	if err != nil {
		return Session{}, err
	}

	sessionID, err := idGenerator()
	if err != nil {
		return Session{}, fmt.Errorf("generate session id: %w", err)
	}

	createdAt := now().UTC()
	return Session{
		ID:                sessionID,
		Name:              normalized.Name,
		Status:            SessionStatusWaiting,
		MaxParticipants:   normalized.MaxParticipants,
		WinCondition:      normalized.WinCondition,
		CurrentTurn:       0,
		ActivePlayerIndex: 0,
		GlobalKarma:       0,
		CreatorUserID:     normalized.CreatorUserID,
		CreatedAt:         createdAt,
		UpdatedAt:         createdAt,
	}, nil
}

// NormalizeCreateSessionInput trims and validates session input metadata.
func NormalizeCreateSessionInput(input CreateSessionInput) (CreateSessionInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return CreateSessionInput{}, ErrEmptySessionName
	}
	if input.MaxParticipants < MinParticipants || input.MaxParticipants > MaxParticipantsLimit {
		return CreateSessionInput{}, ErrInvalidMaxParticipants
	}
	input.WinCondition = strings.TrimSpace(input.WinCondition)
	if input.WinCondition == "" {
		input.WinCondition = "balance"
	}
	return input, nil
}
