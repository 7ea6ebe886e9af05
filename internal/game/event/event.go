// Package event defines the immutable, turn-stamped audit records appended
// for every session state mutation.
package event

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type identifies the type of a session event.
type Type string

// Session lifecycle events.
const (
	// TypeSessionStarted records the start of a session.
	TypeSessionStarted Type = "session_started"
	// TypeSessionAbandoned records a session being abandoned.
	TypeSessionAbandoned Type = "session_abandoned"
)

// Roster events.
const (
	// TypeParticipantJoined records a participant joining a session.
	TypeParticipantJoined Type = "participant_joined"
	// TypeParticipantLeft records a participant leaving a session.
	TypeParticipantLeft Type = "participant_left"
	// TypeReadyChanged records a readiness toggle.
	TypeReadyChanged Type = "ready_changed"
)

// Turn events.
const (
	// TypeTurnStart records a participant's turn beginning.
	TypeTurnStart Type = "turn_start"
	// TypeTurnEnd records a participant's turn ending.
	TypeTurnEnd Type = "turn_end"
	// TypeEraChanged records an era boundary crossing.
	TypeEraChanged Type = "era_changed"
)

// Gameplay events. Events represent facts that have occurred, not requests.
const (
	// TypeDecision records a resolved decision and its evaluation.
	TypeDecision Type = "decision"
	// TypeRealmClaimed records a realm ownership change.
	TypeRealmClaimed Type = "realm_claimed"
	// TypeRealmDeveloped records a realm development increase.
	TypeRealmDeveloped Type = "realm_developed"
	// TypeRiftOpened records a rift tearing open on a collapsing timeline.
	TypeRiftOpened Type = "rift_opened"
	// TypeRiftResolved records a rift being resolved.
	TypeRiftResolved Type = "rift_resolved"
)

// IsValid reports whether the event type is supported.
func (t Type) IsValid() bool {
	switch t {
	case TypeSessionStarted,
		TypeSessionAbandoned,
		TypeParticipantJoined,
		TypeParticipantLeft,
		TypeReadyChanged,
		TypeTurnStart,
		TypeTurnEnd,
		TypeEraChanged,
		TypeDecision,
		TypeRealmClaimed,
		TypeRealmDeveloped,
		TypeRiftOpened,
		TypeRiftResolved:
		return true
	default:
		return false
	}
}

// Event represents an immutable event in the session journal.
type Event struct {
	// ID is the event identity.
	ID string
	// SessionID is the session this event belongs to.
	SessionID string
	// Seq is the event sequence number within the session (starts at 1).
	// Assigned by storage on append.
	Seq uint64
	// Type identifies the kind of event.
	Type Type
	// Turn is the turn number in effect when the event occurred.
	Turn int
	// ParticipantID is the participant affected, if any.
	ParticipantID string
	// TimelineID is the timeline affected, if any.
	TimelineID string
	// RealmID is the realm affected, if any.
	RealmID string
	// PayloadJSON holds event-specific data as JSON.
	PayloadJSON []byte
	// CreatedAt is when the event occurred.
	CreatedAt time.Time
}

// MarshalPayload encodes a typed payload for storage on an event.
func MarshalPayload(payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}
	return encoded, nil
}
