// Package storage defines the persistence interfaces for session state and
// the append-only event journal.
package storage

import (
	"context"
	"errors"

	"github.com/chronocore/engine/internal/game/domain"
	"github.com/chronocore/engine/internal/game/event"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// SessionStore persists session records.
type SessionStore interface {
	PutSession(ctx context.Context, session domain.Session) error
	GetSession(ctx context.Context, id string) (domain.Session, error)
	// DeleteSession removes a session and its participants. Only sessions
	// that never started are deleted; started sessions are soft-removed by
	// status instead.
	DeleteSession(ctx context.Context, id string) error
}

// ParticipantStore persists participant records.
type ParticipantStore interface {
	PutParticipant(ctx context.Context, participant domain.Participant) error
	GetParticipant(ctx context.Context, id string) (domain.Participant, error)
	// ListParticipants returns a session's roster ordered by turn order.
	ListParticipants(ctx context.Context, sessionID string) ([]domain.Participant, error)
	DeleteParticipant(ctx context.Context, id string) error
}

// WorldStore persists timelines, realms and rifts.
type WorldStore interface {
	PutTimeline(ctx context.Context, timeline domain.Timeline) error
	GetTimeline(ctx context.Context, id string) (domain.Timeline, error)
	ListTimelines(ctx context.Context, sessionID string) ([]domain.Timeline, error)

	PutRealm(ctx context.Context, realm domain.Realm) error
	GetRealm(ctx context.Context, id string) (domain.Realm, error)
	ListRealms(ctx context.Context, sessionID string) ([]domain.Realm, error)

	PutRift(ctx context.Context, rift domain.Rift) error
	GetRift(ctx context.Context, id string) (domain.Rift, error)
	ListRifts(ctx context.Context, sessionID string) ([]domain.Rift, error)
	// GetOpenRift returns the unresolved rift on a timeline, or ErrNotFound.
	GetOpenRift(ctx context.Context, timelineID string) (domain.Rift, error)
}

// EventStore persists the append-only event journal. Append is the only
// mutator; events are never updated or deleted.
type EventStore interface {
	// AppendEvent assigns the next per-session sequence number and persists
	// the event. The stored event is returned.
	AppendEvent(ctx context.Context, evt event.Event) (event.Event, error)
	// ListEvents returns a session's events newest first, bounded by limit.
	// A limit of zero or less returns the full journal.
	ListEvents(ctx context.Context, sessionID string, limit int) ([]event.Event, error)
}

// Store combines all persistence concerns behind one handle.
type Store interface {
	SessionStore
	ParticipantStore
	WorldStore
	EventStore

	// Transact runs fn inside a single unit of work. Either every write fn
	// performs lands, or none do. The Store passed to fn must be used for
	// all access within the transaction.
	Transact(ctx context.Context, fn func(tx Store) error) error
}
