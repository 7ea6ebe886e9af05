package engine

import (
	"context"

	"github.com/chronocore/engine/internal/game/domain"
	"github.com/chronocore/engine/internal/game/event"
)

// SessionView is the full state of a session: the session record, its roster
// in turn order, and the board.
type SessionView struct {
	Session      domain.Session
	Participants []domain.Participant
	Timelines    []domain.Timeline
	Realms       []domain.Realm
	Rifts        []domain.Rift
}

// GetSessionView loads a session with its roster and board.
func (e *Engine) GetSessionView(ctx context.Context, sessionID string) (SessionView, error) {
	session, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return SessionView{}, storeError("load session", err)
	}
	participants, err := e.store.ListParticipants(ctx, sessionID)
	if err != nil {
		return SessionView{}, storeError("list participants", err)
	}
	timelines, err := e.store.ListTimelines(ctx, sessionID)
	if err != nil {
		return SessionView{}, storeError("list timelines", err)
	}
	realms, err := e.store.ListRealms(ctx, sessionID)
	if err != nil {
		return SessionView{}, storeError("list realms", err)
	}
	rifts, err := e.store.ListRifts(ctx, sessionID)
	if err != nil {
		return SessionView{}, storeError("list rifts", err)
	}
	return SessionView{
		Session:      session,
		Participants: participants,
		Timelines:    timelines,
		Realms:       realms,
		Rifts:        rifts,
	}, nil
}

// ListEvents returns a session's event log, newest first.
func (e *Engine) ListEvents(ctx context.Context, sessionID string, limit int) ([]event.Event, error) {
	if _, err := e.store.GetSession(ctx, sessionID); err != nil {
		return nil, storeError("load session", err)
	}
	events, err := e.store.ListEvents(ctx, sessionID, limit)
	if err != nil {
		return nil, storeError("list events", err)
	}
	return events, nil
}
