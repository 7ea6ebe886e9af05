package engine

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/chronocore/engine/internal/errors"
	"github.com/chronocore/engine/internal/game/domain"
	"github.com/chronocore/engine/internal/game/event"
	"github.com/chronocore/engine/internal/storage"
)

// CreateSessionInput describes a session-creation request.
type CreateSessionInput struct {
	Name               string
	MaxParticipants    int
	WinCondition       string
	CreatorUserID      string
	CreatorDisplayName string
	CreatorRole        domain.Role
}

// CreateSession creates a session in waiting status with the creator joined
// as the first participant.
func (e *Engine) CreateSession(ctx context.Context, input CreateSessionInput) (domain.Session, domain.Participant, error) {
	session, err := domain.CreateSession(domain.CreateSessionInput{
		Name:            input.Name,
		MaxParticipants: input.MaxParticipants,
		WinCondition:    input.WinCondition,
		CreatorUserID:   input.CreatorUserID,
	}, e.clock, e.idGenerator)
	if err != nil {
		if errors.Is(err, domain.ErrEmptySessionName) || errors.Is(err, domain.ErrInvalidMaxParticipants) {
			return domain.Session{}, domain.Participant{}, apperrors.Wrap(apperrors.CodeValidation, err.Error(), err)
		}
		return domain.Session{}, domain.Participant{}, apperrors.Wrap(apperrors.CodeInternal, "create session", err)
	}

	creator, err := domain.CreateParticipant(domain.CreateParticipantInput{
		SessionID:   session.ID,
		UserID:      input.CreatorUserID,
		DisplayName: input.CreatorDisplayName,
		Role:        input.CreatorRole,
		TurnOrder:   0,
	}, e.clock, e.idGenerator)
	if err != nil {
		if isParticipantInputError(err) {
			return domain.Session{}, domain.Participant{}, apperrors.Wrap(apperrors.CodeValidation, err.Error(), err)
		}
		return domain.Session{}, domain.Participant{}, apperrors.Wrap(apperrors.CodeInternal, "create participant", err)
	}

	joined, err := e.newEvent(session.ID, event.TypeParticipantJoined, 0)
	if err != nil {
		return domain.Session{}, domain.Participant{}, apperrors.Wrap(apperrors.CodeInternal, "create event", err)
	}
	joined.ParticipantID = creator.ID
	joined.PayloadJSON, err = event.MarshalPayload(event.ParticipantJoinedPayload{
		ParticipantID: creator.ID,
		DisplayName:   creator.DisplayName,
		Role:          creator.Role.String(),
		TurnOrder:     creator.TurnOrder,
	})
	if err != nil {
		return domain.Session{}, domain.Participant{}, apperrors.Wrap(apperrors.CodeInternal, "encode event", err)
	}

	err = e.store.Transact(ctx, func(tx storage.Store) error {
		if err := tx.PutSession(ctx, session); err != nil {
			return err
		}
		if err := tx.PutParticipant(ctx, creator); err != nil {
			return err
		}
		stored, err := tx.AppendEvent(ctx, joined)
		if err != nil {
			return err
		}
		joined = stored
		return nil
	})
	if err != nil {
		return domain.Session{}, domain.Participant{}, storeError("persist session", err)
	}

	e.emit(joined)
	return session, creator, nil
}

// JoinSession adds a user to a waiting session's roster.
func (e *Engine) JoinSession(ctx context.Context, sessionID, userID, displayName string, role domain.Role) (domain.Participant, error) {
	unlock := e.locks.acquire(sessionID)
	defer unlock()

	var (
		participant domain.Participant
		joined      event.Event
	)
	err := e.store.Transact(ctx, func(tx storage.Store) error {
		session, err := tx.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.Status != domain.SessionStatusWaiting {
			return apperrors.New(apperrors.CodeInvalidState, fmt.Sprintf("session is %s, joining requires waiting", session.Status))
		}

		roster, err := tx.ListParticipants(ctx, sessionID)
		if err != nil {
			return err
		}
		if len(roster) >= session.MaxParticipants {
			return apperrors.New(apperrors.CodeCapacity, "session roster is full")
		}
		for _, member := range roster {
			if member.UserID == userID {
				return apperrors.New(apperrors.CodeConflict, "user already joined this session")
			}
		}

		participant, err = domain.CreateParticipant(domain.CreateParticipantInput{
			SessionID:   sessionID,
			UserID:      userID,
			DisplayName: displayName,
			Role:        role,
			TurnOrder:   len(roster),
		}, e.clock, e.idGenerator)
		if err != nil {
			if isParticipantInputError(err) {
				return apperrors.Wrap(apperrors.CodeValidation, err.Error(), err)
			}
			return err
		}
		if err := tx.PutParticipant(ctx, participant); err != nil {
			return err
		}

		joined, err = e.newEvent(sessionID, event.TypeParticipantJoined, session.CurrentTurn)
		if err != nil {
			return err
		}
		joined.ParticipantID = participant.ID
		joined.PayloadJSON, err = event.MarshalPayload(event.ParticipantJoinedPayload{
			ParticipantID: participant.ID,
			DisplayName:   participant.DisplayName,
			Role:          participant.Role.String(),
			TurnOrder:     participant.TurnOrder,
		})
		if err != nil {
			return err
		}
		joined, err = tx.AppendEvent(ctx, joined)
		return err
	})
	if err != nil {
		return domain.Participant{}, storeError("join session", err)
	}

	e.emit(joined)
	return participant, nil
}

// LeaveSession removes a participant. Waiting sessions hard-remove the
// participant (and are destroyed entirely when the creator leaves); active
// sessions soft-mark the participant instead. No turn-rotation skip is
// performed for departed participants.
func (e *Engine) LeaveSession(ctx context.Context, sessionID, participantID string) error {
	unlock := e.locks.acquire(sessionID)
	defer unlock()

	var (
		left      event.Event
		destroyed bool
	)
	err := e.store.Transact(ctx, func(tx storage.Store) error {
		session, err := tx.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		participant, err := tx.GetParticipant(ctx, participantID)
		if err != nil {
			return err
		}
		if participant.SessionID != sessionID {
			return storage.ErrNotFound
		}

		switch session.Status {
		case domain.SessionStatusWaiting:
			if participant.UserID == session.CreatorUserID {
				destroyed = true
				return tx.DeleteSession(ctx, sessionID)
			}
			if err := tx.DeleteParticipant(ctx, participantID); err != nil {
				return err
			}
			// Re-pack turn ordinals so the roster stays contiguous for
			// activation at start.
			roster, err := tx.ListParticipants(ctx, sessionID)
			if err != nil {
				return err
			}
			for i, member := range roster {
				if member.TurnOrder != i {
					member.TurnOrder = i
					member.UpdatedAt = e.clock().UTC()
					if err := tx.PutParticipant(ctx, member); err != nil {
						return err
					}
				}
			}
			left, err = e.leftEvent(ctx, tx, session, participant, true)
			return err
		case domain.SessionStatusActive:
			participant.Active = false
			participant.Ready = false
			participant.UpdatedAt = e.clock().UTC()
			if err := tx.PutParticipant(ctx, participant); err != nil {
				return err
			}
			left, err = e.leftEvent(ctx, tx, session, participant, false)
			return err
		default:
			return apperrors.New(apperrors.CodeInvalidState, fmt.Sprintf("session is %s, leaving requires waiting or active", session.Status))
		}
	})
	if err != nil {
		return storeError("leave session", err)
	}

	if !destroyed {
		e.emit(left)
	}
	return nil
}

func (e *Engine) leftEvent(ctx context.Context, tx storage.Store, session domain.Session, participant domain.Participant, removed bool) (event.Event, error) {
	left, err := e.newEvent(session.ID, event.TypeParticipantLeft, session.CurrentTurn)
	if err != nil {
		return event.Event{}, err
	}
	left.ParticipantID = participant.ID
	left.PayloadJSON, err = event.MarshalPayload(event.ParticipantLeftPayload{
		ParticipantID: participant.ID,
		Removed:       removed,
	})
	if err != nil {
		return event.Event{}, err
	}
	return tx.AppendEvent(ctx, left)
}

// SetReady toggles a participant's readiness in a waiting session.
func (e *Engine) SetReady(ctx context.Context, sessionID, participantID string, ready bool) error {
	unlock := e.locks.acquire(sessionID)
	defer unlock()

	var changed event.Event
	err := e.store.Transact(ctx, func(tx storage.Store) error {
		session, err := tx.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.Status != domain.SessionStatusWaiting {
			return apperrors.New(apperrors.CodeInvalidState, fmt.Sprintf("session is %s, readiness requires waiting", session.Status))
		}
		participant, err := tx.GetParticipant(ctx, participantID)
		if err != nil {
			return err
		}
		if participant.SessionID != sessionID {
			return storage.ErrNotFound
		}

		participant.Ready = ready
		participant.UpdatedAt = e.clock().UTC()
		if err := tx.PutParticipant(ctx, participant); err != nil {
			return err
		}

		changed, err = e.newEvent(sessionID, event.TypeReadyChanged, session.CurrentTurn)
		if err != nil {
			return err
		}
		changed.ParticipantID = participant.ID
		changed.PayloadJSON, err = event.MarshalPayload(event.ReadyChangedPayload{
			ParticipantID: participant.ID,
			Ready:         ready,
		})
		if err != nil {
			return err
		}
		changed, err = tx.AppendEvent(ctx, changed)
		return err
	})
	if err != nil {
		return storeError("set ready", err)
	}

	e.emit(changed)
	return nil
}

// StartSession transitions a waiting session to active: the board is
// initialized, turn zero begins and the first participant in roster order
// is activated. Only the creator may start, and only once every participant
// of a roster of at least two is ready.
func (e *Engine) StartSession(ctx context.Context, sessionID, requesterParticipantID string) (domain.Session, error) {
	unlock := e.locks.acquire(sessionID)
	defer unlock()

	var (
		session domain.Session
		started event.Event
		first   event.Event
	)
	err := e.store.Transact(ctx, func(tx storage.Store) error {
		var err error
		session, err = tx.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		requester, err := tx.GetParticipant(ctx, requesterParticipantID)
		if err != nil {
			return err
		}
		if requester.SessionID != sessionID {
			return storage.ErrNotFound
		}
		if requester.UserID != session.CreatorUserID {
			return apperrors.New(apperrors.CodeAuthorization, "only the session creator may start the session")
		}
		if session.Status != domain.SessionStatusWaiting {
			return apperrors.New(apperrors.CodeInvalidState, fmt.Sprintf("session is %s, starting requires waiting", session.Status))
		}

		roster, err := tx.ListParticipants(ctx, sessionID)
		if err != nil {
			return err
		}
		if len(roster) < domain.MinParticipants {
			return apperrors.New(apperrors.CodePrecondition, fmt.Sprintf("at least %d participants are required to start", domain.MinParticipants))
		}
		for _, member := range roster {
			if !member.Ready {
				return apperrors.New(apperrors.CodePrecondition, fmt.Sprintf("participant %s is not ready", member.DisplayName))
			}
		}

		board, err := domain.GenerateBoard(sessionID, e.newRand(), e.clock, e.idGenerator)
		if err != nil {
			return err
		}
		for _, timeline := range board.Timelines {
			if err := tx.PutTimeline(ctx, timeline); err != nil {
				return err
			}
		}
		for _, realm := range board.Realms {
			if err := tx.PutRealm(ctx, realm); err != nil {
				return err
			}
		}

		session.Status = domain.SessionStatusActive
		session.CurrentTurn = 0
		session.ActivePlayerIndex = 0
		session.UpdatedAt = e.clock().UTC()
		if err := tx.PutSession(ctx, session); err != nil {
			return err
		}

		firstParticipant := roster[0]
		firstParticipant.Active = true
		firstParticipant.UpdatedAt = e.clock().UTC()
		if err := tx.PutParticipant(ctx, firstParticipant); err != nil {
			return err
		}

		started, err = e.newEvent(sessionID, event.TypeSessionStarted, 0)
		if err != nil {
			return err
		}
		started.PayloadJSON, err = event.MarshalPayload(event.SessionStartedPayload{
			TimelineCount:    len(board.Timelines),
			RealmCount:       len(board.Realms),
			ParticipantCount: len(roster),
			Era:              string(domain.EraForTurn(0)),
		})
		if err != nil {
			return err
		}
		started, err = tx.AppendEvent(ctx, started)
		if err != nil {
			return err
		}

		first, err = e.newEvent(sessionID, event.TypeTurnStart, 0)
		if err != nil {
			return err
		}
		first.ParticipantID = firstParticipant.ID
		first.PayloadJSON, err = event.MarshalPayload(event.TurnStartPayload{
			ParticipantID: firstParticipant.ID,
			Turn:          0,
		})
		if err != nil {
			return err
		}
		first, err = tx.AppendEvent(ctx, first)
		return err
	})
	if err != nil {
		return domain.Session{}, storeError("start session", err)
	}

	e.emit(started, first)
	return session, nil
}

// AbandonSession soft-removes an active or waiting session. Only the
// creator may abandon a session.
func (e *Engine) AbandonSession(ctx context.Context, sessionID, requesterParticipantID string) error {
	unlock := e.locks.acquire(sessionID)
	defer unlock()

	var abandoned event.Event
	err := e.store.Transact(ctx, func(tx storage.Store) error {
		session, err := tx.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		requester, err := tx.GetParticipant(ctx, requesterParticipantID)
		if err != nil {
			return err
		}
		if requester.SessionID != sessionID {
			return storage.ErrNotFound
		}
		if requester.UserID != session.CreatorUserID {
			return apperrors.New(apperrors.CodeAuthorization, "only the session creator may abandon the session")
		}
		if session.Status != domain.SessionStatusWaiting && session.Status != domain.SessionStatusActive {
			return apperrors.New(apperrors.CodeInvalidState, fmt.Sprintf("session is already %s", session.Status))
		}

		session.Status = domain.SessionStatusAbandoned
		session.UpdatedAt = e.clock().UTC()
		if err := tx.PutSession(ctx, session); err != nil {
			return err
		}

		abandoned, err = e.newEvent(sessionID, event.TypeSessionAbandoned, session.CurrentTurn)
		if err != nil {
			return err
		}
		abandoned.ParticipantID = requester.ID
		abandoned.PayloadJSON, err = event.MarshalPayload(event.SessionAbandonedPayload{
			Reason: "abandoned by creator",
		})
		if err != nil {
			return err
		}
		abandoned, err = tx.AppendEvent(ctx, abandoned)
		return err
	})
	if err != nil {
		return storeError("abandon session", err)
	}

	e.emit(abandoned)
	return nil
}

func isParticipantInputError(err error) bool {
	return errors.Is(err, domain.ErrEmptySessionID) ||
		errors.Is(err, domain.ErrEmptyUserID) ||
		errors.Is(err, domain.ErrEmptyDisplayName) ||
		errors.Is(err, domain.ErrInvalidRole)
}

// storeError normalizes storage and coded errors. Coded errors pass through
// unchanged; ErrNotFound becomes a NOT_FOUND error; anything else is an
// internal failure.
func storeError(op string, err error) error {
	var coded *apperrors.Error
	if errors.As(err, &coded) {
		return coded
	}
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.Wrap(apperrors.CodeNotFound, "record not found", err)
	}
	return apperrors.Wrap(apperrors.CodeInternal, op+" failed", err)
}
