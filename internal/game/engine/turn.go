package engine

import (
	"context"
	"fmt"

	apperrors "github.com/chronocore/engine/internal/errors"
	"github.com/chronocore/engine/internal/game/domain"
	"github.com/chronocore/engine/internal/game/event"
	"github.com/chronocore/engine/internal/storage"
)

// EndTurn closes the current turn and advances the rotation to the next
// participant in roster order. Every roster slot gets its turn; departed
// participants are not skipped. When the new turn crosses an era boundary an
// era_changed event is appended alongside the turn_end/turn_start pair.
func (e *Engine) EndTurn(ctx context.Context, sessionID, participantID string) (domain.Session, error) {
	unlock := e.locks.acquire(sessionID)
	defer unlock()

	var (
		session domain.Session
		events  []event.Event
	)
	err := e.store.Transact(ctx, func(tx storage.Store) error {
		var err error
		session, err = tx.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.Status != domain.SessionStatusActive {
			return apperrors.New(apperrors.CodeInvalidState, fmt.Sprintf("session is %s, ending a turn requires active", session.Status))
		}

		roster, err := tx.ListParticipants(ctx, sessionID)
		if err != nil {
			return err
		}
		if len(roster) == 0 {
			return apperrors.New(apperrors.CodeInvalidState, "session has no participants")
		}

		currentIndex := session.ActivePlayerIndex % len(roster)
		current := roster[currentIndex]
		if current.ID != participantID {
			return apperrors.New(apperrors.CodeAuthorization, "it is not this participant's turn")
		}

		endedTurn := session.CurrentTurn
		previousEra := domain.EraForTurn(endedTurn)

		current.Active = false
		current.UpdatedAt = e.clock().UTC()
		if err := tx.PutParticipant(ctx, current); err != nil {
			return err
		}

		nextIndex := (currentIndex + 1) % len(roster)
		session.ActivePlayerIndex = nextIndex
		session.CurrentTurn = endedTurn + 1
		session.UpdatedAt = e.clock().UTC()
		if err := tx.PutSession(ctx, session); err != nil {
			return err
		}

		next := roster[nextIndex]
		next.Active = true
		next.UpdatedAt = e.clock().UTC()
		if err := tx.PutParticipant(ctx, next); err != nil {
			return err
		}

		ended, err := e.newEvent(sessionID, event.TypeTurnEnd, endedTurn)
		if err != nil {
			return err
		}
		ended.ParticipantID = current.ID
		ended.PayloadJSON, err = event.MarshalPayload(event.TurnEndPayload{
			ParticipantID: current.ID,
			Turn:          endedTurn,
		})
		if err != nil {
			return err
		}
		ended, err = tx.AppendEvent(ctx, ended)
		if err != nil {
			return err
		}
		events = append(events, ended)

		newEra := domain.EraForTurn(session.CurrentTurn)
		if newEra != previousEra {
			changed, err := e.newEvent(sessionID, event.TypeEraChanged, session.CurrentTurn)
			if err != nil {
				return err
			}
			changed.PayloadJSON, err = event.MarshalPayload(event.EraChangedPayload{
				FromEra: string(previousEra),
				ToEra:   string(newEra),
				Turn:    session.CurrentTurn,
			})
			if err != nil {
				return err
			}
			changed, err = tx.AppendEvent(ctx, changed)
			if err != nil {
				return err
			}
			events = append(events, changed)
		}

		started, err := e.newEvent(sessionID, event.TypeTurnStart, session.CurrentTurn)
		if err != nil {
			return err
		}
		started.ParticipantID = next.ID
		started.PayloadJSON, err = event.MarshalPayload(event.TurnStartPayload{
			ParticipantID: next.ID,
			Turn:          session.CurrentTurn,
		})
		if err != nil {
			return err
		}
		started, err = tx.AppendEvent(ctx, started)
		if err != nil {
			return err
		}
		events = append(events, started)
		return nil
	})
	if err != nil {
		return domain.Session{}, storeError("end turn", err)
	}

	e.emit(events...)
	return session, nil
}
