package engine

import (
	"context"

	apperrors "github.com/chronocore/engine/internal/errors"
	"github.com/chronocore/engine/internal/game/domain"
	"github.com/chronocore/engine/internal/game/event"
	"github.com/chronocore/engine/internal/storage"
)

// ResolveRift closes an open rift and restores stability to its timeline
// proportional to the rift's severity.
func (e *Engine) ResolveRift(ctx context.Context, sessionID, participantID, riftID string) (domain.Rift, error) {
	unlock := e.locks.acquire(sessionID)
	defer unlock()

	var (
		rift     domain.Rift
		resolved event.Event
	)
	err := e.store.Transact(ctx, func(tx storage.Store) error {
		session, participant, err := e.activeParticipant(ctx, tx, sessionID, participantID)
		if err != nil {
			return err
		}
		rift, err = tx.GetRift(ctx, riftID)
		if err != nil {
			return err
		}
		if rift.SessionID != sessionID {
			return storage.ErrNotFound
		}
		if rift.Resolved {
			return apperrors.New(apperrors.CodeInvalidState, "rift is already resolved")
		}

		restored := domain.RiftStabilityPerSeverity * rift.Severity
		timeline, err := tx.GetTimeline(ctx, rift.TimelineID)
		if err != nil {
			return err
		}
		timeline.Stability += restored
		timeline.UpdatedAt = e.clock().UTC()
		if err := tx.PutTimeline(ctx, timeline); err != nil {
			return err
		}

		rift.Resolved = true
		rift.ResolvedAtTurn = session.CurrentTurn
		rift.UpdatedAt = e.clock().UTC()
		if err := tx.PutRift(ctx, rift); err != nil {
			return err
		}

		resolved, err = e.newEvent(sessionID, event.TypeRiftResolved, session.CurrentTurn)
		if err != nil {
			return err
		}
		resolved.ParticipantID = participant.ID
		resolved.TimelineID = rift.TimelineID
		resolved.PayloadJSON, err = event.MarshalPayload(event.RiftResolvedPayload{
			RiftID:            rift.ID,
			TimelineID:        rift.TimelineID,
			StabilityRestored: restored,
		})
		if err != nil {
			return err
		}
		resolved, err = tx.AppendEvent(ctx, resolved)
		return err
	})
	if err != nil {
		return domain.Rift{}, storeError("resolve rift", err)
	}

	e.emit(resolved)
	return rift, nil
}
