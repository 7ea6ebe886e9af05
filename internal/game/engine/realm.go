package engine

import (
	"context"
	"fmt"

	apperrors "github.com/chronocore/engine/internal/errors"
	"github.com/chronocore/engine/internal/game/domain"
	"github.com/chronocore/engine/internal/game/event"
	"github.com/chronocore/engine/internal/storage"
)

// activeParticipant loads the session and participant and verifies the
// session is active and the participant holds the turn.
func (e *Engine) activeParticipant(ctx context.Context, tx storage.Store, sessionID, participantID string) (domain.Session, domain.Participant, error) {
	session, err := tx.GetSession(ctx, sessionID)
	if err != nil {
		return domain.Session{}, domain.Participant{}, err
	}
	if session.Status != domain.SessionStatusActive {
		return domain.Session{}, domain.Participant{}, apperrors.New(apperrors.CodeInvalidState, fmt.Sprintf("session is %s, this action requires active", session.Status))
	}
	participant, err := tx.GetParticipant(ctx, participantID)
	if err != nil {
		return domain.Session{}, domain.Participant{}, err
	}
	if participant.SessionID != sessionID {
		return domain.Session{}, domain.Participant{}, storage.ErrNotFound
	}
	if !participant.Active {
		return domain.Session{}, domain.Participant{}, apperrors.New(apperrors.CodeAuthorization, "only the active participant may act")
	}
	return session, participant, nil
}

// sessionRealm loads a realm and verifies it belongs to the session through
// its timeline.
func sessionRealm(ctx context.Context, tx storage.Store, sessionID, realmID string) (domain.Realm, error) {
	realm, err := tx.GetRealm(ctx, realmID)
	if err != nil {
		return domain.Realm{}, err
	}
	timeline, err := tx.GetTimeline(ctx, realm.TimelineID)
	if err != nil {
		return domain.Realm{}, err
	}
	if timeline.SessionID != sessionID {
		return domain.Realm{}, storage.ErrNotFound
	}
	return realm, nil
}

// ClaimRealm takes ownership of an unowned realm for the active participant.
func (e *Engine) ClaimRealm(ctx context.Context, sessionID, participantID, realmID string) (domain.Realm, error) {
	unlock := e.locks.acquire(sessionID)
	defer unlock()

	var (
		realm   domain.Realm
		claimed event.Event
	)
	err := e.store.Transact(ctx, func(tx storage.Store) error {
		session, participant, err := e.activeParticipant(ctx, tx, sessionID, participantID)
		if err != nil {
			return err
		}
		realm, err = sessionRealm(ctx, tx, sessionID, realmID)
		if err != nil {
			return err
		}
		if realm.OwnerID != "" {
			return apperrors.New(apperrors.CodeConflict, "realm is already owned")
		}

		realm.OwnerID = participant.ID
		realm.UpdatedAt = e.clock().UTC()
		if err := tx.PutRealm(ctx, realm); err != nil {
			return err
		}

		claimed, err = e.newEvent(sessionID, event.TypeRealmClaimed, session.CurrentTurn)
		if err != nil {
			return err
		}
		claimed.ParticipantID = participant.ID
		claimed.TimelineID = realm.TimelineID
		claimed.RealmID = realm.ID
		claimed.PayloadJSON, err = event.MarshalPayload(event.RealmClaimedPayload{
			RealmID:       realm.ID,
			ParticipantID: participant.ID,
		})
		if err != nil {
			return err
		}
		claimed, err = tx.AppendEvent(ctx, claimed)
		return err
	})
	if err != nil {
		return domain.Realm{}, storeError("claim realm", err)
	}

	e.emit(claimed)
	return realm, nil
}

// DevelopRealm raises an owned realm's development level by one, spending
// one energy and one materials from the realm's resource pool.
func (e *Engine) DevelopRealm(ctx context.Context, sessionID, participantID, realmID string) (domain.Realm, error) {
	unlock := e.locks.acquire(sessionID)
	defer unlock()

	var (
		realm     domain.Realm
		developed event.Event
	)
	err := e.store.Transact(ctx, func(tx storage.Store) error {
		session, participant, err := e.activeParticipant(ctx, tx, sessionID, participantID)
		if err != nil {
			return err
		}
		realm, err = sessionRealm(ctx, tx, sessionID, realmID)
		if err != nil {
			return err
		}
		if realm.OwnerID != participant.ID {
			return apperrors.New(apperrors.CodeAuthorization, "only the realm owner may develop it")
		}
		if realm.DevelopmentLevel >= domain.MaxDevelopmentLevel {
			return apperrors.New(apperrors.CodePrecondition, "realm is already fully developed")
		}
		if realm.Resources.Energy < 1 || realm.Resources.Materials < 1 {
			return apperrors.New(apperrors.CodePrecondition, "development requires 1 energy and 1 materials")
		}

		realm.Resources.Energy--
		realm.Resources.Materials--
		realm.DevelopmentLevel++
		realm.UpdatedAt = e.clock().UTC()
		if err := tx.PutRealm(ctx, realm); err != nil {
			return err
		}

		developed, err = e.newEvent(sessionID, event.TypeRealmDeveloped, session.CurrentTurn)
		if err != nil {
			return err
		}
		developed.ParticipantID = participant.ID
		developed.TimelineID = realm.TimelineID
		developed.RealmID = realm.ID
		developed.PayloadJSON, err = event.MarshalPayload(event.RealmDevelopedPayload{
			RealmID:          realm.ID,
			DevelopmentLevel: realm.DevelopmentLevel,
		})
		if err != nil {
			return err
		}
		developed, err = tx.AppendEvent(ctx, developed)
		return err
	})
	if err != nil {
		return domain.Realm{}, storeError("develop realm", err)
	}

	e.emit(developed)
	return realm, nil
}
