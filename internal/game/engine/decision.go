package engine

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/chronocore/engine/internal/errors"
	"github.com/chronocore/engine/internal/game/domain"
	"github.com/chronocore/engine/internal/game/event"
	"github.com/chronocore/engine/internal/game/scoring"
	"github.com/chronocore/engine/internal/storage"
)

// ResolveDecisionInput describes a decision made by the active participant.
type ResolveDecisionInput struct {
	SessionID        string
	ParticipantID    string
	Decision         string
	TargetTimelineID string
	TargetRealmID    string
}

// DecisionResult is the applied outcome of a decision.
type DecisionResult struct {
	Evaluation scoring.Evaluation
	Category   scoring.Category
	Fallback   bool
	Message    string
	Event      event.Event
}

// ResolveDecision evaluates a free-text decision and applies its scored
// impact: participant and global karma shift by the karma impact, and the
// targeted timeline absorbs the stability impact plus half the karma impact
// as alignment drift. The external evaluator is consulted first; if it fails
// for any reason the deterministic neutral fallback is applied instead, and
// the decision is still recorded. A timeline driven below the rift threshold
// tears open a rift in the same transaction.
func (e *Engine) ResolveDecision(ctx context.Context, input ResolveDecisionInput) (DecisionResult, error) {
	input.Decision = strings.TrimSpace(input.Decision)
	if input.Decision == "" {
		return DecisionResult{}, apperrors.New(apperrors.CodeValidation, "decision text is required")
	}

	unlock := e.locks.acquire(input.SessionID)
	defer unlock()

	session, err := e.store.GetSession(ctx, input.SessionID)
	if err != nil {
		return DecisionResult{}, storeError("load session", err)
	}
	if session.Status != domain.SessionStatusActive {
		return DecisionResult{}, apperrors.New(apperrors.CodeInvalidState, "decisions require an active session")
	}

	participant, err := e.store.GetParticipant(ctx, input.ParticipantID)
	if err != nil {
		return DecisionResult{}, storeError("load participant", err)
	}
	if participant.SessionID != input.SessionID {
		return DecisionResult{}, apperrors.New(apperrors.CodeNotFound, "record not found")
	}
	if !participant.Active {
		return DecisionResult{}, apperrors.New(apperrors.CodeAuthorization, "only the active participant may make a decision")
	}

	if input.TargetTimelineID != "" {
		timeline, err := e.store.GetTimeline(ctx, input.TargetTimelineID)
		if err != nil {
			return DecisionResult{}, storeError("load timeline", err)
		}
		if timeline.SessionID != input.SessionID {
			return DecisionResult{}, apperrors.New(apperrors.CodeNotFound, "record not found")
		}
	}
	if input.TargetRealmID != "" {
		if _, err := sessionRealm(ctx, e.store, input.SessionID, input.TargetRealmID); err != nil {
			return DecisionResult{}, storeError("load realm", err)
		}
	}

	timelines, err := e.store.ListTimelines(ctx, input.SessionID)
	if err != nil {
		return DecisionResult{}, storeError("list timelines", err)
	}
	averageStability := 0
	if len(timelines) > 0 {
		total := 0
		for _, timeline := range timelines {
			total += timeline.Stability
		}
		averageStability = total / len(timelines)
	}

	evaluation, fallback := e.evaluate(ctx, scoring.Request{
		Participant: scoring.ParticipantContext{
			ID:    participant.ID,
			Role:  participant.Role.String(),
			Karma: participant.Karma,
		},
		Session: scoring.SessionContext{
			ID:               session.ID,
			Turn:             session.CurrentTurn,
			Era:              string(session.Era()),
			AverageStability: averageStability,
		},
		Decision: input.Decision,
		Context: scoring.DecisionContext{
			TargetTimelineID: input.TargetTimelineID,
			TargetRealmID:    input.TargetRealmID,
			Timestamp:        e.clock().UTC(),
		},
	})

	karmaImpact := scoring.ClampKarma(evaluation.KarmaImpact)
	evaluation.KarmaImpact = karmaImpact
	alignmentImpact := karmaImpact / 2
	category := scoring.Categorize(input.Decision, karmaImpact)

	var events []event.Event
	err = e.store.Transact(ctx, func(tx storage.Store) error {
		events = events[:0]

		participant.Karma += karmaImpact
		participant.UpdatedAt = e.clock().UTC()
		if err := tx.PutParticipant(ctx, participant); err != nil {
			return err
		}

		session.GlobalKarma += karmaImpact
		session.UpdatedAt = e.clock().UTC()
		if err := tx.PutSession(ctx, session); err != nil {
			return err
		}

		if input.TargetTimelineID != "" {
			timeline, err := tx.GetTimeline(ctx, input.TargetTimelineID)
			if err != nil {
				return err
			}
			timeline.Stability += evaluation.TimelineStabilityImpact
			timeline.KarmaAlignment += alignmentImpact
			timeline.UpdatedAt = e.clock().UTC()
			if err := tx.PutTimeline(ctx, timeline); err != nil {
				return err
			}

			if timeline.IsCollapsing() {
				if _, err := tx.GetOpenRift(ctx, timeline.ID); errors.Is(err, storage.ErrNotFound) {
					rift, err := domain.OpenRift(session.ID, timeline.ID, timeline.Stability, session.CurrentTurn, e.clock, e.idGenerator)
					if err != nil {
						return err
					}
					if err := tx.PutRift(ctx, rift); err != nil {
						return err
					}

					opened, err := e.newEvent(session.ID, event.TypeRiftOpened, session.CurrentTurn)
					if err != nil {
						return err
					}
					opened.TimelineID = timeline.ID
					opened.PayloadJSON, err = event.MarshalPayload(event.RiftOpenedPayload{
						RiftID:     rift.ID,
						TimelineID: timeline.ID,
						Severity:   rift.Severity,
						Stability:  timeline.Stability,
					})
					if err != nil {
						return err
					}
					opened, err = tx.AppendEvent(ctx, opened)
					if err != nil {
						return err
					}
					events = append(events, opened)
				} else if err != nil {
					return err
				}
			}
		}

		if input.TargetRealmID != "" && evaluation.DevelopmentImpact != 0 {
			realm, err := sessionRealm(ctx, tx, input.SessionID, input.TargetRealmID)
			if err != nil {
				return err
			}
			realm.DevelopmentLevel += evaluation.DevelopmentImpact
			if realm.DevelopmentLevel < 0 {
				realm.DevelopmentLevel = 0
			}
			realm.UpdatedAt = e.clock().UTC()
			if err := tx.PutRealm(ctx, realm); err != nil {
				return err
			}
		}

		decided, err := e.newEvent(session.ID, event.TypeDecision, session.CurrentTurn)
		if err != nil {
			return err
		}
		decided.ParticipantID = participant.ID
		decided.TimelineID = input.TargetTimelineID
		decided.RealmID = input.TargetRealmID
		decided.PayloadJSON, err = event.MarshalPayload(event.DecisionPayload{
			Decision: input.Decision,
			Category: string(category),
			Evaluation: event.EvaluationPayload{
				EthicalImpact:           evaluation.EthicalImpact,
				TechnologicalImpact:     evaluation.TechnologicalImpact,
				TemporalImpact:          evaluation.TemporalImpact,
				KarmaImpact:             evaluation.KarmaImpact,
				Explanation:             evaluation.Explanation,
				TimelineStabilityImpact: evaluation.TimelineStabilityImpact,
				DevelopmentImpact:       evaluation.DevelopmentImpact,
			},
			Fallback:             fallback,
			TargetTimelineID:     input.TargetTimelineID,
			TargetRealmID:        input.TargetRealmID,
			KarmaAlignmentImpact: alignmentImpact,
		})
		if err != nil {
			return err
		}
		decided, err = tx.AppendEvent(ctx, decided)
		if err != nil {
			return err
		}
		events = append(events, decided)
		return nil
	})
	if err != nil {
		return DecisionResult{}, storeError("resolve decision", err)
	}

	e.emit(events...)

	message := "decision evaluated"
	if fallback {
		message = "decision recorded, evaluation unavailable"
	}
	return DecisionResult{
		Evaluation: evaluation,
		Category:   category,
		Fallback:   fallback,
		Message:    message,
		Event:      events[len(events)-1],
	}, nil
}

// evaluate consults the external scorer and degrades to the neutral fallback
// on any error, including timeouts and malformed responses.
func (e *Engine) evaluate(ctx context.Context, req scoring.Request) (scoring.Evaluation, bool) {
	if e.scorer == nil {
		return scoring.Fallback(), true
	}
	evaluation, err := e.scorer.Evaluate(ctx, req)
	if err != nil {
		e.logger.Warn().
			Err(err).
			Str("session_id", req.Session.ID).
			Str("participant_id", req.Participant.ID).
			Msg("decision evaluation failed, applying neutral fallback")
		return scoring.Fallback(), true
	}
	return evaluation, false
}
