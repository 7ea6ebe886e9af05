// Package scoring integrates the external decision evaluation service and
// provides the deterministic local fallback used when it is unavailable.
package scoring

import (
	"context"
	"time"
)

// Request carries a decision and its condensed session context to the
// evaluation service.
type Request struct {
	Participant ParticipantContext `json:"participant"`
	Session     SessionContext     `json:"session"`
	Decision    string             `json:"decision"`
	Context     DecisionContext    `json:"context"`
}

// ParticipantContext identifies the acting participant.
type ParticipantContext struct {
	ID    string `json:"id"`
	Role  string `json:"role"`
	Karma int    `json:"karma"`
}

// SessionContext condenses the session state relevant to evaluation.
type SessionContext struct {
	ID string `json:"id"`
	// Turn is the turn the decision was made on.
	Turn int `json:"turn"`
	// Era is the game era in effect.
	Era string `json:"era"`
	// AverageStability is the mean stability across the session's timelines,
	// the stability signal the evaluator weighs temporal impact against.
	AverageStability int `json:"average_stability"`
}

// DecisionContext carries the optional targets and request timestamp.
type DecisionContext struct {
	TargetTimelineID string    `json:"target_timeline_id,omitempty"`
	TargetRealmID    string    `json:"target_realm_id,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// Evaluation is the scored outcome of a decision, whether from the external
// evaluator or the local fallback.
type Evaluation struct {
	EthicalImpact           string `json:"ethical_impact"`
	TechnologicalImpact     string `json:"technological_impact"`
	TemporalImpact          string `json:"temporal_impact"`
	KarmaImpact             int    `json:"karma_impact"`
	Explanation             string `json:"explanation"`
	TimelineStabilityImpact int    `json:"timeline_stability_impact,omitempty"`
	DevelopmentImpact       int    `json:"development_impact,omitempty"`
}

// Scorer evaluates decisions. Implementations must honor context
// cancellation; the resolver bounds each call with a timeout and falls back
// locally on any error.
type Scorer interface {
	Evaluate(ctx context.Context, req Request) (Evaluation, error)
}

const (
	// MinKarmaImpact is the lowest karma impact an evaluation may apply.
	MinKarmaImpact = -10
	// MaxKarmaImpact is the highest karma impact an evaluation may apply.
	MaxKarmaImpact = 10
)

// ClampKarma bounds a karma impact to the range the evaluator is allowed to
// assign.
func ClampKarma(impact int) int {
	if impact < MinKarmaImpact {
		return MinKarmaImpact
	}
	if impact > MaxKarmaImpact {
		return MaxKarmaImpact
	}
	return impact
}
