package event

// SessionStartedPayload captures the payload for session_started events.
type SessionStartedPayload struct {
	TimelineCount    int    `json:"timeline_count"`
	RealmCount       int    `json:"realm_count"`
	ParticipantCount int    `json:"participant_count"`
	Era              string `json:"era"`
}

// SessionAbandonedPayload captures the payload for session_abandoned events.
type SessionAbandonedPayload struct {
	Reason string `json:"reason,omitempty"`
}

// ParticipantJoinedPayload captures the payload for participant_joined events.
type ParticipantJoinedPayload struct {
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	Role          string `json:"role"`
	TurnOrder     int    `json:"turn_order"`
}

// ParticipantLeftPayload captures the payload for participant_left events.
type ParticipantLeftPayload struct {
	ParticipantID string `json:"participant_id"`
	Removed       bool   `json:"removed"`
}

// ReadyChangedPayload captures the payload for ready_changed events.
type ReadyChangedPayload struct {
	ParticipantID string `json:"participant_id"`
	Ready         bool   `json:"ready"`
}

// TurnStartPayload captures the payload for turn_start events.
type TurnStartPayload struct {
	ParticipantID string `json:"participant_id"`
	Turn          int    `json:"turn"`
}

// TurnEndPayload captures the payload for turn_end events.
type TurnEndPayload struct {
	ParticipantID string `json:"participant_id"`
	Turn          int    `json:"turn"`
}

// EraChangedPayload captures the payload for era_changed events.
type EraChangedPayload struct {
	FromEra string `json:"from_era"`
	ToEra   string `json:"to_era"`
	Turn    int    `json:"turn"`
}

// EvaluationPayload mirrors the scored outcome applied by a decision.
type EvaluationPayload struct {
	EthicalImpact           string `json:"ethical_impact"`
	TechnologicalImpact     string `json:"technological_impact"`
	TemporalImpact          string `json:"temporal_impact"`
	KarmaImpact             int    `json:"karma_impact"`
	Explanation             string `json:"explanation"`
	TimelineStabilityImpact int    `json:"timeline_stability_impact,omitempty"`
	DevelopmentImpact       int    `json:"development_impact,omitempty"`
}

// DecisionPayload captures the payload for decision events.
type DecisionPayload struct {
	Decision             string            `json:"decision"`
	Category             string            `json:"category"`
	Evaluation           EvaluationPayload `json:"evaluation"`
	Fallback             bool              `json:"fallback"`
	TargetTimelineID     string            `json:"target_timeline_id,omitempty"`
	TargetRealmID        string            `json:"target_realm_id,omitempty"`
	KarmaAlignmentImpact int               `json:"karma_alignment_impact,omitempty"`
}

// RealmClaimedPayload captures the payload for realm_claimed events.
type RealmClaimedPayload struct {
	RealmID       string `json:"realm_id"`
	ParticipantID string `json:"participant_id"`
}

// RealmDevelopedPayload captures the payload for realm_developed events.
type RealmDevelopedPayload struct {
	RealmID          string `json:"realm_id"`
	DevelopmentLevel int    `json:"development_level"`
}

// RiftOpenedPayload captures the payload for rift_opened events.
type RiftOpenedPayload struct {
	RiftID     string `json:"rift_id"`
	TimelineID string `json:"timeline_id"`
	Severity   int    `json:"severity"`
	Stability  int    `json:"stability"`
}

// RiftResolvedPayload captures the payload for rift_resolved events.
type RiftResolvedPayload struct {
	RiftID            string `json:"rift_id"`
	TimelineID        string `json:"timeline_id"`
	StabilityRestored int    `json:"stability_restored"`
}
