package domain

import (
	"fmt"
	"time"
)

const (
	// MinRiftSeverity is the mildest rift severity.
	MinRiftSeverity = 1
	// MaxRiftSeverity is the most severe rift severity.
	MaxRiftSeverity = 5
	// RiftThreshold is the stability below which a timeline tears open a rift.
	RiftThreshold = 25
	// RiftStabilityPerSeverity is the stability restored per severity point
	// when a rift is resolved.
	RiftStabilityPerSeverity = 10
)

// Rift represents a tear in a timeline opened when its stability collapses.
type Rift struct {
	ID             string
	SessionID      string
	TimelineID     string
	Severity       int
	Description    string
	CreatedAtTurn  int
	Resolved       bool
	ResolvedAtTurn int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RiftSeverityForStability derives rift severity from how far a timeline's
// stability has fallen below the rift threshold. Deeper collapses produce
// more severe rifts, capped at MaxRiftSeverity.
func RiftSeverityForStability(stability int) int {
	deficit := RiftThreshold - stability
	if deficit < 0 {
		deficit = 0
	}
	severity := MinRiftSeverity + deficit/10
	if severity > MaxRiftSeverity {
		severity = MaxRiftSeverity
	}
	return severity
}

// OpenRift creates a rift on a collapsing timeline.
func OpenRift(sessionID, timelineID string, stability, turn int, now func() time.Time, idGenerator func() (string, error)) (Rift, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = NewID
	}

	riftID, err := idGenerator()
	if err != nil {
		return Rift{}, fmt.Errorf("generate rift id: %w", err)
	}

	severity := RiftSeverityForStability(stability)
	createdAt := now().UTC()
	return Rift{
		ID:            riftID,
		SessionID:     sessionID,
		TimelineID:    timelineID,
		Severity:      severity,
		Description:   fmt.Sprintf("Temporal rift of severity %d", severity),
		CreatedAtTurn: turn,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}, nil
}
