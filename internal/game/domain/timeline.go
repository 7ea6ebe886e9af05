package domain

import (
	"errors"
	"time"
)

// ErrEmptySessionID indicates a missing session ID.
var ErrEmptySessionID = errors.New("session id is required")

// TimelineType identifies a timeline archetype.
type TimelineType string

const (
	TimelineTypeUtopia     TimelineType = "Utopia"
	TimelineTypeDystopia   TimelineType = "Dystopia"
	TimelineTypeTechEmpire TimelineType = "Tech Empire"
	TimelineTypeEarthRoots TimelineType = "Earth Roots"
	TimelineTypeAIMatrix   TimelineType = "AI Matrix"
	TimelineTypeCosmic     TimelineType = "Cosmic Plane"
)

// Timeline represents a top-level world partition. Stability conventionally
// ranges 0-100 and karma alignment -100 to 100, but neither is clamped:
// large decision impacts may push them out of range.
type Timeline struct {
	ID             string
	SessionID      string
	Name           string
	Type           TimelineType
	Stability      int
	TechLevel      int
	KarmaAlignment int
	ConnectedTo    []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsStable reports whether the timeline's stability is at or above the
// stable threshold.
func (t Timeline) IsStable() bool {
	return t.Stability >= 50
}

// IsCollapsing reports whether the timeline is in danger of collapsing.
func (t Timeline) IsCollapsing() bool {
	return t.Stability < 25
}
