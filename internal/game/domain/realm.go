package domain

import "time"

// RealmType identifies a realm sub-type.
type RealmType string

const (
	RealmTypeUrban         RealmType = "Urban"
	RealmTypeNatural       RealmType = "Natural"
	RealmTypeTechnological RealmType = "Technological"
	RealmTypeSpiritual     RealmType = "Spiritual"
	RealmTypeWasteland     RealmType = "Wasteland"
	RealmTypeHybrid        RealmType = "Hybrid"
)

// MaxDevelopmentLevel is the development cap for a realm.
const MaxDevelopmentLevel = 5

// Position locates a realm on the board.
type Position struct {
	X int
	Y int
}

// Realm represents a sub-location within a timeline. Realms are created at
// board initialization and never deleted; ownership may change hands.
type Realm struct {
	ID               string
	TimelineID       string
	Name             string
	Type             RealmType
	Position         Position
	DevelopmentLevel int
	Resources        ResourcePool
	OwnerID          string // participant ID, empty when unowned
	Adjacent         []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
