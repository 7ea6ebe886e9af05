package domain

import (
	"fmt"
	"math/rand"
	"time"
)

// timelineArchetype seeds one of the six fixed timelines created at board
// initialization.
type timelineArchetype struct {
	name           string
	timelineType   TimelineType
	stability      int
	techLevel      int
	karmaAlignment int
}

// timelineArchetypes is the fixed catalogue of board timelines. Every board
// gets exactly these six, in this order.
var timelineArchetypes = []timelineArchetype{
	{name: "Utopia", timelineType: TimelineTypeUtopia, stability: 100, techLevel: 1, karmaAlignment: 50},
	{name: "Dystopia", timelineType: TimelineTypeDystopia, stability: 100, techLevel: 1, karmaAlignment: -50},
	{name: "Tech Empire", timelineType: TimelineTypeTechEmpire, stability: 100, techLevel: 3, karmaAlignment: 0},
	{name: "Earth Roots", timelineType: TimelineTypeEarthRoots, stability: 100, techLevel: 1, karmaAlignment: 50},
	{name: "AI Matrix", timelineType: TimelineTypeAIMatrix, stability: 100, techLevel: 1, karmaAlignment: 0},
	{name: "Cosmic Plane", timelineType: TimelineTypeCosmic, stability: 100, techLevel: 1, karmaAlignment: 0},
}

// realmTypes is the catalogue realm sub-types are drawn from.
var realmTypes = []RealmType{
	RealmTypeUrban,
	RealmTypeNatural,
	RealmTypeTechnological,
	RealmTypeSpiritual,
	RealmTypeWasteland,
	RealmTypeHybrid,
}

const (
	minRealmsPerTimeline = 5
	maxRealmsPerTimeline = 8
)

// Board holds the timelines and realms produced by board initialization.
type Board struct {
	Timelines []Timeline
	Realms    []Realm
}

// GenerateBoard builds the deterministic set of six timelines, each
// populated with 5-8 realms of randomized sub-type, position and resources.
// Timelines are connected in a ring; realms within a timeline form an
// adjacency chain.
func GenerateBoard(sessionID string, rng *rand.Rand, now func() time.Time, idGenerator func() (string, error)) (Board, error) {
	if sessionID == "" {
		return Board{}, ErrEmptySessionID
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = NewID
	}

	createdAt := now().UTC()
	board := Board{
		Timelines: make([]Timeline, 0, len(timelineArchetypes)),
		Realms:    make([]Realm, 0, len(timelineArchetypes)*minRealmsPerTimeline),
	}

	for _, archetype := range timelineArchetypes {
		timelineID, err := idGenerator()
		if err != nil {
			return Board{}, fmt.Errorf("generate timeline id: %w", err)
		}

		timeline := Timeline{
			ID:             timelineID,
			SessionID:      sessionID,
			Name:           archetype.name,
			Type:           archetype.timelineType,
			Stability:      archetype.stability,
			TechLevel:      archetype.techLevel,
			KarmaAlignment: archetype.karmaAlignment,
			CreatedAt:      createdAt,
			UpdatedAt:      createdAt,
		}

		realmCount := minRealmsPerTimeline + rng.Intn(maxRealmsPerTimeline-minRealmsPerTimeline+1)
		var previousRealmID string
		for i := 0; i < realmCount; i++ {
			realmID, err := idGenerator()
			if err != nil {
				return Board{}, fmt.Errorf("generate realm id: %w", err)
			}

			realmType := realmTypes[rng.Intn(len(realmTypes))]
			realm := Realm{
				ID:         realmID,
				TimelineID: timelineID,
				Name:       fmt.Sprintf("%s %s %d", archetype.name, realmType, i+1),
				Type:       realmType,
				Position: Position{
					X: rng.Intn(10),
					Y: rng.Intn(10),
				},
				DevelopmentLevel: 1,
				Resources: ResourcePool{
					Energy:    1 + rng.Intn(5),
					Knowledge: 1 + rng.Intn(5),
					Materials: 1 + rng.Intn(5),
				},
				CreatedAt: createdAt,
				UpdatedAt: createdAt,
			}
			if previousRealmID != "" {
				realm.Adjacent = append(realm.Adjacent, previousRealmID)
				prev := &board.Realms[len(board.Realms)-1]
				prev.Adjacent = append(prev.Adjacent, realmID)
			}
			previousRealmID = realmID
			board.Realms = append(board.Realms, realm)
		}

		board.Timelines = append(board.Timelines, timeline)
	}

	// Ring connection between timelines.
	for i := range board.Timelines {
		next := (i + 1) % len(board.Timelines)
		board.Timelines[i].ConnectedTo = append(board.Timelines[i].ConnectedTo, board.Timelines[next].ID)
		board.Timelines[next].ConnectedTo = append(board.Timelines[next].ConnectedTo, board.Timelines[i].ID)
	}

	return board, nil
}
