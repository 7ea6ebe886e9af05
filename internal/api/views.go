package api

import (
	"encoding/json"
	"time"

	"github.com/chronocore/engine/internal/game/domain"
	"github.com/chronocore/engine/internal/game/engine"
	"github.com/chronocore/engine/internal/game/event"
)

type sessionView struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Status            string    `json:"status"`
	MaxParticipants   int       `json:"max_participants"`
	WinCondition      string    `json:"win_condition"`
	CurrentTurn       int       `json:"current_turn"`
	ActivePlayerIndex int       `json:"active_player_index"`
	Era               string    `json:"era"`
	GlobalKarma       int       `json:"global_karma"`
	CreatorUserID     string    `json:"creator_user_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type participantView struct {
	ID          string        `json:"id"`
	SessionID   string        `json:"session_id"`
	UserID      string        `json:"user_id"`
	DisplayName string        `json:"display_name"`
	Role        string        `json:"role"`
	Karma       int           `json:"karma"`
	Ready       bool          `json:"ready"`
	Active      bool          `json:"active"`
	TurnOrder   int           `json:"turn_order"`
	Resources   resourcesView `json:"resources"`
	TechLevel   int           `json:"tech_level"`
}

type resourcesView struct {
	Energy    int `json:"energy"`
	Knowledge int `json:"knowledge"`
	Materials int `json:"materials"`
}

type timelineView struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Stability      int      `json:"stability"`
	TechLevel      int      `json:"tech_level"`
	KarmaAlignment int      `json:"karma_alignment"`
	ConnectedTo    []string `json:"connected_to"`
}

type realmView struct {
	ID               string        `json:"id"`
	TimelineID       string        `json:"timeline_id"`
	Name             string        `json:"name"`
	Type             string        `json:"type"`
	PositionX        int           `json:"position_x"`
	PositionY        int           `json:"position_y"`
	DevelopmentLevel int           `json:"development_level"`
	Resources        resourcesView `json:"resources"`
	OwnerID          string        `json:"owner_id,omitempty"`
	Adjacent         []string      `json:"adjacent"`
}

type riftView struct {
	ID             string `json:"id"`
	TimelineID     string `json:"timeline_id"`
	Severity       int    `json:"severity"`
	Description    string `json:"description"`
	CreatedAtTurn  int    `json:"created_at_turn"`
	Resolved       bool   `json:"resolved"`
	ResolvedAtTurn int    `json:"resolved_at_turn,omitempty"`
}

type eventView struct {
	ID            string          `json:"id"`
	SessionID     string          `json:"session_id"`
	Seq           uint64          `json:"seq"`
	Type          string          `json:"type"`
	Turn          int             `json:"turn"`
	ParticipantID string          `json:"participant_id,omitempty"`
	TimelineID    string          `json:"timeline_id,omitempty"`
	RealmID       string          `json:"realm_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"created_at"`
}

type stateView struct {
	Session      sessionView       `json:"session"`
	Participants []participantView `json:"participants"`
	Timelines    []timelineView    `json:"timelines"`
	Realms       []realmView       `json:"realms"`
	Rifts        []riftView        `json:"rifts"`
}

func renderSession(session domain.Session) sessionView {
	return sessionView{
		ID:                session.ID,
		Name:              session.Name,
		Status:            session.Status.String(),
		MaxParticipants:   session.MaxParticipants,
		WinCondition:      session.WinCondition,
		CurrentTurn:       session.CurrentTurn,
		ActivePlayerIndex: session.ActivePlayerIndex,
		Era:               string(session.Era()),
		GlobalKarma:       session.GlobalKarma,
		CreatorUserID:     session.CreatorUserID,
		CreatedAt:         session.CreatedAt,
		UpdatedAt:         session.UpdatedAt,
	}
}

func renderParticipant(participant domain.Participant) participantView {
	return participantView{
		ID:          participant.ID,
		SessionID:   participant.SessionID,
		UserID:      participant.UserID,
		DisplayName: participant.DisplayName,
		Role:        participant.Role.String(),
		Karma:       participant.Karma,
		Ready:       participant.Ready,
		Active:      participant.Active,
		TurnOrder:   participant.TurnOrder,
		Resources:   renderResources(participant.Resources),
		TechLevel:   participant.TechLevel,
	}
}

func renderResources(pool domain.ResourcePool) resourcesView {
	return resourcesView{
		Energy:    pool.Energy,
		Knowledge: pool.Knowledge,
		Materials: pool.Materials,
	}
}

func renderTimeline(timeline domain.Timeline) timelineView {
	return timelineView{
		ID:             timeline.ID,
		Name:           timeline.Name,
		Type:           string(timeline.Type),
		Stability:      timeline.Stability,
		TechLevel:      timeline.TechLevel,
		KarmaAlignment: timeline.KarmaAlignment,
		ConnectedTo:    timeline.ConnectedTo,
	}
}

func renderRealm(realm domain.Realm) realmView {
	return realmView{
		ID:               realm.ID,
		TimelineID:       realm.TimelineID,
		Name:             realm.Name,
		Type:             string(realm.Type),
		PositionX:        realm.Position.X,
		PositionY:        realm.Position.Y,
		DevelopmentLevel: realm.DevelopmentLevel,
		Resources:        renderResources(realm.Resources),
		OwnerID:          realm.OwnerID,
		Adjacent:         realm.Adjacent,
	}
}

func renderRift(rift domain.Rift) riftView {
	return riftView{
		ID:             rift.ID,
		TimelineID:     rift.TimelineID,
		Severity:       rift.Severity,
		Description:    rift.Description,
		CreatedAtTurn:  rift.CreatedAtTurn,
		Resolved:       rift.Resolved,
		ResolvedAtTurn: rift.ResolvedAtTurn,
	}
}

func renderEvent(evt event.Event) eventView {
	payload := evt.PayloadJSON
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	return eventView{
		ID:            evt.ID,
		SessionID:     evt.SessionID,
		Seq:           evt.Seq,
		Type:          string(evt.Type),
		Turn:          evt.Turn,
		ParticipantID: evt.ParticipantID,
		TimelineID:    evt.TimelineID,
		RealmID:       evt.RealmID,
		Payload:       json.RawMessage(payload),
		CreatedAt:     evt.CreatedAt,
	}
}

func renderState(view engine.SessionView) stateView {
	state := stateView{
		Session:      renderSession(view.Session),
		Participants: make([]participantView, 0, len(view.Participants)),
		Timelines:    make([]timelineView, 0, len(view.Timelines)),
		Realms:       make([]realmView, 0, len(view.Realms)),
		Rifts:        make([]riftView, 0, len(view.Rifts)),
	}
	for _, participant := range view.Participants {
		state.Participants = append(state.Participants, renderParticipant(participant))
	}
	for _, timeline := range view.Timelines {
		state.Timelines = append(state.Timelines, renderTimeline(timeline))
	}
	for _, realm := range view.Realms {
		state.Realms = append(state.Realms, renderRealm(realm))
	}
	for _, rift := range view.Rifts {
		state.Rifts = append(state.Rifts, renderRift(rift))
	}
	return state
}
