package domain

import (
	"errors"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func staticID(id string) func() (string, error) {
	return func() (string, error) { return id, nil }
}

func TestCreateSession(t *testing.T) {
	session, err := CreateSession(CreateSessionInput{
		Name:            "  Fractured Futures  ",
		MaxParticipants: 4,
		CreatorUserID:   "user-1",
	}, fixedClock, staticID("session-1"))
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if session.ID != "session-1" {
		t.Fatalf("ID = %q, want %q", session.ID, "session-1")
	}
	if session.Name != "Fractured Futures" {
		t.Fatalf("Name = %q, want trimmed name", session.Name)
	}
	if session.Status != SessionStatusWaiting {
		t.Fatalf("Status = %v, want waiting", session.Status)
	}
	if session.WinCondition != "balance" {
		t.Fatalf("WinCondition = %q, want default %q", session.WinCondition, "balance")
	}
	if session.CurrentTurn != 0 || session.ActivePlayerIndex != 0 || session.GlobalKarma != 0 {
		t.Fatalf("counters not zeroed: %+v", session)
	}
	if !session.CreatedAt.Equal(fixedClock()) {
		t.Fatalf("CreatedAt = %v, want fixed clock", session.CreatedAt)
	}
}

func TestCreateSessionValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateSessionInput
		wantErr error
	}{
		{
			name:    "empty name",
			input:   CreateSessionInput{Name: "   ", MaxParticipants: 4},
			wantErr: ErrEmptySessionName,
		},
		{
			name:    "too few participants",
			input:   CreateSessionInput{Name: "x", MaxParticipants: 1},
			wantErr: ErrInvalidMaxParticipants,
		},
		{
			name:    "too many participants",
			input:   CreateSessionInput{Name: "x", MaxParticipants: 9},
			wantErr: ErrInvalidMaxParticipants,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CreateSession(tc.input, fixedClock, staticID("id"))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("CreateSession() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestEraForTurn(t *testing.T) {
	tests := []struct {
		turn int
		want Era
	}{
		{0, EraInitiation},
		{9, EraInitiation},
		{10, EraProgression},
		{19, EraProgression},
		{20, EraDistortion},
		{29, EraDistortion},
		{30, EraEquilibrium},
		{99, EraEquilibrium},
	}
	for _, tc := range tests {
		if got := EraForTurn(tc.turn); got != tc.want {
			t.Fatalf("EraForTurn(%d) = %v, want %v", tc.turn, got, tc.want)
		}
	}
}

func TestCreateParticipant(t *testing.T) {
	participant, err := CreateParticipant(CreateParticipantInput{
		SessionID:   "session-1",
		UserID:      "user-1",
		DisplayName: "Ada",
		Role:        RoleTechnoMonk,
		TurnOrder:   2,
	}, fixedClock, staticID("participant-1"))
	if err != nil {
		t.Fatalf("CreateParticipant() error = %v", err)
	}
	if participant.Ready || participant.Active {
		t.Fatalf("new participant must start not ready and inactive: %+v", participant)
	}
	if participant.Karma != 0 || participant.TechLevel != 1 {
		t.Fatalf("starting karma/tech = %d/%d, want 0/1", participant.Karma, participant.TechLevel)
	}
	want := ResourcePool{Energy: 3, Knowledge: 3, Materials: 3}
	if participant.Resources != want {
		t.Fatalf("Resources = %+v, want %+v", participant.Resources, want)
	}
}

func TestParseRole(t *testing.T) {
	for _, role := range []Role{RoleTechnoMonk, RoleShadowBroker, RoleChronoDiplomat, RoleBioSmith} {
		parsed, err := ParseRole(role.String())
		if err != nil {
			t.Fatalf("ParseRole(%q) error = %v", role.String(), err)
		}
		if parsed != role {
			t.Fatalf("ParseRole(%q) = %v, want %v", role.String(), parsed, role)
		}
	}
	if _, err := ParseRole("Time Lord"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("ParseRole(unknown) error = %v, want ErrInvalidRole", err)
	}
}
