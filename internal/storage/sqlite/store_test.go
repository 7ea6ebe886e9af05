package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/chronocore/engine/internal/game/domain"
	"github.com/chronocore/engine/internal/game/event"
	"github.com/chronocore/engine/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testTime() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestSessionRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	want := domain.Session{
		ID:                "session-1",
		Name:              "round trip",
		Status:            domain.SessionStatusActive,
		MaxParticipants:   4,
		WinCondition:      "balance",
		CurrentTurn:       7,
		ActivePlayerIndex: 1,
		GlobalKarma:       -3,
		CreatorUserID:     "user-1",
		CreatedAt:         testTime(),
		UpdatedAt:         testTime().Add(time.Minute),
	}
	if err := store.PutSession(ctx, want); err != nil {
		t.Fatalf("PutSession() error = %v", err)
	}
	got, err := store.GetSession(ctx, want.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got != want {
		t.Fatalf("GetSession() = %+v, want %+v", got, want)
	}

	// Upsert replaces in place.
	want.Status = domain.SessionStatusCompleted
	want.CurrentTurn = 8
	if err := store.PutSession(ctx, want); err != nil {
		t.Fatalf("PutSession(update) error = %v", err)
	}
	got, err = store.GetSession(ctx, want.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.Status != domain.SessionStatusCompleted || got.CurrentTurn != 8 {
		t.Fatalf("update not applied: %+v", got)
	}

	if _, err := store.GetSession(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetSession(missing) error = %v, want ErrNotFound", err)
	}
}

func putParentSession(t *testing.T, store *Store, id string) {
	t.Helper()
	err := store.PutSession(context.Background(), domain.Session{
		ID:        id,
		Name:      "parent",
		Status:    domain.SessionStatusActive,
		CreatedAt: testTime(),
		UpdatedAt: testTime(),
	})
	if err != nil {
		t.Fatalf("PutSession(parent) error = %v", err)
	}
}

func TestParticipantRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	putParentSession(t, store, "session-1")

	want := domain.Participant{
		ID:          "participant-1",
		SessionID:   "session-1",
		UserID:      "user-1",
		DisplayName: "Ada",
		Role:        domain.RoleChronoDiplomat,
		Karma:       -4,
		Ready:       true,
		Active:      true,
		TurnOrder:   2,
		Resources:   domain.ResourcePool{Energy: 1, Knowledge: 2, Materials: 3},
		TechLevel:   4,
		CreatedAt:   testTime(),
		UpdatedAt:   testTime(),
	}
	if err := store.PutParticipant(ctx, want); err != nil {
		t.Fatalf("PutParticipant() error = %v", err)
	}
	got, err := store.GetParticipant(ctx, want.ID)
	if err != nil {
		t.Fatalf("GetParticipant() error = %v", err)
	}
	if got != want {
		t.Fatalf("GetParticipant() = %+v, want %+v", got, want)
	}
}

func TestWorldRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	putParentSession(t, store, "session-1")

	timeline := domain.Timeline{
		ID:             "timeline-1",
		SessionID:      "session-1",
		Name:           "Utopia",
		Type:           domain.TimelineTypeUtopia,
		Stability:      64,
		TechLevel:      2,
		KarmaAlignment: -12,
		ConnectedTo:    []string{"timeline-2", "timeline-3"},
		CreatedAt:      testTime(),
		UpdatedAt:      testTime(),
	}
	if err := store.PutTimeline(ctx, timeline); err != nil {
		t.Fatalf("PutTimeline() error = %v", err)
	}
	gotTimeline, err := store.GetTimeline(ctx, timeline.ID)
	if err != nil {
		t.Fatalf("GetTimeline() error = %v", err)
	}
	if gotTimeline.Stability != 64 || len(gotTimeline.ConnectedTo) != 2 || gotTimeline.ConnectedTo[0] != "timeline-2" {
		t.Fatalf("GetTimeline() = %+v", gotTimeline)
	}

	realm := domain.Realm{
		ID:               "realm-1",
		TimelineID:       timeline.ID,
		Name:             "Utopia Urban 1",
		Type:             domain.RealmTypeUrban,
		Position:         domain.Position{X: 3, Y: 7},
		DevelopmentLevel: 2,
		Resources:        domain.ResourcePool{Energy: 4, Knowledge: 1, Materials: 5},
		OwnerID:          "participant-1",
		Adjacent:         []string{"realm-2"},
		CreatedAt:        testTime(),
		UpdatedAt:        testTime(),
	}
	if err := store.PutRealm(ctx, realm); err != nil {
		t.Fatalf("PutRealm() error = %v", err)
	}
	gotRealm, err := store.GetRealm(ctx, realm.ID)
	if err != nil {
		t.Fatalf("GetRealm() error = %v", err)
	}
	if gotRealm.OwnerID != "participant-1" || gotRealm.Position.X != 3 || len(gotRealm.Adjacent) != 1 {
		t.Fatalf("GetRealm() = %+v", gotRealm)
	}

	// ListRealms joins through the timeline's session.
	realms, err := store.ListRealms(ctx, "session-1")
	if err != nil {
		t.Fatalf("ListRealms() error = %v", err)
	}
	if len(realms) != 1 || realms[0].ID != realm.ID {
		t.Fatalf("ListRealms() = %+v", realms)
	}

	rift := domain.Rift{
		ID:            "rift-1",
		SessionID:     "session-1",
		TimelineID:    timeline.ID,
		Severity:      3,
		Description:   "Temporal rift of severity 3",
		CreatedAtTurn: 12,
		CreatedAt:     testTime(),
		UpdatedAt:     testTime(),
	}
	if err := store.PutRift(ctx, rift); err != nil {
		t.Fatalf("PutRift() error = %v", err)
	}
	open, err := store.GetOpenRift(ctx, timeline.ID)
	if err != nil {
		t.Fatalf("GetOpenRift() error = %v", err)
	}
	if open.ID != rift.ID {
		t.Fatalf("GetOpenRift() = %+v", open)
	}

	rift.Resolved = true
	rift.ResolvedAtTurn = 14
	if err := store.PutRift(ctx, rift); err != nil {
		t.Fatalf("PutRift(update) error = %v", err)
	}
	if _, err := store.GetOpenRift(ctx, timeline.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetOpenRift() after resolve error = %v, want ErrNotFound", err)
	}
}

func TestEventAppendAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		stored, err := store.AppendEvent(ctx, event.Event{
			ID:          "event-" + string(rune('a'+i)),
			SessionID:   "session-1",
			Type:        event.TypeTurnStart,
			Turn:        i,
			PayloadJSON: []byte(`{"turn":` + string(rune('0'+i)) + `}`),
			CreatedAt:   testTime(),
		})
		if err != nil {
			t.Fatalf("AppendEvent() error = %v", err)
		}
		if stored.Seq != uint64(i+1) {
			t.Fatalf("Seq = %d, want %d", stored.Seq, i+1)
		}
	}

	events, err := store.ListEvents(ctx, "session-1", 2)
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 2 || events[0].Seq != 3 || events[1].Seq != 2 {
		t.Fatalf("ListEvents() = %+v, want newest first seq 3,2", events)
	}
	if !events[0].CreatedAt.Equal(testTime()) {
		t.Fatalf("CreatedAt = %v, want %v", events[0].CreatedAt, testTime())
	}

	// Zero limit returns the full journal.
	all, err := store.ListEvents(ctx, "session-1", 0)
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListEvents(0) = %d events, want 3", len(all))
	}

	if _, err := store.AppendEvent(ctx, event.Event{ID: "event-x", SessionID: "session-1", Type: "time_travel", CreatedAt: testTime()}); err == nil {
		t.Fatal("AppendEvent() expected error for unsupported type")
	}
}

func TestTransactRollsBack(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.Transact(ctx, func(tx storage.Store) error {
		if err := tx.PutSession(ctx, domain.Session{ID: "session-1", Name: "x", Status: domain.SessionStatusWaiting, CreatedAt: testTime(), UpdatedAt: testTime()}); err != nil {
			return err
		}
		if _, err := tx.AppendEvent(ctx, event.Event{ID: "e1", SessionID: "session-1", Type: event.TypeReadyChanged, CreatedAt: testTime()}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transact() error = %v, want boom", err)
	}

	if _, err := store.GetSession(ctx, "session-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("rolled-back session still present: %v", err)
	}
	events, err := store.ListEvents(ctx, "session-1", 0)
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("rolled-back event still present: %+v", events)
	}
}

func TestDeleteSessionRemovesEvents(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.PutSession(ctx, domain.Session{ID: "session-1", Name: "x", Status: domain.SessionStatusWaiting, CreatedAt: testTime(), UpdatedAt: testTime()}); err != nil {
		t.Fatalf("PutSession() error = %v", err)
	}
	if _, err := store.AppendEvent(ctx, event.Event{ID: "e1", SessionID: "session-1", Type: event.TypeParticipantJoined, CreatedAt: testTime()}); err != nil {
		t.Fatalf("AppendEvent() error = %v", err)
	}

	if err := store.DeleteSession(ctx, "session-1"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	events, err := store.ListEvents(ctx, "session-1", 0)
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("events survived session delete: %+v", events)
	}
}
