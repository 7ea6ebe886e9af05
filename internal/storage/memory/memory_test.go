package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chronocore/engine/internal/game/domain"
	"github.com/chronocore/engine/internal/game/event"
	"github.com/chronocore/engine/internal/storage"
)

func testSession(id string) domain.Session {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return domain.Session{
		ID:              id,
		Name:            "test",
		Status:          domain.SessionStatusWaiting,
		MaxParticipants: 4,
		WinCondition:    "balance",
		CreatorUserID:   "user-1",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestSessionRoundTrip(t *testing.T) {
	store := New()
	ctx := context.Background()

	want := testSession("session-1")
	if err := store.PutSession(ctx, want); err != nil {
		t.Fatalf("PutSession() error = %v", err)
	}
	got, err := store.GetSession(ctx, "session-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got != want {
		t.Fatalf("GetSession() = %+v, want %+v", got, want)
	}

	if _, err := store.GetSession(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetSession(missing) error = %v, want ErrNotFound", err)
	}
}

func TestTransactRollsBackOnError(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.PutSession(ctx, testSession("session-1")); err != nil {
		t.Fatalf("PutSession() error = %v", err)
	}

	boom := errors.New("boom")
	err := store.Transact(ctx, func(tx storage.Store) error {
		if err := tx.PutSession(ctx, testSession("session-2")); err != nil {
			return err
		}
		if _, err := tx.AppendEvent(ctx, event.Event{ID: "e1", SessionID: "session-1", Type: event.TypeReadyChanged}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transact() error = %v, want boom", err)
	}

	if _, err := store.GetSession(ctx, "session-2"); !errors.Is(err, storage.ErrNotFound) {
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

func TestAppendEventAssignsSequence(t *testing.T) {
	store := New()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		stored, err := store.AppendEvent(ctx, event.Event{
			ID:        string(rune('a' + i)),
			SessionID: "session-1",
			Type:      event.TypeTurnStart,
		})
		if err != nil {
			t.Fatalf("AppendEvent() error = %v", err)
		}
		if stored.Seq != uint64(i) {
			t.Fatalf("Seq = %d, want %d", stored.Seq, i)
		}
	}

	// Newest first, bounded by limit.
	events, err := store.ListEvents(ctx, "session-1", 2)
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 2 || events[0].Seq != 3 || events[1].Seq != 2 {
		t.Fatalf("ListEvents() = %+v, want seq 3,2", events)
	}

	// Zero limit returns the full journal.
	all, err := store.ListEvents(ctx, "session-1", 0)
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListEvents(0) = %d events, want 3", len(all))
	}

	if _, err := store.AppendEvent(ctx, event.Event{ID: "z", SessionID: "session-1", Type: "time_travel"}); err == nil {
		t.Fatal("AppendEvent() expected error for unsupported type")
	}
}

func TestListParticipantsOrderedByTurnOrder(t *testing.T) {
	store := New()
	ctx := context.Background()

	for i, id := range []string{"p-c", "p-a", "p-b"} {
		err := store.PutParticipant(ctx, domain.Participant{
			ID:        id,
			SessionID: "session-1",
			UserID:    id,
			TurnOrder: 2 - i,
		})
		if err != nil {
			t.Fatalf("PutParticipant() error = %v", err)
		}
	}

	roster, err := store.ListParticipants(ctx, "session-1")
	if err != nil {
		t.Fatalf("ListParticipants() error = %v", err)
	}
	if roster[0].ID != "p-b" || roster[1].ID != "p-a" || roster[2].ID != "p-c" {
		t.Fatalf("roster order = %s,%s,%s", roster[0].ID, roster[1].ID, roster[2].ID)
	}
}

func TestDeleteSessionCascades(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.PutSession(ctx, testSession("session-1")); err != nil {
		t.Fatalf("PutSession() error = %v", err)
	}
	if err := store.PutParticipant(ctx, domain.Participant{ID: "p1", SessionID: "session-1", UserID: "u1"}); err != nil {
		t.Fatalf("PutParticipant() error = %v", err)
	}
	if err := store.PutTimeline(ctx, domain.Timeline{ID: "t1", SessionID: "session-1"}); err != nil {
		t.Fatalf("PutTimeline() error = %v", err)
	}
	if err := store.PutRealm(ctx, domain.Realm{ID: "r1", TimelineID: "t1"}); err != nil {
		t.Fatalf("PutRealm() error = %v", err)
	}

	if err := store.DeleteSession(ctx, "session-1"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if _, err := store.GetParticipant(ctx, "p1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("participant survived delete: %v", err)
	}
	if _, err := store.GetTimeline(ctx, "t1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("timeline survived delete: %v", err)
	}
	if _, err := store.GetRealm(ctx, "r1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("realm survived delete: %v", err)
	}
}
