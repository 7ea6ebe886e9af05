package sqlite

import (
	"context"
	"fmt"

	"github.com/chronocore/engine/internal/game/event"
)

// AppendEvent assigns the next per-session sequence number and persists the
// event. Events are append-only; no update or delete statements exist.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	if !evt.Type.IsValid() {
		return event.Event{}, fmt.Errorf("append event: unsupported type %q", evt.Type)
	}

	payload := evt.PayloadJSON
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	row := s.q.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM events WHERE session_id = ?`, evt.SessionID)
	if err := row.Scan(&evt.Seq); err != nil {
		return event.Event{}, fmt.Errorf("next event seq: %w", err)
	}

	_, err := s.q.ExecContext(ctx, `
INSERT INTO events (id, session_id, seq, type, turn, participant_id, timeline_id, realm_id, payload, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		evt.ID,
		evt.SessionID,
		evt.Seq,
		string(evt.Type),
		evt.Turn,
		evt.ParticipantID,
		evt.TimelineID,
		evt.RealmID,
		string(payload),
		toMillis(evt.CreatedAt),
	)
	if err != nil {
		return event.Event{}, fmt.Errorf("append event: %w", err)
	}
	return evt, nil
}

// ListEvents returns a session's events newest first, bounded by limit. A
// limit of zero or less returns the full journal.
func (s *Store) ListEvents(ctx context.Context, sessionID string, limit int) ([]event.Event, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.q.QueryContext(ctx, `
SELECT id, session_id, seq, type, turn, participant_id, timeline_id, realm_id, payload, created_at
FROM events WHERE session_id = ? ORDER BY seq DESC LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []event.Event
	for rows.Next() {
		var (
			evt       event.Event
			eventType string
			payload   string
			createdAt int64
		)
		err := rows.Scan(
			&evt.ID,
			&evt.SessionID,
			&evt.Seq,
			&eventType,
			&evt.Turn,
			&evt.ParticipantID,
			&evt.TimelineID,
			&evt.RealmID,
			&payload,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evt.Type = event.Type(eventType)
		evt.PayloadJSON = []byte(payload)
		evt.CreatedAt = fromMillis(createdAt)
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
