package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chronocore/engine/internal/game/domain"
	"github.com/chronocore/engine/internal/storage"
)

func sessionStatusFromString(value string) domain.SessionStatus {
	switch value {
	case "waiting":
		return domain.SessionStatusWaiting
	case "active":
		return domain.SessionStatusActive
	case "completed":
		return domain.SessionStatusCompleted
	case "abandoned":
		return domain.SessionStatusAbandoned
	default:
		return domain.SessionStatusUnspecified
	}
}

// PutSession inserts or replaces a session record.
func (s *Store) PutSession(ctx context.Context, session domain.Session) error {
	_, err := s.q.ExecContext(ctx, `
INSERT INTO sessions (id, name, status, max_participants, win_condition, current_turn, active_player_index, global_karma, creator_user_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    status = excluded.status,
    max_participants = excluded.max_participants,
    win_condition = excluded.win_condition,
    current_turn = excluded.current_turn,
    active_player_index = excluded.active_player_index,
    global_karma = excluded.global_karma,
    creator_user_id = excluded.creator_user_id,
    updated_at = excluded.updated_at`,
		session.ID,
		session.Name,
		session.Status.String(),
		session.MaxParticipants,
		session.WinCondition,
		session.CurrentTurn,
		session.ActivePlayerIndex,
		session.GlobalKarma,
		session.CreatorUserID,
		toMillis(session.CreatedAt),
		toMillis(session.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// GetSession loads a session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (domain.Session, error) {
	row := s.q.QueryRowContext(ctx, `
SELECT id, name, status, max_participants, win_condition, current_turn, active_player_index, global_karma, creator_user_id, created_at, updated_at
FROM sessions WHERE id = ?`, id)

	var (
		session   domain.Session
		status    string
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&session.ID,
		&session.Name,
		&status,
		&session.MaxParticipants,
		&session.WinCondition,
		&session.CurrentTurn,
		&session.ActivePlayerIndex,
		&session.GlobalKarma,
		&session.CreatorUserID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, storage.ErrNotFound
		}
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}

	session.Status = sessionStatusFromString(status)
	session.CreatedAt = fromMillis(createdAt)
	session.UpdatedAt = fromMillis(updatedAt)
	return session, nil
}

// DeleteSession removes a session. Participants, timelines, realms and rifts
// cascade; events are removed explicitly since they carry no foreign key.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	if _, err := s.q.ExecContext(ctx, `DELETE FROM events WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("delete session events: %w", err)
	}
	return nil
}

// PutParticipant inserts or replaces a participant record.
func (s *Store) PutParticipant(ctx context.Context, participant domain.Participant) error {
	ready := 0
	if participant.Ready {
		ready = 1
	}
	active := 0
	if participant.Active {
		active = 1
	}

	_, err := s.q.ExecContext(ctx, `
INSERT INTO participants (id, session_id, user_id, display_name, role, karma, ready, active, turn_order, energy, knowledge, materials, tech_level, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    display_name = excluded.display_name,
    role = excluded.role,
    karma = excluded.karma,
    ready = excluded.ready,
    active = excluded.active,
    turn_order = excluded.turn_order,
    energy = excluded.energy,
    knowledge = excluded.knowledge,
    materials = excluded.materials,
    tech_level = excluded.tech_level,
    updated_at = excluded.updated_at`,
		participant.ID,
		participant.SessionID,
		participant.UserID,
		participant.DisplayName,
		participant.Role.String(),
		participant.Karma,
		ready,
		active,
		participant.TurnOrder,
		participant.Resources.Energy,
		participant.Resources.Knowledge,
		participant.Resources.Materials,
		participant.TechLevel,
		toMillis(participant.CreatedAt),
		toMillis(participant.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put participant: %w", err)
	}
	return nil
}

const participantColumns = `id, session_id, user_id, display_name, role, karma, ready, active, turn_order, energy, knowledge, materials, tech_level, created_at, updated_at`

func scanParticipant(scan func(dest ...any) error) (domain.Participant, error) {
	var (
		participant domain.Participant
		role        string
		ready       int
		active      int
		createdAt   int64
		updatedAt   int64
	)
	err := scan(
		&participant.ID,
		&participant.SessionID,
		&participant.UserID,
		&participant.DisplayName,
		&role,
		&participant.Karma,
		&ready,
		&active,
		&participant.TurnOrder,
		&participant.Resources.Energy,
		&participant.Resources.Knowledge,
		&participant.Resources.Materials,
		&participant.TechLevel,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Participant{}, err
	}

	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("parse participant role %q: %w", role, err)
	}
	participant.Role = parsedRole
	participant.Ready = ready != 0
	participant.Active = active != 0
	participant.CreatedAt = fromMillis(createdAt)
	participant.UpdatedAt = fromMillis(updatedAt)
	return participant, nil
}

// GetParticipant loads a participant by ID.
func (s *Store) GetParticipant(ctx context.Context, id string) (domain.Participant, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+participantColumns+` FROM participants WHERE id = ?`, id)
	participant, err := scanParticipant(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Participant{}, storage.ErrNotFound
		}
		return domain.Participant{}, fmt.Errorf("get participant: %w", err)
	}
	return participant, nil
}

// ListParticipants returns a session's roster ordered by turn order.
func (s *Store) ListParticipants(ctx context.Context, sessionID string) ([]domain.Participant, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+participantColumns+` FROM participants WHERE session_id = ? ORDER BY turn_order`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var participants []domain.Participant
	for rows.Next() {
		participant, err := scanParticipant(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, participant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return participants, nil
}

// DeleteParticipant removes a participant record.
func (s *Store) DeleteParticipant(ctx context.Context, id string) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM participants WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete participant rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
