package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chronocore/engine/internal/game/domain"
	"github.com/chronocore/engine/internal/storage"
)

// PutTimeline inserts or replaces a timeline record.
func (s *Store) PutTimeline(ctx context.Context, timeline domain.Timeline) error {
	connected, err := encodeIDList(timeline.ConnectedTo)
	if err != nil {
		return err
	}

	_, err = s.q.ExecContext(ctx, `
INSERT INTO timelines (id, session_id, name, type, stability, tech_level, karma_alignment, connected_to, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    type = excluded.type,
    stability = excluded.stability,
    tech_level = excluded.tech_level,
    karma_alignment = excluded.karma_alignment,
    connected_to = excluded.connected_to,
    updated_at = excluded.updated_at`,
		timeline.ID,
		timeline.SessionID,
		timeline.Name,
		string(timeline.Type),
		timeline.Stability,
		timeline.TechLevel,
		timeline.KarmaAlignment,
		connected,
		toMillis(timeline.CreatedAt),
		toMillis(timeline.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put timeline: %w", err)
	}
	return nil
}

const timelineColumns = `id, session_id, name, type, stability, tech_level, karma_alignment, connected_to, created_at, updated_at`

func scanTimeline(scan func(dest ...any) error) (domain.Timeline, error) {
	var (
		timeline     domain.Timeline
		timelineType string
		connected    string
		createdAt    int64
		updatedAt    int64
	)
	err := scan(
		&timeline.ID,
		&timeline.SessionID,
		&timeline.Name,
		&timelineType,
		&timeline.Stability,
		&timeline.TechLevel,
		&timeline.KarmaAlignment,
		&connected,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Timeline{}, err
	}

	connectedTo, err := decodeIDList(connected)
	if err != nil {
		return domain.Timeline{}, err
	}
	timeline.Type = domain.TimelineType(timelineType)
	timeline.ConnectedTo = connectedTo
	timeline.CreatedAt = fromMillis(createdAt)
	timeline.UpdatedAt = fromMillis(updatedAt)
	return timeline, nil
}

// GetTimeline loads a timeline by ID.
func (s *Store) GetTimeline(ctx context.Context, id string) (domain.Timeline, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+timelineColumns+` FROM timelines WHERE id = ?`, id)
	timeline, err := scanTimeline(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Timeline{}, storage.ErrNotFound
		}
		return domain.Timeline{}, fmt.Errorf("get timeline: %w", err)
	}
	return timeline, nil
}

// ListTimelines returns a session's timelines.
func (s *Store) ListTimelines(ctx context.Context, sessionID string) ([]domain.Timeline, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+timelineColumns+` FROM timelines WHERE session_id = ? ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list timelines: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var timelines []domain.Timeline
	for rows.Next() {
		timeline, err := scanTimeline(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan timeline: %w", err)
		}
		timelines = append(timelines, timeline)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timelines: %w", err)
	}
	return timelines, nil
}

// PutRealm inserts or replaces a realm record.
func (s *Store) PutRealm(ctx context.Context, realm domain.Realm) error {
	adjacent, err := encodeIDList(realm.Adjacent)
	if err != nil {
		return err
	}

	_, err = s.q.ExecContext(ctx, `
INSERT INTO realms (id, timeline_id, name, type, position_x, position_y, development_level, energy, knowledge, materials, owner_id, adjacent, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    type = excluded.type,
    position_x = excluded.position_x,
    position_y = excluded.position_y,
    development_level = excluded.development_level,
    energy = excluded.energy,
    knowledge = excluded.knowledge,
    materials = excluded.materials,
    owner_id = excluded.owner_id,
    adjacent = excluded.adjacent,
    updated_at = excluded.updated_at`,
		realm.ID,
		realm.TimelineID,
		realm.Name,
		string(realm.Type),
		realm.Position.X,
		realm.Position.Y,
		realm.DevelopmentLevel,
		realm.Resources.Energy,
		realm.Resources.Knowledge,
		realm.Resources.Materials,
		realm.OwnerID,
		adjacent,
		toMillis(realm.CreatedAt),
		toMillis(realm.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put realm: %w", err)
	}
	return nil
}

const realmColumns = `id, timeline_id, name, type, position_x, position_y, development_level, energy, knowledge, materials, owner_id, adjacent, created_at, updated_at`

func scanRealm(scan func(dest ...any) error) (domain.Realm, error) {
	var (
		realm     domain.Realm
		realmType string
		adjacent  string
		createdAt int64
		updatedAt int64
	)
	err := scan(
		&realm.ID,
		&realm.TimelineID,
		&realm.Name,
		&realmType,
		&realm.Position.X,
		&realm.Position.Y,
		&realm.DevelopmentLevel,
		&realm.Resources.Energy,
		&realm.Resources.Knowledge,
		&realm.Resources.Materials,
		&realm.OwnerID,
		&adjacent,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Realm{}, err
	}

	adjacentIDs, err := decodeIDList(adjacent)
	if err != nil {
		return domain.Realm{}, err
	}
	realm.Type = domain.RealmType(realmType)
	realm.Adjacent = adjacentIDs
	realm.CreatedAt = fromMillis(createdAt)
	realm.UpdatedAt = fromMillis(updatedAt)
	return realm, nil
}

// GetRealm loads a realm by ID.
func (s *Store) GetRealm(ctx context.Context, id string) (domain.Realm, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+realmColumns+` FROM realms WHERE id = ?`, id)
	realm, err := scanRealm(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Realm{}, storage.ErrNotFound
		}
		return domain.Realm{}, fmt.Errorf("get realm: %w", err)
	}
	return realm, nil
}

// ListRealms returns all realms in a session, joined through their timelines.
func (s *Store) ListRealms(ctx context.Context, sessionID string) ([]domain.Realm, error) {
	rows, err := s.q.QueryContext(ctx, `
SELECT r.id, r.timeline_id, r.name, r.type, r.position_x, r.position_y, r.development_level, r.energy, r.knowledge, r.materials, r.owner_id, r.adjacent, r.created_at, r.updated_at
FROM realms r
JOIN timelines t ON t.id = r.timeline_id
WHERE t.session_id = ?
ORDER BY r.created_at, r.id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list realms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var realms []domain.Realm
	for rows.Next() {
		realm, err := scanRealm(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan realm: %w", err)
		}
		realms = append(realms, realm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate realms: %w", err)
	}
	return realms, nil
}

// PutRift inserts or replaces a rift record.
func (s *Store) PutRift(ctx context.Context, rift domain.Rift) error {
	resolved := 0
	if rift.Resolved {
		resolved = 1
	}

	_, err := s.q.ExecContext(ctx, `
INSERT INTO rifts (id, session_id, timeline_id, severity, description, created_at_turn, resolved, resolved_at_turn, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    severity = excluded.severity,
    description = excluded.description,
    resolved = excluded.resolved,
    resolved_at_turn = excluded.resolved_at_turn,
    updated_at = excluded.updated_at`,
		rift.ID,
		rift.SessionID,
		rift.TimelineID,
		rift.Severity,
		rift.Description,
		rift.CreatedAtTurn,
		resolved,
		rift.ResolvedAtTurn,
		toMillis(rift.CreatedAt),
		toMillis(rift.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put rift: %w", err)
	}
	return nil
}

const riftColumns = `id, session_id, timeline_id, severity, description, created_at_turn, resolved, resolved_at_turn, created_at, updated_at`

func scanRift(scan func(dest ...any) error) (domain.Rift, error) {
	var (
		rift      domain.Rift
		resolved  int
		createdAt int64
		updatedAt int64
	)
	err := scan(
		&rift.ID,
		&rift.SessionID,
		&rift.TimelineID,
		&rift.Severity,
		&rift.Description,
		&rift.CreatedAtTurn,
		&resolved,
		&rift.ResolvedAtTurn,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Rift{}, err
	}

	rift.Resolved = resolved != 0
	rift.CreatedAt = fromMillis(createdAt)
	rift.UpdatedAt = fromMillis(updatedAt)
	return rift, nil
}

// GetRift loads a rift by ID.
func (s *Store) GetRift(ctx context.Context, id string) (domain.Rift, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+riftColumns+` FROM rifts WHERE id = ?`, id)
	rift, err := scanRift(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Rift{}, storage.ErrNotFound
		}
		return domain.Rift{}, fmt.Errorf("get rift: %w", err)
	}
	return rift, nil
}

// ListRifts returns a session's rifts.
func (s *Store) ListRifts(ctx context.Context, sessionID string) ([]domain.Rift, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+riftColumns+` FROM rifts WHERE session_id = ? ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list rifts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rifts []domain.Rift
	for rows.Next() {
		rift, err := scanRift(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan rift: %w", err)
		}
		rifts = append(rifts, rift)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rifts: %w", err)
	}
	return rifts, nil
}

// GetOpenRift returns the unresolved rift on a timeline, or ErrNotFound.
func (s *Store) GetOpenRift(ctx context.Context, timelineID string) (domain.Rift, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+riftColumns+` FROM rifts WHERE timeline_id = ? AND resolved = 0 LIMIT 1`, timelineID)
	rift, err := scanRift(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Rift{}, storage.ErrNotFound
		}
		return domain.Rift{}, fmt.Errorf("get open rift: %w", err)
	}
	return rift, nil
}
