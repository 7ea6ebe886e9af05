// Package memory provides an in-memory Store used by tests and the dev
// server. Writes inside Transact are rolled back on error by snapshotting.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/chronocore/engine/internal/game/domain"
	"github.com/chronocore/engine/internal/game/event"
	"github.com/chronocore/engine/internal/storage"
)

// Store is an in-memory implementation of storage.Store.
type Store struct {
	mu   sync.Mutex
	data *data
}

// data holds all records. Methods on data assume the caller holds the lock.
type data struct {
	sessions     map[string]domain.Session
	participants map[string]domain.Participant
	timelines    map[string]domain.Timeline
	realms       map[string]domain.Realm
	rifts        map[string]domain.Rift
	events       map[string][]event.Event
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{data: newData()}
}

func newData() *data {
	return &data{
		sessions:     make(map[string]domain.Session),
		participants: make(map[string]domain.Participant),
		timelines:    make(map[string]domain.Timeline),
		realms:       make(map[string]domain.Realm),
		rifts:        make(map[string]domain.Rift),
		events:       make(map[string][]event.Event),
	}
}

// snapshot copies the record maps. Stored values are replaced wholesale on
// writes, so a shallow copy of each map is a sufficient rollback point.
func (d *data) snapshot() *data {
	snap := newData()
	for k, v := range d.sessions {
		snap.sessions[k] = v
	}
	for k, v := range d.participants {
		snap.participants[k] = v
	}
	for k, v := range d.timelines {
		snap.timelines[k] = v
	}
	for k, v := range d.realms {
		snap.realms[k] = v
	}
	for k, v := range d.rifts {
		snap.rifts[k] = v
	}
	for k, v := range d.events {
		events := make([]event.Event, len(v))
		copy(events, v)
		snap.events[k] = events
	}
	return snap
}

// Transact runs fn while holding the store lock, restoring the pre-call
// snapshot if fn fails.
func (s *Store) Transact(ctx context.Context, fn func(tx storage.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.data.snapshot()
	if err := fn(&txStore{data: s.data}); err != nil {
		s.data = snap
		return err
	}
	return nil
}

func (s *Store) PutSession(ctx context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.putSession(session)
}

func (s *Store) GetSession(ctx context.Context, id string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.getSession(id)
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.deleteSession(id)
}

func (s *Store) PutParticipant(ctx context.Context, participant domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.putParticipant(participant)
}

func (s *Store) GetParticipant(ctx context.Context, id string) (domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.getParticipant(id)
}

func (s *Store) ListParticipants(ctx context.Context, sessionID string) ([]domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.listParticipants(sessionID)
}

func (s *Store) DeleteParticipant(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.deleteParticipant(id)
}

func (s *Store) PutTimeline(ctx context.Context, timeline domain.Timeline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.putTimeline(timeline)
}

func (s *Store) GetTimeline(ctx context.Context, id string) (domain.Timeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.getTimeline(id)
}

func (s *Store) ListTimelines(ctx context.Context, sessionID string) ([]domain.Timeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.listTimelines(sessionID)
}

func (s *Store) PutRealm(ctx context.Context, realm domain.Realm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.putRealm(realm)
}

func (s *Store) GetRealm(ctx context.Context, id string) (domain.Realm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.getRealm(id)
}

func (s *Store) ListRealms(ctx context.Context, sessionID string) ([]domain.Realm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.listRealms(sessionID)
}

func (s *Store) PutRift(ctx context.Context, rift domain.Rift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.putRift(rift)
}

func (s *Store) GetRift(ctx context.Context, id string) (domain.Rift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.getRift(id)
}

func (s *Store) ListRifts(ctx context.Context, sessionID string) ([]domain.Rift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.listRifts(sessionID)
}

func (s *Store) GetOpenRift(ctx context.Context, timelineID string) (domain.Rift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.getOpenRift(timelineID)
}

func (s *Store) AppendEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.appendEvent(evt)
}

func (s *Store) ListEvents(ctx context.Context, sessionID string, limit int) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.listEvents(sessionID, limit)
}

// txStore exposes data without locking for use inside Transact.
type txStore struct {
	data *data
}

// Transact on a transaction view runs fn against the same unit of work.
func (t *txStore) Transact(ctx context.Context, fn func(tx storage.Store) error) error {
	return fn(t)
}

func (t *txStore) PutSession(ctx context.Context, session domain.Session) error {
	return t.data.putSession(session)
}

func (t *txStore) GetSession(ctx context.Context, id string) (domain.Session, error) {
	return t.data.getSession(id)
}

func (t *txStore) DeleteSession(ctx context.Context, id string) error {
	return t.data.deleteSession(id)
}

func (t *txStore) PutParticipant(ctx context.Context, participant domain.Participant) error {
	return t.data.putParticipant(participant)
}

func (t *txStore) GetParticipant(ctx context.Context, id string) (domain.Participant, error) {
	return t.data.getParticipant(id)
}

func (t *txStore) ListParticipants(ctx context.Context, sessionID string) ([]domain.Participant, error) {
	return t.data.listParticipants(sessionID)
}

func (t *txStore) DeleteParticipant(ctx context.Context, id string) error {
	return t.data.deleteParticipant(id)
}

func (t *txStore) PutTimeline(ctx context.Context, timeline domain.Timeline) error {
	return t.data.putTimeline(timeline)
}

func (t *txStore) GetTimeline(ctx context.Context, id string) (domain.Timeline, error) {
	return t.data.getTimeline(id)
}

func (t *txStore) ListTimelines(ctx context.Context, sessionID string) ([]domain.Timeline, error) {
	return t.data.listTimelines(sessionID)
}

func (t *txStore) PutRealm(ctx context.Context, realm domain.Realm) error {
	return t.data.putRealm(realm)
}

func (t *txStore) GetRealm(ctx context.Context, id string) (domain.Realm, error) {
	return t.data.getRealm(id)
}

func (t *txStore) ListRealms(ctx context.Context, sessionID string) ([]domain.Realm, error) {
	return t.data.listRealms(sessionID)
}

func (t *txStore) PutRift(ctx context.Context, rift domain.Rift) error {
	return t.data.putRift(rift)
}

func (t *txStore) GetRift(ctx context.Context, id string) (domain.Rift, error) {
	return t.data.getRift(id)
}

func (t *txStore) ListRifts(ctx context.Context, sessionID string) ([]domain.Rift, error) {
	return t.data.listRifts(sessionID)
}

func (t *txStore) GetOpenRift(ctx context.Context, timelineID string) (domain.Rift, error) {
	return t.data.getOpenRift(timelineID)
}

func (t *txStore) AppendEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	return t.data.appendEvent(evt)
}

func (t *txStore) ListEvents(ctx context.Context, sessionID string, limit int) ([]event.Event, error) {
	return t.data.listEvents(sessionID, limit)
}

func (d *data) putSession(session domain.Session) error {
	d.sessions[session.ID] = session
	return nil
}

func (d *data) getSession(id string) (domain.Session, error) {
	session, ok := d.sessions[id]
	if !ok {
		return domain.Session{}, storage.ErrNotFound
	}
	return session, nil
}

func (d *data) deleteSession(id string) error {
	if _, ok := d.sessions[id]; !ok {
		return storage.ErrNotFound
	}
	delete(d.sessions, id)
	for participantID, participant := range d.participants {
		if participant.SessionID == id {
			delete(d.participants, participantID)
		}
	}
	for timelineID, timeline := range d.timelines {
		if timeline.SessionID == id {
			delete(d.timelines, timelineID)
			for realmID, realm := range d.realms {
				if realm.TimelineID == timelineID {
					delete(d.realms, realmID)
				}
			}
		}
	}
	for riftID, rift := range d.rifts {
		if rift.SessionID == id {
			delete(d.rifts, riftID)
		}
	}
	delete(d.events, id)
	return nil
}

func (d *data) putParticipant(participant domain.Participant) error {
	d.participants[participant.ID] = participant
	return nil
}

func (d *data) getParticipant(id string) (domain.Participant, error) {
	participant, ok := d.participants[id]
	if !ok {
		return domain.Participant{}, storage.ErrNotFound
	}
	return participant, nil
}

func (d *data) listParticipants(sessionID string) ([]domain.Participant, error) {
	var participants []domain.Participant
	for _, participant := range d.participants {
		if participant.SessionID == sessionID {
			participants = append(participants, participant)
		}
	}
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].TurnOrder < participants[j].TurnOrder
	})
	return participants, nil
}

func (d *data) deleteParticipant(id string) error {
	if _, ok := d.participants[id]; !ok {
		return storage.ErrNotFound
	}
	delete(d.participants, id)
	return nil
}

func (d *data) putTimeline(timeline domain.Timeline) error {
	d.timelines[timeline.ID] = timeline
	return nil
}

func (d *data) getTimeline(id string) (domain.Timeline, error) {
	timeline, ok := d.timelines[id]
	if !ok {
		return domain.Timeline{}, storage.ErrNotFound
	}
	return timeline, nil
}

func (d *data) listTimelines(sessionID string) ([]domain.Timeline, error) {
	var timelines []domain.Timeline
	for _, timeline := range d.timelines {
		if timeline.SessionID == sessionID {
			timelines = append(timelines, timeline)
		}
	}
	sort.Slice(timelines, func(i, j int) bool {
		return timelines[i].ID < timelines[j].ID
	})
	return timelines, nil
}

func (d *data) putRealm(realm domain.Realm) error {
	d.realms[realm.ID] = realm
	return nil
}

func (d *data) getRealm(id string) (domain.Realm, error) {
	realm, ok := d.realms[id]
	if !ok {
		return domain.Realm{}, storage.ErrNotFound
	}
	return realm, nil
}

func (d *data) listRealms(sessionID string) ([]domain.Realm, error) {
	timelineIDs := make(map[string]struct{})
	for _, timeline := range d.timelines {
		if timeline.SessionID == sessionID {
			timelineIDs[timeline.ID] = struct{}{}
		}
	}
	var realms []domain.Realm
	for _, realm := range d.realms {
		if _, ok := timelineIDs[realm.TimelineID]; ok {
			realms = append(realms, realm)
		}
	}
	sort.Slice(realms, func(i, j int) bool {
		return realms[i].ID < realms[j].ID
	})
	return realms, nil
}

func (d *data) putRift(rift domain.Rift) error {
	d.rifts[rift.ID] = rift
	return nil
}

func (d *data) getRift(id string) (domain.Rift, error) {
	rift, ok := d.rifts[id]
	if !ok {
		return domain.Rift{}, storage.ErrNotFound
	}
	return rift, nil
}

func (d *data) listRifts(sessionID string) ([]domain.Rift, error) {
	var rifts []domain.Rift
	for _, rift := range d.rifts {
		if rift.SessionID == sessionID {
			rifts = append(rifts, rift)
		}
	}
	sort.Slice(rifts, func(i, j int) bool {
		return rifts[i].ID < rifts[j].ID
	})
	return rifts, nil
}

func (d *data) getOpenRift(timelineID string) (domain.Rift, error) {
	for _, rift := range d.rifts {
		if rift.TimelineID == timelineID && !rift.Resolved {
			return rift, nil
		}
	}
	return domain.Rift{}, storage.ErrNotFound
}

func (d *data) appendEvent(evt event.Event) (event.Event, error) {
	if !evt.Type.IsValid() {
		return event.Event{}, fmt.Errorf("append event: unsupported type %q", evt.Type)
	}
	evt.Seq = uint64(len(d.events[evt.SessionID]) + 1)
	d.events[evt.SessionID] = append(d.events[evt.SessionID], evt)
	return evt, nil
}

func (d *data) listEvents(sessionID string, limit int) ([]event.Event, error) {
	journal := d.events[sessionID]
	if limit <= 0 || limit > len(journal) {
		limit = len(journal)
	}
	events := make([]event.Event, 0, limit)
	for i := len(journal) - 1; i >= 0 && len(events) < limit; i-- {
		events = append(events, journal[i])
	}
	return events, nil
}
