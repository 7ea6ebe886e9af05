// Package engine implements the session engine: session lifecycle, turn
// rotation and decision resolution. All mutating operations against one
// session are serialized by a per-session lock; operations on different
// sessions run in parallel.
package engine

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/chronocore/engine/internal/game/domain"
	"github.com/chronocore/engine/internal/game/event"
	"github.com/chronocore/engine/internal/game/scoring"
	"github.com/chronocore/engine/internal/storage"
)

// Engine orchestrates all session state transitions.
type Engine struct {
	store       storage.Store
	scorer      scoring.Scorer
	locks       *sessionLocks
	clock       func() time.Time
	idGenerator func() (string, error)
	newRand     func() *rand.Rand
	logger      zerolog.Logger
	eventSink   func(event.Event)
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine clock.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithIDGenerator overrides the engine's ID generator.
func WithIDGenerator(idGenerator func() (string, error)) Option {
	return func(e *Engine) {
		if idGenerator != nil {
			e.idGenerator = idGenerator
		}
	}
}

// WithRandSource overrides the random source used for board initialization.
func WithRandSource(newRand func() *rand.Rand) Option {
	return func(e *Engine) {
		if newRand != nil {
			e.newRand = newRand
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithEventSink registers a callback invoked with every event after its
// transaction commits. Used by the live event feed.
func WithEventSink(sink func(event.Event)) Option {
	return func(e *Engine) {
		e.eventSink = sink
	}
}

// New creates a session engine backed by the given store and scorer.
func New(store storage.Store, scorer scoring.Scorer, opts ...Option) *Engine {
	engine := &Engine{
		store:       store,
		scorer:      scorer,
		locks:       newSessionLocks(),
		clock:       time.Now,
		idGenerator: domain.NewID,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// newEvent builds an event envelope with a generated ID and timestamp.
func (e *Engine) newEvent(sessionID string, eventType event.Type, turn int) (event.Event, error) {
	eventID, err := e.idGenerator()
	if err != nil {
		return event.Event{}, err
	}
	return event.Event{
		ID:        eventID,
		SessionID: sessionID,
		Type:      eventType,
		Turn:      turn,
		CreatedAt: e.clock().UTC(),
	}, nil
}

// emit hands committed events to the registered sink.
func (e *Engine) emit(events ...event.Event) {
	if e.eventSink == nil {
		return
	}
	for _, evt := range events {
		e.eventSink(evt)
	}
}
