package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/chronocore/engine/internal/game/event"
)

// Hub fans committed session events out to websocket subscribers. Each
// subscriber holds a buffered channel; a subscriber that cannot keep up is
// dropped rather than blocking the engine's commit path.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]map[*subscriber]struct{}
	logger      zerolog.Logger
}

type subscriber struct {
	events chan event.Event
}

const subscriberBuffer = 32

// NewHub creates an event hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]map[*subscriber]struct{}),
		logger:      logger,
	}
}

// Publish delivers an event to every subscriber of its session. Intended to
// be registered as the engine's event sink.
func (h *Hub) Publish(evt event.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subscribers[evt.SessionID] {
		select {
		case sub.events <- evt:
		default:
			// Slow consumer; close its channel and let the writer exit.
			close(sub.events)
			delete(h.subscribers[evt.SessionID], sub)
		}
	}
}

func (h *Hub) subscribe(sessionID string) *subscriber {
	sub := &subscriber{events: make(chan event.Event, subscriberBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[sessionID] == nil {
		h.subscribers[sessionID] = make(map[*subscriber]struct{})
	}
	h.subscribers[sessionID][sub] = struct{}{}
	return sub
}

func (h *Hub) unsubscribe(sessionID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.subscribers[sessionID]; ok {
		if _, ok := subs[sub]; ok {
			delete(subs, sub)
			close(sub.events)
		}
		if len(subs) == 0 {
			delete(h.subscribers, sessionID)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleEventFeed upgrades the connection and streams the session's events
// as they are appended. The read side is drained only to detect the close.
func (s *Server) handleEventFeed(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDParam(r)
	if _, err := s.engine.GetSessionView(r.Context(), sessionID); err != nil {
		writeError(w, err)
		return
	}

	// Subscribe before completing the handshake so no event published after
	// the upgrade is missed.
	sub := s.hub.subscribe(sessionID)
	defer s.hub.unsubscribe(sessionID, sub)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case evt, ok := <-sub.events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(renderEvent(evt)); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
