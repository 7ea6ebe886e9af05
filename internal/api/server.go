package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/chronocore/engine/internal/game/engine"
)

// Server wires the session engine to its HTTP surface.
type Server struct {
	engine *engine.Engine
	hub    *Hub
	logger zerolog.Logger
}

// NewServer creates the HTTP server. The hub should be registered as the
// engine's event sink so the websocket feed sees committed events.
func NewServer(eng *engine.Engine, hub *Hub, logger zerolog.Logger) *Server {
	return &Server{
		engine: eng,
		hub:    hub,
		logger: logger,
	}
}

// Router builds the chi router with the full route table.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/join", s.handleJoin)
			r.Post("/leave", s.handleLeave)
			r.Post("/ready", s.handleReady)
			r.Post("/start", s.handleStart)
			r.Post("/abandon", s.handleAbandon)
			r.Post("/end-turn", s.handleEndTurn)
			r.Post("/decisions", s.handleDecision)
			r.Post("/realms/{realmID}/claim", s.handleClaimRealm)
			r.Post("/realms/{realmID}/develop", s.handleDevelopRealm)
			r.Post("/rifts/{riftID}/resolve", s.handleResolveRift)
			r.Get("/events", s.handleListEvents)
			r.Get("/events/ws", s.handleEventFeed)
		})
	})

	return r
}

// requestLogger logs one line per request with latency and status.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func sessionIDParam(r *http.Request) string {
	return chi.URLParam(r, "sessionID")
}
