// Package server assembles the game server: storage, scorer, engine and the
// HTTP surface, with graceful shutdown on context cancellation.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/chronocore/engine/internal/api"
	"github.com/chronocore/engine/internal/game/engine"
	"github.com/chronocore/engine/internal/game/scoring"
	"github.com/chronocore/engine/internal/platform/config"
	"github.com/chronocore/engine/internal/storage"
	"github.com/chronocore/engine/internal/storage/memory"
	"github.com/chronocore/engine/internal/storage/sqlite"
)

// Run starts the game server and blocks until the context ends or the
// listener fails.
func Run(ctx context.Context, cfg config.Server) error {
	logger := newLogger(cfg.LogLevel)

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var scorer scoring.Scorer
	if cfg.ScorerURL != "" {
		client, err := scoring.NewClient(cfg.ScorerURL, scoring.WithTimeout(cfg.ScorerTimeout))
		if err != nil {
			return fmt.Errorf("configure scorer: %w", err)
		}
		scorer = client
		logger.Info().Str("url", cfg.ScorerURL).Dur("timeout", cfg.ScorerTimeout).Msg("external scorer configured")
	} else {
		logger.Info().Msg("no scorer configured, decisions take the neutral fallback")
	}

	hub := api.NewHub(logger.With().Str("component", "ws").Logger())
	eng := engine.New(store, scorer,
		engine.WithLogger(logger.With().Str("component", "engine").Logger()),
		engine.WithEventSink(hub.Publish),
	)
	apiServer := api.NewServer(eng, hub, logger.With().Str("component", "api").Logger())

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: apiServer.Router(),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("server listening")
		serveErr <- httpServer.ListenAndServe()
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("graceful shutdown failed")
		}
		return handleErr(<-serveErr)
	case err := <-serveErr:
		return handleErr(err)
	}
}

func openStore(cfg config.Server, logger zerolog.Logger) (storage.Store, func(), error) {
	if cfg.DatabasePath == "" {
		logger.Info().Msg("using in-memory store")
		return memory.New(), func() {}, nil
	}

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite store: %w", err)
	}
	logger.Info().Str("path", cfg.DatabasePath).Msg("using sqlite store")
	return store, func() { _ = store.Close() }, nil
}

func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(parsed).With().Timestamp().Logger()
}
