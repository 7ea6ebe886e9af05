package config

import "time"

// Server holds the environment configuration for the game server binary.
type Server struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	// DatabasePath is the SQLite database file path. Empty selects the
	// in-memory store.
	DatabasePath string `env:"DATABASE_PATH" envDefault:"chronocore.db"`
	// ScorerURL is the base URL of the decision evaluation service. Empty
	// disables external scoring; every decision takes the neutral fallback.
	ScorerURL string `env:"SCORER_URL"`
	// ScorerTimeout bounds each evaluation call.
	ScorerTimeout time.Duration `env:"SCORER_TIMEOUT" envDefault:"5s"`
	// LogLevel sets the zerolog level (debug, info, warn, error).
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// ShutdownGrace bounds graceful HTTP shutdown.
	ShutdownGrace time.Duration `env:"SHUTDOWN_GRACE" envDefault:"10s"`
}
