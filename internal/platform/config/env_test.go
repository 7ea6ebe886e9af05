package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseEnvServerDefaults(t *testing.T) {
	var cfg Server

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected default listen addr :8080, got %q", cfg.ListenAddr)
	}
	if cfg.DatabasePath != "chronocore.db" {
		t.Fatalf("expected default database path, got %q", cfg.DatabasePath)
	}
	if cfg.ScorerTimeout != 5*time.Second {
		t.Fatalf("expected default scorer timeout 5s, got %v", cfg.ScorerTimeout)
	}
	if cfg.ScorerURL != "" {
		t.Fatalf("expected scorer url unset by default, got %q", cfg.ScorerURL)
	}
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("SCORER_URL", "http://scorer.local")
	t.Setenv("SCORER_TIMEOUT", "250ms")

	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.ListenAddr != ":9999" || cfg.ScorerURL != "http://scorer.local" || cfg.ScorerTimeout != 250*time.Millisecond {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("SCORER_TIMEOUT", "not-a-duration")

	var cfg Server
	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
