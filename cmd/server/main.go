package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/chronocore/engine/internal/app/server"
	"github.com/chronocore/engine/internal/platform/config"
)

func main() {
	var cfg config.Server
	if err := config.ParseEnv(&cfg); err != nil {
		config.Exitf("parse config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg); err != nil {
		config.Exitf("failed to serve: %v", err)
	}
}
