// Package main is the entry point for the code execution gateway.
//
// main stays minimal: read configuration, build the logger, hand off to
// internal/server. All actual wiring lives in imported packages.
package main

import (
	"log/slog"
	"os"

	"github.com/sakif/coderunner/internal/config"
	"github.com/sakif/coderunner/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// Provider credentials and ordering live in an optional TOML file;
	// environment variables override it either way.
	configPath := os.Getenv("PROVIDERS_FILE")
	if configPath == "" {
		configPath = "providers.toml"
	}

	cfg, err := config.Load(configPath, logger)
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
