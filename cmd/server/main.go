// Package main is the entry point for the manufacturer server.
//
// main stays minimal: load configuration, build the logger and the payment
// client, hand everything to internal/server, and block in Start. All real
// logic lives in the internal packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hasan-mia/manufacturer-server/internal/config"
	"github.com/hasan-mia/manufacturer-server/internal/payment"
	"github.com/hasan-mia/manufacturer-server/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// The token secret signs every credential the API issues. There is no
	// safe default; generate one with: openssl rand -hex 32
	if cfg.TokenSecret == "" {
		logger.Error("ACCESS_TOKEN_SECRET is required")
		os.Exit(1)
	}

	if cfg.StripeSecretKey == "" {
		logger.Warn("STRIPE_SECRET_KEY not set — payment intents will fail")
	}

	// Ensure the database directory exists before sqlite opens the file.
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, payment.NewClient(cfg.StripeSecretKey), logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
