// Command profile loads the car price dataset, prints its shape, missing
// values and price statistics, and writes CSV and Parquet copies of it.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/carprices/internal/config"
	"github.com/JonMunkholm/carprices/internal/jobs"
	"github.com/JonMunkholm/carprices/internal/logging"
)

func main() {
	// Load .env file if it exists; real environment variables win
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ctx = logging.NewContext(ctx, uuid.NewString())
	logger := logging.FromContext(ctx)
	logger.Debug("configuration loaded", "config", cfg.String())

	if err := jobs.ProfileExport(ctx, cfg, os.Stdout); err != nil {
		logger.Error("profile job failed", "error", err)
		stop()
		os.Exit(1)
	}
	stop()
}
