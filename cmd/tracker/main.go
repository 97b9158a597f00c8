package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/hiroki-koketsu/quokka/internal/config"
	"github.com/hiroki-koketsu/quokka/internal/console"
	"github.com/hiroki-koketsu/quokka/internal/handler"
	"github.com/hiroki-koketsu/quokka/internal/repository"
	"github.com/hiroki-koketsu/quokka/internal/storage"
	"github.com/hiroki-koketsu/quokka/internal/telemetry"
	"go.opentelemetry.io/otel"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code once deferred cleanup has run.
func run() int {
	startupLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		startupLogger.Error("failed to load configuration", slog.Any("error", err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	level := cfg.LogLevel
	if level == "" {
		level = "warn"
	}
	providers, logger, err := telemetry.Setup(ctx, telemetry.Options{
		Enabled:      cfg.TelemetryEnabled,
		ServiceName:  cfg.ServiceName,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Environment:  cfg.Environment,
		LogLevel:     level,
		LogOutput:    os.Stderr,
	})
	if err != nil {
		startupLogger.Error("failed to initialize telemetry", slog.Any("error", err))
		return 1
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			startupLogger.Error("failed to shutdown telemetry", slog.Any("error", err))
		}
	}()

	logger = logger.With(slog.String("session.id", uuid.NewString()))

	list := repository.NewTaskList(cfg.Capacity)
	store := storage.NewStore(cfg.DataFile, cfg.Capacity)

	metrics, err := telemetry.NewMetrics(otel.Meter(cfg.ServiceName), list.Count)
	if err != nil {
		logger.Error("failed to create metrics", slog.Any("error", err))
		return 1
	}

	dispatcher := handler.NewDispatcher(list, store, logger, metrics)
	term := console.New(dispatcher, os.Stdin, os.Stdout, "Quokka")

	existed := store.Exists()
	failures, loadErr := dispatcher.Load(ctx)
	term.ReportLoad(console.LoadReport{
		FileExists: existed,
		Count:      int(list.Count()),
		Failures:   failures,
		Err:        loadErr,
	})

	if err := term.Run(ctx); err != nil {
		logger.Error("session ended unexpectedly", slog.Any("error", err))
		// Keep whatever the user entered before the interruption.
		if err := dispatcher.Save(context.Background()); err != nil {
			logger.Error("failed to save tasks", slog.Any("error", err))
		}
		return 1
	}
	return 0
}
