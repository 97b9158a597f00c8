package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/hiroki-koketsu/quokka/internal/config"
	"github.com/hiroki-koketsu/quokka/internal/handler"
	"github.com/hiroki-koketsu/quokka/internal/repository"
	"github.com/hiroki-koketsu/quokka/internal/storage"
	"github.com/hiroki-koketsu/quokka/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

func main() {
	// Basic logger for startup, before telemetry is initialized
	startupLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		startupLogger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	startupLogger.Info("starting application",
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("data_file", cfg.DataFile),
	)

	ctx := context.Background()

	providers, logger, err := telemetry.Setup(ctx, telemetry.Options{
		Enabled:      cfg.TelemetryEnabled,
		ServiceName:  cfg.ServiceName,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Environment:  cfg.Environment,
		LogLevel:     cfg.LogLevel,
		LogOutput:    os.Stdout,
	})
	if err != nil {
		startupLogger.Error("failed to initialize telemetry", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := providers.Shutdown(ctx); err != nil {
			startupLogger.Error("failed to shutdown telemetry", slog.Any("error", err))
		}
	}()

	logger = logger.With(slog.String("instance.id", uuid.NewString()))

	list := repository.NewTaskList(cfg.Capacity)
	store := storage.NewStore(cfg.DataFile, cfg.Capacity)

	meter := otel.Meter(cfg.ServiceName)
	metrics, err := telemetry.NewMetrics(meter, list.Count)
	if err != nil {
		logger.Error("failed to create metrics", slog.Any("error", err))
		os.Exit(1)
	}

	dispatcher := handler.NewDispatcher(list, store, logger, metrics)
	if _, err := dispatcher.Load(ctx); err != nil {
		// Serve what was read; saves stay disabled for this run.
		logger.Warn("starting with a partially loaded task list", slog.Any("error", err))
	}

	taskHandler := handler.NewTaskHandler(dispatcher, logger, metrics)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint (excluded from tracing)
	r.Get("/health", taskHandler.Health)

	r.Mount("/api/v1", taskHandler.Routes())

	otelHandler := otelhttp.NewHandler(r, "http-server",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      otelHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("error", err))
	}

	if err := dispatcher.Save(shutdownCtx); err != nil {
		logger.Error("failed to save tasks on shutdown", slog.Any("error", err))
	}

	logger.Info("server stopped")
}
