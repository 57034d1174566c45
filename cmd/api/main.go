// Package main is the entry point for the scenario simulation API server.
//
// It loads the configuration, loads the pre-trained artifacts and the
// historical dataset (both non-fatal when absent: the service starts
// degraded and reports readiness flags), builds the HTTP server with the
// core chassis, and listens until a shutdown signal arrives.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"econsim/internal/api/handlers"
	"econsim/internal/artifact"
	"econsim/internal/auth"
	"econsim/internal/config"
	"econsim/internal/core"
	"econsim/internal/dataset"
	"econsim/internal/scenario"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("scenario API starting",
		"environment", cfg.Environment,
		"port", cfg.Server.Port,
	)

	// Load the pre-trained artifacts. Absence is not fatal: the service runs
	// with readiness flags down and simulate answers with a readiness error.
	set, modelRes, encRes := artifact.Load(cfg.Artifacts)
	logArtifact(logger, "model", modelRes)
	logArtifact(logger, "encoder", encRes)
	store := artifact.NewStore(set)

	source := dataset.NewSource(cfg.Dataset, logger)

	verifier := auth.NewVerifier(cfg.Auth)
	adminChecker := auth.NewAdminKeyChecker(cfg.Security)

	simService := scenario.NewService(store, logger)

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.Verifier = verifier
	srv.HealthProbes = []core.HealthProbe{
		probe{"model", func() bool { m, _ := simService.Ready(); return m }},
		probe{"encoder", func() bool { _, e := simService.Ready(); return e }},
		probe{"data", source.Ready},
	}

	dataHandler := handlers.NewDataHandler(source, logger)
	scenarioHandler := handlers.NewScenarioHandler(simService, logger)
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		dataHandler.RegisterRoutes,
		scenarioHandler.RegisterRoutes,
	)

	if adminChecker.Configured() {
		reload := func() handlers.ReloadReport {
			next, mRes, eRes := artifact.Load(cfg.Artifacts)
			store.Replace(next)
			logArtifact(logger, "model", mRes)
			logArtifact(logger, "encoder", eRes)

			datasetOK := true
			if err := source.Reload(); err != nil {
				logger.Warn("dataset reload failed", "error", err)
				datasetOK = false
			}
			return handlers.ReloadReport{
				ModelLoaded:   mRes.Loaded,
				EncoderLoaded: eRes.Loaded,
				DatasetLoaded: datasetOK,
			}
		}
		adminHandler := handlers.NewAdminHandler(adminChecker, reload, logger)
		srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, adminHandler.RegisterRoutes)
	}

	srv.MountRoutes()

	return runHTTPServer(srv, cfg, logger)
}

// probe adapts a name and a readiness closure to core.HealthProbe.
type probe struct {
	name string
	fn   func() bool
}

func (p probe) Name() string { return p.name }
func (p probe) Ready() bool  { return p.fn() }

var _ core.HealthProbe = probe{}

func logArtifact(logger *slog.Logger, kind string, res artifact.LoadResult) {
	if res.Loaded {
		logger.Info(kind+" artifact loaded", "path", res.Path)
		return
	}
	logger.Warn(kind+" artifact not loaded", "path", res.Path, "error", res.Err)
}

// runHTTPServer starts the server with graceful shutdown on SIGINT/SIGTERM.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger configured for the given level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}
