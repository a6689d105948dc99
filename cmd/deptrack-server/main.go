// Package main provides the entry point for the deptrack MCP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/raphaelgruber/deptrack/internal/backend"
	"github.com/raphaelgruber/deptrack/internal/config"
	"github.com/raphaelgruber/deptrack/internal/metrics"
	"github.com/raphaelgruber/deptrack/internal/server"
	"github.com/raphaelgruber/deptrack/internal/service"
	"github.com/raphaelgruber/deptrack/internal/telemetry"
	"github.com/raphaelgruber/deptrack/internal/tools"
)

const version = "0.1.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger, _ := config.SetupLogger("", 0)
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("deptrack starting",
		"version", version,
		"store", cfg.Store,
		"transport", cfg.Transport,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Tracing
	traceOut, err := telemetry.Writer(cfg.Trace)
	if err != nil {
		logger.Error("invalid trace mode", "error", err)
		os.Exit(1)
	}
	if cfg.Transport == config.TransportStdio && traceOut == os.Stdout {
		logger.Error("stdout tracing conflicts with the stdio transport")
		os.Exit(1)
	}
	shutdownTracing, err := telemetry.Init(ctx, "deptrack-server", version, traceOut)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	// Open store
	st, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("closing store")
		_ = st.Close(context.Background())
	}()

	svc := service.NewDependencyService(st,
		service.WithStalePolicy(cfg.StalePolicy),
		service.WithLogger(logger),
	)

	// Seed sample data into an empty store
	if cfg.Seed {
		entries, err := loadSeed(cfg.SeedFile)
		if err != nil {
			logger.Error("failed to load seed data", "error", err)
			os.Exit(1)
		}
		if _, err := svc.Seed(ctx, entries); err != nil {
			logger.Error("failed to seed store", "error", err)
			os.Exit(1)
		}
	}

	// Create and setup server
	collector := metrics.NewCollector()
	srv := server.New(version, logger, collector)
	srv.Setup()

	// Register tools
	deps := &tools.Dependencies{
		Service: svc,
		Metrics: collector,
		Logger:  logger,
	}
	tools.RegisterAll(srv.MCPServer(), deps)
	logger.Info("tools registered")

	switch cfg.Transport {
	case config.TransportStdio:
		logger.Info("server ready, awaiting connections on stdio")
		err = srv.Run(ctx)
	default:
		var h http.Handler
		h, err = srv.Handler(server.AuthConfig{
			Tokens:              cfg.APITokens,
			Scopes:              cfg.RequiredScopes,
			ResourceMetadataURL: cfg.ResourceMetadataURL,
			Disabled:            cfg.AuthDisabled,
		})
		if err == nil {
			if cfg.AuthDisabled {
				logger.Warn("bearer token authentication is disabled")
			}
			err = srv.ListenAndServe(ctx, cfg.Addr(), h)
		}
	}
	if err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

func loadSeed(path string) ([]service.SeedEntry, error) {
	if path == "" {
		return service.DefaultSeed()
	}
	return service.LoadSeedFile(path)
}
