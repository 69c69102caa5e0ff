// Retention - Customer churn risk, segmentation and retention actions.
// Copyright (c) 2025 opensource.finance
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/opensource-finance/retention/internal/api"
	"github.com/opensource-finance/retention/internal/cache"
	"github.com/opensource-finance/retention/internal/decision"
	"github.com/opensource-finance/retention/internal/domain"
	"github.com/opensource-finance/retention/internal/model"
	"github.com/opensource-finance/retention/internal/repository"
	"github.com/opensource-finance/retention/internal/rules"
	"github.com/opensource-finance/retention/internal/segment"
	"github.com/opensource-finance/retention/internal/telemetry"
	"go.opentelemetry.io/otel"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Load configuration
	cfg, err := domain.LoadConfig(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogger(cfg)

	slog.Info("starting retention",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)
	slog.Info("configuration loaded",
		"model_source", cfg.Model.Source,
		"cache", cfg.Cache.Type,
		"tracing", cfg.Tracing.Enabled,
		"allowed_origins", cfg.Server.AllowedOrigins,
	)

	// Install the tracer provider before anything starts spans
	tp, shutdownTracing := telemetry.NewTracerProvider(cfg.Tracing)
	otel.SetTracerProvider(tp)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Load the model bundle once; it is read-only from here on
	bundle, repo, err := loadBundle(ctx, cfg)
	if err != nil {
		slog.Error("failed to load model bundle", "error", err)
		os.Exit(1)
	}
	if repo != nil {
		defer repo.Close()
	}
	slog.Info("model bundle loaded",
		"name", bundle.Name,
		"version", bundle.Version,
		"features", len(bundle.Scaler.Features),
		"clusters", len(bundle.KMeans.Centroids),
	)

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	if cacheImpl != nil {
		defer cacheImpl.Close()
	}
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize Classifier
	classifier, err := segment.NewClassifier(&bundle.Scaler, &bundle.KMeans,
		segment.WithName(bundle.Name),
		segment.WithVersion(bundle.Version),
		segment.WithFingerprint(bundle.Fingerprint()),
		segment.WithCache(cacheImpl, cfg.Cache.AssignmentTTL),
	)
	if err != nil {
		slog.Error("failed to initialize classifier", "error", err)
		os.Exit(1)
	}

	// Initialize input constraints
	engine, err := rules.NewDefaultEngine()
	if err != nil {
		slog.Error("failed to initialize constraint engine", "error", err)
		os.Exit(1)
	}
	slog.Info("constraint engine initialized", "constraints", len(engine.Constraints()))

	processor, err := decision.NewProcessor(engine, classifier)
	if err != nil {
		slog.Error("failed to initialize decision processor", "error", err)
		os.Exit(1)
	}

	info := api.ModelInfo{
		Name:     bundle.Name,
		Version:  bundle.Version,
		Source:   cfg.Model.Source,
		Features: classifier.FeatureNames(),
		Clusters: len(bundle.KMeans.Centroids),
	}

	var artifactRepo domain.ArtifactRepository
	if repo != nil {
		artifactRepo = repo
	}

	// Initialize Server
	srv := api.NewServer(cfg.Server, processor, info, artifactRepo, cacheImpl, Version)

	// Start Server in goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("retention is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, info, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("failed to stop tracer provider", "error", err)
	}

	slog.Info("retention shutdown complete")
}

func setupLogger(cfg *domain.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler).With("service", cfg.Tracing.ServiceName))
}

// loadBundle reads the bundle from a file, or from the artifact repository
// when the model source is a database. The repository is returned open so
// the health check can ping it.
func loadBundle(ctx context.Context, cfg *domain.Config) (*model.Bundle, *repository.SQLRepository, error) {
	if cfg.Model.Source == domain.ModelSourceFile {
		bundle, err := model.LoadFile(cfg.Model.Path)
		if err != nil {
			return nil, nil, err
		}
		return bundle, nil, nil
	}

	repoCfg := cfg.Repository
	repoCfg.Driver = cfg.Model.Source

	repo, err := repository.New(repoCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize repository: %w", err)
	}

	bundle, err := model.LoadFromRepository(ctx, repo, cfg.Model.Name, cfg.Model.Version)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}
	return bundle, repo, nil
}

func printBanner(cfg *domain.Config, info api.ModelInfo, version string) {
	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════╗")
	fmt.Println("  ║               RETENTION                   ║")
	fmt.Println("  ║   Customer Segmentation & Churn Risk      ║")
	fmt.Println("  ╚═══════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Model:    %s@%s (%s)\n", info.Name, info.Version, info.Source)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /predict   - Score, segment and advise one customer")
	fmt.Println("    GET  /segments  - List customer segments")
	fmt.Println("    GET  /model     - Loaded model information")
	fmt.Println("    GET  /health    - Health check")
	fmt.Println("    GET  /ready     - Readiness check")
	fmt.Println()
}
