package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gazestack/gazestack/internal/alerts"
	"github.com/gazestack/gazestack/internal/api"
	"github.com/gazestack/gazestack/internal/auth"
	"github.com/gazestack/gazestack/internal/config"
	"github.com/gazestack/gazestack/internal/ingest"
	"github.com/gazestack/gazestack/internal/session"
	"github.com/gazestack/gazestack/internal/store"
	"github.com/gazestack/gazestack/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("gazestack-server starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"snapshot_ttl", cfg.Server.SnapshotTTL,
		"calibration_frames", cfg.Engine.CalibrationFrames,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// One tracker per connected detector, all sharing the configured tuning.
	sessions := session.NewManager(cfg.Engine.Tuning())

	// Metrics store with background TTL eviction.
	st := store.New(cfg.Server.SnapshotTTL)
	go st.Run(ctx)

	// Alerts engine — evaluates rules on every ingested frame.
	alertEngine := alerts.New(cfg.Alerts)

	// Dashboard hub — pushes the full session snapshot on an interval.
	hub := ws.New(func() api.SnapshotResponse {
		return api.BuildSnapshot(sessions, st)
	}, cfg.Server.BroadcastInterval)
	go hub.Run(ctx)

	// Live tuning: config file edits fan out to every open session.
	go func() {
		if err := config.Watch(ctx, *configPath, func(next *config.Config) {
			sessions.SetTuning(next.Engine.Tuning())
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// Combined HTTP server: REST API, metrics, detector ingest, dashboard
	// stream — all on HTTPPort.
	protect := auth.Middleware(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.EffectiveHeader(),
		cfg.Server.Auth.Key(),
	)

	mux := http.NewServeMux()
	mux.Handle("/api/", protect(api.New(sessions, st, alertEngine)))
	mux.Handle("/metrics", api.NewMetricsHandler(sessions, alertEngine))
	mux.Handle("/ws/ingest", ingest.New(sessions, st, alertEngine))
	mux.Handle("/ws/stream", hub)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: mux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("gazestack-server shutting down")
	srv.Shutdown(context.Background()) //nolint:errcheck
}
