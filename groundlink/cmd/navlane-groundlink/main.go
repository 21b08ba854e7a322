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

	"github.com/navlane/navlane/groundlink/internal/alerts"
	"github.com/navlane/navlane/groundlink/internal/api"
	"github.com/navlane/navlane/groundlink/internal/auth"
	"github.com/navlane/navlane/groundlink/internal/config"
	"github.com/navlane/navlane/groundlink/internal/receiver"
	"github.com/navlane/navlane/groundlink/internal/store"
	"github.com/navlane/navlane/groundlink/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	uiDir := flag.String("ui-dir", "", "serve console static files from this directory; leave empty to disable")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("navlane-groundlink starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Groundlink.HTTPPort,
		"auth_mode", cfg.Groundlink.Auth.Mode,
		"lane_ttl", cfg.Groundlink.Lanes.TTL,
		"alert_rules", len(cfg.Groundlink.Alerts.Rules),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Lane report store with background TTL eviction.
	st := store.New(cfg.Groundlink.Lanes.TTL)
	go st.Run(ctx)

	// Alert engine, evaluates rules on every accepted report.
	alertEngine := alerts.New(cfg.Groundlink.Alerts)

	// WebSocket hub broadcasting lane snapshots to console clients.
	hub := ws.New(st, cfg.Groundlink.BroadcastInterval)
	go hub.Run(ctx)

	// Ingest is the only authenticated surface: monitors push reports here.
	// The console endpoints stay open for local ground station use.
	ingest := auth.APIKeyMiddleware(
		cfg.Groundlink.Auth.Mode,
		cfg.Groundlink.Auth.EffectiveHeader(),
		cfg.Groundlink.Auth.Key(),
		receiver.New(st, alertEngine),
	)

	mux := http.NewServeMux()
	mux.Handle("/ingest/v1/", ingest)
	mux.Handle("/api/", api.New(st, alertEngine))
	mux.Handle("/ws/stream", hub)

	// Optional: serve a pre-built console UI from a local directory.
	// The "/" catch-all serves index.html for any unknown path (SPA routing).
	if *uiDir != "" {
		fs := http.FileServer(http.Dir(*uiDir))
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			path := *uiDir + r.URL.Path
			if _, err := os.Stat(path); os.IsNotExist(err) {
				http.ServeFile(w, r, *uiDir+"/index.html")
				return
			}
			fs.ServeHTTP(w, r)
		})
		slog.Info("serving console static files", "dir", *uiDir)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Groundlink.HTTPPort),
		Handler: mux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Groundlink.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("navlane-groundlink shutting down")
	srv.Shutdown(context.Background()) //nolint:errcheck
}
