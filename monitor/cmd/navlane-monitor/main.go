package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/navlane/navlane/monitor/internal/arbiter"
	"github.com/navlane/navlane/monitor/internal/config"
	"github.com/navlane/navlane/monitor/internal/ekf"
	"github.com/navlane/navlane/monitor/internal/feed"
	"github.com/navlane/navlane/monitor/internal/security"
	"github.com/navlane/navlane/monitor/internal/telemetry"
	"github.com/navlane/navlane/monitor/internal/uplink"
)

// lanePipeline ties one configured lane to its feed and core.
type lanePipeline struct {
	cfg  config.Lane
	feed feed.Feed
	core *ekf.Core

	lastErr error
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("navlane-monitor starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"groundlink_endpoint", cfg.Monitor.GroundlinkEndpoint,
		"lanes", len(cfg.Monitor.Lanes),
		"poll_interval", cfg.Monitor.PollInterval,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Build lane pipelines from the initial config. Hot-reload updates logging
	// only; rebuilding feeds on reload needs a lane state handover story first.
	var lanes []*lanePipeline
	for _, lane := range cfg.Monitor.Lanes {
		f, err := feed.New(lane.ID, lane.Source)
		if err != nil {
			slog.Error("skipping lane, could not build feed", "lane", lane.ID, "err", err)
			continue
		}
		reg := ekf.StaticRegistry{
			AirspeedSensors: cfg.Monitor.Vehicle.AirspeedSensors,
			AirspeedLane:    lane.Affinity.Airspeed,
			MagLane:         lane.Affinity.Mag,
			ZeroSideslip:    cfg.Monitor.Vehicle.AssumeZeroSideslip,
		}
		lanes = append(lanes, &lanePipeline{cfg: lane, feed: f, core: ekf.NewCore(reg)})
		slog.Info("registered lane", "id", lane.ID, "type", lane.Source.Type, "endpoint", lane.Source.Endpoint)
	}

	if len(lanes) == 0 {
		slog.Warn("no lanes configured, monitor will idle")
	}

	// Advisory TLS certificate sweep over the HTTPS lane endpoints.
	security.SweepLanes(ctx, cfg.Monitor.Lanes)

	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			slog.Info("config hot-reloaded", "lanes", len(updated.Monitor.Lanes))
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	up, err := uplink.New(cfg.Monitor)
	if err != nil {
		slog.Error("failed to build uplink", "err", err)
		os.Exit(1)
	}
	go up.Run(ctx)

	arb := arbiter.New(cfg.Monitor.Arbiter)

	// Single loop owns all lane cores: polling, selection and reporting stay
	// on one goroutine so core access never needs a lock.
	go func() {
		pollTicker := time.NewTicker(cfg.Monitor.PollInterval)
		defer pollTicker.Stop()
		reportTicker := time.NewTicker(cfg.Monitor.ReportInterval)
		defer reportTicker.Stop()
		for {
			select {
			case <-ctx.Done():
				return

			case t := <-pollTicker.C:
				cands := make([]arbiter.Candidate, 0, len(lanes))
				for _, p := range lanes {
					s, err := p.feed.Fetch(ctx)
					p.lastErr = err
					if err != nil {
						slog.Warn("lane fetch error", "lane", p.cfg.ID, "err", err)
					} else {
						p.core.Apply(s, t)
					}
					cands = append(cands, arbiter.Candidate{
						ID:          p.cfg.ID,
						Healthy:     p.core.Healthy(),
						ErrorScore:  p.core.ErrorScore(),
						HaveSample:  p.core.HaveSample(),
						LastApplied: p.core.AppliedAt(),
					})
				}
				arb.Evaluate(cands)

			case t := <-reportTicker.C:
				primary := arb.Primary()
				for _, p := range lanes {
					r := telemetry.BuildReport(p.cfg.ID, p.core, p.cfg.ID == primary, p.lastErr, t)
					up.Ship(r)
				}
			}
		}
	}()

	<-ctx.Done()
	slog.Info("navlane-monitor shutting down")
}
