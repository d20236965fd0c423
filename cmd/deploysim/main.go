package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/shiftlab/deploysim/internal/metrics"
	"github.com/shiftlab/deploysim/internal/service/health"
	"github.com/shiftlab/deploysim/internal/service/orchestrator"
	"github.com/shiftlab/deploysim/internal/service/traffic"
	"github.com/shiftlab/deploysim/internal/state"
	"github.com/shiftlab/deploysim/internal/ws"
	"github.com/shiftlab/deploysim/pkg/config"
	"github.com/shiftlab/deploysim/pkg/logger"
)

func main() {
	cfg := config.LoadSimConfig()
	log := logger.New("deploysim", logger.ParseLevel(config.GetString("LOG_LEVEL", "info")))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub()
	if cfg.Environment == "development" {
		hub.Register(ws.StreamActivity, &activityDebugClient{logger: log})
	}

	cluster := state.New(state.Options{
		PreviousVersion: cfg.PreviousVersion,
		InitialVersion:  cfg.InitialVersion,
		LogCapacity:     cfg.LogCapacity,
		Hub:             hub,
		Collectors:      metrics.New(),
	})

	trafficSim := traffic.New(cluster, log, cfg.TrafficTick)
	go trafficSim.Run(ctx)

	healthMon := health.New(cluster, log, cfg.HealthTick)
	go healthMon.Run(ctx)

	orch := orchestrator.New(cluster, log, cfg.StepDelay)

	log.Info("simulator started",
		"environment", cfg.Environment,
		"complexity", cfg.Complexity,
		"build_id", cfg.BuildID)

	if dep, err := orch.Deploy(cfg.InitialStrategy, cfg.InitialVersion); err != nil {
		log.Warn("initial deployment not started", "strategy", cfg.InitialStrategy, "error", err)
	} else {
		log.Info("initial deployment started",
			"deployment_id", dep.ID, "strategy", string(dep.Strategy), "version", dep.Version)
	}

	ticker := time.NewTicker(cfg.SnapshotLogEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("simulator stopped")
			return
		case <-ticker.C:
			snap := orch.Snapshot()
			log.Info("state summary",
				"status", string(snap.Status),
				"progress", snap.Progress,
				"blue_traffic", snap.Blue.Traffic,
				"green_traffic", snap.Green.Traffic,
				"blue_health", snap.Blue.Health,
				"green_health", snap.Green.Health,
				"total_requests", snap.Metrics.TotalRequests,
				"error_rate", snap.Metrics.ErrorRatePercent)
		}
	}
}

// activityDebugClient echoes activity broadcasts to the process log during
// development runs.
type activityDebugClient struct {
	logger *slog.Logger
}

func (c *activityDebugClient) Send(payload []byte) error {
	c.logger.Debug("activity", "entry", string(payload))
	return nil
}

func (c *activityDebugClient) Close() {}
