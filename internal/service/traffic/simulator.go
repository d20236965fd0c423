// Package traffic drives the synthetic request load against both
// environment slots.
package traffic

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/shiftlab/deploysim/internal/domain"
	"github.com/shiftlab/deploysim/internal/state"
)

const (
	defaultTick = 500 * time.Millisecond

	minBatch = 5
	maxBatch = 15

	minResponseMS = 40
	maxResponseMS = 60

	errorSpikeChance = 0.02
	errorSpikeDelta  = 0.5
	errorDecayDelta  = 0.05
	minErrorRate     = 0.1
	maxErrorRate     = 5.0
)

// Simulator periodically synthesizes request volume proportional to each
// environment's traffic share and perturbs the aggregate latency and error
// rate within fixed bands.
type Simulator struct {
	cluster  *state.Cluster
	logger   *slog.Logger
	interval time.Duration
	rand     *rand.Rand
}

// New constructs a traffic simulator ticking at the given interval.
func New(cluster *state.Cluster, logger *slog.Logger, interval time.Duration) *Simulator {
	if interval <= 0 {
		interval = defaultTick
	}
	if logger != nil {
		logger = logger.With("component", "traffic")
	}
	seed := uint64(time.Now().UnixNano())
	return &Simulator{
		cluster:  cluster,
		logger:   logger,
		interval: interval,
		rand:     rand.New(rand.NewPCG(seed, seed>>32)),
	}
}

// Run executes the generation loop until the context is cancelled.
func (s *Simulator) Run(ctx context.Context) {
	if s == nil {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if s.logger != nil {
		s.logger.Info("traffic simulator started", "interval", s.interval)
	}
	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.Info("traffic simulator stopped")
			}
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Simulator) tick() {
	s.cluster.Update(func(v *state.View) {
		for _, name := range []domain.EnvName{domain.EnvBlue, domain.EnvGreen} {
			env := v.Env(name)
			if env.Status != domain.StatusRunning || env.Traffic <= 0 {
				continue
			}
			batch := minBatch + s.rand.IntN(maxBatch-minBatch+1)
			v.AddRequests(name, batch*env.Traffic/100)
		}

		v.Metrics.AvgResponseTimeMS = minResponseMS + s.rand.IntN(maxResponseMS-minResponseMS+1)

		rate := v.Metrics.ErrorRatePercent
		if s.rand.Float64() < errorSpikeChance {
			rate += errorSpikeDelta
		} else {
			rate -= errorDecayDelta
		}
		v.Metrics.ErrorRatePercent = min(maxErrorRate, max(minErrorRate, rate))
	})
}
