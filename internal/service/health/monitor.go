// Package health drives each environment's health score toward a target
// derived from its lifecycle status.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shiftlab/deploysim/internal/domain"
	"github.com/shiftlab/deploysim/internal/state"
)

const (
	defaultTick = time.Second

	// Recovery is slower than degradation, matching health-check pessimism.
	recoverStep = 5
	degradeStep = 10
	rampStep    = 10
)

// Monitor periodically converges environment health scores.
type Monitor struct {
	cluster  *state.Cluster
	logger   *slog.Logger
	interval time.Duration
}

// New constructs a health monitor ticking at the given interval.
func New(cluster *state.Cluster, logger *slog.Logger, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = defaultTick
	}
	if logger != nil {
		logger = logger.With("component", "health")
	}
	return &Monitor{cluster: cluster, logger: logger, interval: interval}
}

// Run executes the convergence loop until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	if m == nil {
		return
	}
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	if m.logger != nil {
		m.logger.Info("health monitor started", "interval", m.interval)
	}
	for {
		select {
		case <-ctx.Done():
			if m.logger != nil {
				m.logger.Info("health monitor stopped")
			}
			return
		case <-ticker.C:
			m.tick()
		}
	}
}

func (m *Monitor) tick() {
	m.cluster.Update(func(v *state.View) {
		for _, name := range []domain.EnvName{domain.EnvBlue, domain.EnvGreen} {
			env := v.Env(name)
			target := targetHealth(env)
			prev := env.Health
			switch {
			case env.Health < target:
				env.Health = min(100, env.Health+recoverStep)
			case env.Health > target:
				env.Health = max(0, env.Health-degradeStep)
			}
			if env.Health == 100 && prev < 100 {
				v.Log(fmt.Sprintf("%s fully healthy", name))
			}
			if env.Health == 0 && prev > 0 {
				v.Log(fmt.Sprintf("%s health depleted", name))
			}
		}
	})
}

// targetHealth derives the score an environment should converge toward.
// Deploying environments ramp up over several ticks; standby and unhealthy
// environments hold their current score.
func targetHealth(env *domain.Environment) int {
	switch env.Status {
	case domain.StatusRunning:
		return 100
	case domain.StatusDeploying:
		return min(100, env.Health+rampStep)
	case domain.StatusStopped:
		return 0
	default:
		return env.Health
	}
}
