// Package orchestrator executes rollout strategies over the shared cluster
// state. One deployment may be in flight at a time; strategy algorithms run
// in their own goroutine and report progress through the state bundle.
package orchestrator

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shiftlab/deploysim/internal/domain"
	"github.com/shiftlab/deploysim/internal/state"
)

// Sentinel errors surfaced to the caller. Anything else stays internal.
var (
	ErrDeployInProgress   = errors.New("deployment already in progress")
	ErrUnknownStrategy    = errors.New("unknown deployment strategy")
	ErrUnknownEnvironment = errors.New("unknown environment")
)

// errCanaryAborted signals the canary health gate tripping. It is consumed
// by the completion handler and never escapes the package.
var errCanaryAborted = errors.New("canary health gate tripped")

const defaultStepDelay = 800 * time.Millisecond

// Service is the deployment orchestrator.
type Service struct {
	cluster   *state.Cluster
	logger    *slog.Logger
	stepDelay time.Duration

	canaryStages     []int
	canaryHealthGate int
	rollingInstances int
	trafficStep      int

	sleep func(time.Duration)
	now   func() time.Time
}

// New constructs an orchestrator with the reference strategy parameters.
func New(cluster *state.Cluster, logger *slog.Logger, stepDelay time.Duration) *Service {
	if stepDelay <= 0 {
		stepDelay = defaultStepDelay
	}
	if logger != nil {
		logger = logger.With("component", "orchestrator")
	}
	return &Service{
		cluster:          cluster,
		logger:           logger,
		stepDelay:        stepDelay,
		canaryStages:     []int{10, 25, 50, 75, 100},
		canaryHealthGate: 50,
		rollingInstances: 4,
		trafficStep:      20,
		sleep:            time.Sleep,
		now:              time.Now,
	}
}

// Deploy validates the request, transitions the orchestrator to deploying,
// and runs the strategy in the background. The returned record is the
// acknowledgement; completion is observed through Snapshot.
func (s *Service) Deploy(rawStrategy, version string) (*domain.Deployment, error) {
	strategy, ok := domain.ParseStrategy(rawStrategy)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, rawStrategy)
	}
	dep, err := s.begin(strategy, version)
	if err != nil {
		return nil, err
	}
	go s.execute(strategy, version)
	if s.logger != nil {
		s.logger.Info("deployment started",
			"deployment_id", dep.ID, "strategy", string(strategy), "version", version)
	}
	return dep, nil
}

// begin performs the busy check and the transition into deploying under a
// single lock acquisition, so concurrent Deploy calls cannot interleave.
func (s *Service) begin(strategy domain.Strategy, version string) (*domain.Deployment, error) {
	var (
		dep  *domain.Deployment
		busy bool
	)
	s.cluster.Update(func(v *state.View) {
		if v.Orch.Status == domain.OrchDeploying {
			busy = true
			return
		}
		dep = &domain.Deployment{
			ID:        uuid.NewString(),
			Strategy:  strategy,
			Version:   version,
			Status:    domain.OrchDeploying,
			StartedAt: s.now().UTC(),
		}
		v.Orch.Status = domain.OrchDeploying
		v.Orch.Progress = 0
		v.Orch.CanaryStage = 0
		v.Orch.RollingInstance = 0
		v.Orch.Last = dep
		v.Log(fmt.Sprintf("starting %s deployment of %s", strategy, version))
	})
	if busy {
		return nil, ErrDeployInProgress
	}
	return dep, nil
}

// execute runs the selected strategy to its terminal state.
func (s *Service) execute(strategy domain.Strategy, version string) {
	var err error
	switch strategy {
	case domain.StrategyBlueGreen:
		err = s.runBlueGreen(version)
	case domain.StrategyCanary:
		err = s.runCanary(version)
	case domain.StrategyRolling:
		err = s.runRolling(version)
	case domain.StrategyRecreate:
		err = s.runRecreate(version)
	}
	s.finish(err)
}

func (s *Service) finish(err error) {
	now := s.now().UTC()
	s.cluster.Update(func(v *state.View) {
		if err != nil {
			v.Orch.Status = domain.OrchFailed
			v.RecordDeployFailure()
			v.Log("deployment failed: " + err.Error())
			if v.Orch.Last != nil {
				v.Orch.Last.Status = domain.OrchFailed
				v.Orch.Last.Error = err.Error()
				v.Orch.Last.CompletedAt = &now
			}
			return
		}
		v.Orch.Status = domain.OrchCompleted
		v.Orch.Progress = 100
		v.RecordDeploySuccess()
		v.Log("deployment completed")
		if v.Orch.Last != nil {
			v.Orch.Last.Status = domain.OrchCompleted
			v.Orch.Last.CompletedAt = &now
		}
	})
	if s.logger != nil {
		if err != nil {
			s.logger.Warn("deployment failed", "error", err)
		} else {
			s.logger.Info("deployment completed")
		}
	}
}

// Rollback reverts traffic to blue. After a blue-green deployment the swap
// is instant and atomic; for every other strategy traffic drains back
// gradually in the background.
func (s *Service) Rollback() {
	var strategy domain.Strategy
	s.cluster.Update(func(v *state.View) {
		if v.Orch.Last != nil {
			strategy = v.Orch.Last.Strategy
		}
	})

	if strategy == domain.StrategyBlueGreen {
		s.cluster.Update(func(v *state.View) {
			v.Blue.Traffic, v.Green.Traffic = v.Green.Traffic, v.Blue.Traffic
			if v.Blue.Status == domain.StatusStandby {
				v.Blue.Status = domain.StatusRunning
			}
			v.RecordRollback()
			v.Log("rollback: instant blue-green traffic swap")
		})
		if s.logger != nil {
			s.logger.Info("rollback completed", "mode", "instant")
		}
		return
	}

	go s.rollbackGradual()
	if s.logger != nil {
		s.logger.Info("rollback started", "mode", "gradual")
	}
}

// rollbackGradual drains traffic from green back to blue in fixed steps.
func (s *Service) rollbackGradual() {
	for {
		var done bool
		s.cluster.Update(func(v *state.View) {
			if v.Green.Traffic <= 0 {
				done = true
				return
			}
			shift := min(s.trafficStep, v.Green.Traffic)
			v.Green.Traffic -= shift
			v.Blue.Traffic += shift
			v.Log(fmt.Sprintf("rollback: %d%% of traffic back on blue", v.Blue.Traffic))
		})
		if done {
			break
		}
		s.sleep(s.stepDelay / 2)
	}
	s.cluster.Update(func(v *state.View) {
		v.Green.Status = domain.StatusStopped
		v.Blue.Status = domain.StatusRunning
		v.RecordRollback()
		v.Log("rollback: green stopped, blue restored")
	})
	if s.logger != nil {
		s.logger.Info("rollback completed", "mode", "gradual")
	}
}

// InjectFailure forces an environment into an unhealthy state for fault
// demonstrations.
func (s *Service) InjectFailure(environment string) error {
	name, ok := domain.ParseEnvName(environment)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEnvironment, environment)
	}
	s.cluster.Update(func(v *state.View) {
		env := v.Env(name)
		env.Status = domain.StatusUnhealthy
		env.Health = 20
		v.Metrics.ErrorRatePercent = 5.0
		v.Log(fmt.Sprintf("fault injected into %s", name))
	})
	if s.logger != nil {
		s.logger.Warn("fault injected", "environment", string(name))
	}
	return nil
}

// Recover returns a previously failed environment to running.
func (s *Service) Recover(environment string) error {
	name, ok := domain.ParseEnvName(environment)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEnvironment, environment)
	}
	s.cluster.Update(func(v *state.View) {
		v.Env(name).Status = domain.StatusRunning
		v.Log(fmt.Sprintf("%s recovered", name))
	})
	if s.logger != nil {
		s.logger.Info("environment recovered", "environment", string(name))
	}
	return nil
}

// Snapshot returns the current read-only projection of the simulator.
func (s *Service) Snapshot() domain.Snapshot {
	return s.cluster.Snapshot()
}
