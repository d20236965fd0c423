package orchestrator

import (
	"fmt"

	"github.com/shiftlab/deploysim/internal/domain"
	"github.com/shiftlab/deploysim/internal/state"
)

// runBlueGreen builds the new version on green, waits for health checks,
// then shifts traffic over in fixed increments. Blue stays warm on standby
// so a rollback is a single traffic swap.
func (s *Service) runBlueGreen(version string) error {
	s.cluster.Update(func(v *state.View) {
		v.Green.Version = version
		v.Green.Status = domain.StatusDeploying
		v.Log(fmt.Sprintf("blue-green: deploying %s to green", version))
	})

	for p := 20; p <= 100; p += 20 {
		s.sleep(s.stepDelay / 2)
		s.cluster.Update(func(v *state.View) {
			v.Orch.Progress = p
		})
	}

	s.cluster.Update(func(v *state.View) {
		v.Green.Status = domain.StatusRunning
		v.Green.Health = 100
		v.Log("blue-green: green is up, health checks passed")
	})
	s.sleep(s.stepDelay)

	for shift := s.trafficStep; shift <= 100; shift += s.trafficStep {
		s.cluster.Update(func(v *state.View) {
			v.Green.Traffic = shift
			v.Blue.Traffic = 100 - shift
			v.Log(fmt.Sprintf("blue-green: %d%% of traffic on green", shift))
		})
		s.sleep(s.stepDelay)
	}

	s.cluster.Update(func(v *state.View) {
		v.Blue.Status = domain.StatusStandby
		v.Log("blue-green: blue moved to standby")
	})
	return nil
}

// runCanary shifts traffic through fixed stages, checking green's health
// after each monitoring window. A score below the gate aborts the rollout.
func (s *Service) runCanary(version string) error {
	s.cluster.Update(func(v *state.View) {
		v.Green.Version = version
		v.Green.Status = domain.StatusDeploying
		v.Log(fmt.Sprintf("canary: deploying %s to green", version))
	})
	s.sleep(s.stepDelay)

	s.cluster.Update(func(v *state.View) {
		v.Green.Status = domain.StatusRunning
		v.Green.Health = 100
		v.Log("canary: green is up, beginning staged rollout")
	})

	for i, stage := range s.canaryStages {
		s.cluster.Update(func(v *state.View) {
			v.Orch.CanaryStage = i + 1
			v.Orch.Progress = (i + 1) * 100 / len(s.canaryStages)
			v.Green.Traffic = stage
			v.Blue.Traffic = 100 - stage
			v.Log(fmt.Sprintf("canary: stage %d, %d%% of traffic on green", i+1, stage))
		})
		s.sleep(s.stepDelay)

		var health int
		s.cluster.Update(func(v *state.View) {
			health = v.Green.Health
		})
		if health < s.canaryHealthGate {
			s.cluster.Update(func(v *state.View) {
				v.Log(fmt.Sprintf("canary: aborting rollout, green health %d below %d",
					health, s.canaryHealthGate))
			})
			return errCanaryAborted
		}
	}

	s.cluster.Update(func(v *state.View) {
		v.Blue.Status = domain.StatusStopped
		v.Log("canary: rollout complete, blue stopped")
	})
	return nil
}

// runRolling replaces a fixed number of instances one at a time, never
// taking the whole fleet down.
func (s *Service) runRolling(version string) error {
	total := s.rollingInstances
	for i := 1; i <= total; i++ {
		s.cluster.Update(func(v *state.View) {
			v.Orch.RollingInstance = i
			v.Log(fmt.Sprintf("rolling: stopping instance %d/%d", i, total))
		})
		s.sleep(s.stepDelay / 2)

		s.cluster.Update(func(v *state.View) {
			v.Log(fmt.Sprintf("rolling: starting instance %d/%d on %s", i, total, version))
		})
		s.sleep(s.stepDelay / 2)

		s.cluster.Update(func(v *state.View) {
			v.Orch.Progress = i * 100 / total
			v.Log(fmt.Sprintf("rolling: instance %d/%d healthy", i, total))
		})
		s.sleep(s.stepDelay / 2)
	}

	s.cluster.Update(func(v *state.View) {
		v.Green.Version = version
		v.Green.Status = domain.StatusRunning
		v.Green.Health = 100
		v.Green.Traffic = 100
		v.Blue.Traffic = 0
		v.Blue.Status = domain.StatusStopped
		v.Log("rolling: all instances replaced")
	})
	return nil
}

// runRecreate stops everything before deploying, opening an explicit
// downtime window where no environment serves traffic.
func (s *Service) runRecreate(version string) error {
	s.cluster.Update(func(v *state.View) {
		v.Blue.Status = domain.StatusStopped
		v.Blue.Traffic = 0
		v.Green.Traffic = 0
		v.Log("recreate: all environments stopped, downtime window open")
	})
	s.sleep(s.stepDelay)

	s.cluster.Update(func(v *state.View) {
		v.Green.Version = version
		v.Green.Status = domain.StatusDeploying
		v.Log(fmt.Sprintf("recreate: deploying %s to green", version))
	})
	for p := 25; p <= 100; p += 25 {
		s.sleep(s.stepDelay / 2)
		s.cluster.Update(func(v *state.View) {
			v.Orch.Progress = p
		})
	}

	s.cluster.Update(func(v *state.View) {
		v.Green.Status = domain.StatusRunning
		v.Green.Health = 100
		v.Green.Traffic = 100
		v.Log("recreate: green serving 100% of traffic, downtime window closed")
	})
	return nil
}
