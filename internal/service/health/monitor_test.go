package health

import (
	"testing"
	"time"

	"github.com/shiftlab/deploysim/internal/domain"
	"github.com/shiftlab/deploysim/internal/state"
)

func newTestMonitor() (*Monitor, *state.Cluster) {
	cluster := state.New(state.Options{})
	return New(cluster, nil, time.Hour), cluster
}

func TestDeployingEnvironmentRampsUp(t *testing.T) {
	mon, cluster := newTestMonitor()

	mon.tick()
	if got := cluster.Snapshot().Green.Health; got != recoverStep {
		t.Fatalf("expected green health %d after one tick, got %d", recoverStep, got)
	}
	mon.tick()
	if got := cluster.Snapshot().Green.Health; got != 2*recoverStep {
		t.Fatalf("expected green health %d after two ticks, got %d", 2*recoverStep, got)
	}
}

func TestDegradationIsFasterThanRecovery(t *testing.T) {
	mon, cluster := newTestMonitor()
	cluster.Update(func(v *state.View) {
		v.Blue.Status = domain.StatusStopped // health 100, target 0
		v.Green.Status = domain.StatusRunning
		v.Green.Health = 50 // target 100
	})

	mon.tick()
	snap := cluster.Snapshot()
	if snap.Blue.Health != 100-degradeStep {
		t.Fatalf("expected blue to degrade to %d, got %d", 100-degradeStep, snap.Blue.Health)
	}
	if snap.Green.Health != 50+recoverStep {
		t.Fatalf("expected green to recover to %d, got %d", 50+recoverStep, snap.Green.Health)
	}
}

func TestHealthClampsAtBounds(t *testing.T) {
	mon, cluster := newTestMonitor()
	cluster.Update(func(v *state.View) {
		v.Blue.Health = 98 // running, target 100
		v.Green.Status = domain.StatusStopped
		v.Green.Health = 4
	})

	mon.tick()
	snap := cluster.Snapshot()
	if snap.Blue.Health != 100 {
		t.Fatalf("expected blue health clamped to 100, got %d", snap.Blue.Health)
	}
	if snap.Green.Health != 0 {
		t.Fatalf("expected green health clamped to 0, got %d", snap.Green.Health)
	}
}

func TestStandbyAndUnhealthyHoldTheirScore(t *testing.T) {
	mon, cluster := newTestMonitor()
	cluster.Update(func(v *state.View) {
		v.Blue.Status = domain.StatusStandby
		v.Blue.Health = 70
		v.Green.Status = domain.StatusUnhealthy
		v.Green.Health = 20
	})

	for i := 0; i < 5; i++ {
		mon.tick()
	}
	snap := cluster.Snapshot()
	if snap.Blue.Health != 70 {
		t.Fatalf("standby health should hold at 70, got %d", snap.Blue.Health)
	}
	if snap.Green.Health != 20 {
		t.Fatalf("unhealthy health should hold at 20, got %d", snap.Green.Health)
	}
}
