package traffic

import (
	"testing"
	"time"

	"github.com/shiftlab/deploysim/internal/domain"
	"github.com/shiftlab/deploysim/internal/state"
)

func newTestSimulator() (*Simulator, *state.Cluster) {
	cluster := state.New(state.Options{})
	return New(cluster, nil, time.Hour), cluster
}

func TestTickAccumulatesRequestsMonotonically(t *testing.T) {
	sim, cluster := newTestSimulator()

	var prevBlue, prevTotal int64
	for i := 0; i < 20; i++ {
		sim.tick()
		snap := cluster.Snapshot()
		if snap.Blue.Requests < prevBlue {
			t.Fatalf("blue requests decreased: %d -> %d", prevBlue, snap.Blue.Requests)
		}
		if snap.Metrics.TotalRequests < prevTotal {
			t.Fatalf("total requests decreased: %d -> %d", prevTotal, snap.Metrics.TotalRequests)
		}
		prevBlue = snap.Blue.Requests
		prevTotal = snap.Metrics.TotalRequests
	}

	snap := cluster.Snapshot()
	if snap.Blue.Requests == 0 {
		t.Fatal("blue serves 100% of traffic and should have received requests")
	}
	if snap.Green.Requests != 0 {
		t.Fatalf("green is not running and should receive no traffic, got %d", snap.Green.Requests)
	}
	if got := snap.Blue.Requests + snap.Green.Requests; got != snap.Metrics.TotalRequests {
		t.Fatalf("total requests %d does not match environment sum %d", snap.Metrics.TotalRequests, got)
	}
	// 20 ticks of 5..15 requests at a 100% share.
	if snap.Blue.Requests < 100 || snap.Blue.Requests > 300 {
		t.Fatalf("blue requests outside expected band: %d", snap.Blue.Requests)
	}
}

func TestTickScalesBatchByTrafficShare(t *testing.T) {
	sim, cluster := newTestSimulator()
	cluster.Update(func(v *state.View) {
		v.Blue.Traffic = 50
		v.Green.Status = domain.StatusRunning
		v.Green.Traffic = 50
	})

	for i := 0; i < 20; i++ {
		sim.tick()
	}
	snap := cluster.Snapshot()
	// Each environment draws at most 15*50/100 = 7 requests per tick.
	if snap.Blue.Requests > 140 || snap.Green.Requests > 140 {
		t.Fatalf("half-share environments over-served: blue=%d green=%d", snap.Blue.Requests, snap.Green.Requests)
	}
}

func TestTickSkipsNonRunningEnvironments(t *testing.T) {
	sim, cluster := newTestSimulator()
	cluster.Update(func(v *state.View) {
		v.Blue.Status = domain.StatusStopped
	})

	for i := 0; i < 10; i++ {
		sim.tick()
	}
	snap := cluster.Snapshot()
	if snap.Blue.Requests != 0 || snap.Green.Requests != 0 {
		t.Fatalf("no environment is serving, requests should stay zero: blue=%d green=%d",
			snap.Blue.Requests, snap.Green.Requests)
	}
	if snap.Metrics.TotalRequests != 0 {
		t.Fatalf("total requests should stay zero, got %d", snap.Metrics.TotalRequests)
	}
}

func TestTickKeepsMetricsWithinBounds(t *testing.T) {
	sim, cluster := newTestSimulator()
	cluster.Update(func(v *state.View) {
		v.Metrics.ErrorRatePercent = maxErrorRate
	})

	for i := 0; i < 200; i++ {
		sim.tick()
		snap := cluster.Snapshot()
		if snap.Metrics.AvgResponseTimeMS < minResponseMS || snap.Metrics.AvgResponseTimeMS > maxResponseMS {
			t.Fatalf("avg response time out of band: %d", snap.Metrics.AvgResponseTimeMS)
		}
		if snap.Metrics.ErrorRatePercent < minErrorRate || snap.Metrics.ErrorRatePercent > maxErrorRate {
			t.Fatalf("error rate out of band: %f", snap.Metrics.ErrorRatePercent)
		}
	}
}
