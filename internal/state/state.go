// Package state owns the shared simulator state bundle: the two environment
// slots, the aggregate metrics, the activity log, and the orchestrator
// fields. One mutex guards the whole bundle so multi-field invariants
// (traffic sums, status and health coupling) are always updated together.
package state

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/shiftlab/deploysim/internal/domain"
	"github.com/shiftlab/deploysim/internal/metrics"
	"github.com/shiftlab/deploysim/internal/ws"
)

// OrchState groups the orchestrator-owned transient fields.
type OrchState struct {
	Status          domain.OrchestratorStatus
	Progress        int
	CanaryStage     int
	RollingInstance int
	Last            *domain.Deployment
}

// Options configures a new Cluster.
type Options struct {
	PreviousVersion string
	InitialVersion  string
	LogCapacity     int
	Hub             *ws.Hub
	Collectors      *metrics.Collectors
}

// Cluster is the single process-wide state instance. All mutation goes
// through Update; all reads of more than one field go through Snapshot.
type Cluster struct {
	mu sync.Mutex

	blue  domain.Environment
	green domain.Environment
	mets  domain.Metrics
	orch  OrchState
	log   *activityLog

	hub *ws.Hub
	col *metrics.Collectors
	now func() time.Time
}

// New constructs the cluster with the fixed initial topology: blue serving
// all traffic at the previous version, green receiving its first deploy.
func New(opts Options) *Cluster {
	prev := opts.PreviousVersion
	if prev == "" {
		prev = "0.9.0"
	}
	initial := opts.InitialVersion
	if initial == "" {
		initial = "1.0.0"
	}
	c := &Cluster{
		blue: domain.Environment{
			Version: prev,
			Status:  domain.StatusRunning,
			Traffic: 100,
			Health:  100,
		},
		green: domain.Environment{
			Version: initial,
			Status:  domain.StatusDeploying,
		},
		mets: domain.Metrics{
			AvgResponseTimeMS: 50,
			ErrorRatePercent:  0.5,
		},
		orch: OrchState{Status: domain.OrchReady},
		log:  newActivityLog(opts.LogCapacity),
		hub:  opts.Hub,
		col:  opts.Collectors,
		now:  time.Now,
	}
	return c
}

// View is the exclusive window onto the mutable state handed to Update
// callbacks. It is only valid for the duration of the callback.
type View struct {
	Blue    *domain.Environment
	Green   *domain.Environment
	Metrics *domain.Metrics
	Orch    *OrchState

	c       *Cluster
	pending []domain.LogEntry
}

// Env returns the slot for the given name, or nil when unknown.
func (v *View) Env(name domain.EnvName) *domain.Environment {
	switch name {
	case domain.EnvBlue:
		return v.Blue
	case domain.EnvGreen:
		return v.Green
	}
	return nil
}

// Log appends a timestamped message to the activity log. The entry is
// broadcast to hub subscribers after the lock is released.
func (v *View) Log(msg string) {
	entry := domain.LogEntry{At: v.c.now(), Message: msg}
	v.c.log.append(entry)
	v.pending = append(v.pending, entry)
}

// AddRequests records simulated requests served by one environment.
func (v *View) AddRequests(name domain.EnvName, n int) {
	env := v.Env(name)
	if env == nil || n <= 0 {
		return
	}
	env.Requests += int64(n)
	v.Metrics.TotalRequests += int64(n)
	v.c.col.AddRequests(name, n)
}

// RecordDeploySuccess counts a deployment that ran to completion.
func (v *View) RecordDeploySuccess() {
	v.Metrics.SuccessfulDeploys++
	v.c.col.DeployFinished("success")
}

// RecordDeployFailure counts an aborted deployment.
func (v *View) RecordDeployFailure() {
	v.Metrics.FailedDeploys++
	v.c.col.DeployFinished("failed")
}

// RecordRollback counts a completed rollback.
func (v *View) RecordRollback() {
	v.Metrics.Rollbacks++
	v.c.col.RollbackFinished()
}

// Update runs fn with exclusive access to the state bundle. Gauge values and
// pending activity broadcasts are flushed after the lock is released so
// callbacks never block on subscribers.
func (c *Cluster) Update(fn func(v *View)) {
	c.mu.Lock()
	v := &View{
		Blue:    &c.blue,
		Green:   &c.green,
		Metrics: &c.mets,
		Orch:    &c.orch,
		c:       c,
	}
	fn(v)
	blue, green, mets := c.blue, c.green, c.mets
	pending := v.pending
	c.mu.Unlock()

	c.col.ObserveState(blue, green, mets)
	if c.hub != nil {
		for _, entry := range pending {
			payload, err := json.Marshal(map[string]any{
				"at":      entry.At.UTC().Format(time.RFC3339Nano),
				"message": entry.Message,
			})
			if err != nil {
				continue
			}
			c.hub.Broadcast(ws.StreamActivity, payload)
		}
	}
}

// Snapshot returns a deep copy of the whole bundle taken under one lock
// acquisition, so no intermediate multi-field states are observable.
func (c *Cluster) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := domain.Snapshot{
		Blue:            c.blue,
		Green:           c.green,
		Metrics:         c.mets,
		Status:          c.orch.Status,
		Progress:        c.orch.Progress,
		CanaryStage:     c.orch.CanaryStage,
		RollingInstance: c.orch.RollingInstance,
		Entries:         c.log.snapshot(),
	}
	if c.orch.Last != nil {
		last := *c.orch.Last
		snap.LastDeployment = &last
	}
	snap.Logs = make([]string, len(snap.Entries))
	for i, entry := range snap.Entries {
		snap.Logs[i] = entry.Rendered()
	}
	return snap
}
