package domain

import "time"

// LogEntry is one timestamped activity message.
type LogEntry struct {
	At      time.Time
	Message string
}

// Rendered returns the entry in the dashboard's line format.
func (e LogEntry) Rendered() string {
	return e.At.Format("15:04:05") + " " + e.Message
}

// Snapshot is a read-only projection of the whole simulator state, built
// under the state lock so multi-field invariants hold across the copy.
type Snapshot struct {
	Blue            Environment
	Green           Environment
	Metrics         Metrics
	Status          OrchestratorStatus
	Progress        int
	CanaryStage     int
	RollingInstance int
	LastDeployment  *Deployment
	Entries         []LogEntry
	Logs            []string
}
