package domain

import (
	"strings"
	"time"
)

// Strategy selects one of the four rollout algorithms.
type Strategy string

const (
	StrategyBlueGreen Strategy = "blue-green"
	StrategyCanary    Strategy = "canary"
	StrategyRolling   Strategy = "rolling"
	StrategyRecreate  Strategy = "recreate"
)

// ParseStrategy maps a user-facing strategy label to a Strategy.
func ParseStrategy(raw string) (Strategy, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "blue-green", "bluegreen", "blue_green":
		return StrategyBlueGreen, true
	case "canary":
		return StrategyCanary, true
	case "rolling":
		return StrategyRolling, true
	case "recreate":
		return StrategyRecreate, true
	}
	return "", false
}

// OrchestratorStatus is the lifecycle state of the deployment orchestrator.
type OrchestratorStatus string

const (
	OrchReady     OrchestratorStatus = "ready"
	OrchDeploying OrchestratorStatus = "deploying"
	OrchCompleted OrchestratorStatus = "completed"
	OrchFailed    OrchestratorStatus = "failed"
)

// Deployment captures a single deployment run.
type Deployment struct {
	ID          string
	Strategy    Strategy
	Version     string
	Status      OrchestratorStatus
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}
