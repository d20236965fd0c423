package domain

import "strings"

// EnvName identifies one of the two logical environment slots.
type EnvName string

const (
	EnvBlue  EnvName = "blue"
	EnvGreen EnvName = "green"
)

// ParseEnvName maps a user-facing environment label to an EnvName.
func ParseEnvName(raw string) (EnvName, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "blue":
		return EnvBlue, true
	case "green":
		return EnvGreen, true
	}
	return "", false
}

// EnvStatus is the lifecycle state of an environment slot.
type EnvStatus string

const (
	StatusRunning   EnvStatus = "running"
	StatusDeploying EnvStatus = "deploying"
	StatusStopped   EnvStatus = "stopped"
	StatusStandby   EnvStatus = "standby"
	StatusUnhealthy EnvStatus = "unhealthy"
)

// Environment is the mutable record for one slot. Traffic is the percentage
// of simulated requests routed here; blue and green sum to 100 at rest.
type Environment struct {
	Version  string
	Status   EnvStatus
	Traffic  int
	Health   int
	Requests int64
}
