package config

import "time"

// SimConfig holds runtime configuration for the deployment simulator.
type SimConfig struct {
	Environment      string
	InitialStrategy  string
	InitialVersion   string
	PreviousVersion  string
	Complexity       string
	BuildID          string
	LogCapacity      int
	TrafficTick      time.Duration
	HealthTick       time.Duration
	StepDelay        time.Duration
	SnapshotLogEvery time.Duration
}

// LoadSimConfig constructs a SimConfig from environment variables.
func LoadSimConfig() SimConfig {
	return SimConfig{
		Environment:      GetString("APP_ENV", "development"),
		InitialStrategy:  GetString("SIM_STRATEGY", "blue-green"),
		InitialVersion:   GetString("SIM_VERSION", "1.0.0"),
		PreviousVersion:  GetString("SIM_PREVIOUS_VERSION", "0.9.0"),
		Complexity:       GetString("SIM_COMPLEXITY", "intermediate"),
		BuildID:          GetString("BUILD_ID", "dev"),
		LogCapacity:      GetInt("SIM_LOG_CAPACITY", 50),
		TrafficTick:      time.Duration(GetInt("SIM_TRAFFIC_TICK_MS", 500)) * time.Millisecond,
		HealthTick:       time.Duration(GetInt("SIM_HEALTH_TICK_MS", 1000)) * time.Millisecond,
		StepDelay:        time.Duration(GetInt("SIM_STEP_DELAY_MS", 800)) * time.Millisecond,
		SnapshotLogEvery: time.Duration(GetInt("SIM_SNAPSHOT_LOG_SECONDS", 15)) * time.Second,
	}
}
