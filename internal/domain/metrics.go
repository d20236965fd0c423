package domain

// Metrics aggregates process-wide simulator counters.
type Metrics struct {
	TotalRequests     int64
	SuccessfulDeploys int
	FailedDeploys     int
	Rollbacks         int
	AvgResponseTimeMS int
	ErrorRatePercent  float64
}
