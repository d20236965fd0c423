// Package metrics mirrors the simulator counters into Prometheus collectors
// so the external dashboard layer can scrape them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shiftlab/deploysim/internal/domain"
)

// Collectors holds the registered Prometheus collectors for the simulator.
// A nil *Collectors is valid and records nothing.
type Collectors struct {
	requests  *prometheus.CounterVec
	deploys   *prometheus.CounterVec
	rollbacks prometheus.Counter
	health    *prometheus.GaugeVec
	traffic   *prometheus.GaugeVec
	errorRate prometheus.Gauge
	respTime  prometheus.Gauge
}

// New registers the simulator collectors on the default registry, adopting
// any collector that is already registered.
func New() *Collectors {
	c := &Collectors{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deploysim",
			Name:      "requests_total",
			Help:      "Simulated requests served per environment",
		}, []string{"environment"}),
		deploys: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deploysim",
			Name:      "deployments_total",
			Help:      "Finished deployments by result",
		}, []string{"result"}),
		rollbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "deploysim",
			Name:      "rollbacks_total",
			Help:      "Completed rollbacks",
		}),
		health: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "deploysim",
			Name:      "environment_health",
			Help:      "Simulated health score per environment",
		}, []string{"environment"}),
		traffic: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "deploysim",
			Name:      "environment_traffic_percent",
			Help:      "Traffic share per environment",
		}, []string{"environment"}),
		errorRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "deploysim",
			Name:      "error_rate_percent",
			Help:      "Simulated error rate",
		}),
		respTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "deploysim",
			Name:      "avg_response_time_ms",
			Help:      "Simulated average response time",
		}),
	}

	c.requests = register(c.requests).(*prometheus.CounterVec)
	c.deploys = register(c.deploys).(*prometheus.CounterVec)
	c.rollbacks = register(c.rollbacks).(prometheus.Counter)
	c.health = register(c.health).(*prometheus.GaugeVec)
	c.traffic = register(c.traffic).(*prometheus.GaugeVec)
	c.errorRate = register(c.errorRate).(prometheus.Gauge)
	c.respTime = register(c.respTime).(prometheus.Gauge)
	return c
}

// register adds the collector to the default registry, returning the existing
// one when a previous construction already registered it.
func register(col prometheus.Collector) prometheus.Collector {
	if err := prometheus.Register(col); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
	}
	return col
}

// AddRequests records simulated requests served by one environment.
func (c *Collectors) AddRequests(env domain.EnvName, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.requests.WithLabelValues(string(env)).Add(float64(n))
}

// DeployFinished records a terminal deployment outcome.
func (c *Collectors) DeployFinished(result string) {
	if c == nil {
		return
	}
	c.deploys.WithLabelValues(result).Inc()
}

// RollbackFinished records a completed rollback.
func (c *Collectors) RollbackFinished() {
	if c == nil {
		return
	}
	c.rollbacks.Inc()
}

// ObserveState pushes the current gauge values after a state mutation.
func (c *Collectors) ObserveState(blue, green domain.Environment, m domain.Metrics) {
	if c == nil {
		return
	}
	c.health.WithLabelValues(string(domain.EnvBlue)).Set(float64(blue.Health))
	c.health.WithLabelValues(string(domain.EnvGreen)).Set(float64(green.Health))
	c.traffic.WithLabelValues(string(domain.EnvBlue)).Set(float64(blue.Traffic))
	c.traffic.WithLabelValues(string(domain.EnvGreen)).Set(float64(green.Traffic))
	c.errorRate.Set(m.ErrorRatePercent)
	c.respTime.Set(float64(m.AvgResponseTimeMS))
}
