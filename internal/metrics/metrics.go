// Package metrics holds Prometheus instrumentation for the
// correlation engine's strategy runner.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for strategy-runner observability
// (§4.2 step 5).
type Metrics struct {
	StrategyDuration *prometheus.HistogramVec
	StrategySignals  *prometheus.CounterVec
	StrategyFailures *prometheus.CounterVec

	collectors []prometheus.Collector
	registerer prometheus.Registerer
}

// NewMetrics creates the strategy runner's Prometheus metrics. The
// registerer parameter allows flexible registration (global registry,
// or an isolated test registry).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "correlator_strategy_duration_seconds",
		Help:    "Wall-clock time spent in a single strategy invocation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"strategy", "wave"})

	signals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "correlator_strategy_signals_total",
		Help: "Total number of signals emitted by a strategy.",
	}, []string{"strategy", "wave"})

	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "correlator_strategy_failures_total",
		Help: "Total number of strategy invocations that returned an error.",
	}, []string{"strategy", "wave"})

	collectors := []prometheus.Collector{duration, signals, failures}
	reg.MustRegister(collectors...)

	return &Metrics{
		StrategyDuration: duration,
		StrategySignals:  signals,
		StrategyFailures: failures,
		collectors:       collectors,
		registerer:       reg,
	}
}

// Unregister removes all metrics from the registry. Callers that
// construct a Metrics per engine run (e.g. tests) should call this
// when done to avoid duplicate-registration panics on the next run.
func (m *Metrics) Unregister() {
	if m.registerer == nil {
		return
	}
	for _, c := range m.collectors {
		m.registerer.Unregister(c)
	}
}
