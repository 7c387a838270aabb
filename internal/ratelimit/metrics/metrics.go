package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions     *prometheus.CounterVec
	BackendErrors prometheus.Counter
	FallbackTotal prometheus.Counter
	BreakerOpen   prometheus.Gauge
	SweptBuckets  prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vcc_ratelimit_decisions_total",
			Help: "Rate limit decisions by action and outcome",
		}, []string{"action", "outcome"}),
		BackendErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "vcc_ratelimit_backend_errors_total",
			Help: "Errors returned by the distributed rate limit store",
		}),
		FallbackTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "vcc_ratelimit_fallback_checks_total",
			Help: "Checks answered by the in-process fallback store",
		}),
		BreakerOpen: f.NewGauge(prometheus.GaugeOpts{
			Name: "vcc_ratelimit_circuit_open",
			Help: "1 while the rate limit circuit breaker is open",
		}),
		SweptBuckets: f.NewCounter(prometheus.CounterOpts{
			Name: "vcc_ratelimit_swept_buckets_total",
			Help: "Idle fallback buckets removed by the sweeper",
		}),
	}
}

func (m *Metrics) ObserveDecision(action string, allowed bool) {
	outcome := "allowed"
	if !allowed {
		outcome = "denied"
	}
	m.Decisions.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) IncrementBackendErrors() {
	m.BackendErrors.Inc()
}

func (m *Metrics) IncrementFallback() {
	m.FallbackTotal.Inc()
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if open {
		m.BreakerOpen.Set(1)
		return
	}
	m.BreakerOpen.Set(0)
}

func (m *Metrics) AddSwept(n int) {
	m.SweptBuckets.Add(float64(n))
}
