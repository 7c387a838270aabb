package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the process-wide HTTP and account metrics.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	UsersCreated    prometheus.Counter
	LoginsTotal     *prometheus.CounterVec
	ActiveSessions  prometheus.Gauge
}

// New creates and registers the metrics on reg. Pass prometheus.DefaultRegisterer
// in main; tests use a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vcc_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		UsersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "vcc_users_created_total",
			Help: "Total number of accounts created",
		}),
		LoginsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vcc_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "vcc_sessions_created_minus_revoked",
			Help: "Sessions created minus sessions explicitly revoked since start",
		}),
	}
}

func (m *Metrics) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}

func (m *Metrics) ObserveLogin(outcome string) {
	m.LoginsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementActiveSessions() {
	m.ActiveSessions.Inc()
}

func (m *Metrics) DecrementActiveSessions() {
	m.ActiveSessions.Dec()
}
