package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Submissions        *prometheus.CounterVec
	Transitions        *prometheus.CounterVec
	TransitionLatency  prometheus.Histogram
	TransitionConflict prometheus.Counter
	HoneypotHits       prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vcc_application_submissions_total",
			Help: "Accepted application submissions, split by new account or upgrade",
		}, []string{"kind"}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vcc_application_transitions_total",
			Help: "Committed status transitions by target status",
		}, []string{"to"}),
		TransitionLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vcc_application_transition_duration_seconds",
			Help:    "Time to commit a status transition",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		TransitionConflict: f.NewCounter(prometheus.CounterOpts{
			Name: "vcc_application_transition_conflicts_total",
			Help: "Transitions lost to a concurrent reviewer",
		}),
		HoneypotHits: f.NewCounter(prometheus.CounterOpts{
			Name: "vcc_application_honeypot_hits_total",
			Help: "Submissions discarded by the spam trap",
		}),
	}
}

func (m *Metrics) ObserveSubmission(kind string) {
	m.Submissions.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveTransition(to string, d time.Duration) {
	m.Transitions.WithLabelValues(to).Inc()
	m.TransitionLatency.Observe(d.Seconds())
}

func (m *Metrics) IncrementConflicts() {
	m.TransitionConflict.Inc()
}

func (m *Metrics) IncrementHoneypot() {
	m.HoneypotHits.Inc()
}
