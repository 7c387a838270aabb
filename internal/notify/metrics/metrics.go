package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Sent       *prometheus.CounterVec
	Failed     *prometheus.CounterVec
	Dropped    prometheus.Counter
	QueueDepth prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Sent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vcc_notifications_sent_total",
			Help: "Emails handed to the transport, by template",
		}, []string{"template"}),
		Failed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vcc_notifications_failed_total",
			Help: "Emails not delivered, by template and reason",
		}, []string{"template", "reason"}),
		Dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "vcc_notifications_dropped_total",
			Help: "Notification jobs discarded because the queue was full",
		}),
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "vcc_notifications_queue_depth",
			Help: "Jobs waiting for a notification worker",
		}),
	}
}

func (m *Metrics) ObserveSent(template string) {
	m.Sent.WithLabelValues(template).Inc()
}

func (m *Metrics) ObserveFailure(template, reason string) {
	m.Failed.WithLabelValues(template, reason).Inc()
}

func (m *Metrics) IncrementDropped() {
	m.Dropped.Inc()
}

func (m *Metrics) SetQueueDepth(n int) {
	m.QueueDepth.Set(float64(n))
}
