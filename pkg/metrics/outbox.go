package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutboxMetrics tracks the outbox publisher loop.
type OutboxMetrics struct {
	published  *prometheus.CounterVec
	failed     *prometheus.CounterVec
	deadLetter *prometheus.CounterVec
	batch      prometheus.Histogram
}

func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Outbox events published to pubsub.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_failed_total",
		Help: "Outbox publish attempts that failed and will be retried.",
	}, []string{"event_type"})
	deadLetter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_dead_lettered_total",
		Help: "Outbox events moved to the DLQ.",
	}, []string{"reason"})
	batch := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_batch_duration_seconds",
		Help:    "Duration of one outbox publish batch.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(published, failed, deadLetter, batch)
	return &OutboxMetrics{
		published:  published,
		failed:     failed,
		deadLetter: deadLetter,
		batch:      batch,
	}
}

func (m *OutboxMetrics) IncPublished(eventType string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func (m *OutboxMetrics) IncFailed(eventType string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func (m *OutboxMetrics) IncDeadLettered(reason string) {
	if m == nil || m.deadLetter == nil {
		return
	}
	m.deadLetter.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *OutboxMetrics) ObserveBatch(elapsed time.Duration) {
	if m == nil || m.batch == nil {
		return
	}
	m.batch.Observe(elapsed.Seconds())
}
