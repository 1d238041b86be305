package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutboxMetrics records publisher outcomes per event type.
type OutboxMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	dlq      *prometheus.CounterVec
}

// NewOutboxMetrics registers the outbox publisher metrics on the provided registerer.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "outbox_publish_duration_seconds",
		Help:      "Time spent publishing a single outbox event.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"event_type"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_published_total",
		Help:      "Outbox events published successfully.",
	}, []string{"event_type"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_publish_failures_total",
		Help:      "Outbox publish attempts that failed and will be retried.",
	}, []string{"event_type"})
	dlq := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_dead_lettered_total",
		Help:      "Outbox events moved to the dead letter table.",
	}, []string{"event_type", "reason"})
	reg.MustRegister(duration, success, failure, dlq)
	return &OutboxMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		dlq:      dlq,
	}
}

// ObservePublish records the publish duration and outcome for an event type.
func (m *OutboxMetrics) ObservePublish(eventType string, d time.Duration, err error) {
	if m == nil || m.duration == nil {
		return
	}
	label := normalizeLabel(eventType)
	m.duration.WithLabelValues(label).Observe(d.Seconds())
	if err != nil {
		m.failure.WithLabelValues(label).Inc()
		return
	}
	m.success.WithLabelValues(label).Inc()
}

// IncDeadLettered counts an event moved to the DLQ.
func (m *OutboxMetrics) IncDeadLettered(eventType, reason string) {
	if m == nil || m.dlq == nil {
		return
	}
	m.dlq.WithLabelValues(normalizeLabel(eventType), normalizeLabel(reason)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
