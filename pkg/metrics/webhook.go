package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics tracks payment webhook processing outcomes. The persist
// failure counter exists because a lost payment intent blocks the entire
// order-confirmation path downstream.
type WebhookMetrics struct {
	recorded       *prometheus.CounterVec
	persistFailure *prometheus.CounterVec
	skipped        *prometheus.CounterVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	recorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_intents_recorded_total",
		Help: "Payment intents persisted from webhook events.",
	}, []string{"event_type"})
	persistFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_intent_persist_failures_total",
		Help: "Payment intent persistence failures after retries were exhausted.",
	}, []string{"event_type"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_skipped_total",
		Help: "Webhook events acknowledged without processing.",
	}, []string{"reason"})
	reg.MustRegister(recorded, persistFailure, skipped)
	return &WebhookMetrics{
		recorded:       recorded,
		persistFailure: persistFailure,
		skipped:        skipped,
	}
}

// IncRecorded counts a successfully persisted intent.
func (m *WebhookMetrics) IncRecorded(eventType string) {
	if m == nil || m.recorded == nil {
		return
	}
	m.recorded.WithLabelValues(eventType).Inc()
}

// IncPersistFailure counts an intent lost after retry exhaustion.
func (m *WebhookMetrics) IncPersistFailure(eventType string) {
	if m == nil || m.persistFailure == nil {
		return
	}
	m.persistFailure.WithLabelValues(eventType).Inc()
}

// IncSkipped counts an event acknowledged without processing.
func (m *WebhookMetrics) IncSkipped(reason string) {
	if m == nil || m.skipped == nil {
		return
	}
	m.skipped.WithLabelValues(reason).Inc()
}
