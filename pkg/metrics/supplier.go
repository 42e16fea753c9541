package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SupplierMetrics records supplier API call durations and failures.
type SupplierMetrics struct {
	duration *prometheus.HistogramVec
	failure  *prometheus.CounterVec
}

// NewSupplierMetrics registers the supplier metrics on the provided registerer.
func NewSupplierMetrics(reg prometheus.Registerer) *SupplierMetrics {
	if reg == nil {
		return &SupplierMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "supplier_request_duration_seconds",
		Help:    "Duration of supplier API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "supplier_request_failures_total",
		Help: "Failed supplier API calls.",
	}, []string{"operation"})
	reg.MustRegister(duration, failure)
	return &SupplierMetrics{duration: duration, failure: failure}
}

// ObserveDuration records the duration of the named supplier operation.
func (m *SupplierMetrics) ObserveDuration(operation string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncFailure counts a failed supplier call.
func (m *SupplierMetrics) IncFailure(operation string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(operation).Inc()
}
