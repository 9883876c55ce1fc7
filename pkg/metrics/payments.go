package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records charge attempt outcomes against the provider.
type PaymentMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "charge_duration_seconds",
		Help:    "Duration of provider charge attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "charge_success",
		Help: "Charges confirmed by the provider.",
	}, []string{"provider"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "charge_failure",
		Help: "Charge attempts rejected by the provider, by error kind.",
	}, []string{"provider", "kind"})
	reg.MustRegister(duration, success, failure)
	return &PaymentMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration of a charge attempt.
func (p *PaymentMetrics) ObserveDuration(provider string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(provider)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the provider.
func (p *PaymentMetrics) IncSuccess(provider string) {
	if p == nil || p.success == nil {
		return
	}
	p.success.WithLabelValues(normalizeLabel(provider)).Inc()
}

// IncFailure increments the failure counter for the provider and error kind.
func (p *PaymentMetrics) IncFailure(provider, kind string) {
	if p == nil || p.failure == nil {
		return
	}
	p.failure.WithLabelValues(normalizeLabel(provider), normalizeLabel(kind)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
