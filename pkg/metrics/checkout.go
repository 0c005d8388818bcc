package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout outcomes used as label values.
const (
	OutcomeSuccess         = "success"
	OutcomeValidation      = "validation_failed"
	OutcomePersistFailed   = "persist_failed"
	OutcomeAlreadyRunning  = "already_processing"
	OutcomeStateConflict   = "state_conflict"
	OutcomeNotifyFailed    = "notify_failed"
	OutcomeNotifyDelivered = "notify_delivered"
)

// CheckoutMetrics records finalize attempts, their latency and notifier results.
type CheckoutMetrics struct {
	finalize *prometheus.CounterVec
	duration *prometheus.HistogramVec
	notify   *prometheus.CounterVec
	cartOps  *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	finalize := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_finalize_total",
		Help: "Checkout finalize attempts by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_finalize_duration_seconds",
		Help:    "Duration of checkout finalize calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	notify := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_notify_total",
		Help: "Seller notification attempts by outcome.",
	}, []string{"outcome"})
	cartOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart mutations by operation.",
	}, []string{"op"})
	reg.MustRegister(finalize, duration, notify, cartOps)
	return &CheckoutMetrics{
		finalize: finalize,
		duration: duration,
		notify:   notify,
		cartOps:  cartOps,
	}
}

// ObserveFinalize counts one finalize attempt and records its duration.
func (c *CheckoutMetrics) ObserveFinalize(outcome string, duration time.Duration) {
	if c == nil || c.finalize == nil {
		return
	}
	label := normalizeLabel(outcome)
	c.finalize.WithLabelValues(label).Inc()
	c.duration.WithLabelValues(label).Observe(duration.Seconds())
}

func (c *CheckoutMetrics) IncNotify(outcome string) {
	if c == nil || c.notify == nil {
		return
	}
	c.notify.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (c *CheckoutMetrics) IncCartOp(op string) {
	if c == nil || c.cartOps == nil {
		return
	}
	c.cartOps.WithLabelValues(normalizeLabel(op)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
