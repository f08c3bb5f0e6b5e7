package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records order placement and lifecycle outcomes.
type OrderMetrics struct {
	placed        *prometheus.CounterVec
	rejected      *prometheus.CounterVec
	duration      prometheus.Histogram
	statusChanges *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer. A nil
// registerer yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	placed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feedmill_orders_placed_total",
		Help: "Orders committed, by payment method.",
	}, []string{"payment_method"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feedmill_orders_rejected_total",
		Help: "Order placements rolled back, by error code.",
	}, []string{"reason"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "feedmill_order_placement_seconds",
		Help:    "Time spent in the order placement transaction.",
		Buckets: prometheus.DefBuckets,
	})
	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feedmill_order_status_changes_total",
		Help: "Order status transitions, by target status.",
	}, []string{"status"})
	reg.MustRegister(placed, rejected, duration, statusChanges)
	return &OrderMetrics{
		placed:        placed,
		rejected:      rejected,
		duration:      duration,
		statusChanges: statusChanges,
	}
}

// IncPlaced counts a committed order.
func (o *OrderMetrics) IncPlaced(paymentMethod string) {
	if o == nil || o.placed == nil {
		return
	}
	o.placed.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

// IncRejected counts a placement that did not commit.
func (o *OrderMetrics) IncRejected(reason string) {
	if o == nil || o.rejected == nil {
		return
	}
	o.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

// ObservePlacement records how long a placement took.
func (o *OrderMetrics) ObservePlacement(d time.Duration) {
	if o == nil || o.duration == nil {
		return
	}
	o.duration.Observe(d.Seconds())
}

// IncStatusChange counts a status write.
func (o *OrderMetrics) IncStatusChange(status string) {
	if o == nil || o.statusChanges == nil {
		return
	}
	o.statusChanges.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
