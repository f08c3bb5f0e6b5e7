package metrics

import "github.com/prometheus/client_golang/prometheus"

// StockMetrics counts finished feed movements.
type StockMetrics struct {
	units *prometheus.CounterVec
}

func NewStockMetrics(reg prometheus.Registerer) *StockMetrics {
	if reg == nil {
		return &StockMetrics{}
	}
	units := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feedmill_stock_units_moved_total",
		Help: "Finished feed units moved, by ledger type and direction.",
	}, []string{"type", "direction"})
	reg.MustRegister(units)
	return &StockMetrics{units: units}
}

// AddUnits records qty units moved for a ledger entry.
func (s *StockMetrics) AddUnits(txnType, direction string, qty int) {
	if s == nil || s.units == nil || qty <= 0 {
		return
	}
	s.units.WithLabelValues(normalizeLabel(txnType), normalizeLabel(direction)).Add(float64(qty))
}
