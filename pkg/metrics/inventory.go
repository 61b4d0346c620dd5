package metrics

import "github.com/prometheus/client_golang/prometheus"

// InventoryMetrics exposes stock health observed by the low-stock sweep.
type InventoryMetrics struct {
	lowStock prometheus.Gauge
}

// NewInventoryMetrics registers the inventory gauges on reg.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	lowStock := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "inventory_low_stock_items",
		Help: "Ingredients below the low-stock threshold at the last sweep.",
	})
	reg.MustRegister(lowStock)
	return &InventoryMetrics{lowStock: lowStock}
}

func (m *InventoryMetrics) SetLowStock(n int) {
	if m == nil || m.lowStock == nil {
		return
	}
	m.lowStock.Set(float64(n))
}
