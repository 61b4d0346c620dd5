package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FulfillmentMetrics records the synchronous order path.
type FulfillmentMetrics struct {
	placed         *prometheus.CounterVec
	allocRetries   prometheus.Counter
	unmatchedLines prometheus.Counter
}

// NewFulfillmentMetrics registers the order placement metrics on reg.
func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	if reg == nil {
		return &FulfillmentMetrics{}
	}
	placed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders durably recorded, by order type.",
	}, []string{"order_type"})
	allocRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_id_allocation_retries_total",
		Help: "Order transactions retried after an order id collision.",
	})
	unmatchedLines := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_unmatched_lines_total",
		Help: "Cart lines dropped because their menu item did not resolve.",
	})
	reg.MustRegister(placed, allocRetries, unmatchedLines)
	return &FulfillmentMetrics{
		placed:         placed,
		allocRetries:   allocRetries,
		unmatchedLines: unmatchedLines,
	}
}

func (m *FulfillmentMetrics) IncPlaced(orderType string) {
	if m == nil || m.placed == nil {
		return
	}
	m.placed.WithLabelValues(normalizeLabel(orderType)).Inc()
}

func (m *FulfillmentMetrics) IncAllocRetry() {
	if m == nil || m.allocRetries == nil {
		return
	}
	m.allocRetries.Inc()
}

func (m *FulfillmentMetrics) AddUnmatchedLines(n int) {
	if m == nil || m.unmatchedLines == nil || n <= 0 {
		return
	}
	m.unmatchedLines.Add(float64(n))
}

// ReconciliationMetrics records the deferred inventory and sales-ledger writes.
type ReconciliationMetrics struct {
	duration     prometheus.Histogram
	success      prometheus.Counter
	failure      prometheus.Counter
	stockSkipped prometheus.Counter
	inflight     prometheus.Gauge
}

// NewReconciliationMetrics registers the reconciliation metrics on reg.
func NewReconciliationMetrics(reg prometheus.Registerer) *ReconciliationMetrics {
	if reg == nil {
		return &ReconciliationMetrics{}
	}
	m := &ReconciliationMetrics{
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "reconciliation_duration_seconds",
			Help:    "Duration of deferred reconciliation runs in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		success: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reconciliation_success_total",
			Help: "Reconciliation runs committed.",
		}),
		failure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reconciliation_failure_total",
			Help: "Reconciliation runs that failed; inventory and sales may have drifted.",
		}),
		stockSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reconciliation_stock_skipped_total",
			Help: "Ingredient decrements skipped because on-hand stock was insufficient.",
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reconciliation_inflight",
			Help: "Reconciliation runs scheduled and not yet finished.",
		}),
	}
	reg.MustRegister(m.duration, m.success, m.failure, m.stockSkipped, m.inflight)
	return m
}

func (m *ReconciliationMetrics) ObserveDuration(d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.Observe(d.Seconds())
}

func (m *ReconciliationMetrics) IncSuccess() {
	if m == nil || m.success == nil {
		return
	}
	m.success.Inc()
}

func (m *ReconciliationMetrics) IncFailure() {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.Inc()
}

func (m *ReconciliationMetrics) IncStockSkipped() {
	if m == nil || m.stockSkipped == nil {
		return
	}
	m.stockSkipped.Inc()
}

func (m *ReconciliationMetrics) IncInflight() {
	if m == nil || m.inflight == nil {
		return
	}
	m.inflight.Inc()
}

func (m *ReconciliationMetrics) DecInflight() {
	if m == nil || m.inflight == nil {
		return
	}
	m.inflight.Dec()
}
