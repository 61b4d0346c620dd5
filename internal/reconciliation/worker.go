package reconciliation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gang93/pos-backend/internal/inventory"
	"github.com/gang93/pos-backend/internal/sales"
	"github.com/gang93/pos-backend/pkg/db"
	"github.com/gang93/pos-backend/pkg/db/models"
	"github.com/gang93/pos-backend/pkg/logger"
	"github.com/gang93/pos-backend/pkg/metrics"
	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"
)

const (
	defaultConcurrency = 8
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 3
)

// WorkerParams wires the reconciliation worker.
type WorkerParams struct {
	DB          db.TxRunner
	Inventory   inventory.Repository
	Sales       sales.Repository
	Logger      *logger.Logger
	Metrics     *metrics.ReconciliationMetrics
	Concurrency int
	Timeout     time.Duration
	MaxAttempts int
}

// Worker applies ingredient decrements and sales-ledger rows after the order
// response has gone out. Runs are best effort: a failed run is logged and
// counted, never retried later, and never reported to the caller.
type Worker struct {
	db          db.TxRunner
	inventory   inventory.Repository
	sales       sales.Repository
	logg        *logger.Logger
	metrics     *metrics.ReconciliationMetrics
	timeout     time.Duration
	maxAttempts int

	sem     *semaphore.Weighted
	wg      sync.WaitGroup
	closing atomic.Bool
}

// NewWorker validates params and applies defaults.
func NewWorker(params WorkerParams) (*Worker, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if params.Sales == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Concurrency <= 0 {
		params.Concurrency = defaultConcurrency
	}
	if params.Timeout <= 0 {
		params.Timeout = defaultTimeout
	}
	if params.MaxAttempts <= 0 {
		params.MaxAttempts = defaultMaxAttempts
	}
	return &Worker{
		db:          params.DB,
		inventory:   params.Inventory,
		sales:       params.Sales,
		logg:        params.Logger,
		metrics:     params.Metrics,
		timeout:     params.Timeout,
		maxAttempts: params.MaxAttempts,
		sem:         semaphore.NewWeighted(int64(params.Concurrency)),
	}, nil
}

// Schedule runs job on its own goroutine. The run keeps ctx's log fields but
// not its cancellation, so a finished request does not abort it.
func (w *Worker) Schedule(ctx context.Context, job Job) {
	detached := w.logg.WithOrderID(context.WithoutCancel(ctx), job.OrderID)
	if w.closing.Load() {
		w.logg.Warn(detached, "reconciliation.dropped")
		w.metrics.IncFailure()
		return
	}

	w.wg.Add(1)
	w.metrics.IncInflight()
	go func() {
		defer w.wg.Done()
		defer w.metrics.DecInflight()

		if err := w.sem.Acquire(detached, 1); err != nil {
			return
		}
		defer w.sem.Release(1)

		runCtx, cancel := context.WithTimeout(detached, w.timeout)
		defer cancel()
		_ = w.Process(runCtx, job)
	}()
}

// Drain stops accepting jobs and waits for in-flight runs until ctx ends.
func (w *Worker) Drain(ctx context.Context) error {
	w.closing.Store(true)
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("reconciliation drain: %w", ctx.Err())
	}
}

// Process runs one job synchronously. The error is returned for tests and
// Schedule discards it after logging.
func (w *Worker) Process(ctx context.Context, job Job) error {
	start := time.Now()
	skipped, err := w.apply(ctx, job)
	w.metrics.ObserveDuration(time.Since(start))
	if err != nil {
		w.metrics.IncFailure()
		w.logg.Error(w.logg.WithFields(ctx, map[string]any{
			"order_id":    job.OrderID,
			"ingredients": len(job.Deltas),
			"sales_lines": len(job.Sales),
		}), "reconciliation.failed", err)
		return err
	}

	for _, itemID := range skipped {
		w.metrics.IncStockSkipped()
		w.logg.Warn(w.logg.WithFields(ctx, map[string]any{
			"order_id": job.OrderID,
			"item_id":  itemID,
			"delta":    job.Deltas[itemID].String(),
		}), "reconciliation.stock_skipped")
	}
	w.metrics.IncSuccess()
	w.logg.Info(w.logg.WithFields(ctx, map[string]any{
		"order_id":      job.OrderID,
		"ingredients":   len(job.Deltas),
		"stock_skipped": len(skipped),
		"sales_lines":   len(job.Sales),
	}), "reconciliation.completed")
	return nil
}

// apply retries the whole transaction when a concurrent run claimed the same
// sales ids. A rolled back attempt has decremented nothing.
func (w *Worker) apply(ctx context.Context, job Job) ([]int64, error) {
	var (
		skipped []int64
		err     error
	)
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		skipped, err = w.applyOnce(ctx, job)
		if err == nil || !db.IsUniqueViolation(err, "sales_pkey", "sales.sale_id") {
			return skipped, err
		}
		w.logg.Warn(w.logg.WithField(ctx, "attempt", attempt), "reconciliation.sales_id_collision")
	}
	return nil, err
}

func (w *Worker) applyOnce(ctx context.Context, job Job) ([]int64, error) {
	var skipped []int64
	err := w.db.WithTx(ctx, func(tx *gorm.DB) error {
		stock := w.inventory.WithTx(tx)
		for _, itemID := range job.Deltas.ItemIDs() {
			delta := job.Deltas[itemID]
			if !delta.IsPositive() {
				continue
			}
			applied, err := stock.DecrementIfAvailable(ctx, itemID, delta)
			if err != nil {
				return fmt.Errorf("decrement item %d: %w", itemID, err)
			}
			if !applied {
				skipped = append(skipped, itemID)
			}
		}
		return w.recordSales(ctx, w.sales.WithTx(tx), job)
	})
	if err != nil {
		return nil, err
	}
	return skipped, nil
}

// recordSales writes one row per descriptor with ids in a contiguous block
// after the current maximum.
func (w *Worker) recordSales(ctx context.Context, ledger sales.Repository, job Job) error {
	if len(job.Sales) == 0 {
		return nil
	}
	maxID, err := ledger.MaxID(ctx)
	if err != nil {
		return fmt.Errorf("read max sale id: %w", err)
	}

	orderID := job.OrderID
	rows := make([]models.Sale, 0, len(job.Sales))
	for i, line := range job.Sales {
		rows = append(rows, models.Sale{
			SaleID:     maxID + int64(i) + 1,
			OrderID:    &orderID,
			ItemName:   line.ItemName,
			AmountSold: line.Quantity,
			SaleDate:   job.Date,
			SaleTime:   job.Time,
		})
	}
	if err := ledger.CreateBatch(ctx, rows); err != nil {
		return fmt.Errorf("insert sales: %w", err)
	}
	return nil
}
