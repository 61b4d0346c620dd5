package fulfillment

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/gang93/pos-backend/internal/catalog"
	"github.com/gang93/pos-backend/internal/customers"
	"github.com/gang93/pos-backend/internal/orders"
	"github.com/gang93/pos-backend/internal/reconciliation"
	"github.com/gang93/pos-backend/pkg/db"
	"github.com/gang93/pos-backend/pkg/db/dbtest"
	"github.com/gang93/pos-backend/pkg/db/models"
	"github.com/gang93/pos-backend/pkg/enums"
	pkgerrors "github.com/gang93/pos-backend/pkg/errors"
	"github.com/gang93/pos-backend/pkg/logger"
	"github.com/gang93/pos-backend/pkg/metrics"
	"github.com/gang93/pos-backend/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingScheduler struct {
	mu   sync.Mutex
	jobs []reconciliation.Job
}

func (r *recordingScheduler) Schedule(_ context.Context, job reconciliation.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
}

func (r *recordingScheduler) Jobs() []reconciliation.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]reconciliation.Job(nil), r.jobs...)
}

// memoryCounters stands in for the Redis counter store.
type memoryCounters struct {
	mu     sync.Mutex
	values map[string]int64
}

func (m *memoryCounters) CounterKey(name string) string { return "pos:counter:" + name }

func (m *memoryCounters) SeededIncr(ctx context.Context, key string, seed func(context.Context) (int64, error)) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = map[string]int64{}
	}
	if _, ok := m.values[key]; !ok {
		start, err := seed(ctx)
		if err != nil {
			return 0, err
		}
		m.values[key] = start
	}
	m.values[key]++
	return m.values[key], nil
}

// scriptedAllocator returns ids in order, repeating the last one.
type scriptedAllocator struct {
	mu  sync.Mutex
	ids []int64
}

func (s *scriptedAllocator) Name() string { return "scripted" }

func (s *scriptedAllocator) Next(context.Context, *gorm.DB) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.ids[0]
	if len(s.ids) > 1 {
		s.ids = s.ids[1:]
	}
	return id, nil
}

type fixture struct {
	conn      *gorm.DB
	svc       Service
	scheduler *recordingScheduler
	reg       *prometheus.Registry
	logs      *bytes.Buffer
}

type fixtureOption func(*ServiceParams)

func withAllocator(a orders.IDAllocator) fixtureOption {
	return func(p *ServiceParams) { p.Allocator = a }
}

func withLogOutput(w io.Writer) fixtureOption {
	return func(p *ServiceParams) {
		p.Logger = logger.New(logger.Options{ServiceName: "test", Output: w})
	}
}

var fixedNow = time.Date(2025, 3, 1, 14, 5, 9, 0, time.UTC)

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	for _, item := range testMenu() {
		item := item
		dbtest.Seed(t, conn, &item)
	}
	for _, addOn := range testAddOns() {
		addOn := addOn
		dbtest.Seed(t, conn, &addOn)
	}
	dbtest.Seed(t, conn, &models.CustomerReward{CustomerID: 901, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Points: 3})

	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn))
	require.NoError(t, err)
	ordersRepo := orders.NewRepository(conn)
	allocator, err := orders.NewIDAllocator("redis", ordersRepo, &memoryCounters{})
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	reg := prometheus.NewRegistry()
	scheduler := &recordingScheduler{}
	params := ServiceParams{
		DB:        db.FromGorm(conn),
		Catalog:   catalogSvc,
		Orders:    ordersRepo,
		Customers: customers.NewRepository(conn),
		Allocator: allocator,
		Scheduler: scheduler,
		Logger:    logger.New(logger.Options{ServiceName: "test", Output: logs}),
		Metrics:   metrics.NewFulfillmentMetrics(reg),
		Now:       func() time.Time { return fixedNow },
	}
	for _, opt := range opts {
		opt(&params)
	}
	svc, err := NewService(params)
	require.NoError(t, err)
	return &fixture{conn: conn, svc: svc, scheduler: scheduler, reg: reg, logs: logs}
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.conn.Model(model).Count(&n).Error)
	return n
}

func (f *fixture) points(t *testing.T, id int64) int {
	t.Helper()
	var customer models.CustomerReward
	require.NoError(t, f.conn.Where("customer_id = ?", id).First(&customer).Error)
	return customer.Points
}

func customerID(id int64) *int64 { return &id }

func TestPlaceOrderScenario(t *testing.T) {
	f := newFixture(t)
	receipt, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: customerID(901),
		Items:      []types.CartLine{line(1, 2, enums.Sweetness50, 9)},
		OrderType:  enums.OrderTypeCard,
		Tip:        dec("2.25"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), receipt.OrderID)
	assert.Equal(t, "Order completed successfully", receipt.Message)
	assert.True(t, receipt.Total.Equal(dec("13.25")), "total %s", receipt.Total)

	var order models.Order
	require.NoError(t, f.conn.First(&order, "order_id = ?", receipt.OrderID).Error)
	assert.Equal(t, "2025-03-01", order.OrderDate.String())
	assert.Equal(t, "14:05:09", order.OrderTime.String())
	assert.Equal(t, enums.OrderTypeCard, order.OrderType)
	payload, err := types.DecodeOrderPayload(order.PayloadVersion, order.Payload)
	require.NoError(t, err)
	require.Len(t, payload.Items, 1)
	assert.True(t, payload.Tip.Equal(dec("2.25")))

	assert.Equal(t, 3+11, f.points(t, 901), "floor of the pre-tip subtotal")

	jobs := f.scheduler.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, receipt.OrderID, jobs[0].OrderID)
	assert.True(t, jobs[0].Deltas[sugarID].Equal(dec("4")))
	assert.True(t, jobs[0].Deltas[syrupID].Equal(dec("30")))
	assert.Len(t, jobs[0].Sales, 2)
	assert.Contains(t, f.logs.String(), "order.placed")
}

func TestPlaceOrderEmptyCartWritesNothing(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: customerID(901),
		OrderType:  enums.OrderTypeCash,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Zero(t, f.count(t, &models.Order{}))
	assert.Equal(t, 3, f.points(t, 901))
	assert.Empty(t, f.scheduler.Jobs())
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture(t)
	cases := map[string]PlaceOrderInput{
		"bad order type":    {Items: []types.CartLine{line(1, 1, enums.Sweetness50)}, OrderType: "credit"},
		"zero quantity":     {Items: []types.CartLine{line(1, 0, enums.Sweetness50)}, OrderType: enums.OrderTypeCash},
		"unknown sweetness": {Items: []types.CartLine{line(404, 1, "60%")}, OrderType: enums.OrderTypeCash},
		"negative tip":      {Items: []types.CartLine{line(1, 1, enums.Sweetness50)}, OrderType: enums.OrderTypeCash, Tip: dec("-1")},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.PlaceOrder(context.Background(), input)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
	assert.Zero(t, f.count(t, &models.Order{}))
}

func TestPlaceOrderUnknownMenuItemContributesNothing(t *testing.T) {
	f := newFixture(t)
	receipt, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		Items: []types.CartLine{
			line(1, 1, enums.Sweetness0),
			line(404, 5, enums.Sweetness100, 3),
		},
		OrderType: enums.OrderTypeCash,
	})
	require.NoError(t, err)
	assert.True(t, receipt.Total.Equal(dec("5.00")))

	jobs := f.scheduler.Jobs()
	require.Len(t, jobs, 1)
	assert.Len(t, jobs[0].Deltas, 1)
	assert.Len(t, jobs[0].Sales, 1)
	assert.Contains(t, f.logs.String(), `"unmatched_lines":1`)
	assert.NoError(t, testutil.GatherAndCompare(f.reg, bytes.NewBufferString(`
# HELP order_unmatched_lines_total Cart lines dropped because their menu item did not resolve.
# TYPE order_unmatched_lines_total counter
order_unmatched_lines_total 1
`), "order_unmatched_lines_total"))
}

func TestPlaceOrderUnknownCustomerRollsBack(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: customerID(404),
		Items:      []types.CartLine{line(1, 1, enums.Sweetness50)},
		OrderType:  enums.OrderTypeCard,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Zero(t, f.count(t, &models.Order{}))
	assert.Empty(t, f.scheduler.Jobs())
}

func TestPlaceOrderVoidEarnsNoPointsButReconciles(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: customerID(901),
		Items:      []types.CartLine{line(2, 4, enums.Sweetness100)},
		OrderType:  enums.OrderTypeVoid,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, f.points(t, 901))
	assert.Equal(t, int64(1), f.count(t, &models.Order{}))
	assert.Len(t, f.scheduler.Jobs(), 1)
}

func TestPlaceOrderConcurrentOrdersGetDistinctIDs(t *testing.T) {
	f := newFixture(t, withLogOutput(io.Discard))
	const n = 10

	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			receipt, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
				CustomerID: customerID(901),
				Items:      []types.CartLine{line(1, 1, enums.Sweetness50)},
				OrderType:  enums.OrderTypeCash,
			})
			if assert.NoError(t, err) {
				ids <- receipt.OrderID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate order id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, int64(n), f.count(t, &models.Order{}))
	assert.Equal(t, 3+5*n, f.points(t, 901))
}

func TestPlaceOrderRetriesOnIDCollision(t *testing.T) {
	allocator := &scriptedAllocator{ids: []int64{1, 1, 2}}
	f := newFixture(t, withAllocator(allocator))
	input := PlaceOrderInput{
		CustomerID: customerID(901),
		Items:      []types.CartLine{line(1, 1, enums.Sweetness50)},
		OrderType:  enums.OrderTypeCash,
	}

	first, err := f.svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)
	second, err := f.svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.OrderID)
	assert.Equal(t, int64(2), second.OrderID)
	assert.Equal(t, 3+5+5, f.points(t, 901), "the collided attempt rolled back its points")
	assert.NoError(t, testutil.GatherAndCompare(f.reg, bytes.NewBufferString(`
# HELP order_id_allocation_retries_total Order transactions retried after an order id collision.
# TYPE order_id_allocation_retries_total counter
order_id_allocation_retries_total 1
`), "order_id_allocation_retries_total"))
}

func TestPlaceOrderExhaustedRetriesIsConflict(t *testing.T) {
	f := newFixture(t, withAllocator(&scriptedAllocator{ids: []int64{1}}))
	input := PlaceOrderInput{
		Items:     []types.CartLine{line(1, 1, enums.Sweetness50)},
		OrderType: enums.OrderTypeCash,
	}
	_, err := f.svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)

	_, err = f.svc.PlaceOrder(context.Background(), input)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	assert.Equal(t, int64(1), f.count(t, &models.Order{}))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}
