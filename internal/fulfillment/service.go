package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/gang93/pos-backend/internal/catalog"
	"github.com/gang93/pos-backend/internal/customers"
	"github.com/gang93/pos-backend/internal/orders"
	"github.com/gang93/pos-backend/internal/reconciliation"
	"github.com/gang93/pos-backend/pkg/db"
	"github.com/gang93/pos-backend/pkg/db/models"
	dbtypes "github.com/gang93/pos-backend/pkg/db/types"
	"github.com/gang93/pos-backend/pkg/enums"
	pkgerrors "github.com/gang93/pos-backend/pkg/errors"
	"github.com/gang93/pos-backend/pkg/logger"
	"github.com/gang93/pos-backend/pkg/metrics"
	"github.com/gang93/pos-backend/pkg/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultMaxAttempts = 3
	receiptMessage     = "Order completed successfully"
)

// PlaceOrderInput is a register submission. Date and Time default to now.
type PlaceOrderInput struct {
	CustomerID *int64
	Items      []types.CartLine
	OrderType  enums.OrderType
	Tip        decimal.Decimal
	Date       *dbtypes.Date
	Time       *dbtypes.ClockTime
}

// Receipt is returned once the order row and reward points are committed.
type Receipt struct {
	OrderID int64           `json:"orderId"`
	Message string          `json:"message"`
	Total   decimal.Decimal `json:"total"`
}

// Service records register orders.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Receipt, error)
}

// ServiceParams wires the order pipeline.
type ServiceParams struct {
	DB          db.TxRunner
	Catalog     catalog.Service
	Orders      orders.Repository
	Customers   customers.Repository
	Allocator   orders.IDAllocator
	Scheduler   reconciliation.Scheduler
	Logger      *logger.Logger
	Metrics     *metrics.FulfillmentMetrics
	MaxAttempts int
	Now         func() time.Time
}

type service struct {
	tx          db.TxRunner
	catalog     catalog.Service
	orders      orders.Repository
	customers   customers.Repository
	allocator   orders.IDAllocator
	scheduler   reconciliation.Scheduler
	logg        *logger.Logger
	metrics     *metrics.FulfillmentMetrics
	maxAttempts int
	now         func() time.Time
}

// NewService builds the fulfillment service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if params.Allocator == nil {
		return nil, fmt.Errorf("order id allocator required")
	}
	if params.Scheduler == nil {
		return nil, fmt.Errorf("reconciliation scheduler required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.MaxAttempts <= 0 {
		params.MaxAttempts = defaultMaxAttempts
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		tx:          params.DB,
		catalog:     params.Catalog,
		orders:      params.Orders,
		customers:   params.Customers,
		allocator:   params.Allocator,
		scheduler:   params.Scheduler,
		logg:        params.Logger,
		metrics:     params.Metrics,
		maxAttempts: params.MaxAttempts,
		now:         params.Now,
	}, nil
}

// placement carries one transaction attempt's results out of the closure.
type placement struct {
	orderID     int64
	quote       Quote
	consumption Consumption
	points      int64
}

// PlaceOrder prices the cart, commits the order row and reward points in one
// transaction, then hands inventory and ledger writes to the scheduler
// without waiting for them.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Receipt, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := s.now()
	date, clock := dbtypes.NewDate(now), dbtypes.NewClockTime(now)
	if input.Date != nil {
		date = *input.Date
	}
	if input.Time != nil {
		clock = *input.Time
	}

	menuIDs := make([]int64, len(input.Items))
	for i, line := range input.Items {
		menuIDs[i] = line.MenuItemID
	}

	var (
		result placement
		err    error
	)
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		result, err = s.placeOnce(ctx, input, menuIDs, date, clock)
		if err == nil || !db.IsUniqueViolation(err, "orders_pkey", "orders.order_id") {
			break
		}
		s.metrics.IncAllocRetry()
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"attempt":   attempt,
			"allocator": s.allocator.Name(),
		}), "order.id_collision")
	}
	if err != nil {
		if db.IsUniqueViolation(err, "orders_pkey", "orders.order_id") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "could not allocate order id")
		}
		return nil, pkgerrors.Ensure(err, pkgerrors.CodeInternal, "place order")
	}

	logCtx := s.logg.WithCustomerID(s.logg.WithOrderID(ctx, result.orderID), input.CustomerID)
	s.scheduler.Schedule(logCtx, reconciliation.Job{
		OrderID: result.orderID,
		Date:    date,
		Time:    clock,
		Deltas:  result.consumption.Deltas,
		Sales:   result.consumption.Sales,
	})

	s.metrics.IncPlaced(string(input.OrderType))
	s.metrics.AddUnmatchedLines(result.consumption.Unmatched)
	s.logg.Info(s.logg.WithFields(logCtx, map[string]any{
		"order_type":      string(input.OrderType),
		"total":           result.quote.Total.String(),
		"points":          result.points,
		"unmatched_lines": result.consumption.Unmatched,
	}), "order.placed")

	return &Receipt{
		OrderID: result.orderID,
		Message: receiptMessage,
		Total:   result.quote.Total,
	}, nil
}

func (s *service) placeOnce(ctx context.Context, input PlaceOrderInput, menuIDs []int64, date dbtypes.Date, clock dbtypes.ClockTime) (placement, error) {
	var out placement
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		snapshot, err := s.catalog.LoadSnapshot(ctx, tx, menuIDs)
		if err != nil {
			return err
		}

		var baseline *SyrupBaseline
		if b, ok := ResolveSyrupBaseline(snapshot.AddOns()); ok {
			baseline = &b
		}

		out.quote = Price(snapshot, input.Items, input.Tip)
		out.consumption, err = Aggregate(snapshot, input.Items, baseline)
		if err != nil {
			return err
		}

		payload, version, err := types.EncodeOrderPayload(types.OrderPayload{
			Items: out.consumption.Matched,
			Tip:   input.Tip,
		})
		if err != nil {
			return err
		}

		out.orderID, err = s.allocator.Next(ctx, tx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order id")
		}

		order := &models.Order{
			OrderID:        out.orderID,
			OrderDate:      date,
			OrderTime:      clock,
			CustomerID:     input.CustomerID,
			Payload:        payload,
			PayloadVersion: version,
			OrderType:      input.OrderType,
		}
		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}

		if input.CustomerID == nil || !input.OrderType.EarnsPoints() {
			return nil
		}
		out.points = out.quote.Points()
		credited, err := s.customers.WithTx(tx).AddPoints(ctx, *input.CustomerID, out.points)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "award points")
		}
		if !credited {
			return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found").
				WithDetails(map[string]any{"customerId": *input.CustomerID})
		}
		return nil
	})
	return out, err
}

func validateInput(input PlaceOrderInput) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order contains no items")
	}
	if !input.OrderType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order type").
			WithDetails(map[string]any{"orderType": string(input.OrderType)})
	}
	if input.Tip.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "tip must not be negative")
	}
	for i, line := range input.Items {
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
				WithDetails(map[string]any{"line": i})
		}
		if line.Ice != "" && !line.Ice.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid ice level").
				WithDetails(map[string]any{"line": i, "ice": string(line.Ice)})
		}
		if _, err := line.Sweetness.Multiplier(); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sweetness").
				WithDetails(map[string]any{"line": i, "sweetness": string(line.Sweetness)})
		}
	}
	return nil
}
