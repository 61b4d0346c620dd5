// Package history serves stored orders with totals recomputed from the
// current catalog by the same pricing rule used when the order was placed.
package history

import (
	"context"
	"fmt"

	"github.com/gang93/pos-backend/internal/catalog"
	"github.com/gang93/pos-backend/internal/fulfillment"
	"github.com/gang93/pos-backend/internal/orders"
	"github.com/gang93/pos-backend/pkg/db/models"
	dbtypes "github.com/gang93/pos-backend/pkg/db/types"
	"github.com/gang93/pos-backend/pkg/enums"
	pkgerrors "github.com/gang93/pos-backend/pkg/errors"
	"github.com/gang93/pos-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// OrderView is an order row with its decoded payload and derived total.
type OrderView struct {
	OrderID    int64             `json:"orderId"`
	Date       dbtypes.Date      `json:"date"`
	Time       dbtypes.ClockTime `json:"time"`
	CustomerID *int64            `json:"customerId"`
	OrderType  enums.OrderType   `json:"orderType"`
	Items      []types.CartLine  `json:"items"`
	Tip        decimal.Decimal   `json:"tip"`
	Total      decimal.Decimal   `json:"total"`
}

// Page is one window of order history.
type Page struct {
	Orders []OrderView `json:"orders"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// Service reads order history.
type Service interface {
	List(ctx context.Context, filter orders.ListFilter) (*Page, error)
	Get(ctx context.Context, id int64) (*OrderView, error)
}

type service struct {
	orders  orders.Repository
	catalog catalog.Service
}

// NewService wires the order history service.
func NewService(ordersRepo orders.Repository, catalogSvc catalog.Service) (Service, error) {
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	return &service{orders: ordersRepo, catalog: catalogSvc}, nil
}

func (s *service) List(ctx context.Context, filter orders.ListFilter) (*Page, error) {
	filter.Page = filter.Page.Normalize()
	rows, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	views, err := s.present(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &Page{
		Orders: views,
		Total:  total,
		Limit:  filter.Page.Limit,
		Offset: filter.Page.Offset,
	}, nil
}

func (s *service) Get(ctx context.Context, id int64) (*OrderView, error) {
	row, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get order")
	}
	if row == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	views, err := s.present(ctx, []models.Order{*row})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// present decodes every payload, then prices the whole batch against one
// catalog snapshot.
func (s *service) present(ctx context.Context, rows []models.Order) ([]OrderView, error) {
	payloads := make([]types.OrderPayload, len(rows))
	var menuIDs []int64
	for i, row := range rows {
		payload, err := types.DecodeOrderPayload(row.PayloadVersion, row.Payload)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode order payload").
				WithDetails(map[string]any{"orderId": row.OrderID})
		}
		payloads[i] = payload
		for _, line := range payload.Items {
			menuIDs = append(menuIDs, line.MenuItemID)
		}
	}

	snapshot, err := s.catalog.LoadSnapshot(ctx, nil, menuIDs)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, len(rows))
	for i, row := range rows {
		items := payloads[i].Items
		if items == nil {
			items = []types.CartLine{}
		}
		quote := fulfillment.Price(snapshot, items, payloads[i].Tip)
		views[i] = OrderView{
			OrderID:    row.OrderID,
			Date:       row.OrderDate,
			Time:       row.OrderTime,
			CustomerID: row.CustomerID,
			OrderType:  row.OrderType,
			Items:      items,
			Tip:        quote.Tip,
			Total:      quote.Total,
		}
	}
	return views, nil
}
