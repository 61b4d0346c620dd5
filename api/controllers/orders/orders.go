package orders

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/gang93/pos-backend/api/responses"
	"github.com/gang93/pos-backend/api/validators"
	"github.com/gang93/pos-backend/internal/fulfillment"
	internalorders "github.com/gang93/pos-backend/internal/orders"
	"github.com/gang93/pos-backend/internal/orders/history"
	dbtypes "github.com/gang93/pos-backend/pkg/db/types"
	"github.com/gang93/pos-backend/pkg/enums"
	pkgerrors "github.com/gang93/pos-backend/pkg/errors"
	"github.com/gang93/pos-backend/pkg/logger"
	"github.com/gang93/pos-backend/pkg/pagination"
	"github.com/gang93/pos-backend/pkg/types"
)

type placeOrderRequest struct {
	CustomerID *int64             `json:"customerId,omitempty" validate:"omitempty,gt=0"`
	Items      []cartLineRequest  `json:"items" validate:"required,min=1,dive"`
	OrderType  string             `json:"orderType" validate:"required,oneof=card cash void"`
	Tip        *decimal.Decimal   `json:"tip,omitempty"`
	Date       *dbtypes.Date      `json:"date,omitempty"`
	Time       *dbtypes.ClockTime `json:"time,omitempty"`
}

type cartLineRequest struct {
	MenuItemID int64   `json:"menuItemId" validate:"required,gt=0"`
	Quantity   int     `json:"quantity" validate:"required,min=1"`
	AddOnIDs   []int64 `json:"addOnIDs" validate:"omitempty,dive,gt=0"`
	Ice        string  `json:"ice" validate:"omitempty,oneof=light normal extra"`
	Sweetness  string  `json:"sweetness" validate:"required,oneof=0% 25% 50% 75% 100%"`
}

func (p placeOrderRequest) toInput() fulfillment.PlaceOrderInput {
	lines := make([]types.CartLine, 0, len(p.Items))
	for _, item := range p.Items {
		addOns := item.AddOnIDs
		if addOns == nil {
			addOns = []int64{}
		}
		lines = append(lines, types.CartLine{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			AddOnIDs:   addOns,
			Ice:        enums.IceLevel(item.Ice),
			Sweetness:  enums.Sweetness(item.Sweetness),
		})
	}
	tip := decimal.Zero
	if p.Tip != nil {
		tip = *p.Tip
	}
	return fulfillment.PlaceOrderInput{
		CustomerID: p.CustomerID,
		Items:      lines,
		OrderType:  enums.OrderType(p.OrderType),
		Tip:        tip,
		Date:       p.Date,
		Time:       p.Time,
	}
}

// Place records a register order and returns its receipt. Stock is reconciled
// after the response.
func Place(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithCustomerID(ctx, payload.CustomerID)
		}
		receipt, err := svc.PlaceOrder(ctx, payload.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}

// List pages order history, newest first, with ?date, ?customerId, ?limit and ?offset.
func List(svc history.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order history unavailable"))
			return
		}

		var (
			filter internalorders.ListFilter
			err    error
		)
		if filter.Date, err = validators.ParseQueryDate(r, "date"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filter.CustomerID, err = validators.ParseQueryID(r, "customerId"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, maxOffset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.Page = pagination.Params{Limit: limit, Offset: offset}

		page, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// Detail returns one order with its recomputed total.
func Detail(svc history.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order history unavailable"))
			return
		}
		id, err := validators.ParseURLID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

const maxOffset = 1_000_000
