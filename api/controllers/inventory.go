package controllers

import (
	"net/http"
	"time"

	"github.com/gang93/pos-backend/api/responses"
	"github.com/gang93/pos-backend/api/validators"
	"github.com/gang93/pos-backend/internal/inventory"
	"github.com/gang93/pos-backend/pkg/db/models"
	pkgerrors "github.com/gang93/pos-backend/pkg/errors"
	"github.com/gang93/pos-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

type inventoryItemResponse struct {
	ItemID    int64           `json:"itemId"`
	ItemName  string          `json:"itemName"`
	Quantity  decimal.Decimal `json:"quantity"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type setQuantityRequest struct {
	Quantity *decimal.Decimal `json:"quantity" validate:"required"`
}

func toInventoryResponses(items []models.InventoryItem) []inventoryItemResponse {
	out := make([]inventoryItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toInventoryResponse(item))
	}
	return out
}

func toInventoryResponse(item models.InventoryItem) inventoryItemResponse {
	return inventoryItemResponse{
		ItemID:    item.ItemID,
		ItemName:  item.ItemName,
		Quantity:  item.Quantity,
		UpdatedAt: item.UpdatedAt,
	}
}

func ListInventory(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}
		items, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toInventoryResponses(items))
	}
}

func GetInventoryItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}
		id, err := validators.ParseURLID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toInventoryResponse(*item))
	}
}

// SetInventoryQuantity records a manager stock correction.
func SetInventoryQuantity(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}
		id, err := validators.ParseURLID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.SetQuantity(r.Context(), id, *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{"item_id": id, "quantity": item.Quantity.String()})
			logg.Info(ctx, "inventory.quantity_set")
		}
		responses.WriteSuccess(w, toInventoryResponse(*item))
	}
}

// LowStock lists items under ?threshold, defaulting to the service default.
func LowStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}
		threshold, err := validators.ParseQueryDecimal(r, "threshold")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.LowStock(r.Context(), threshold)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toInventoryResponses(items))
	}
}
