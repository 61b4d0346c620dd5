package controllers

import (
	"net/http"
	"time"

	"github.com/gang93/pos-backend/api/responses"
	"github.com/gang93/pos-backend/api/validators"
	"github.com/gang93/pos-backend/internal/catalog"
	"github.com/gang93/pos-backend/pkg/db/models"
	dbtypes "github.com/gang93/pos-backend/pkg/db/types"
	"github.com/gang93/pos-backend/pkg/enums"
	pkgerrors "github.com/gang93/pos-backend/pkg/errors"
	"github.com/gang93/pos-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

type menuItemResponse struct {
	MenuItemID  int64           `json:"menuItemId"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Ingredients dbtypes.Recipe  `json:"ingredients"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type addOnResponse struct {
	AddOnID     int64            `json:"addOnId"`
	Name        string           `json:"name"`
	Price       decimal.Decimal  `json:"price"`
	Ingredients dbtypes.Recipe   `json:"ingredients"`
	Role        *enums.AddOnRole `json:"role,omitempty"`
}

func toMenuItemResponse(m models.MenuItem) menuItemResponse {
	ingredients := m.Ingredients
	if ingredients == nil {
		ingredients = dbtypes.Recipe{}
	}
	return menuItemResponse{
		MenuItemID:  m.MenuItemID,
		Name:        m.Name,
		Price:       m.Price,
		Ingredients: ingredients,
		CreatedAt:   m.CreatedAt,
	}
}

// ListMenu returns every menu item ordered by id.
func ListMenu(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		items, err := svc.ListMenu(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]menuItemResponse, 0, len(items))
		for _, item := range items {
			out = append(out, toMenuItemResponse(item))
		}
		responses.WriteSuccess(w, out)
	}
}

func GetMenuItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		id, err := validators.ParseURLID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.GetMenuItem(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toMenuItemResponse(*item))
	}
}

func ListAddOns(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		addOns, err := svc.ListAddOns(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]addOnResponse, 0, len(addOns))
		for _, a := range addOns {
			ingredients := a.Ingredients
			if ingredients == nil {
				ingredients = dbtypes.Recipe{}
			}
			out = append(out, addOnResponse{
				AddOnID:     a.AddOnID,
				Name:        a.Name,
				Price:       a.Price,
				Ingredients: ingredients,
				Role:        a.Role,
			})
		}
		responses.WriteSuccess(w, out)
	}
}
