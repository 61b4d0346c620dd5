package controllers

import (
	"net/http"
	"strings"

	"github.com/gang93/pos-backend/api/responses"
	"github.com/gang93/pos-backend/api/validators"
	"github.com/gang93/pos-backend/internal/customers"
	"github.com/gang93/pos-backend/pkg/db/models"
	dbtypes "github.com/gang93/pos-backend/pkg/db/types"
	pkgerrors "github.com/gang93/pos-backend/pkg/errors"
	"github.com/gang93/pos-backend/pkg/logger"
)

const maxSearchLen = 100

type customerResponse struct {
	CustomerID  int64         `json:"customerId"`
	FirstName   string        `json:"firstName"`
	LastName    string        `json:"lastName"`
	DOB         *dbtypes.Date `json:"dob"`
	PhoneNumber string        `json:"phoneNumber"`
	Email       string        `json:"email"`
	Points      int           `json:"points"`
	DateJoined  dbtypes.Date  `json:"dateJoined"`
}

func toCustomerResponse(c models.CustomerReward) customerResponse {
	return customerResponse{
		CustomerID:  c.CustomerID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		DOB:         c.DOB,
		PhoneNumber: c.PhoneNumber,
		Email:       c.Email,
		Points:      c.Points,
		DateJoined:  c.DateJoined,
	}
}

type createCustomerRequest struct {
	FirstName   string        `json:"firstName" validate:"required,max=100"`
	LastName    string        `json:"lastName" validate:"required,max=100"`
	DOB         *dbtypes.Date `json:"dob,omitempty"`
	PhoneNumber string        `json:"phoneNumber" validate:"omitempty,max=32"`
	Email       string        `json:"email" validate:"required,email"`
}

type adjustPointsRequest struct {
	Points int64  `json:"points" validate:"ne=0"`
	Reason string `json:"reason,omitempty" validate:"omitempty,max=255"`
}

// ListCustomers matches ?search against name, email and phone.
func ListCustomers(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
			return
		}
		search := validators.SanitizeString(r.URL.Query().Get("search"), maxSearchLen)
		rows, err := svc.List(r.Context(), search)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]customerResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, toCustomerResponse(row))
		}
		responses.WriteSuccess(w, out)
	}
}

func GetCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
			return
		}
		id, err := validators.ParseURLID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customer, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCustomerResponse(*customer))
	}
}

func GetCustomerRewards(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
			return
		}
		id, err := validators.ParseURLID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Rewards(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CreateCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
			return
		}
		var payload createCustomerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customer, err := svc.Create(r.Context(), customers.CreateInput{
			FirstName:   payload.FirstName,
			LastName:    payload.LastName,
			DOB:         payload.DOB,
			PhoneNumber: payload.PhoneNumber,
			Email:       strings.ToLower(strings.TrimSpace(payload.Email)),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toCustomerResponse(*customer))
	}
}

// AdjustCustomerPoints earns (positive) or redeems (negative) points.
func AdjustCustomerPoints(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
			return
		}
		id, err := validators.ParseURLID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload adjustPointsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithCustomerID(ctx, &id)
		}
		view, err := svc.AdjustPoints(ctx, id, customers.AdjustPointsInput{Points: payload.Points, Reason: payload.Reason})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithFields(ctx, map[string]any{"points_delta": payload.Points, "reason": payload.Reason}), "customer.points_adjusted")
		}
		responses.WriteSuccess(w, view)
	}
}
