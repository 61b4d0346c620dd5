package controllers

import (
	"net/http"

	"github.com/gang93/pos-backend/api/responses"
	"github.com/gang93/pos-backend/api/validators"
	"github.com/gang93/pos-backend/internal/sales"
	pkgerrors "github.com/gang93/pos-backend/pkg/errors"
	"github.com/gang93/pos-backend/pkg/logger"
)

const maxItemNameLen = 100

// SalesReport serves the ledger with ?date or ?startDate&endDate, ?itemName
// and ?limit.
func SalesReport(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}
		var (
			filter sales.Filter
			err    error
		)
		if filter.Date, err = validators.ParseQueryDate(r, "date"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filter.StartDate, err = validators.ParseQueryDate(r, "startDate"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filter.EndDate, err = validators.ParseQueryDate(r, "endDate"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filter.Limit, err = validators.ParseQueryInt(r, "limit", 0, 1, 1000); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.ItemName = validators.SanitizeString(r.URL.Query().Get("itemName"), maxItemNameLen)

		report, err := svc.Report(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
