package sales

import (
	"context"
	"fmt"

	"github.com/gang93/pos-backend/pkg/db/models"
	pkgerrors "github.com/gang93/pos-backend/pkg/errors"
	"github.com/gang93/pos-backend/pkg/pagination"
	"github.com/shopspring/decimal"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Report is a page of ledger rows plus totals over every matching row.
type Report struct {
	Sales        []models.Sale   `json:"sales"`
	TotalSales   int64           `json:"totalSales"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

// Service exposes sales-ledger reporting.
type Service interface {
	Report(ctx context.Context, filter Filter) (*Report, error)
}

type service struct {
	repo Repository
}

// NewService wires the sales service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Report(ctx context.Context, filter Filter) (*Report, error) {
	if (filter.StartDate == nil) != (filter.EndDate == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "startDate and endDate must be provided together")
	}
	if filter.StartDate != nil && filter.EndDate.Before(filter.StartDate.Time) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "endDate must not precede startDate")
	}
	filter.Limit = pagination.Clamp(filter.Limit, defaultListLimit, maxListLimit)

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sales")
	}
	totals, err := s.repo.Totals(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum sales")
	}
	return &Report{
		Sales:        rows,
		TotalSales:   totals.UnitsSold,
		TotalRevenue: totals.Revenue,
	}, nil
}
