package inventory

import (
	"context"
	"fmt"

	"github.com/gang93/pos-backend/pkg/db/models"
	pkgerrors "github.com/gang93/pos-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold applies when callers do not pass a threshold.
var DefaultLowStockThreshold = decimal.NewFromInt(10)

// Service exposes stock reads and manager corrections.
type Service interface {
	List(ctx context.Context) ([]models.InventoryItem, error)
	Get(ctx context.Context, id int64) (*models.InventoryItem, error)
	SetQuantity(ctx context.Context, id int64, qty decimal.Decimal) (*models.InventoryItem, error)
	LowStock(ctx context.Context, threshold *decimal.Decimal) ([]models.InventoryItem, error)
}

type service struct {
	repo Repository
}

// NewService wires the inventory service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]models.InventoryItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list inventory")
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.InventoryItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get inventory item")
	}
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
	}
	return item, nil
}

func (s *service) SetQuantity(ctx context.Context, id int64, qty decimal.Decimal) (*models.InventoryItem, error) {
	if qty.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	updated, err := s.repo.SetQuantity(ctx, id, qty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update inventory item")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
	}
	return s.Get(ctx, id)
}

func (s *service) LowStock(ctx context.Context, threshold *decimal.Decimal) ([]models.InventoryItem, error) {
	limit := DefaultLowStockThreshold
	if threshold != nil {
		limit = *threshold
	}
	items, err := s.repo.ListBelow(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list low stock")
	}
	return items, nil
}
