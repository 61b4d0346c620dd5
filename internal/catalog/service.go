package catalog

import (
	"context"
	"fmt"

	"github.com/gang93/pos-backend/pkg/db/models"
	pkgerrors "github.com/gang93/pos-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service exposes catalog reads to controllers and the order pipeline.
type Service interface {
	LoadSnapshot(ctx context.Context, tx *gorm.DB, menuIDs []int64) (*Snapshot, error)
	ListMenu(ctx context.Context) ([]models.MenuItem, error)
	GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error)
	ListAddOns(ctx context.Context) ([]models.AddOn, error)
}

type service struct {
	repo Repository
}

// NewService wires a catalog service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// LoadSnapshot issues one batched menu query and one add-on catalog query.
// When tx is non-nil the reads join that transaction.
func (s *service) LoadSnapshot(ctx context.Context, tx *gorm.DB, menuIDs []int64) (*Snapshot, error) {
	repo := s.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	menu, err := repo.FindMenuItemsByIDs(ctx, uniqueIDs(menuIDs))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load menu items")
	}
	addOns, err := repo.ListAddOns(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load add-ons")
	}
	return NewSnapshot(menu, addOns), nil
}

func (s *service) ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	items, err := s.repo.ListMenuItems(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list menu")
	}
	return items, nil
}

func (s *service) GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	item, err := s.repo.FindMenuItem(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get menu item")
	}
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	return item, nil
}

func (s *service) ListAddOns(ctx context.Context) ([]models.AddOn, error) {
	addOns, err := s.repo.ListAddOns(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list add-ons")
	}
	return addOns, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
