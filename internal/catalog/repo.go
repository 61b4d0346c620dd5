package catalog

import (
	"context"
	"errors"

	"github.com/gang93/pos-backend/internal/repo"
	"github.com/gang93/pos-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository reads menu and add-on reference data.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindMenuItemsByIDs(ctx context.Context, ids []int64) ([]models.MenuItem, error)
	FindMenuItem(ctx context.Context, id int64) (*models.MenuItem, error)
	ListMenuItems(ctx context.Context) ([]models.MenuItem, error)
	ListAddOns(ctx context.Context) ([]models.AddOn, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a catalog repository backed by the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Base.Tx(tx)}
}

// FindMenuItemsByIDs resolves every id in one IN query. Unknown ids are absent
// from the result.
func (r *repository) FindMenuItemsByIDs(ctx context.Context, ids []int64) ([]models.MenuItem, error) {
	if len(ids) == 0 {
		return []models.MenuItem{}, nil
	}
	var items []models.MenuItem
	if err := r.DB(ctx).
		Where("menu_item_id IN ?", ids).
		Order("menu_item_id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.DB(ctx).Where("menu_item_id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := r.DB(ctx).Order("menu_item_id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListAddOns returns the full add-on catalog in id order; the sweetness
// baseline fallback depends on this order.
func (r *repository) ListAddOns(ctx context.Context) ([]models.AddOn, error) {
	var addOns []models.AddOn
	if err := r.DB(ctx).Order("add_on_id ASC").Find(&addOns).Error; err != nil {
		return nil, err
	}
	return addOns, nil
}
