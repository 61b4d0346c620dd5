package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/gang93/pos-backend/internal/repo"
	"github.com/gang93/pos-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository reads and mutates on-hand ingredient stock.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.InventoryItem, error)
	FindByID(ctx context.Context, id int64) (*models.InventoryItem, error)
	SetQuantity(ctx context.Context, id int64, qty decimal.Decimal) (bool, error)
	ListBelow(ctx context.Context, threshold decimal.Decimal) ([]models.InventoryItem, error)
	DecrementIfAvailable(ctx context.Context, id int64, qty decimal.Decimal) (bool, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Base.Tx(tx)}
}

func (r *repository) List(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := r.DB(ctx).Order("item_id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.DB(ctx).Where("item_id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SetQuantity overwrites the on-hand count (manager stock correction).
func (r *repository) SetQuantity(ctx context.Context, id int64, qty decimal.Decimal) (bool, error) {
	res := r.DB(ctx).Model(&models.InventoryItem{}).
		Where("item_id = ?", id).
		Updates(map[string]any{"quantity": qty, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListBelow returns items strictly under threshold, scarcest first.
func (r *repository) ListBelow(ctx context.Context, threshold decimal.Decimal) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.DB(ctx).
		Where("quantity < ?", threshold).
		Order("quantity ASC").
		Order("item_id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// DecrementIfAvailable subtracts qty only when at least qty is on hand. The
// stock check and the write are one statement, so interleaved decrements
// never drive stock negative. It reports whether the row was changed.
func (r *repository) DecrementIfAvailable(ctx context.Context, id int64, qty decimal.Decimal) (bool, error) {
	res := r.DB(ctx).Model(&models.InventoryItem{}).
		Where("item_id = ? AND quantity >= ?", id, qty).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", qty),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
