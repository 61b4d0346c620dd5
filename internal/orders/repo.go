package orders

import (
	"context"
	"errors"

	"github.com/gang93/pos-backend/internal/repo"
	"github.com/gang93/pos-backend/pkg/db/models"
	"gorm.io/gorm"
)

// OrderIDSequence is the Postgres sequence backing order ids.
const OrderIDSequence = "orders_order_id_seq"

type repository struct {
	repo.Base
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Base.Tx(tx)}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.DB(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := r.DB(ctx).Where("order_id = ?", id).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns the newest orders first along with the unpaged match count.
func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error) {
	page := filter.Page.Normalize()
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Date != nil {
			db = db.Where("order_date = ?", *filter.Date)
		}
		if filter.CustomerID != nil {
			db = db.Where("customer_id = ?", *filter.CustomerID)
		}
		return db
	}

	var total int64
	if err := r.DB(ctx).Model(&models.Order{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Order
	err := r.DB(ctx).
		Scopes(scope).
		Order("order_date DESC").
		Order("order_time DESC").
		Order("order_id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) MaxID(ctx context.Context) (int64, error) {
	var max int64
	err := r.DB(ctx).Model(&models.Order{}).
		Select("COALESCE(MAX(order_id), 0)").
		Scan(&max).Error
	return max, err
}

// NextSequenceValue draws from the Postgres order id sequence.
func (r *repository) NextSequenceValue(ctx context.Context) (int64, error) {
	var next int64
	err := r.DB(ctx).Raw("SELECT nextval(?)", OrderIDSequence).Scan(&next).Error
	return next, err
}
