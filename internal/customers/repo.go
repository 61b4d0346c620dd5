package customers

import (
	"context"
	"errors"
	"strings"

	"github.com/gang93/pos-backend/internal/repo"
	"github.com/gang93/pos-backend/pkg/db/models"
	"gorm.io/gorm"
)

const unfilteredListLimit = 100

// Repository persists loyalty members and their point balances.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, search string) ([]models.CustomerReward, error)
	FindByID(ctx context.Context, id int64) (*models.CustomerReward, error)
	Create(ctx context.Context, customer *models.CustomerReward) error
	AddPoints(ctx context.Context, id int64, delta int64) (bool, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a customers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Base.Tx(tx)}
}

// List matches search case-insensitively against names and email, and as a
// substring of the phone number. Without search it returns the first 100 by name.
func (r *repository) List(ctx context.Context, search string) ([]models.CustomerReward, error) {
	query := r.DB(ctx).Model(&models.CustomerReward{})
	search = strings.TrimSpace(search)
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR phone_number LIKE ?",
			pattern, pattern, pattern, "%"+search+"%",
		)
	} else {
		query = query.Limit(unfilteredListLimit)
	}

	var rows []models.CustomerReward
	if err := query.Order("last_name ASC").Order("first_name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.CustomerReward, error) {
	var customer models.CustomerReward
	err := r.DB(ctx).Where("customer_id = ?", id).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) Create(ctx context.Context, customer *models.CustomerReward) error {
	return r.DB(ctx).Create(customer).Error
}

// AddPoints applies delta in a single conditional UPDATE so concurrent
// adjustments never lose increments or overdraw the balance. It reports false
// when no row matched: the customer is missing or the balance would go negative.
func (r *repository) AddPoints(ctx context.Context, id int64, delta int64) (bool, error) {
	res := r.DB(ctx).Model(&models.CustomerReward{}).
		Where("customer_id = ? AND points + ? >= 0", id, delta).
		Update("points", gorm.Expr("points + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
