package orders

import (
	"context"

	"github.com/gang93/pos-backend/pkg/db/models"
	dbtypes "github.com/gang93/pos-backend/pkg/db/types"
	"github.com/gang93/pos-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository persists and reads order rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error)
	MaxID(ctx context.Context) (int64, error)
	NextSequenceValue(ctx context.Context) (int64, error)
}

// ListFilter narrows order history queries.
type ListFilter struct {
	Date       *dbtypes.Date
	CustomerID *int64
	Page       pagination.Params
}
