package models

import (
	"time"

	dbtypes "github.com/gang93/pos-backend/pkg/db/types"
	"github.com/gang93/pos-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// AddOn is an optional supplement attached to a cart line.
type AddOn struct {
	AddOnID     int64            `gorm:"column:add_on_id;primaryKey"`
	Name        string           `gorm:"column:name;not null"`
	Price       decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	Ingredients dbtypes.Recipe   `gorm:"column:ingredients;type:jsonb;serializer:json;not null"`
	Role        *enums.AddOnRole `gorm:"column:role"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
}

// HasRole reports whether the add-on is tagged with role.
func (a AddOn) HasRole(role enums.AddOnRole) bool {
	return a.Role != nil && *a.Role == role
}
