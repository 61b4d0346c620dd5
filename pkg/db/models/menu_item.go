package models

import (
	"time"

	dbtypes "github.com/gang93/pos-backend/pkg/db/types"
	"github.com/shopspring/decimal"
)

// MenuItem is a sellable drink or food item with its per-unit recipe.
type MenuItem struct {
	MenuItemID  int64           `gorm:"column:menu_item_id;primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Ingredients dbtypes.Recipe  `gorm:"column:ingredients;type:jsonb;serializer:json;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
