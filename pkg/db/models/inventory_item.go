package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem tracks on-hand stock per ingredient.
type InventoryItem struct {
	ItemID    int64           `gorm:"column:item_id;primaryKey"`
	ItemName  string          `gorm:"column:item_name;not null"`
	Quantity  decimal.Decimal `gorm:"column:quantity;type:numeric(12,3);not null;default:0"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
