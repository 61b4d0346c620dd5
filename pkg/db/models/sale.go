package models

import dbtypes "github.com/gang93/pos-backend/pkg/db/types"

// Sale is one sales-ledger row: a menu item or add-on sold as part of an order.
type Sale struct {
	SaleID     int64             `gorm:"column:sale_id;primaryKey;autoIncrement:false" json:"saleId"`
	OrderID    *int64            `gorm:"column:order_id" json:"orderId"`
	ItemName   string            `gorm:"column:item_name;not null" json:"itemName"`
	AmountSold int               `gorm:"column:amount_sold;not null" json:"amountSold"`
	SaleDate   dbtypes.Date      `gorm:"column:sale_date;type:date;not null" json:"saleDate"`
	SaleTime   dbtypes.ClockTime `gorm:"column:sale_time;type:time;not null" json:"saleTime"`
}
