package models

import (
	"encoding/json"
	"time"

	dbtypes "github.com/gang93/pos-backend/pkg/db/types"
	"github.com/gang93/pos-backend/pkg/enums"
)

// Order is a captured register sale. The total is derived from the payload on read.
type Order struct {
	OrderID        int64             `gorm:"column:order_id;primaryKey;autoIncrement:false"`
	OrderDate      dbtypes.Date      `gorm:"column:order_date;type:date;not null"`
	OrderTime      dbtypes.ClockTime `gorm:"column:order_time;type:time;not null"`
	CustomerID     *int64            `gorm:"column:customer_id"`
	Payload        json.RawMessage   `gorm:"column:payload;type:jsonb;serializer:json;not null"`
	PayloadVersion int               `gorm:"column:payload_version;not null;default:2"`
	OrderType      enums.OrderType   `gorm:"column:order_type;not null"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
}
