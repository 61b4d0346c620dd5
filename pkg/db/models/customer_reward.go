package models

import dbtypes "github.com/gang93/pos-backend/pkg/db/types"

// CustomerReward is a loyalty member and their point balance.
type CustomerReward struct {
	CustomerID  int64         `gorm:"column:customer_id;primaryKey"`
	FirstName   string        `gorm:"column:first_name;not null"`
	LastName    string        `gorm:"column:last_name;not null"`
	DOB         *dbtypes.Date `gorm:"column:dob;type:date"`
	PhoneNumber string        `gorm:"column:phone_number;not null;default:''"`
	Email       string        `gorm:"column:email;not null;uniqueIndex:customer_rewards_email_unique"`
	Points      int           `gorm:"column:points;not null;default:0"`
	DateJoined  dbtypes.Date  `gorm:"column:date_joined;type:date;not null"`
}
