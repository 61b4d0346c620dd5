package enums

import "fmt"

// OrderType describes the allowed values for the `order_type` column in orders.
type OrderType string

const (
	OrderTypeCard OrderType = "card"
	OrderTypeCash OrderType = "cash"
	OrderTypeVoid OrderType = "void"
)

var validOrderTypes = []OrderType{
	OrderTypeCard,
	OrderTypeCash,
	OrderTypeVoid,
}

// IsValid reports whether the value matches the canonical order type enum.
func (o OrderType) IsValid() bool {
	for _, candidate := range validOrderTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// EarnsPoints reports whether orders of this type credit reward points.
func (o OrderType) EarnsPoints() bool {
	return o != OrderTypeVoid
}

// ParseOrderType converts the raw string to OrderType.
func ParseOrderType(value string) (OrderType, error) {
	for _, candidate := range validOrderTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order type %q", value)
}
