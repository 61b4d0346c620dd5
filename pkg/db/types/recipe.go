package dbtypes

import "github.com/shopspring/decimal"

// RecipeLine is one ingredient entry of a menu item or add-on recipe.
type RecipeLine struct {
	ItemID int64           `json:"itemId"`
	Qty    decimal.Decimal `json:"qty"`
}

// Recipe is persisted as a jsonb array of {itemId, qty}, order preserved.
type Recipe []RecipeLine

// First returns the first ingredient entry, if any.
func (r Recipe) First() (RecipeLine, bool) {
	if len(r) == 0 {
		return RecipeLine{}, false
	}
	return r[0], true
}
