package types

import (
	"sort"

	"github.com/shopspring/decimal"
)

// IngredientDeltas maps an inventory item id to the quantity an order consumes.
type IngredientDeltas map[int64]decimal.Decimal

// Add accumulates qty onto the running total for itemID.
func (d IngredientDeltas) Add(itemID int64, qty decimal.Decimal) {
	if current, ok := d[itemID]; ok {
		d[itemID] = current.Add(qty)
		return
	}
	d[itemID] = qty
}

// ItemIDs returns the ingredient ids in ascending order so writers lock rows
// in a stable order.
func (d IngredientDeltas) ItemIDs() []int64 {
	ids := make([]int64, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SaleDescriptor is one sales-ledger line derived from a cart: a menu item or
// an add-on instance, by display name.
type SaleDescriptor struct {
	ItemName string
	Quantity int
}
