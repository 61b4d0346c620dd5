package fulfillment

import (
	"github.com/gang93/pos-backend/internal/catalog"
	"github.com/gang93/pos-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// Consumption is what an order takes out of stock and adds to the ledger.
type Consumption struct {
	Deltas types.IngredientDeltas
	Sales  []types.SaleDescriptor
	// Matched holds the lines whose menu item resolved, in cart order.
	Matched []types.CartLine
	// Unmatched counts lines dropped because their menu item is unknown.
	Unmatched int
}

// Aggregate merges every ingredient the cart consumes into one map. Each
// line contributes its menu recipe × quantity, each resolved add-on recipe ×
// quantity, and baseline × sweetness multiplier × quantity of syrup when a
// baseline exists.
func Aggregate(snapshot *catalog.Snapshot, lines []types.CartLine, baseline *SyrupBaseline) (Consumption, error) {
	out := Consumption{Deltas: types.IngredientDeltas{}}
	for _, line := range lines {
		item, ok := snapshot.MenuItem(line.MenuItemID)
		if !ok {
			out.Unmatched++
			continue
		}
		out.Matched = append(out.Matched, line)

		qty := decimal.NewFromInt(int64(line.Quantity))
		for _, ingredient := range item.Ingredients {
			out.Deltas.Add(ingredient.ItemID, ingredient.Qty.Mul(qty))
		}
		out.Sales = append(out.Sales, types.SaleDescriptor{ItemName: item.Name, Quantity: line.Quantity})

		for _, addOnID := range line.AddOnIDs {
			addOn, ok := snapshot.AddOn(addOnID)
			if !ok {
				continue
			}
			for _, ingredient := range addOn.Ingredients {
				out.Deltas.Add(ingredient.ItemID, ingredient.Qty.Mul(qty))
			}
			out.Sales = append(out.Sales, types.SaleDescriptor{ItemName: addOn.Name, Quantity: line.Quantity})
		}

		if baseline == nil {
			continue
		}
		multiplier, err := sweetnessMultiplier(line.Sweetness)
		if err != nil {
			return Consumption{}, err
		}
		if multiplier.IsZero() {
			continue
		}
		out.Deltas.Add(baseline.IngredientID, baseline.BaseQty.Mul(multiplier).Mul(qty))
	}
	return out, nil
}
