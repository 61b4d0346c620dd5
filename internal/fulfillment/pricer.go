package fulfillment

import (
	"github.com/gang93/pos-backend/internal/catalog"
	"github.com/gang93/pos-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// Quote is the priced cart. Total includes the tip; Subtotal does not.
type Quote struct {
	Subtotal decimal.Decimal
	Tip      decimal.Decimal
	Total    decimal.Decimal
}

// Price sums menu price × quantity plus each resolved add-on price ×
// quantity over every line whose menu item resolves, then adds tip.
// Lines and add-ons that do not resolve contribute nothing.
func Price(snapshot *catalog.Snapshot, lines []types.CartLine, tip decimal.Decimal) Quote {
	subtotal := decimal.Zero
	for _, line := range lines {
		item, ok := snapshot.MenuItem(line.MenuItemID)
		if !ok {
			continue
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		subtotal = subtotal.Add(item.Price.Mul(qty))
		for _, addOnID := range line.AddOnIDs {
			addOn, ok := snapshot.AddOn(addOnID)
			if !ok {
				continue
			}
			subtotal = subtotal.Add(addOn.Price.Mul(qty))
		}
	}
	return Quote{
		Subtotal: subtotal,
		Tip:      tip,
		Total:    subtotal.Add(tip),
	}
}

// Points is the reward for a quote: whole currency units of the pre-tip subtotal.
func (q Quote) Points() int64 {
	return q.Subtotal.Floor().IntPart()
}
