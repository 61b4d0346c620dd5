package fulfillment

import (
	"strings"

	"github.com/gang93/pos-backend/pkg/db/models"
	"github.com/gang93/pos-backend/pkg/enums"
	pkgerrors "github.com/gang93/pos-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

const syrupNameFallback = "simple syrup"

// SyrupBaseline is the ingredient and quantity a 100% sweetness line consumes.
type SyrupBaseline struct {
	AddOnID      int64
	IngredientID int64
	BaseQty      decimal.Decimal
}

// ResolveSyrupBaseline scans the add-on catalog once. An add-on tagged with
// the sweetness_base role wins; otherwise the first add-on whose name
// contains "simple syrup" is used. Candidates without a recipe are ignored.
// ok is false when nothing qualifies, and sweetness then consumes nothing.
func ResolveSyrupBaseline(addOns []models.AddOn) (baseline SyrupBaseline, ok bool) {
	var fallback *SyrupBaseline
	for _, addOn := range addOns {
		first, hasRecipe := addOn.Ingredients.First()
		if !hasRecipe {
			continue
		}
		candidate := SyrupBaseline{AddOnID: addOn.AddOnID, IngredientID: first.ItemID, BaseQty: first.Qty}
		if addOn.HasRole(enums.AddOnRoleSweetnessBase) {
			return candidate, true
		}
		if fallback == nil && strings.Contains(strings.ToLower(addOn.Name), syrupNameFallback) {
			fallback = &candidate
		}
	}
	if fallback == nil {
		return SyrupBaseline{}, false
	}
	return *fallback, true
}

// sweetnessMultiplier maps a sweetness label to its share of the baseline dose.
func sweetnessMultiplier(label enums.Sweetness) (decimal.Decimal, error) {
	m, err := label.Multiplier()
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sweetness").
			WithDetails(map[string]any{"sweetness": string(label)})
	}
	return m, nil
}
