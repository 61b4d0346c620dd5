package enums

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Sweetness is the per-line sweetness label chosen at the register.
type Sweetness string

const (
	Sweetness0   Sweetness = "0%"
	Sweetness25  Sweetness = "25%"
	Sweetness50  Sweetness = "50%"
	Sweetness75  Sweetness = "75%"
	Sweetness100 Sweetness = "100%"
)

// sweetnessMultipliers has no fallback entry; unknown labels must fail.
var sweetnessMultipliers = map[Sweetness]decimal.Decimal{
	Sweetness0:   decimal.Zero,
	Sweetness25:  decimal.RequireFromString("0.25"),
	Sweetness50:  decimal.RequireFromString("0.5"),
	Sweetness75:  decimal.RequireFromString("0.75"),
	Sweetness100: decimal.NewFromInt(1),
}

func (s Sweetness) IsValid() bool {
	_, ok := sweetnessMultipliers[s]
	return ok
}

// Multiplier returns the fraction of the baseline syrup dose for the label.
func (s Sweetness) Multiplier() (decimal.Decimal, error) {
	m, ok := sweetnessMultipliers[s]
	if !ok {
		return decimal.Zero, fmt.Errorf("invalid sweetness %q", string(s))
	}
	return m, nil
}

func ParseSweetness(value string) (Sweetness, error) {
	s := Sweetness(value)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid sweetness %q", value)
	}
	return s, nil
}
