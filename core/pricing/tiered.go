// Package pricing - Tiered (marginal) volume pricing
// A quantity is split across ascending volume bands and each band bills
// its own share at its own unit price, like progressive tax brackets.
package pricing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Unbounded is the conventional maximum of the topmost band. Nothing in
// the calculation special-cases it; the min(quantity, max) clamp simply
// never bites.
var Unbounded = decimal.NewFromInt(999_999_999)

// Tier is one volume band (Min, Max] with a flat per-unit price
type Tier struct {
	Min       decimal.Decimal `json:"min" yaml:"min"`
	Max       decimal.Decimal `json:"max" yaml:"max"`
	UnitPrice decimal.Decimal `json:"unit_price" yaml:"unit_price"`
}

// NewTier builds a band from float bounds and price
func NewTier(min, max, unitPrice float64) Tier {
	return Tier{
		Min:       decimal.NewFromFloat(min),
		Max:       decimal.NewFromFloat(max),
		UnitPrice: decimal.NewFromFloat(unitPrice),
	}
}

// OpenTier builds a topmost band starting at min
func OpenTier(min, unitPrice float64) Tier {
	return Tier{
		Min:       decimal.NewFromFloat(min),
		Max:       Unbounded,
		UnitPrice: decimal.NewFromFloat(unitPrice),
	}
}

// Width returns Max - Min
func (t Tier) Width() decimal.Decimal {
	return t.Max.Sub(t.Min)
}

// IsUnbounded reports whether the band absorbs all overflow volume
func (t Tier) IsUnbounded() bool {
	return t.Max.GreaterThanOrEqual(Unbounded)
}

// Filled returns how much of quantity falls inside this band
func (t Tier) Filled(quantity decimal.Decimal) decimal.Decimal {
	if !quantity.GreaterThan(t.Min) {
		return decimal.Zero
	}
	return decimal.Min(quantity, t.Max).Sub(t.Min)
}

// Contribution returns the cost this band adds for quantity
func (t Tier) Contribution(quantity decimal.Decimal) decimal.Decimal {
	return t.Filled(quantity).Mul(t.UnitPrice)
}

// Range renders the band bounds, e.g. "300 - 800" or "2500+"
func (t Tier) Range() string {
	if t.IsUnbounded() {
		return t.Min.String() + "+"
	}
	return t.Min.String() + " - " + t.Max.String()
}

// String renders the band with its price
func (t Tier) String() string {
	return fmt.Sprintf("%s @ %s", t.Range(), t.UnitPrice.StringFixed(2))
}

// TieredCost computes the total cost of quantity against tiers.
// The caller's slice is never reordered; tiers are sorted on a copy.
// No validation happens here, so overlapping bands bill twice and
// negative prices produce negative cost. Use NewTable to reject those.
func TieredCost(quantity decimal.Decimal, tiers []Tier) decimal.Decimal {
	if quantity.IsZero() || len(tiers) == 0 {
		return decimal.Zero
	}
	return accumulate(quantity, sortedCopy(tiers))
}

func accumulate(quantity decimal.Decimal, sorted []Tier) decimal.Decimal {
	total := decimal.Zero
	for _, tier := range sorted {
		total = total.Add(tier.Contribution(quantity))
	}
	return total
}

func sortedCopy(tiers []Tier) []Tier {
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Min.LessThan(sorted[j].Min)
	})
	return sorted
}

// TierCharge is the share of a quantity billed inside one band
type TierCharge struct {
	Tier     Tier            `json:"tier" yaml:"tier"`
	Quantity decimal.Decimal `json:"quantity" yaml:"quantity"`
	Amount   decimal.Decimal `json:"amount" yaml:"amount"`
}
