// Package pricing - Validated price tables
package pricing

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"funnel-cost/internal/errors"
)

// Table is an immutable, validated, ascending sequence of bands.
// The zero value is an empty table that bills nothing.
type Table struct {
	tiers []Tier
}

// NewTable copies, sorts and validates tiers. Negative bounds or
// prices, inverted bands (Min > Max) and overlapping bands are
// rejected, all problems reported at once.
func NewTable(tiers ...Tier) (Table, error) {
	var problems error
	for i, tier := range tiers {
		name := fmt.Sprintf("band %d (%s)", i+1, tier.Range())
		if tier.Min.IsNegative() {
			problems = multierr.Append(problems, errors.InvalidField(name, "minimum %s is negative", tier.Min))
		}
		if tier.Max.LessThan(tier.Min) {
			problems = multierr.Append(problems, errors.InvalidField(name, "maximum %s is below minimum %s", tier.Max, tier.Min))
		}
		if tier.UnitPrice.IsNegative() {
			problems = multierr.Append(problems, errors.InvalidField(name, "unit price %s is negative", tier.UnitPrice))
		}
	}

	sorted := sortedCopy(tiers)
	for i := 1; i < len(sorted); i++ {
		prev, next := sorted[i-1], sorted[i]
		if next.Min.LessThan(prev.Max) {
			problems = multierr.Append(problems, errors.InvalidField(
				fmt.Sprintf("band %s", next.Range()),
				"overlaps band %s; volume between %s and %s would be billed twice",
				prev.Range(), next.Min, decimal.Min(prev.Max, next.Max),
			))
		}
	}

	if problems != nil {
		return Table{}, errors.Validation("price table", problems)
	}
	return Table{tiers: sorted}, nil
}

// MustTable is NewTable for static tables; it panics on invalid input
func MustTable(tiers ...Tier) Table {
	t, err := NewTable(tiers...)
	if err != nil {
		panic(err)
	}
	return t
}

// Flat builds a single-band table billing every unit at price
func Flat(price decimal.Decimal) Table {
	return MustTable(Tier{Min: decimal.Zero, Max: Unbounded, UnitPrice: price})
}

// Cost bills quantity across the table's bands
func (t Table) Cost(quantity decimal.Decimal) decimal.Decimal {
	if quantity.IsZero() {
		return decimal.Zero
	}
	return accumulate(quantity, t.tiers)
}

// Charges itemizes Cost per band; bands the quantity does not reach are omitted
func (t Table) Charges(quantity decimal.Decimal) []TierCharge {
	var charges []TierCharge
	for _, tier := range t.tiers {
		filled := tier.Filled(quantity)
		if !filled.IsPositive() {
			continue
		}
		charges = append(charges, TierCharge{
			Tier:     tier,
			Quantity: filled,
			Amount:   filled.Mul(tier.UnitPrice),
		})
	}
	return charges
}

// UnitPrice returns the price of the lowest band, the whole price of a flat table
func (t Table) UnitPrice() decimal.Decimal {
	if len(t.tiers) == 0 {
		return decimal.Zero
	}
	return t.tiers[0].UnitPrice
}

// Tiers returns a copy of the bands in ascending order
func (t Table) Tiers() []Tier {
	out := make([]Tier, len(t.tiers))
	copy(out, t.tiers)
	return out
}

// Len returns the number of bands
func (t Table) Len() int {
	return len(t.tiers)
}

// IsEmpty reports whether the table has no bands
func (t Table) IsEmpty() bool {
	return len(t.tiers) == 0
}

// Gap is a volume range no band covers; it is billed at zero
type Gap struct {
	From decimal.Decimal `json:"from" yaml:"from"`
	To   decimal.Decimal `json:"to" yaml:"to"`
}

// Gaps lists uncovered ranges between zero and the top band
func (t Table) Gaps() []Gap {
	var gaps []Gap
	covered := decimal.Zero
	for _, tier := range t.tiers {
		if tier.Min.GreaterThan(covered) {
			gaps = append(gaps, Gap{From: covered, To: tier.Min})
		}
		covered = decimal.Max(covered, tier.Max)
	}
	return gaps
}

// MarshalJSON encodes the table as its band list
func (t Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Tiers())
}

// MarshalYAML encodes the table as its band list
func (t Table) MarshalYAML() (any, error) {
	return t.Tiers(), nil
}
