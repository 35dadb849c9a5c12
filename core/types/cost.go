// Package types defines shared value types: currencies, cost lines and content hashes.
package types

import "github.com/shopspring/decimal"

// Currency represents a currency code
type Currency string

const (
	CurrencyBRL Currency = "BRL"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// Symbol returns the display prefix used in reports
func (c Currency) Symbol() string {
	switch c {
	case CurrencyBRL:
		return "R$"
	case CurrencyUSD:
		return "$"
	case CurrencyEUR:
		return "€"
	default:
		return string(c)
	}
}

// Valid reports whether c is a supported currency
func (c Currency) Valid() bool {
	switch c {
	case CurrencyBRL, CurrencyUSD, CurrencyEUR:
		return true
	}
	return false
}

// CostUnit represents a single billable line item
type CostUnit struct {
	// ID uniquely identifies this cost unit within a result
	ID string `json:"id" yaml:"id"`

	// Label is a human-readable label
	Label string `json:"label" yaml:"label"`

	// Measure is the billing unit (e.g., "leads", "sales")
	Measure string `json:"measure" yaml:"measure"`

	// Quantity is the billed quantity
	Quantity decimal.Decimal `json:"quantity" yaml:"quantity"`

	// Amount is the calculated cost
	Amount decimal.Decimal `json:"amount" yaml:"amount"`

	// Lineage tracks why this cost exists
	Lineage CostLineage `json:"lineage" yaml:"lineage"`
}

// CostLineage tracks the origin and calculation of a cost
type CostLineage struct {
	// Formula describes how the cost was calculated
	Formula string `json:"formula" yaml:"formula"`

	// Assumptions lists assumptions made during calculation
	Assumptions []string `json:"assumptions,omitempty" yaml:"assumptions,omitempty"`
}

// SumAmounts totals the amounts of a set of cost units
func SumAmounts(units []CostUnit) decimal.Decimal {
	total := decimal.Zero
	for _, u := range units {
		total = total.Add(u.Amount)
	}
	return total
}
