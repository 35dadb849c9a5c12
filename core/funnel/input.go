// Package funnel simulates a sales funnel against tiered price tables.
//
// The engine is a pure function over an explicit Input: it carries no
// defaults, logs nothing and keeps no state between calls, so callers may
// sweep it freely. Validation is the caller's job and happens once, at the
// boundary, through Input.Validate.
package funnel

import (
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"funnel-cost/core/pricing"
	"funnel-cost/internal/errors"
)

// Rates are stage-to-stage conversion fractions in [0, 1]
type Rates struct {
	// Response is the share of leads that reply
	Response decimal.Decimal `json:"response" yaml:"response"`

	// Qualification is the share of replies that qualify
	Qualification decimal.Decimal `json:"qualification" yaml:"qualification"`

	// Booking is the share of qualified leads that book or advance
	Booking decimal.Decimal `json:"booking" yaml:"booking"`
}

// NewRates builds rates from float fractions
func NewRates(response, qualification, booking float64) Rates {
	return Rates{
		Response:      decimal.NewFromFloat(response),
		Qualification: decimal.NewFromFloat(qualification),
		Booking:       decimal.NewFromFloat(booking),
	}
}

// Tables holds the four price tables a simulation bills against
type Tables struct {
	// NoReply is a flat table; only its unit price is used
	NoReply pricing.Table `json:"no_reply" yaml:"no_reply"`

	Replies   pricing.Table `json:"replies" yaml:"replies"`
	Qualified pricing.Table `json:"qualified" yaml:"qualified"`
	Booked    pricing.Table `json:"booked" yaml:"booked"`
}

// Input is everything one simulation needs
type Input struct {
	// TotalLeads is the number of leads entering the funnel
	TotalLeads decimal.Decimal `json:"total_leads" yaml:"total_leads"`

	Rates  Rates  `json:"rates" yaml:"rates"`
	Tables Tables `json:"tables" yaml:"tables"`

	// MinimumBilling is the monthly price floor
	MinimumBilling decimal.Decimal `json:"minimum_billing" yaml:"minimum_billing"`

	// LTVValue is the commission base: monthly ticket times LTV months.
	// It is not the monthly ticket used for recurring revenue.
	LTVValue decimal.Decimal `json:"ltv_value" yaml:"ltv_value"`

	// SalesConversionRate is the share of booked leads that close
	SalesConversionRate decimal.Decimal `json:"sales_conversion_rate" yaml:"sales_conversion_rate"`

	// CommissionRate is the share of LTVValue paid per sale
	CommissionRate decimal.Decimal `json:"commission_rate" yaml:"commission_rate"`
}

var one = decimal.NewFromInt(1)

// Validate checks the documented input domain: non-negative volumes and
// money, fractions in [0, 1]. Every problem is reported, not just the first.
func (in Input) Validate() error {
	var problems error

	nonNegative := func(name string, v decimal.Decimal) {
		if v.IsNegative() {
			problems = multierr.Append(problems, errors.InvalidField(name, "must not be negative, got %s", v))
		}
	}
	fraction := func(name string, v decimal.Decimal) {
		if v.IsNegative() || v.GreaterThan(one) {
			problems = multierr.Append(problems, errors.InvalidField(name, "must be a fraction in [0, 1], got %s", v))
		}
	}

	nonNegative("total_leads", in.TotalLeads)
	nonNegative("minimum_billing", in.MinimumBilling)
	nonNegative("ltv_value", in.LTVValue)
	fraction("rates.response", in.Rates.Response)
	fraction("rates.qualification", in.Rates.Qualification)
	fraction("rates.booking", in.Rates.Booking)
	fraction("sales_conversion_rate", in.SalesConversionRate)
	fraction("commission_rate", in.CommissionRate)

	return errors.Validation("simulation input", problems)
}

// WithLeads returns a copy of in with a different lead volume
func (in Input) WithLeads(leads decimal.Decimal) Input {
	in.TotalLeads = leads
	return in
}

// WithRates returns a copy of in with different conversion rates
func (in Input) WithRates(rates Rates) Input {
	in.Rates = rates
	return in
}
