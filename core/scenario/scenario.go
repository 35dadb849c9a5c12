// Package scenario loads simulation scenarios from HCL files and turns
// them into engine inputs.
//
// A scenario is everything a run needs: volume, conversion rates, price
// tables, billing floor and the customer economics used for commission
// and projections. Files only state what differs from the built-in
// profile returned by Default.
package scenario

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"funnel-cost/core/compare"
	"funnel-cost/core/funnel"
	"funnel-cost/core/pricing"
	"funnel-cost/core/projection"
	"funnel-cost/core/types"
	"funnel-cost/internal/errors"
)

// Table names accepted in tiers blocks
const (
	TableReplies   = "replies"
	TableQualified = "qualified"
	TableBooked    = "booked"
)

// TableNames lists the tiered tables in funnel order
var TableNames = []string{TableReplies, TableQualified, TableBooked}

// Scenario is one named simulation setup
type Scenario struct {
	Name string `json:"name" yaml:"name"`

	// Leads is the monthly lead volume
	Leads decimal.Decimal `json:"leads" yaml:"leads"`

	Rates funnel.Rates `json:"rates" yaml:"rates"`

	// MinimumBilling is the monthly price floor
	MinimumBilling decimal.Decimal `json:"minimum_billing" yaml:"minimum_billing"`

	// Ticket is the customer's recurring monthly revenue
	Ticket decimal.Decimal `json:"ticket" yaml:"ticket"`

	// LTVDays is how long a customer stays, in days
	LTVDays decimal.Decimal `json:"ltv_days" yaml:"ltv_days"`

	// SalesConversion is the share of booked leads that close
	SalesConversion decimal.Decimal `json:"sales_conversion" yaml:"sales_conversion"`

	// Commission is the share of lifetime value paid per sale
	Commission decimal.Decimal `json:"commission" yaml:"commission"`

	// SetupFee is charged once when the operation starts
	SetupFee decimal.Decimal `json:"setup_fee" yaml:"setup_fee"`

	// NoReplyPrice is the flat price of a lead that never answers
	NoReplyPrice decimal.Decimal `json:"no_reply_price" yaml:"no_reply_price"`

	// Tiers holds the raw bands per table name; they are validated by Input
	Tiers map[string][]pricing.Tier `json:"tiers" yaml:"tiers"`

	Team compare.Team `json:"team" yaml:"team"`
}

// Clone returns a deep copy, safe to modify
func (s *Scenario) Clone() *Scenario {
	c := *s
	c.Tiers = make(map[string][]pricing.Tier, len(s.Tiers))
	for name, tiers := range s.Tiers {
		c.Tiers[name] = append([]pricing.Tier(nil), tiers...)
	}
	return &c
}

// LTV returns the customer lifetime value description
func (s *Scenario) LTV() projection.LTV {
	return projection.LTV{MonthlyTicket: s.Ticket, Days: s.LTVDays}
}

// Tables validates every price table. Problems from all tables are
// reported together, each qualified with its table name.
func (s *Scenario) Tables() (funnel.Tables, error) {
	var problems error
	build := func(name string) pricing.Table {
		t, err := pricing.NewTable(s.Tiers[name]...)
		if err != nil {
			problems = multierr.Append(problems, errors.Within("tiers."+name, err))
		}
		return t
	}

	tables := funnel.Tables{
		Replies:   build(TableReplies),
		Qualified: build(TableQualified),
		Booked:    build(TableBooked),
	}

	if s.NoReplyPrice.IsNegative() {
		problems = multierr.Append(problems, errors.InvalidField("no_reply_price", "must not be negative, got %s", s.NoReplyPrice))
	} else {
		tables.NoReply = pricing.Flat(s.NoReplyPrice)
	}

	if problems != nil {
		return funnel.Tables{}, errors.Validation("price tables of scenario "+s.Name, problems)
	}
	return tables, nil
}

// Input builds a validated engine input. The commission base is the
// lifetime value, ticket times LTVDays/30.
func (s *Scenario) Input() (funnel.Input, error) {
	var problems error

	tables, err := s.Tables()
	problems = multierr.Append(problems, err)

	in := funnel.Input{
		TotalLeads:          s.Leads,
		Rates:               s.Rates,
		Tables:              tables,
		MinimumBilling:      s.MinimumBilling,
		LTVValue:            s.LTV().Value(),
		SalesConversionRate: s.SalesConversion,
		CommissionRate:      s.Commission,
	}
	problems = multierr.Append(problems, in.Validate())

	if s.Ticket.IsNegative() {
		problems = multierr.Append(problems, errors.InvalidField("ticket", "must not be negative, got %s", s.Ticket))
	}
	if s.LTVDays.IsNegative() {
		problems = multierr.Append(problems, errors.InvalidField("ltv_days", "must not be negative, got %s", s.LTVDays))
	}
	if s.SetupFee.IsNegative() {
		problems = multierr.Append(problems, errors.InvalidField("setup_fee", "must not be negative, got %s", s.SetupFee))
	}

	if problems != nil {
		return funnel.Input{}, errors.Validation("scenario "+s.Name, problems)
	}
	return in, nil
}

// Fingerprint hashes the canonical JSON form of the scenario. Two
// scenarios with the same fingerprint produce the same results.
func (s *Scenario) Fingerprint() types.ContentHash {
	// Map keys are sorted by encoding/json and decimals encode as strings,
	// so the encoding is stable across runs.
	data, err := json.Marshal(s)
	if err != nil {
		return types.ContentHash{}
	}
	return types.ComputeHash(data)
}
