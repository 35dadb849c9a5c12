// Package compare measures the simulated cost against the in-house sales
// team it would replace.
package compare

import (
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"funnel-cost/internal/errors"
)

var hundred = decimal.NewFromInt(100)

// Team describes the current manual operation
type Team struct {
	// Sellers is the headcount
	Sellers decimal.Decimal `json:"sellers" yaml:"sellers"`

	// MonthlyCompensation is salary plus average commission per seller
	MonthlyCompensation decimal.Decimal `json:"monthly_compensation" yaml:"monthly_compensation"`

	// ChargesMultiplier loads compensation with payroll charges, e.g. 1.6
	ChargesMultiplier decimal.Decimal `json:"charges_multiplier" yaml:"charges_multiplier"`

	// MonthlyLeads is how many leads the team works per month
	MonthlyLeads decimal.Decimal `json:"monthly_leads" yaml:"monthly_leads"`
}

// Validate rejects negative figures and a team without lead capacity
func (t Team) Validate() error {
	var problems error
	for name, v := range map[string]decimal.Decimal{
		"sellers":              t.Sellers,
		"monthly_compensation": t.MonthlyCompensation,
		"charges_multiplier":   t.ChargesMultiplier,
	} {
		if v.IsNegative() {
			problems = multierr.Append(problems, errors.InvalidField(name, "must not be negative, got %s", v))
		}
	}
	if !t.MonthlyLeads.IsPositive() {
		problems = multierr.Append(problems, errors.InvalidField("monthly_leads", "must be positive, got %s", t.MonthlyLeads))
	}
	return errors.Validation("team", problems)
}

// MonthlyCost is the fully loaded cost of the whole team
func (t Team) MonthlyCost() decimal.Decimal {
	return t.MonthlyCompensation.Mul(t.ChargesMultiplier).Mul(t.Sellers)
}

// CostPerLead is the team's cost for each lead it works
func (t Team) CostPerLead() decimal.Decimal {
	if !t.MonthlyLeads.IsPositive() {
		return decimal.Zero
	}
	return t.MonthlyCost().Div(t.MonthlyLeads)
}

// Comparison contrasts the team with the simulated cost for the same leads
type Comparison struct {
	TeamMonthlyCost decimal.Decimal `json:"team_monthly_cost" yaml:"team_monthly_cost"`
	TeamCostPerLead decimal.Decimal `json:"team_cost_per_lead" yaml:"team_cost_per_lead"`

	// ProportionalCost is what the team would cost for the simulated leads
	ProportionalCost decimal.Decimal `json:"proportional_cost" yaml:"proportional_cost"`

	// CapacityShare is the simulated volume as a percentage of team capacity
	CapacityShare decimal.Decimal `json:"capacity_share" yaml:"capacity_share"`

	SimulatedCost decimal.Decimal `json:"simulated_cost" yaml:"simulated_cost"`

	// Savings is ProportionalCost - SimulatedCost; negative means extra spend
	Savings decimal.Decimal `json:"savings" yaml:"savings"`

	// SavingsPercent is Savings relative to ProportionalCost
	SavingsPercent decimal.Decimal `json:"savings_percent" yaml:"savings_percent"`
}

// Compare prices leads with the team and contrasts it with simulatedCost
func Compare(team Team, leads, simulatedCost decimal.Decimal) Comparison {
	c := Comparison{
		TeamMonthlyCost: team.MonthlyCost(),
		TeamCostPerLead: team.CostPerLead(),
		SimulatedCost:   simulatedCost,
	}
	c.ProportionalCost = leads.Mul(c.TeamCostPerLead)
	if team.MonthlyLeads.IsPositive() {
		c.CapacityShare = leads.Div(team.MonthlyLeads).Mul(hundred)
	}
	c.Savings = c.ProportionalCost.Sub(simulatedCost)
	if c.ProportionalCost.IsPositive() {
		c.SavingsPercent = c.Savings.Div(c.ProportionalCost).Mul(hundred)
	}
	return c
}

// Saves reports whether the simulated cost is at or below the team's
func (c Comparison) Saves() bool {
	return !c.Savings.IsNegative()
}
