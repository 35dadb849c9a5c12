// Package projection turns a simulation into unit economics and a
// month-by-month cash-flow projection with a break-even month.
package projection

import (
	"github.com/shopspring/decimal"

	"funnel-cost/core/funnel"
)

// DaysPerMonth converts an LTV expressed in days to months
var DaysPerMonth = decimal.NewFromInt(30)

// PaybackCeiling is the longest setup payback worth reporting, in months
var PaybackCeiling = decimal.NewFromInt(36)

var hundred = decimal.NewFromInt(100)

// LTV describes a customer's lifetime value
type LTV struct {
	// MonthlyTicket is the recurring monthly revenue per customer
	MonthlyTicket decimal.Decimal `json:"monthly_ticket" yaml:"monthly_ticket"`

	// Days is the customer lifetime in days
	Days decimal.Decimal `json:"days" yaml:"days"`
}

// Months returns the lifetime in (fractional) months
func (l LTV) Months() decimal.Decimal {
	return l.Days.Div(DaysPerMonth)
}

// WholeMonths returns the lifetime truncated to whole months, the width
// of the active-customer window in a cash-flow projection
func (l LTV) WholeMonths() int {
	return int(l.Months().IntPart())
}

// Value returns the monetary lifetime value, the commission base
func (l LTV) Value() decimal.Decimal {
	return l.MonthlyTicket.Mul(l.Months())
}

// Economics summarizes what one month of funnel output is worth
type Economics struct {
	// MonthlyRevenue is sales times the monthly ticket
	MonthlyRevenue decimal.Decimal `json:"monthly_revenue" yaml:"monthly_revenue"`

	// LTVRevenue is sales times the lifetime value
	LTVRevenue decimal.Decimal `json:"ltv_revenue" yaml:"ltv_revenue"`

	// ROIOnLTV is (LTVRevenue - TotalCost) / TotalCost in percent
	ROIOnLTV decimal.Decimal `json:"roi_on_ltv" yaml:"roi_on_ltv"`

	// MonthlyProfit is MonthlyRevenue - TotalCost
	MonthlyProfit decimal.Decimal `json:"monthly_profit" yaml:"monthly_profit"`

	// SetupPayback is months of monthly profit needed to recover the
	// setup fee; nil when there is no profit or it exceeds PaybackCeiling
	SetupPayback *decimal.Decimal `json:"setup_payback,omitempty" yaml:"setup_payback,omitempty"`
}

// Evaluate computes the economics of a simulation result
func Evaluate(r funnel.Result, ltv LTV, setupFee decimal.Decimal) Economics {
	e := Economics{
		MonthlyRevenue: r.Sales.Mul(ltv.MonthlyTicket),
		LTVRevenue:     r.Sales.Mul(ltv.Value()),
	}
	e.MonthlyProfit = e.MonthlyRevenue.Sub(r.TotalCost)

	if r.TotalCost.IsPositive() {
		e.ROIOnLTV = e.LTVRevenue.Sub(r.TotalCost).Div(r.TotalCost).Mul(hundred)
	}

	if e.MonthlyProfit.IsPositive() {
		payback := setupFee.Div(e.MonthlyProfit)
		if payback.LessThan(PaybackCeiling) {
			e.SetupPayback = &payback
		}
	}
	return e
}
