package funnel

import (
	"github.com/shopspring/decimal"

	"funnel-cost/core/pricing"
)

// Result is the outcome of one simulation. It is a value: nothing in it
// aliases the Input, and each call to Simulate builds a fresh one.
type Result struct {
	TotalLeads decimal.Decimal `json:"total_leads" yaml:"total_leads"`
	NoReplies  decimal.Decimal `json:"no_replies" yaml:"no_replies"`
	Replies    decimal.Decimal `json:"replies" yaml:"replies"`
	Qualified  decimal.Decimal `json:"qualified" yaml:"qualified"`
	Booked     decimal.Decimal `json:"booked" yaml:"booked"`
	Sales      decimal.Decimal `json:"sales" yaml:"sales"`

	CostNoReply    decimal.Decimal `json:"cost_no_reply" yaml:"cost_no_reply"`
	CostReplies    decimal.Decimal `json:"cost_replies" yaml:"cost_replies"`
	CostQualified  decimal.Decimal `json:"cost_qualified" yaml:"cost_qualified"`
	CostBooked     decimal.Decimal `json:"cost_booked" yaml:"cost_booked"`
	CostCommission decimal.Decimal `json:"cost_commission" yaml:"cost_commission"`

	// CalculatedCost is the usage-based cost before the minimum floor
	CalculatedCost decimal.Decimal `json:"calculated_cost" yaml:"calculated_cost"`

	// TotalCost is max(CalculatedCost, MinimumBilling)
	TotalCost decimal.Decimal `json:"total_cost" yaml:"total_cost"`

	// FloorApplied is true when TotalCost > CalculatedCost
	FloorApplied bool `json:"floor_applied" yaml:"floor_applied"`

	// MinimumAdjustment is TotalCost - CalculatedCost, zero when the floor did not apply
	MinimumAdjustment decimal.Decimal `json:"minimum_adjustment" yaml:"minimum_adjustment"`

	CostPerLead        decimal.Decimal `json:"cost_per_lead" yaml:"cost_per_lead"`
	CostPerAcquisition decimal.Decimal `json:"cost_per_acquisition" yaml:"cost_per_acquisition"`

	// Charges itemizes the tiered stages band by band
	Charges StageCharges `json:"charges" yaml:"charges"`
}

// StageCharges holds per-band lineage for the tiered stages
type StageCharges struct {
	Replies   []pricing.TierCharge `json:"replies,omitempty" yaml:"replies,omitempty"`
	Qualified []pricing.TierCharge `json:"qualified,omitempty" yaml:"qualified,omitempty"`
	Booked    []pricing.TierCharge `json:"booked,omitempty" yaml:"booked,omitempty"`
}

// Simulate runs the funnel cascade and bills every stage.
//
//	replies   = leads * response        noReplies = leads - replies
//	qualified = replies * qualification booked    = qualified * booking
//	sales     = booked * salesConversion
//
// Unit economics fall back to zero when their denominator is zero.
func Simulate(in Input) Result {
	r := Result{TotalLeads: in.TotalLeads}

	r.Replies = in.TotalLeads.Mul(in.Rates.Response)
	r.NoReplies = in.TotalLeads.Sub(r.Replies)
	r.Qualified = r.Replies.Mul(in.Rates.Qualification)
	r.Booked = r.Qualified.Mul(in.Rates.Booking)
	r.Sales = r.Booked.Mul(in.SalesConversionRate)

	r.CostNoReply = r.NoReplies.Mul(in.Tables.NoReply.UnitPrice())
	r.CostReplies = in.Tables.Replies.Cost(r.Replies)
	r.CostQualified = in.Tables.Qualified.Cost(r.Qualified)
	r.CostBooked = in.Tables.Booked.Cost(r.Booked)
	r.CostCommission = r.Sales.Mul(in.LTVValue).Mul(in.CommissionRate)

	r.Charges = StageCharges{
		Replies:   in.Tables.Replies.Charges(r.Replies),
		Qualified: in.Tables.Qualified.Charges(r.Qualified),
		Booked:    in.Tables.Booked.Charges(r.Booked),
	}

	r.CalculatedCost = r.CostNoReply.
		Add(r.CostReplies).
		Add(r.CostQualified).
		Add(r.CostBooked).
		Add(r.CostCommission)

	r.TotalCost = decimal.Max(r.CalculatedCost, in.MinimumBilling)
	r.FloorApplied = r.TotalCost.GreaterThan(r.CalculatedCost)
	if r.FloorApplied {
		r.MinimumAdjustment = r.TotalCost.Sub(r.CalculatedCost)
	}

	if in.TotalLeads.IsPositive() {
		r.CostPerLead = r.TotalCost.Div(in.TotalLeads)
	}
	if r.Booked.IsPositive() {
		r.CostPerAcquisition = r.TotalCost.Div(r.Booked)
	}

	return r
}
