package funnel

import (
	"github.com/shopspring/decimal"

	"funnel-cost/core/types"
)

// Stage identifies one billed component of a simulation
type Stage string

const (
	StageNoReply           Stage = "no_reply"
	StageReplies           Stage = "replies"
	StageQualified         Stage = "qualified"
	StageBooked            Stage = "booked"
	StageCommission        Stage = "commission"
	StageMinimumAdjustment Stage = "minimum_adjustment"
)

// Stages lists the components in report order
var Stages = []Stage{
	StageNoReply,
	StageReplies,
	StageQualified,
	StageBooked,
	StageCommission,
	StageMinimumAdjustment,
}

// Label returns the display name of a stage
func (s Stage) Label() string {
	switch s {
	case StageNoReply:
		return "No reply"
	case StageReplies:
		return "Leads (replied)"
	case StageQualified:
		return "Qualified leads"
	case StageBooked:
		return "Booked / advanced"
	case StageCommission:
		return "Sales commission"
	case StageMinimumAdjustment:
		return "Minimum billing adjustment"
	default:
		return string(s)
	}
}

// BreakdownRow is one line of the cost composition table
type BreakdownRow struct {
	Stage    Stage           `json:"stage" yaml:"stage"`
	Label    string          `json:"label" yaml:"label"`
	Quantity decimal.Decimal `json:"quantity" yaml:"quantity"`
	Amount   decimal.Decimal `json:"amount" yaml:"amount"`

	// Share is the percentage of TotalCost, zero when TotalCost is zero
	Share decimal.Decimal `json:"share" yaml:"share"`
}

var hundred = decimal.NewFromInt(100)

// Breakdown lists the five cost components plus a minimum-adjustment row
// when the floor applied. The amounts always sum to TotalCost exactly.
func (r Result) Breakdown() []BreakdownRow {
	rows := []BreakdownRow{
		{Stage: StageNoReply, Quantity: r.NoReplies, Amount: r.CostNoReply},
		{Stage: StageReplies, Quantity: r.Replies, Amount: r.CostReplies},
		{Stage: StageQualified, Quantity: r.Qualified, Amount: r.CostQualified},
		{Stage: StageBooked, Quantity: r.Booked, Amount: r.CostBooked},
		{Stage: StageCommission, Quantity: r.Sales, Amount: r.CostCommission},
	}
	if r.FloorApplied {
		rows = append(rows, BreakdownRow{Stage: StageMinimumAdjustment, Amount: r.MinimumAdjustment})
	}

	for i := range rows {
		rows[i].Label = rows[i].Stage.Label()
		if r.TotalCost.IsPositive() {
			rows[i].Share = rows[i].Amount.Div(r.TotalCost).Mul(hundred)
		}
	}
	return rows
}

// Amount returns the cost billed for a stage
func (r Result) Amount(s Stage) decimal.Decimal {
	switch s {
	case StageNoReply:
		return r.CostNoReply
	case StageReplies:
		return r.CostReplies
	case StageQualified:
		return r.CostQualified
	case StageBooked:
		return r.CostBooked
	case StageCommission:
		return r.CostCommission
	case StageMinimumAdjustment:
		return r.MinimumAdjustment
	}
	return decimal.Zero
}

// Lines renders the breakdown as cost units with lineage
func (r Result) Lines() []types.CostUnit {
	formulas := map[Stage]types.CostLineage{
		StageNoReply:           {Formula: "no_replies * flat unit price"},
		StageReplies:           {Formula: "tiered(replies, replies table)"},
		StageQualified:         {Formula: "tiered(qualified, qualified table)"},
		StageBooked:            {Formula: "tiered(booked, booked table)"},
		StageCommission:        {Formula: "sales * ltv_value * commission_rate", Assumptions: []string{"commission is paid on the lifetime value, not the monthly ticket"}},
		StageMinimumAdjustment: {Formula: "minimum_billing - calculated_cost"},
	}
	measures := map[Stage]string{
		StageNoReply:           "leads",
		StageReplies:           "replies",
		StageQualified:         "qualified leads",
		StageBooked:            "booked leads",
		StageCommission:        "sales",
		StageMinimumAdjustment: "month",
	}

	rows := r.Breakdown()
	units := make([]types.CostUnit, 0, len(rows))
	for _, row := range rows {
		units = append(units, types.CostUnit{
			ID:       string(row.Stage),
			Label:    row.Label,
			Measure:  measures[row.Stage],
			Quantity: row.Quantity,
			Amount:   row.Amount,
			Lineage:  formulas[row.Stage],
		})
	}
	return units
}
