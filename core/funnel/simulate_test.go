package funnel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"funnel-cost/core/pricing"
	"funnel-cost/internal/errors"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal, name string) {
	t.Helper()
	require.True(t, got.Equal(d(want)), "%s = %s, want %s", name, got, want)
}

func testTables() Tables {
	return Tables{
		NoReply: pricing.Flat(d("0.20")),
		Replies: pricing.MustTable(
			pricing.NewTier(0, 300, 5.00),
			pricing.NewTier(300, 800, 4.00),
			pricing.NewTier(800, 1500, 3.50),
			pricing.NewTier(1500, 2500, 3.00),
			pricing.OpenTier(2500, 2.50),
		),
		Qualified: pricing.MustTable(
			pricing.NewTier(0, 75, 15.00),
			pricing.NewTier(75, 150, 12.00),
			pricing.NewTier(150, 300, 8.00),
			pricing.OpenTier(300, 5.00),
		),
		Booked: pricing.MustTable(
			pricing.NewTier(0, 30, 80.00),
			pricing.NewTier(30, 60, 60.00),
			pricing.NewTier(60, 100, 50.00),
			pricing.OpenTier(100, 40.00),
		),
	}
}

func baseInput() Input {
	return Input{
		TotalLeads:     d("2000"),
		Rates:          NewRates(0.45, 0.25, 0.30),
		Tables:         testTables(),
		MinimumBilling: d("2997"),
	}
}

func TestSimulateReferenceScenario(t *testing.T) {
	r := Simulate(baseInput())

	requireDecimal(t, "900", r.Replies, "replies")
	requireDecimal(t, "1100", r.NoReplies, "noReplies")
	requireDecimal(t, "225", r.Qualified, "qualified")
	requireDecimal(t, "67.5", r.Booked, "booked")
	requireDecimal(t, "0", r.Sales, "sales")

	requireDecimal(t, "220", r.CostNoReply, "costNoReply")
	requireDecimal(t, "3850", r.CostReplies, "costReplies")
	requireDecimal(t, "2625", r.CostQualified, "costQualified")
	requireDecimal(t, "4575", r.CostBooked, "costBooked")
	requireDecimal(t, "0", r.CostCommission, "costCommission")

	requireDecimal(t, "11270", r.CalculatedCost, "calculatedCost")
	requireDecimal(t, "11270", r.TotalCost, "totalCost")
	require.False(t, r.FloorApplied)
	require.True(t, r.TotalCost.GreaterThanOrEqual(d("2997")))
	requireDecimal(t, "5.635", r.CostPerLead, "costPerLead")
	require.InDelta(t, 166.962963, r.CostPerAcquisition.InexactFloat64(), 1e-6)

	require.Len(t, r.Charges.Replies, 3)
	require.Len(t, r.Charges.Qualified, 3)
	require.Len(t, r.Charges.Booked, 3)
}

func TestSimulateCommissionUsesLTVValue(t *testing.T) {
	in := baseInput()
	in.SalesConversionRate = d("0.2")
	in.LTVValue = d("3000")
	in.CommissionRate = d("0.03")

	r := Simulate(in)

	requireDecimal(t, "13.5", r.Sales, "sales")
	requireDecimal(t, "1215", r.CostCommission, "costCommission")
	requireDecimal(t, "12485", r.CalculatedCost, "calculatedCost")
}

func TestSimulateZeroLeads(t *testing.T) {
	tests := []struct {
		name    string
		minimum string
		floor   bool
	}{
		{name: "with minimum billing", minimum: "2997", floor: true},
		{name: "without minimum billing", minimum: "0", floor: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput().WithLeads(decimal.Zero)
			in.MinimumBilling = d(tt.minimum)
			in.SalesConversionRate = d("0.5")
			in.LTVValue = d("1000")
			in.CommissionRate = d("0.05")

			r := Simulate(in)

			for name, v := range map[string]decimal.Decimal{
				"replies": r.Replies, "noReplies": r.NoReplies, "qualified": r.Qualified,
				"booked": r.Booked, "sales": r.Sales, "costNoReply": r.CostNoReply,
				"costReplies": r.CostReplies, "costQualified": r.CostQualified,
				"costBooked": r.CostBooked, "costCommission": r.CostCommission,
				"calculatedCost": r.CalculatedCost, "costPerLead": r.CostPerLead,
				"costPerAcquisition": r.CostPerAcquisition,
			} {
				require.True(t, v.IsZero(), "%s = %s, want 0", name, v)
			}
			requireDecimal(t, tt.minimum, r.TotalCost, "totalCost")
			require.Equal(t, tt.floor, r.FloorApplied)
		})
	}
}

func TestSimulateMinimumBillingFloor(t *testing.T) {
	in := baseInput()
	in.TotalLeads = d("100")
	in.Rates = NewRates(0.10, 0.50, 0.50)

	r := Simulate(in)

	// 90*0.20 + 10*5 + 5*15 + 2.5*80
	requireDecimal(t, "343", r.CalculatedCost, "calculatedCost")
	requireDecimal(t, "2997", r.TotalCost, "totalCost")
	require.True(t, r.FloorApplied)
	requireDecimal(t, "2654", r.MinimumAdjustment, "minimumAdjustment")
	requireDecimal(t, "29.97", r.CostPerLead, "costPerLead")
	requireDecimal(t, "1198.8", r.CostPerAcquisition, "costPerAcquisition")
}

func TestSimulateNoBookingsHasZeroCPA(t *testing.T) {
	in := baseInput().WithRates(NewRates(0.45, 0.25, 0))

	r := Simulate(in)

	require.True(t, r.Booked.IsZero())
	require.True(t, r.CostPerAcquisition.IsZero())
	require.True(t, r.CostPerLead.IsPositive())
}

func TestSimulateCascadeConsistency(t *testing.T) {
	leads := []string{"0", "1", "37.5", "500", "2000", "12345"}
	rates := []Rates{
		NewRates(0, 0, 0),
		NewRates(1, 1, 1),
		NewRates(0.45, 0.25, 0.30),
		NewRates(0.333, 0.9, 0.01),
	}

	for _, l := range leads {
		for _, rt := range rates {
			in := baseInput().WithLeads(d(l)).WithRates(rt)
			r := Simulate(in)

			require.True(t, r.Replies.Add(r.NoReplies).Equal(in.TotalLeads), "replies+noReplies != leads for %s", l)
			require.True(t, r.Booked.LessThanOrEqual(r.Qualified))
			require.True(t, r.Qualified.LessThanOrEqual(r.Replies))
			require.True(t, r.Replies.LessThanOrEqual(in.TotalLeads))
		}
	}
}

func TestSimulateIsPure(t *testing.T) {
	in := baseInput()
	in.SalesConversionRate = d("0.166")
	in.LTVValue = d("3266.82")
	in.CommissionRate = d("0.03")
	before := in.Tables.Replies.Tiers()

	first := Simulate(in)
	second := Simulate(in)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated simulation differs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(before, in.Tables.Replies.Tiers()); diff != "" {
		t.Fatalf("simulation changed the caller's table:\n%s", diff)
	}
}

func TestBreakdownSumsToTotal(t *testing.T) {
	floored := baseInput()
	floored.TotalLeads = d("100")

	commission := baseInput()
	commission.SalesConversionRate = d("0.166")
	commission.LTVValue = d("3266.8166666666666667")
	commission.CommissionRate = d("0.03")

	for name, in := range map[string]Input{"floored": floored, "commission": commission, "zero": baseInput().WithLeads(decimal.Zero)} {
		t.Run(name, func(t *testing.T) {
			r := Simulate(in)
			rows := r.Breakdown()

			sum := decimal.Zero
			for _, row := range rows {
				sum = sum.Add(row.Amount)
			}
			require.True(t, sum.Equal(r.TotalCost), "sum %s != total %s", sum, r.TotalCost)

			if r.FloorApplied {
				require.Len(t, rows, 6)
				require.Equal(t, StageMinimumAdjustment, rows[5].Stage)
			} else {
				require.Len(t, rows, 5)
			}
		})
	}
}

func TestBreakdownShares(t *testing.T) {
	r := Simulate(baseInput())

	rows := r.Breakdown()

	require.Equal(t, "No reply", rows[0].Label)
	share := decimal.Zero
	for _, row := range rows {
		share = share.Add(row.Share)
	}
	require.InDelta(t, 100, share.InexactFloat64(), 1e-9)

	empty := Simulate(Input{})
	for _, row := range empty.Breakdown() {
		require.True(t, row.Share.IsZero())
	}
}

func TestLinesCarryLineage(t *testing.T) {
	in := baseInput()
	in.TotalLeads = d("100")

	lines := Simulate(in).Lines()

	require.Len(t, lines, 6)
	require.Equal(t, "replies", lines[1].ID)
	require.Equal(t, "tiered(replies, replies table)", lines[1].Lineage.Formula)
	require.Equal(t, "minimum_billing - calculated_cost", lines[5].Lineage.Formula)
}

func TestValidate(t *testing.T) {
	require.NoError(t, baseInput().Validate())

	bad := baseInput()
	bad.TotalLeads = d("-1")
	bad.Rates.Response = d("1.5")
	bad.Rates.Booking = d("-0.1")
	bad.CommissionRate = d("2")
	bad.MinimumBilling = d("-10")

	err := bad.Validate()

	require.Error(t, err)
	require.True(t, errors.IsType(err, errors.TypeValidation))
	require.ElementsMatch(t,
		[]string{"total_leads", "minimum_billing", "rates.response", "rates.booking", "commission_rate"},
		errors.Fields(err),
	)
	require.Contains(t, err.Error(), "invalid configuration")
}
