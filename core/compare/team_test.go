package compare

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"funnel-cost/internal/errors"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func team() Team {
	return Team{
		Sellers:             d("10"),
		MonthlyCompensation: d("9000"),
		ChargesMultiplier:   d("1.6"),
		MonthlyLeads:        d("5000"),
	}
}

func TestTeamCost(t *testing.T) {
	require.True(t, team().MonthlyCost().Equal(d("144000")))
	require.True(t, team().CostPerLead().Equal(d("28.8")))
	require.True(t, Team{}.CostPerLead().IsZero())
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name      string
		simulated string
		savings   string
		saves     bool
	}{
		{name: "cheaper than the team", simulated: "11270", savings: "46330", saves: true},
		{name: "same as the team", simulated: "57600", savings: "0", saves: true},
		{name: "more expensive", simulated: "60000", savings: "-2400", saves: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Compare(team(), d("2000"), d(tt.simulated))

			require.True(t, c.ProportionalCost.Equal(d("57600")))
			require.True(t, c.CapacityShare.Equal(d("40")))
			require.True(t, c.Savings.Equal(d(tt.savings)), "savings %s", c.Savings)
			require.Equal(t, tt.saves, c.Saves())
		})
	}

	c := Compare(team(), d("2000"), d("11270"))
	require.InDelta(t, 80.434028, c.SavingsPercent.InexactFloat64(), 1e-6)
}

func TestCompareWithoutCapacity(t *testing.T) {
	c := Compare(Team{}, d("2000"), d("100"))

	require.True(t, c.ProportionalCost.IsZero())
	require.True(t, c.CapacityShare.IsZero())
	require.True(t, c.SavingsPercent.IsZero())
	require.False(t, c.Saves())
}

func TestTeamValidate(t *testing.T) {
	require.NoError(t, team().Validate())

	bad := team()
	bad.Sellers = d("-1")
	bad.MonthlyLeads = decimal.Zero

	err := bad.Validate()
	require.True(t, errors.IsType(err, errors.TypeValidation))
	require.ElementsMatch(t, []string{"sellers", "monthly_leads"}, errors.Fields(err))
}
