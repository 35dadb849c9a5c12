package projection

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"funnel-cost/core/funnel"
	"funnel-cost/internal/errors"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLTV(t *testing.T) {
	ltv := LTV{MonthlyTicket: d("566.50"), Days: d("173")}

	require.Equal(t, 5, ltv.WholeMonths())
	require.InDelta(t, 5.766667, ltv.Months().InexactFloat64(), 1e-6)
	require.InDelta(t, 3266.816667, ltv.Value().InexactFloat64(), 1e-6)
}

func TestEvaluate(t *testing.T) {
	r := funnel.Result{Sales: d("10"), TotalCost: d("500")}
	ltv := LTV{MonthlyTicket: d("100"), Days: d("90")}

	e := Evaluate(r, ltv, d("1000"))

	require.True(t, e.MonthlyRevenue.Equal(d("1000")))
	require.True(t, e.LTVRevenue.Equal(d("3000")))
	require.True(t, e.ROIOnLTV.Equal(d("500")))
	require.True(t, e.MonthlyProfit.Equal(d("500")))
	require.NotNil(t, e.SetupPayback)
	require.True(t, e.SetupPayback.Equal(d("2")))

	slow := Evaluate(r, ltv, d("20000"))
	require.Nil(t, slow.SetupPayback, "payback beyond the ceiling is not reported")

	loss := Evaluate(funnel.Result{Sales: d("1"), TotalCost: d("500")}, ltv, d("1000"))
	require.Nil(t, loss.SetupPayback)
	require.True(t, loss.MonthlyProfit.IsNegative())

	free := Evaluate(funnel.Result{}, ltv, d("1000"))
	require.True(t, free.ROIOnLTV.IsZero())
}

func TestCashFlow(t *testing.T) {
	p := Params{
		SalesPerMonth: d("10"),
		MonthlyTicket: d("100"),
		LTVMonths:     3,
		SetupFee:      d("1000"),
		MonthlyCost:   d("500"),
	}

	proj, err := CashFlow(p)
	require.NoError(t, err)
	require.Len(t, proj.Months, DefaultHorizon)

	active := []string{"10", "20", "30", "30", "30", "30", "30", "30", "30", "30", "30", "30"}
	for i, m := range proj.Months {
		require.Equal(t, i+1, m.Month)
		require.True(t, m.ActiveCustomers.Equal(d(active[i])), "month %d active %s", m.Month, m.ActiveCustomers)
	}
	require.True(t, proj.Months[0].CumulativeCost.Equal(d("1500")))
	require.True(t, proj.Months[0].CumulativeProfit.Equal(d("-500")))

	month, ok := proj.BreakEvenMonth()
	require.True(t, ok)
	require.Equal(t, 2, month)

	require.True(t, proj.Revenue.Equal(d("33000")))
	require.True(t, proj.Cost.Equal(d("7000")))
	require.True(t, proj.Profit.Equal(d("26000")))
	require.InDelta(t, 371.428571, proj.ROI.InexactFloat64(), 1e-6)
}

func TestCashFlowProfitMonotonicOncePerPeriodProfitable(t *testing.T) {
	proj, err := CashFlow(Params{
		SalesPerMonth: d("3.5"),
		MonthlyTicket: d("566.50"),
		LTVMonths:     5,
		SetupFee:      d("14470"),
		MonthlyCost:   d("1500"),
		Horizon:       24,
	})
	require.NoError(t, err)

	for i := 1; i < len(proj.Months); i++ {
		require.True(t, proj.Months[i].CumulativeProfit.GreaterThanOrEqual(proj.Months[i-1].CumulativeProfit),
			"profit fell in month %d", proj.Months[i].Month)
	}

	month, ok := proj.BreakEvenMonth()
	require.True(t, ok)
	require.True(t, proj.Months[month-1].CumulativeProfit.IsPositive())
	if month > 1 {
		require.False(t, proj.Months[month-2].CumulativeProfit.IsPositive())
	}
}

func TestCashFlowWithoutBreakEven(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{name: "no sales", p: Params{MonthlyTicket: d("100"), LTVMonths: 6, SetupFee: d("1000"), MonthlyCost: d("100")}},
		{name: "zero lifetime", p: Params{SalesPerMonth: d("10"), MonthlyTicket: d("100"), LTVMonths: 0, MonthlyCost: d("1")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proj, err := CashFlow(tt.p)
			require.NoError(t, err)

			_, ok := proj.BreakEvenMonth()
			require.False(t, ok)
			require.Nil(t, proj.BreakEven)
			for _, m := range proj.Months {
				require.False(t, m.CumulativeProfit.IsPositive())
			}
		})
	}
}

func TestCashFlowRejectsNegativeParams(t *testing.T) {
	_, err := CashFlow(Params{SalesPerMonth: d("-1"), LTVMonths: -2, Horizon: -1})

	require.Error(t, err)
	require.True(t, errors.IsType(err, errors.TypeValidation))
	require.ElementsMatch(t, []string{"sales_per_month", "ltv_months", "horizon"}, errors.Fields(err))
}

func TestParamsFor(t *testing.T) {
	r := funnel.Result{Sales: d("11.205"), TotalCost: d("11270")}
	ltv := LTV{MonthlyTicket: d("566.50"), Days: d("173")}

	p := ParamsFor(r, ltv, d("14470"), 0)

	require.Equal(t, 5, p.LTVMonths)
	require.True(t, p.SalesPerMonth.Equal(d("11.205")))
	require.True(t, p.MonthlyCost.Equal(d("11270")))
	require.True(t, p.MonthlyTicket.Equal(d("566.5")))
}
