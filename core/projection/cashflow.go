package projection

import (
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"funnel-cost/core/funnel"
	"funnel-cost/internal/errors"
)

// DefaultHorizon is the projection length in months
const DefaultHorizon = 12

// Params drives a cash-flow projection
type Params struct {
	// SalesPerMonth is the number of new customers each month
	SalesPerMonth decimal.Decimal `json:"sales_per_month" yaml:"sales_per_month"`

	// MonthlyTicket is what each active customer pays per month
	MonthlyTicket decimal.Decimal `json:"monthly_ticket" yaml:"monthly_ticket"`

	// LTVMonths is how many months an acquired customer keeps paying
	LTVMonths int `json:"ltv_months" yaml:"ltv_months"`

	// SetupFee is charged once, before month one
	SetupFee decimal.Decimal `json:"setup_fee" yaml:"setup_fee"`

	// MonthlyCost is the simulated total cost charged every month
	MonthlyCost decimal.Decimal `json:"monthly_cost" yaml:"monthly_cost"`

	// Horizon is the number of months projected; zero means DefaultHorizon
	Horizon int `json:"horizon" yaml:"horizon"`
}

// ParamsFor builds projection parameters from a simulation
func ParamsFor(r funnel.Result, ltv LTV, setupFee decimal.Decimal, horizon int) Params {
	return Params{
		SalesPerMonth: r.Sales,
		MonthlyTicket: ltv.MonthlyTicket,
		LTVMonths:     ltv.WholeMonths(),
		SetupFee:      setupFee,
		MonthlyCost:   r.TotalCost,
		Horizon:       horizon,
	}
}

// Validate checks that every amount is non-negative
func (p Params) Validate() error {
	var problems error
	check := func(name string, v decimal.Decimal) {
		if v.IsNegative() {
			problems = multierr.Append(problems, errors.InvalidField(name, "must not be negative, got %s", v))
		}
	}
	check("sales_per_month", p.SalesPerMonth)
	check("monthly_ticket", p.MonthlyTicket)
	check("setup_fee", p.SetupFee)
	check("monthly_cost", p.MonthlyCost)
	if p.LTVMonths < 0 {
		problems = multierr.Append(problems, errors.InvalidField("ltv_months", "must not be negative, got %d", p.LTVMonths))
	}
	if p.Horizon < 0 {
		problems = multierr.Append(problems, errors.InvalidField("horizon", "must not be negative, got %d", p.Horizon))
	}
	return errors.Validation("projection", problems)
}

// Month is one row of the projection
type Month struct {
	Month             int             `json:"month" yaml:"month"`
	ActiveCustomers   decimal.Decimal `json:"active_customers" yaml:"active_customers"`
	Revenue           decimal.Decimal `json:"revenue" yaml:"revenue"`
	CumulativeRevenue decimal.Decimal `json:"cumulative_revenue" yaml:"cumulative_revenue"`
	CumulativeCost    decimal.Decimal `json:"cumulative_cost" yaml:"cumulative_cost"`
	CumulativeProfit  decimal.Decimal `json:"cumulative_profit" yaml:"cumulative_profit"`
}

// Projection is the month-by-month outcome
type Projection struct {
	Months []Month `json:"months" yaml:"months"`

	// BreakEven is the first month whose cumulative profit is above zero
	BreakEven *int `json:"break_even_month,omitempty" yaml:"break_even_month,omitempty"`

	Revenue decimal.Decimal `json:"revenue" yaml:"revenue"`
	Cost    decimal.Decimal `json:"cost" yaml:"cost"`
	Profit  decimal.Decimal `json:"profit" yaml:"profit"`

	// ROI is Profit / Cost in percent, zero when Cost is zero
	ROI decimal.Decimal `json:"roi" yaml:"roi"`
}

// BreakEvenMonth reports the break-even month, if any
func (p *Projection) BreakEvenMonth() (int, bool) {
	if p.BreakEven == nil {
		return 0, false
	}
	return *p.BreakEven, true
}

// CashFlow projects revenue against cost month by month. Customers won
// in a month keep paying for LTVMonths months, so the active base grows
// by SalesPerMonth each month until it saturates at SalesPerMonth *
// LTVMonths, where churn balances acquisition.
func CashFlow(p Params) (*Projection, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	horizon := p.Horizon
	if horizon == 0 {
		horizon = DefaultHorizon
	}

	ceiling := p.SalesPerMonth.Mul(decimal.NewFromInt(int64(p.LTVMonths)))
	active := decimal.Zero
	revenue := decimal.Zero
	cost := p.SetupFee

	proj := &Projection{Months: make([]Month, 0, horizon)}
	for m := 1; m <= horizon; m++ {
		active = active.Add(p.SalesPerMonth)
		if m > p.LTVMonths {
			active = active.Sub(p.SalesPerMonth)
		}
		active = decimal.Min(active, ceiling)

		monthRevenue := active.Mul(p.MonthlyTicket)
		revenue = revenue.Add(monthRevenue)
		cost = cost.Add(p.MonthlyCost)
		profit := revenue.Sub(cost)

		proj.Months = append(proj.Months, Month{
			Month:             m,
			ActiveCustomers:   active,
			Revenue:           monthRevenue,
			CumulativeRevenue: revenue,
			CumulativeCost:    cost,
			CumulativeProfit:  profit,
		})

		if proj.BreakEven == nil && profit.IsPositive() {
			month := m
			proj.BreakEven = &month
		}
	}

	proj.Revenue = revenue
	proj.Cost = cost
	proj.Profit = revenue.Sub(cost)
	if cost.IsPositive() {
		proj.ROI = proj.Profit.Div(cost).Mul(hundred)
	}
	return proj, nil
}
