package scenario

import (
	"github.com/shopspring/decimal"

	"funnel-cost/core/compare"
	"funnel-cost/core/funnel"
	"funnel-cost/core/pricing"
)

// DefaultName names the built-in profile
const DefaultName = "default"

// Default returns the built-in customer profile: a 2,000-lead month on
// the standard price tables. It is a starting point for the CLI and for
// scenario files; the engine never falls back to it.
func Default() *Scenario {
	return &Scenario{
		Name:            DefaultName,
		Leads:           decimal.NewFromInt(2000),
		Rates:           funnel.NewRates(0.45, 0.25, 0.30),
		MinimumBilling:  decimal.NewFromInt(2997),
		Ticket:          decimal.RequireFromString("566.50"),
		LTVDays:         decimal.NewFromInt(173),
		SalesConversion: decimal.RequireFromString("0.166"),
		Commission:      decimal.RequireFromString("0.03"),
		SetupFee:        decimal.NewFromInt(14470),
		NoReplyPrice:    decimal.RequireFromString("0.20"),
		Tiers: map[string][]pricing.Tier{
			TableReplies: {
				pricing.NewTier(0, 300, 5),
				pricing.NewTier(300, 800, 4),
				pricing.NewTier(800, 1500, 3.5),
				pricing.NewTier(1500, 2500, 3),
				pricing.OpenTier(2500, 2.5),
			},
			TableQualified: {
				pricing.NewTier(0, 75, 15),
				pricing.NewTier(75, 150, 12),
				pricing.NewTier(150, 300, 8),
				pricing.OpenTier(300, 5),
			},
			TableBooked: {
				pricing.NewTier(0, 30, 80),
				pricing.NewTier(30, 60, 60),
				pricing.NewTier(60, 100, 50),
				pricing.OpenTier(100, 40),
			},
		},
		Team: compare.Team{
			Sellers:             decimal.NewFromInt(10),
			MonthlyCompensation: decimal.NewFromInt(9000),
			ChargesMultiplier:   decimal.RequireFromString("1.6"),
			MonthlyLeads:        decimal.NewFromInt(5000),
		},
	}
}
