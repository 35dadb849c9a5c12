package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"funnel-cost/core/funnel"
	"funnel-cost/core/pricing"
	"funnel-cost/internal/errors"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

const acme = `
scenario "acme" {
  leads           = 2000.10
  minimum_billing = 4000
  commission      = 0.05

  rates {
    booking = 0.4
  }

  team {
    sellers = 4
  }

  tiers "booked" {
    band {
      max   = 50
      price = 90
    }
    band {
      min   = 50
      price = 45
    }
  }
}

scenario "lean" {
  leads      = 500
  setup_fee  = "9000"
}
`

func TestDefaultSimulation(t *testing.T) {
	in, err := Default().Input()
	require.NoError(t, err)

	r := funnel.Simulate(in)

	require.True(t, r.Booked.Equal(d("67.5")))
	require.True(t, r.CostReplies.Equal(d("3850")))
	require.True(t, r.CostQualified.Equal(d("2625")))
	require.True(t, r.CostBooked.Equal(d("4575")))
	require.True(t, r.CostNoReply.Equal(d("220")))
	require.InDelta(t, 1098.140423, r.CostCommission.InexactFloat64(), 1e-5)
	require.InDelta(t, 12368.140423, r.TotalCost.InexactFloat64(), 1e-5)
	require.False(t, r.FloorApplied)
}

func TestParse(t *testing.T) {
	scenarios, err := NewLoader().Parse([]byte(acme), "acme.hcl")
	require.NoError(t, err)
	require.Len(t, scenarios, 2)

	s := scenarios[0]
	require.Equal(t, "acme", s.Name)
	require.Equal(t, "2000.1", s.Leads.String(), "literals are carried exactly")
	require.True(t, s.MinimumBilling.Equal(d("4000")))
	require.True(t, s.Commission.Equal(d("0.05")))

	// untouched attributes keep the profile values
	require.True(t, s.Rates.Response.Equal(d("0.45")))
	require.True(t, s.Rates.Booking.Equal(d("0.4")))
	require.True(t, s.Ticket.Equal(d("566.5")))
	require.True(t, s.Team.Sellers.Equal(d("4")))
	require.True(t, s.Team.MonthlyLeads.Equal(d("5000")))

	// a tiers block replaces its table; the others stay
	require.Len(t, s.Tiers[TableBooked], 2)
	require.True(t, s.Tiers[TableBooked][0].Min.IsZero())
	require.True(t, s.Tiers[TableBooked][1].IsUnbounded())
	require.Len(t, s.Tiers[TableReplies], 5)

	lean := scenarios[1]
	require.True(t, lean.SetupFee.Equal(d("9000")), "numeric strings convert")
	require.True(t, lean.Rates.Booking.Equal(d("0.3")))
}

func TestParseDoesNotShareProfileState(t *testing.T) {
	scenarios, err := NewLoader().Parse([]byte(acme), "acme.hcl")
	require.NoError(t, err)

	scenarios[0].Tiers[TableReplies][0].UnitPrice = d("99")
	require.True(t, Default().Tiers[TableReplies][0].UnitPrice.Equal(d("5")))
	require.True(t, scenarios[1].Tiers[TableReplies][0].UnitPrice.Equal(d("5")))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "syntax", src: `scenario "x" {`, want: ""},
		{name: "no scenarios", src: ``, want: "no scenario blocks"},
		{name: "unknown attribute", src: "scenario \"x\" {\n  budget = 1\n}\n", want: "budget"},
		{name: "unknown table", src: "scenario \"x\" {\n  tiers \"sales\" {\n  }\n}\n", want: "Unknown price table"},
		{name: "duplicate", src: "scenario \"x\" {\n}\nscenario \"x\" {\n}\n", want: "Duplicate scenario"},
		{name: "not a number", src: "scenario \"x\" {\n  leads = \"many\"\n}\n", want: "Invalid number"},
		{name: "band without price", src: "scenario \"x\" {\n  tiers \"replies\" {\n    band {\n      min = 0\n    }\n  }\n}\n", want: "Missing required argument"},
		{name: "null price", src: "scenario \"x\" {\n  tiers \"booked\" {\n    band {\n      price = null\n    }\n  }\n}\n", want: "tiers.booked band 1 price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().Parse([]byte(tt.src), "bad.hcl")

			require.Error(t, err)
			require.True(t, errors.IsType(err, errors.TypeParsing), "got %v", err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acme.hcl")
	require.NoError(t, os.WriteFile(path, []byte(acme), 0o644))

	scenarios, err := NewLoader().LoadFile(path)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)

	_, err = NewLoader().LoadFile(filepath.Join(t.TempDir(), "missing.hcl"))
	require.True(t, errors.IsType(err, errors.TypeParsing))
}

func TestInputValidation(t *testing.T) {
	s := Default()
	s.Rates.Booking = d("1.5")
	s.SetupFee = d("-1")
	s.Tiers[TableReplies] = []pricing.Tier{
		pricing.NewTier(0, 300, 5),
		pricing.NewTier(200, 800, 4),
	}

	_, err := s.Input()
	require.Error(t, err)
	require.True(t, errors.IsType(err, errors.TypeValidation))

	fields := errors.Fields(err)
	require.Contains(t, fields, "rates.booking")
	require.Contains(t, fields, "setup_fee")

	var tableFields int
	for _, f := range fields {
		if strings.HasPrefix(f, "tiers.replies band") {
			tableFields++
		}
	}
	require.Equal(t, 1, tableFields, "fields: %v", fields)
	require.Contains(t, err.Error(), "3 problems")
}

func TestSelect(t *testing.T) {
	scenarios, err := NewLoader().Parse([]byte(acme), "acme.hcl")
	require.NoError(t, err)

	s, err := Select(scenarios, "")
	require.NoError(t, err)
	require.Equal(t, "acme", s.Name)

	s, err = Select(scenarios, "lean")
	require.NoError(t, err)
	require.Equal(t, "lean", s.Name)

	_, err = Select(scenarios, "nope")
	require.True(t, errors.IsType(err, errors.TypeInput))
	require.Contains(t, err.Error(), "acme, lean")

	_, err = Select(nil, "")
	require.Error(t, err)
}

func TestOverride(t *testing.T) {
	s := Default()
	require.NoError(t, s.Override(map[string]decimal.Decimal{
		"leads":         d("3000"),
		"rates.booking": d("0.5"),
	}))
	require.True(t, s.Leads.Equal(d("3000")))
	require.True(t, s.Rates.Booking.Equal(d("0.5")))

	err := s.Override(map[string]decimal.Decimal{"budget": d("1")})
	require.True(t, errors.IsType(err, errors.TypeInput))

	err = s.Override(map[string]decimal.Decimal{
		"leads":  d("10"),
		"ticket": d("1"),
		"budget": d("1"),
		"markup": d("2"),
	})
	require.True(t, errors.IsType(err, errors.TypeInput))
	require.Contains(t, err.Error(), "budget, markup")
	require.True(t, s.Leads.Equal(d("3000")), "nothing is applied when a key is unknown")
	require.True(t, s.Ticket.Equal(Default().Ticket))
}

func TestFingerprint(t *testing.T) {
	a := Default()
	b := a.Clone()

	require.False(t, a.Fingerprint().IsZero())
	require.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.Tiers[TableBooked][0].UnitPrice = d("81")
	require.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	require.True(t, a.Tiers[TableBooked][0].UnitPrice.Equal(d("80")), "clone is deep")
}
