package scenario

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"funnel-cost/core/pricing"
	"funnel-cost/internal/errors"
	"funnel-cost/internal/logging"
)

// fileSchema is the top level of a scenario file
type fileSchema struct {
	Scenarios []*scenarioBlock `hcl:"scenario,block"`
}

type scenarioBlock struct {
	Name string `hcl:"name,label"`

	Leads           hcl.Expression `hcl:"leads,optional"`
	MinimumBilling  hcl.Expression `hcl:"minimum_billing,optional"`
	Ticket          hcl.Expression `hcl:"ticket,optional"`
	LTVDays         hcl.Expression `hcl:"ltv_days,optional"`
	SalesConversion hcl.Expression `hcl:"sales_conversion,optional"`
	Commission      hcl.Expression `hcl:"commission,optional"`
	SetupFee        hcl.Expression `hcl:"setup_fee,optional"`
	NoReplyPrice    hcl.Expression `hcl:"no_reply_price,optional"`

	Rates *ratesBlock   `hcl:"rates,block"`
	Team  *teamBlock    `hcl:"team,block"`
	Tiers []*tiersBlock `hcl:"tiers,block"`
}

type ratesBlock struct {
	Response      hcl.Expression `hcl:"response,optional"`
	Qualification hcl.Expression `hcl:"qualification,optional"`
	Booking       hcl.Expression `hcl:"booking,optional"`
}

type teamBlock struct {
	Sellers             hcl.Expression `hcl:"sellers,optional"`
	MonthlyCompensation hcl.Expression `hcl:"monthly_compensation,optional"`
	ChargesMultiplier   hcl.Expression `hcl:"charges_multiplier,optional"`
	MonthlyLeads        hcl.Expression `hcl:"monthly_leads,optional"`
}

type tiersBlock struct {
	Name  string       `hcl:"name,label"`
	Bands []*bandBlock `hcl:"band,block"`
}

type bandBlock struct {
	Min   hcl.Expression `hcl:"min,optional"`
	Max   hcl.Expression `hcl:"max,optional"`
	Price hcl.Expression `hcl:"price"`
}

// Loader parses scenario files. It is not safe for concurrent use.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a new scenario loader
func NewLoader() *Loader {
	return &Loader{
		parser: hclparse.NewParser(),
	}
}

// LoadFile reads and parses a scenario file
func (l *Loader) LoadFile(path string) ([]*Scenario, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Parsing("failed to read scenario file", err).WithContext("path", path)
	}

	scenarios, err := l.Parse(src, path)
	if err != nil {
		return nil, err
	}

	logging.Debug("loaded scenario file",
		zap.String("path", path),
		zap.Int("scenarios", len(scenarios)),
	)
	return scenarios, nil
}

// Parse decodes every scenario block in src. Each scenario starts from
// Default and overrides only the attributes it sets; a tiers block
// replaces the named table as a whole.
func (l *Loader) Parse(src []byte, filename string) ([]*Scenario, error) {
	file, diags := l.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diagnosticsError(filename, diags)
	}

	var schema fileSchema
	if diags := gohcl.DecodeBody(file.Body, nil, &schema); diags.HasErrors() {
		return nil, diagnosticsError(filename, diags)
	}

	if len(schema.Scenarios) == 0 {
		return nil, errors.Parsing("no scenario blocks found", nil).WithContext("path", filename)
	}

	seen := make(map[string]bool, len(schema.Scenarios))
	scenarios := make([]*Scenario, 0, len(schema.Scenarios))
	for _, block := range schema.Scenarios {
		if seen[block.Name] {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate scenario",
				Detail:   fmt.Sprintf("A scenario named %q was already declared in this file.", block.Name),
			})
			continue
		}
		seen[block.Name] = true

		s, blockDiags := block.decode()
		diags = append(diags, blockDiags...)
		scenarios = append(scenarios, s)
	}

	if diags.HasErrors() {
		return nil, diagnosticsError(filename, diags)
	}
	return scenarios, nil
}

func (b *scenarioBlock) decode() (*Scenario, hcl.Diagnostics) {
	s := Default()
	s.Name = b.Name

	var diags hcl.Diagnostics
	diags = append(diags, assign(&s.Leads, "leads", b.Leads)...)
	diags = append(diags, assign(&s.MinimumBilling, "minimum_billing", b.MinimumBilling)...)
	diags = append(diags, assign(&s.Ticket, "ticket", b.Ticket)...)
	diags = append(diags, assign(&s.LTVDays, "ltv_days", b.LTVDays)...)
	diags = append(diags, assign(&s.SalesConversion, "sales_conversion", b.SalesConversion)...)
	diags = append(diags, assign(&s.Commission, "commission", b.Commission)...)
	diags = append(diags, assign(&s.SetupFee, "setup_fee", b.SetupFee)...)
	diags = append(diags, assign(&s.NoReplyPrice, "no_reply_price", b.NoReplyPrice)...)

	if r := b.Rates; r != nil {
		diags = append(diags, assign(&s.Rates.Response, "rates.response", r.Response)...)
		diags = append(diags, assign(&s.Rates.Qualification, "rates.qualification", r.Qualification)...)
		diags = append(diags, assign(&s.Rates.Booking, "rates.booking", r.Booking)...)
	}

	if t := b.Team; t != nil {
		diags = append(diags, assign(&s.Team.Sellers, "team.sellers", t.Sellers)...)
		diags = append(diags, assign(&s.Team.MonthlyCompensation, "team.monthly_compensation", t.MonthlyCompensation)...)
		diags = append(diags, assign(&s.Team.ChargesMultiplier, "team.charges_multiplier", t.ChargesMultiplier)...)
		diags = append(diags, assign(&s.Team.MonthlyLeads, "team.monthly_leads", t.MonthlyLeads)...)
	}

	for _, tb := range b.Tiers {
		if !knownTable(tb.Name) {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unknown price table",
				Detail:   fmt.Sprintf("Table %q is not one of %s.", tb.Name, strings.Join(TableNames, ", ")),
			})
			continue
		}
		tiers, tierDiags := tb.decode()
		diags = append(diags, tierDiags...)
		s.Tiers[tb.Name] = tiers
	}

	return s, diags
}

func (b *tiersBlock) decode() ([]pricing.Tier, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	tiers := make([]pricing.Tier, 0, len(b.Bands))
	for i, band := range b.Bands {
		prefix := fmt.Sprintf("tiers.%s band %d ", b.Name, i+1)

		tier := pricing.Tier{Max: pricing.Unbounded}
		diags = append(diags, assign(&tier.Min, prefix+"min", band.Min)...)
		diags = append(diags, assign(&tier.Max, prefix+"max", band.Max)...)

		price, ok, priceDiags := number(prefix+"price", band.Price)
		diags = append(diags, priceDiags...)
		if ok {
			tier.UnitPrice = price
		} else if !priceDiags.HasErrors() {
			diags = append(diags, missing(prefix+"price", band.Price))
		}
		tiers = append(tiers, tier)
	}
	return tiers, diags
}

func knownTable(name string) bool {
	for _, n := range TableNames {
		if n == name {
			return true
		}
	}
	return false
}

// diagnosticsError turns HCL diagnostics into a parsing error
func diagnosticsError(filename string, diags hcl.Diagnostics) error {
	return errors.Parsing(fmt.Sprintf("failed to parse %s", filename), diags).
		WithContext("path", filename).
		WithContext("diagnostics", len(diags.Errs()))
}

// Select returns the scenario called name, or the first one when name is
// empty
func Select(scenarios []*Scenario, name string) (*Scenario, error) {
	if len(scenarios) == 0 {
		return nil, errors.Input("no scenarios to choose from")
	}
	if name == "" {
		return scenarios[0], nil
	}
	names := make([]string, 0, len(scenarios))
	for _, s := range scenarios {
		if s.Name == name {
			return s, nil
		}
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return nil, errors.Newf(errors.TypeInput, "scenario %q not found; available: %s", name, strings.Join(names, ", "))
}

// Override applies command-line style values on top of a scenario.
// Keys are the attribute names used in files, e.g. "rates.booking".
func (s *Scenario) Override(values map[string]decimal.Decimal) error {
	targets := map[string]*decimal.Decimal{
		"leads":                     &s.Leads,
		"minimum_billing":           &s.MinimumBilling,
		"ticket":                    &s.Ticket,
		"ltv_days":                  &s.LTVDays,
		"sales_conversion":          &s.SalesConversion,
		"commission":                &s.Commission,
		"setup_fee":                 &s.SetupFee,
		"no_reply_price":            &s.NoReplyPrice,
		"rates.response":            &s.Rates.Response,
		"rates.qualification":       &s.Rates.Qualification,
		"rates.booking":             &s.Rates.Booking,
		"team.sellers":              &s.Team.Sellers,
		"team.monthly_compensation": &s.Team.MonthlyCompensation,
		"team.charges_multiplier":   &s.Team.ChargesMultiplier,
		"team.monthly_leads":        &s.Team.MonthlyLeads,
	}
	var unknown []string
	for key := range values {
		if _, ok := targets[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return errors.Newf(errors.TypeInput, "unknown scenario attribute %s", strings.Join(unknown, ", "))
	}

	for key, v := range values {
		*targets[key] = v
	}
	return nil
}
