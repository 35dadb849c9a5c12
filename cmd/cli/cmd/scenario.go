// Package cmd - scenario resolution shared by every command
package cmd

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"funnel-cost/core/output"
	"funnel-cost/core/scenario"
	"funnel-cost/internal/config"
	"funnel-cost/internal/logging"
)

// overrideFlag maps a command-line flag to a scenario attribute
type overrideFlag struct {
	flag  string
	key   string
	usage string
}

var overrideFlags = []overrideFlag{
	{"leads", "leads", "total leads per month"},
	{"response", "rates.response", "response rate, 0 to 1"},
	{"qualification", "rates.qualification", "qualification rate, 0 to 1"},
	{"booking", "rates.booking", "booking rate, 0 to 1"},
	{"min-billing", "minimum_billing", "minimum monthly billing"},
	{"ticket", "ticket", "monthly ticket per customer"},
	{"ltv-days", "ltv_days", "customer lifetime in days"},
	{"conversion", "sales_conversion", "booked-to-sale conversion, 0 to 1"},
	{"commission", "commission", "commission rate on lifetime value, 0 to 1"},
	{"setup-fee", "setup_fee", "one-off setup fee"},
}

// addScenarioFlags registers --scenario and the attribute overrides
func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("scenario", "s", "", "scenario name within the file (default: first)")
	for _, o := range overrideFlags {
		cmd.Flags().Float64(o.flag, 0, o.usage)
	}
}

// loadScenario resolves the scenario for a command: the file argument,
// else the configured file, else the built-in profile. Flags that were
// set explicitly override its attributes.
func loadScenario(cmd *cobra.Command, args []string) (*scenario.Scenario, error) {
	path := config.Get().Simulation.Scenario
	if len(args) > 0 {
		path = args[0]
	}
	name, _ := cmd.Flags().GetString("scenario")

	s, err := resolve(path, name)
	if err != nil {
		return nil, err
	}

	overrides := make(map[string]decimal.Decimal)
	for _, o := range overrideFlags {
		if !cmd.Flags().Changed(o.flag) {
			continue
		}
		v, err := cmd.Flags().GetFloat64(o.flag)
		if err != nil {
			return nil, err
		}
		overrides[o.key] = decimal.NewFromFloat(v)
	}
	if err := s.Override(overrides); err != nil {
		return nil, err
	}

	logging.Debug("scenario resolved",
		logging.Scenario(s.Name),
		zap.String("path", path),
		zap.Int("overrides", len(overrides)),
	)
	return s, nil
}

// resolve loads scenario name from path; an empty path is the built-in
// profile
func resolve(path, name string) (*scenario.Scenario, error) {
	if path == "" {
		return scenario.Select([]*scenario.Scenario{scenario.Default()}, name)
	}
	scenarios, err := scenario.NewLoader().LoadFile(path)
	if err != nil {
		return nil, err
	}
	return scenario.Select(scenarios, name)
}

// resolveRef reads "file.hcl", "file.hcl#name" or "default"
func resolveRef(ref string) (*scenario.Scenario, error) {
	if ref == scenario.DefaultName {
		return scenario.Default(), nil
	}
	path, name, _ := strings.Cut(ref, "#")
	return resolve(path, name)
}

// newReport stamps an empty report for s
func newReport(s *scenario.Scenario) *output.Report {
	return &output.Report{
		Metadata: output.NewMetadata(Version, s, config.Get().Output.Currency),
		Scenario: s,
	}
}
