// Package cmd - price table commands
package cmd

import (
	"github.com/spf13/cobra"

	"funnel-cost/core/output"
	"funnel-cost/core/scenario"
	"funnel-cost/core/ui"
	"funnel-cost/internal/config"
	"funnel-cost/internal/errors"
)

// tiersCmd shows the price tables of a scenario
var tiersCmd = &cobra.Command{
	Use:   "tiers [scenario.hcl]",
	Short: "Show the price tables of a scenario",
	Long: `Show the validated, ascending price tables a scenario bills with.

Examples:
  funnel-cost tiers
  funnel-cost tiers acme.hcl --scenario lean --format yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTiers,
}

// tiersValidateCmd checks every scenario in a file
var tiersValidateCmd = &cobra.Command{
	Use:   "validate [scenario.hcl]",
	Short: "Validate every scenario in a file",
	Long: `Parse a scenario file and validate every scenario in it: inverted or
overlapping bands, negative prices and out-of-range rates are reported
together. Exits non-zero when any scenario is invalid.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTiersValidate,
}

func init() {
	tiersCmd.Flags().StringP("scenario", "s", "", "scenario name within the file (default: first)")
	tiersCmd.AddCommand(tiersValidateCmd)
	rootCmd.AddCommand(tiersCmd)
}

func runTiers(cmd *cobra.Command, args []string) error {
	s, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	tables, err := s.Tables()
	if err != nil {
		return err
	}

	report := newReport(s)
	report.Tables = output.NewPriceTables(tables)
	return render(cmd, report)
}

func runTiersValidate(cmd *cobra.Command, args []string) error {
	path := config.Get().Simulation.Scenario
	if len(args) > 0 {
		path = args[0]
	}

	scenarios := []*scenario.Scenario{scenario.Default()}
	if path != "" {
		var err error
		if scenarios, err = scenario.NewLoader().LoadFile(path); err != nil {
			return err
		}
	}

	w := ui.NewWriter(cmd.OutOrStdout(), config.Get().Output.NoColor)
	invalid := 0
	for _, s := range scenarios {
		_, err := s.Input()
		if err == nil {
			err = s.Team.Validate()
		}
		if err != nil {
			invalid++
			w.Error("%s", errors.Describe(err))
			continue
		}
		w.Success("scenario %s is valid", s.Name)
	}

	if invalid > 0 {
		return errors.Newf(errors.TypeValidation, "%d of %d scenarios are invalid", invalid, len(scenarios))
	}
	return nil
}
