// Package cmd - simulate and project commands
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"funnel-cost/core/compare"
	"funnel-cost/core/funnel"
	"funnel-cost/core/output"
	"funnel-cost/core/projection"
	"funnel-cost/core/scenario"
	"funnel-cost/internal/config"
	"funnel-cost/internal/logging"
)

var skipTeam bool

// simulateCmd runs one scenario through the funnel engine
var simulateCmd = &cobra.Command{
	Use:   "simulate [scenario.hcl]",
	Short: "Simulate the monthly cost of a scenario",
	Long: `Run one scenario through the funnel and report its cost.

Without a file the built-in profile is used. Any attribute flag that is
set overrides the scenario's value.

Examples:
  funnel-cost simulate
  funnel-cost simulate --leads 100
  funnel-cost simulate acme.hcl --scenario lean --booking 0.35 --details`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSimulate,
}

// projectCmd projects cash flow month by month
var projectCmd = &cobra.Command{
	Use:   "project [scenario.hcl]",
	Short: "Project revenue, cost and break-even month by month",
	Long: `Project the scenario's cash flow over a horizon of months.

Customers won each month keep paying the ticket for the lifetime window;
the setup fee is charged before month one and the simulated cost every
month.

Examples:
  funnel-cost project
  funnel-cost project acme.hcl --horizon 24`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProject,
}

var horizon int

func init() {
	addScenarioFlags(simulateCmd)
	simulateCmd.Flags().BoolVar(&skipTeam, "no-team", false, "omit the manual team comparison")

	addScenarioFlags(projectCmd)
	projectCmd.Flags().IntVar(&horizon, "horizon", 0, "months to project (default from config, 12)")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(projectCmd)
}

// simulate validates s and runs the engine once
func simulate(s *scenario.Scenario) (funnel.Input, funnel.Result, error) {
	in, err := s.Input()
	if err != nil {
		return funnel.Input{}, funnel.Result{}, err
	}
	res := funnel.Simulate(in)
	logging.Info("simulation complete",
		logging.Scenario(s.Name),
		logging.Decimal("leads", in.TotalLeads),
		logging.Money("total_cost", res.TotalCost),
		zap.Bool("floor_applied", res.FloorApplied),
	)
	return in, res, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	s, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	in, res, err := simulate(s)
	if err != nil {
		return err
	}

	report := newReport(s)
	report.Simulation = output.NewSimulation(res)
	economics := projection.Evaluate(res, s.LTV(), s.SetupFee)
	report.Economics = &economics

	if !skipTeam {
		if err := s.Team.Validate(); err != nil {
			return err
		}
		comparison := compare.Compare(s.Team, s.Leads, res.TotalCost)
		report.Comparison = &comparison
	}
	if config.Get().Output.ShowDetails {
		report.Tables = output.NewPriceTables(in.Tables)
	}
	return render(cmd, report)
}

func runProject(cmd *cobra.Command, args []string) error {
	s, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	_, res, err := simulate(s)
	if err != nil {
		return err
	}

	months := horizon
	if !cmd.Flags().Changed("horizon") {
		months = config.Get().Simulation.Horizon
	}
	proj, err := projection.CashFlow(projection.ParamsFor(res, s.LTV(), s.SetupFee, months))
	if err != nil {
		return err
	}
	if month, ok := proj.BreakEvenMonth(); ok {
		logging.Debug("break-even found", logging.Scenario(s.Name), zap.Int("month", month))
	}

	report := newReport(s)
	economics := projection.Evaluate(res, s.LTV(), s.SetupFee)
	report.Economics = &economics
	report.Projection = proj
	return render(cmd, report)
}
