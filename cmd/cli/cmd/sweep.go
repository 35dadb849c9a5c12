// Package cmd - sensitivity sweep and rate grid commands
package cmd

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"funnel-cost/core/output"
	"funnel-cost/core/sweep"
	"funnel-cost/internal/config"
	"funnel-cost/internal/errors"
)

var (
	sweepParam      string
	sweepFrom       float64
	sweepTo         float64
	sweepStep       float64
	sweepOffset     float64
	sweepVariations int

	gridQualification string
	gridBooking       string
)

// sweepCmd varies one rate across lead volumes
var sweepCmd = &cobra.Command{
	Use:   "sweep [scenario.hcl]",
	Short: "Show total cost across lead volumes for shifted conversion rates",
	Long: `Simulate the scenario across a range of lead volumes, once for the
target rate and once per shift of it.

Shifts default to 10 percentage points (15 for booking), two on each
side; shifts leaving 0-100% are dropped.

Examples:
  funnel-cost sweep --param booking
  funnel-cost sweep acme.hcl --param response --from 0 --to 5000 --step 250`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSweep,
}

// gridCmd tabulates qualification x booking
var gridCmd = &cobra.Command{
	Use:   "grid [scenario.hcl]",
	Short: "Tabulate total cost over qualification and booking rates",
	Long: `Simulate every combination of a qualification axis and a booking axis
at the scenario's lead volume and response rate.

Axes are given in whole percents as from,to,step.

Examples:
  funnel-cost grid
  funnel-cost grid --qualification-axis 10,30,5 --booking-axis 20,50,10`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGrid,
}

func init() {
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().StringVarP(&sweepParam, "param", "p", string(sweep.ParamBooking), "rate to vary (response, qualification, booking)")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "first lead volume")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 5000, "last lead volume")
	sweepCmd.Flags().Float64Var(&sweepStep, "step", 500, "lead volume step")
	sweepCmd.Flags().Float64Var(&sweepOffset, "offset", 0, "rate shift between curves, 0 to 1 (default per parameter)")
	sweepCmd.Flags().IntVar(&sweepVariations, "variations", 2, "shifts on each side of the target")

	addScenarioFlags(gridCmd)
	gridCmd.Flags().StringVar(&gridQualification, "qualification-axis", "0,35,5", "qualification axis in percent: from,to,step")
	gridCmd.Flags().StringVar(&gridBooking, "booking-axis", "0,50,5", "booking axis in percent: from,to,step")

	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(gridCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	if sweepVariations < 0 {
		return errors.Newf(errors.TypeInput, "--variations must not be negative, got %d", sweepVariations)
	}
	param, err := sweep.ParseParam(sweepParam)
	if err != nil {
		return err
	}
	volumes, err := sweep.Range(decimal.NewFromFloat(sweepFrom), decimal.NewFromFloat(sweepTo), decimal.NewFromFloat(sweepStep))
	if err != nil {
		return err
	}

	s, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	in, err := s.Input()
	if err != nil {
		return err
	}

	step := param.DefaultStep()
	if cmd.Flags().Changed("offset") {
		step = decimal.NewFromFloat(sweepOffset)
	}
	variations := sweep.Variations(param.Get(in.Rates), step, sweepVariations)

	runner := sweep.NewRunner(config.Get().Simulation.Workers)
	series, err := runner.Curves(cmd.Context(), in, param, variations, volumes)
	if err != nil {
		return err
	}

	report := newReport(s)
	report.Sweep = &output.Sweep{Param: param, Series: series}
	return render(cmd, report)
}

func runGrid(cmd *cobra.Command, args []string) error {
	qualification, err := axis("qualification-axis", gridQualification)
	if err != nil {
		return err
	}
	booking, err := axis("booking-axis", gridBooking)
	if err != nil {
		return err
	}

	s, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	in, err := s.Input()
	if err != nil {
		return err
	}

	runner := sweep.NewRunner(config.Get().Simulation.Workers)
	grid, err := runner.Grid(cmd.Context(), in, qualification, booking)
	if err != nil {
		return err
	}

	report := newReport(s)
	report.Grid = output.NewGrid(grid, in.Rates)
	return render(cmd, report)
}

// axis turns a from,to,step flag in whole percents into rates
func axis(flag, value string) ([]decimal.Decimal, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return nil, errors.Newf(errors.TypeInput, "--%s wants from,to,step, got %q", flag, value)
	}
	var bounds [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, errors.Newf(errors.TypeInput, "--%s wants whole percents, got %q", flag, part)
		}
		bounds[i] = n
	}
	from, to, step := bounds[0], bounds[1], bounds[2]
	if from < 0 || to > 100 {
		return nil, errors.Newf(errors.TypeInput, "--%s must stay within 0-100%%, got %d-%d", flag, from, to)
	}
	return sweep.Percentages(from, to, step)
}
