// Package cmd - compare command
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"funnel-cost/core/diff"
	"funnel-cost/core/output"
	"funnel-cost/internal/errors"
	"funnel-cost/internal/logging"
)

var compareThreshold float64

// compareCmd diffs the cost composition of two scenarios
var compareCmd = &cobra.Command{
	Use:   "compare <before> <after>",
	Short: "Compare the cost composition of two scenarios",
	Long: `Simulate two scenarios and show how each cost component moved.

A scenario is a file (its first scenario), file#name for a named one,
or "default" for the built-in profile.

Examples:
  funnel-cost compare default acme.hcl
  funnel-cost compare acme.hcl#acme acme.hcl#lean
  funnel-cost compare before.hcl after.hcl --format markdown
  funnel-cost compare before.hcl after.hcl --threshold 0.05`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().Float64Var(&compareThreshold, "threshold", 0.001, "smallest relative change reported as a change, as a fraction of the before amount (0.01 = 1%)")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	if compareThreshold < 0 || compareThreshold >= 1 {
		return errors.Newf(errors.TypeInput, "--threshold is a fraction between 0 and 1, got %g", compareThreshold)
	}

	before, err := resolveRef(args[0])
	if err != nil {
		return err
	}
	after, err := resolveRef(args[1])
	if err != nil {
		return err
	}

	_, beforeResult, err := simulate(before)
	if err != nil {
		return err
	}
	_, afterResult, err := simulate(after)
	if err != nil {
		return err
	}

	result := diff.NewDiffer(compareThreshold).Diff(beforeResult, afterResult)
	logging.Debug("scenarios compared",
		zap.String("before", args[0]),
		zap.String("after", args[1]),
		logging.Money("delta", result.TotalDelta),
	)

	beforeName, afterName := before.Name, after.Name
	if beforeName == afterName {
		beforeName, afterName = args[0], args[1]
	}

	report := newReport(after)
	report.Diff = &output.Diff{Before: beforeName, After: afterName, Result: result}
	return render(cmd, report)
}
