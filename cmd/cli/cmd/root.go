// Package cmd provides the CLI commands for funnel-cost.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"funnel-cost/core/output"
	"funnel-cost/core/types"
	"funnel-cost/internal/config"
	"funnel-cost/internal/errors"
	"funnel-cost/internal/logging"
)

// Version is stamped at build time with -ldflags "-X funnel-cost/cmd/cli/cmd.Version=..."
var Version = "0.1.0"

var (
	cfgFile     string
	verbose     bool
	format      string
	noColor     bool
	showDetails bool
	currency    string
	locale      string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "funnel-cost",
	Short: "Simulate the cost of a lead-qualification funnel",
	Long: `funnel-cost prices a commercial lead funnel against tiered volume tables.

It cascades leads through response, qualification and booking, bills
each stage marginally per band, applies the minimum billing floor and
reports cost per lead, cost per acquisition and a cash-flow projection.

Examples:
  funnel-cost simulate
  funnel-cost simulate acme.hcl --scenario lean --leads 3500
  funnel-cost sweep --param booking --format markdown
  funnel-cost compare acme.hcl#acme acme.hcl#lean`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.funnel-cost.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	flags.StringVarP(&format, "format", "f", "", "output format (cli, json, yaml, markdown)")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	flags.BoolVarP(&showDetails, "details", "d", false, "show per-band charges and cost lineage")
	flags.StringVar(&currency, "currency", "", "currency label (BRL, USD, EUR)")
	flags.StringVar(&locale, "locale", "", "locale for number formatting, e.g. en or pt-BR")

	rootCmd.AddCommand(versionCmd)
}

// initConfig loads the configuration file, layers flags on top and
// starts logging
func initConfig(cmd *cobra.Command, _ []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	} else if _, err := os.Stat(path); err != nil {
		return errors.Config("config file not readable", err).WithContext("path", path)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.DefaultFormat = format
	}
	if flags.Changed("no-color") {
		cfg.Output.NoColor = noColor
	}
	if flags.Changed("details") {
		cfg.Output.ShowDetails = showDetails
	}
	if flags.Changed("currency") {
		cfg.Output.Currency = types.Currency(currency)
	}
	if flags.Changed("locale") {
		cfg.Output.Locale = locale
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	config.Set(cfg)

	if err := logging.Initialize(cfg.Logging); err != nil {
		return errors.Config("failed to initialize logging", err)
	}
	logging.Debug("configuration loaded", zap.String("path", path), zap.String("format", cfg.Output.DefaultFormat))
	return nil
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "funnel-cost version %s\n", Version)
	},
}

// renderer resolves the output format and printer from configuration
func renderer() (*output.Registry, output.Format, error) {
	cfg := config.Get()

	f, err := output.ParseFormat(cfg.Output.DefaultFormat)
	if err != nil {
		return nil, "", err
	}
	printer, err := output.NewPrinter(cfg.Output.Locale, cfg.Output.Currency)
	if err != nil {
		return nil, "", err
	}

	registry := output.NewRegistry(output.Options{
		Printer: printer,
		NoColor: cfg.Output.NoColor,
		Details: cfg.Output.ShowDetails,
		Verbose: verbose,
	})
	return registry, f, nil
}

// render writes report to the command's output in the configured format
func render(cmd *cobra.Command, report *output.Report) error {
	registry, f, err := renderer()
	if err != nil {
		return err
	}
	return registry.Render(cmd.OutOrStdout(), f, report)
}
