// Package main is the entry point for the funnel-cost CLI.
package main

import (
	"fmt"
	"os"

	"funnel-cost/cmd/cli/cmd"
	"funnel-cost/internal/errors"
	"funnel-cost/internal/logging"
)

func main() {
	err := cmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", errors.Describe(err))
		os.Exit(1)
	}
}
