package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"funnel-cost/internal/config"
	"funnel-cost/internal/errors"
)

const scenarios = `
scenario "acme" {
  leads = 2000
}

scenario "lean" {
  leads      = 500
  commission = 0
}
`

const overlapping = `
scenario "good" {
  leads = 1000
}

scenario "broken" {
  tiers "replies" {
    band {
      max   = 300
      price = 5
    }
    band {
      min   = 200
      max   = 800
      price = 4
    }
  }
}
`

// resetFlags puts every flag of the tree back to its default, since the
// command tree is package state shared by every test
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Cleanup(func() { config.Set(config.Default()) })

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	require.Equal(t, "funnel-cost version "+Version+"\n", out)
}

func TestSimulateJSON(t *testing.T) {
	out, err := run(t, "simulate", "--commission", "0", "--format", "json")
	require.NoError(t, err)

	var doc struct {
		Metadata struct {
			Scenario string `json:"scenario"`
		} `json:"metadata"`
		Simulation struct {
			Result struct {
				TotalCost    string `json:"total_cost"`
				FloorApplied bool   `json:"floor_applied"`
			} `json:"result"`
		} `json:"simulation"`
		Comparison json.RawMessage `json:"comparison"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Equal(t, "default", doc.Metadata.Scenario)
	require.Equal(t, "11270", doc.Simulation.Result.TotalCost)
	require.False(t, doc.Simulation.Result.FloorApplied)
	require.NotNil(t, doc.Comparison)
}

func TestSimulateFloor(t *testing.T) {
	out, err := run(t, "simulate", "--leads", "100", "--no-color", "--no-team")
	require.NoError(t, err)
	require.Contains(t, out, "R$ 2,997.00")
	require.Contains(t, out, "Minimum billing applied")
	require.NotContains(t, out, "Manual team comparison")
}

func TestSimulateVerboseLineage(t *testing.T) {
	out, err := run(t, "simulate", "--details", "--verbose", "--no-color")
	require.NoError(t, err)
	require.Contains(t, out, "Lineage")
	require.Contains(t, out, "assumes commission is paid on the lifetime value")

	out, err = run(t, "simulate", "--details", "--no-color")
	require.NoError(t, err)
	require.NotContains(t, out, "assumes")
}

func TestSimulateScenarioFile(t *testing.T) {
	path := writeFile(t, "acme.hcl", scenarios)

	out, err := run(t, "simulate", path, "--scenario", "lean", "--format", "yaml")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	require.Equal(t, "lean", doc["metadata"].(map[string]any)["scenario"])

	_, err = run(t, "simulate", path, "--scenario", "missing")
	require.True(t, errors.IsType(err, errors.TypeInput))
}

func TestSimulateRejectsInvalidInput(t *testing.T) {
	_, err := run(t, "simulate", "--booking", "1.5", "--ticket", "-1")
	require.True(t, errors.IsType(err, errors.TypeValidation))
	require.Contains(t, errors.Fields(err), "rates.booking")
	require.Contains(t, errors.Fields(err), "ticket")
	require.Contains(t, errors.Describe(err), "\n  - ")
}

func TestUnknownFormat(t *testing.T) {
	_, err := run(t, "simulate", "--format", "html")
	require.True(t, errors.IsType(err, errors.TypeInput))
}

func TestProject(t *testing.T) {
	out, err := run(t, "project", "--horizon", "6", "--format", "yaml")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	proj := doc["projection"].(map[string]any)
	require.Len(t, proj["months"], 6)
}

func TestSweep(t *testing.T) {
	out, err := run(t, "sweep", "--param", "booking", "--variations", "1", "--from", "1000", "--to", "2000", "--step", "500", "--format", "markdown")
	require.NoError(t, err)
	require.Contains(t, out, "## Sensitivity: booking rate")
	require.Contains(t, out, "| Leads | -15pp (15.0%) | Target (30.0%) | +15pp (45.0%) |")

	_, err = run(t, "sweep", "--param", "price")
	require.True(t, errors.IsType(err, errors.TypeInput))

	_, err = run(t, "sweep", "--variations", "-1")
	require.True(t, errors.IsType(err, errors.TypeInput))
}

func TestGrid(t *testing.T) {
	out, err := run(t, "grid", "--qualification-axis", "20,30,5", "--booking-axis", "25,35,5", "--format", "markdown")
	require.NoError(t, err)
	require.Contains(t, out, "| Qual \\ Book | 25.0% | 30.0% | 35.0% |")

	for _, bad := range []string{"0,150,5", "0,50", "a,b,c"} {
		_, err = run(t, "grid", "--booking-axis", bad)
		require.True(t, errors.IsType(err, errors.TypeInput), bad)
	}
}

func TestCompare(t *testing.T) {
	path := writeFile(t, "acme.hcl", scenarios)

	out, err := run(t, "compare", "default", path+"#lean", "--format", "markdown")
	require.NoError(t, err)
	require.Contains(t, out, "## default vs lean")
	require.Contains(t, out, "| Sales commission |")

	out, err = run(t, "compare", path, path, "--no-color")
	require.NoError(t, err)
	require.Contains(t, out, path+" → "+path)
	require.Contains(t, out, "No cost change")

	for _, bad := range []string{"1", "5", "-0.1"} {
		_, err = run(t, "compare", "default", path, "--threshold", bad)
		require.True(t, errors.IsType(err, errors.TypeInput), bad)
	}
}

func TestTiers(t *testing.T) {
	out, err := run(t, "tiers", "--format", "markdown")
	require.NoError(t, err)
	require.Contains(t, out, "## Price table: replies")
	require.Contains(t, out, "## Price table: booked")
}

func TestTiersValidate(t *testing.T) {
	out, err := run(t, "tiers", "validate", writeFile(t, "ok.hcl", scenarios), "--no-color")
	require.NoError(t, err)
	require.Contains(t, out, "✓ scenario acme is valid")
	require.Contains(t, out, "✓ scenario lean is valid")

	out, err = run(t, "tiers", "validate", writeFile(t, "broken.hcl", overlapping), "--no-color")
	require.True(t, errors.IsType(err, errors.TypeValidation))
	require.Contains(t, out, "✓ scenario good is valid")
	require.Contains(t, out, "✗ ")
	require.Contains(t, out, "tiers.replies band")
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funnel.yaml")

	out, err := run(t, "config", "init", "--path", path)
	require.NoError(t, err)
	require.Contains(t, out, "wrote "+path)
	require.FileExists(t, path)

	_, err = run(t, "config", "init", "--path", path)
	require.True(t, errors.IsType(err, errors.TypeInput))

	out, err = run(t, "config", "show", "--config", path, "--locale", "pt-BR")
	require.NoError(t, err)
	require.Contains(t, out, "default_format: cli")
	require.Contains(t, out, "locale: pt-BR")

	_, err = run(t, "config", "show", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	require.True(t, errors.IsType(err, errors.TypeConfig))
}
