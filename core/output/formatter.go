// Package output provides report formatting.
// This package produces human and machine-readable outputs.
package output

import (
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"funnel-cost/core/compare"
	"funnel-cost/core/diff"
	"funnel-cost/core/funnel"
	"funnel-cost/core/pricing"
	"funnel-cost/core/projection"
	"funnel-cost/core/scenario"
	"funnel-cost/core/sweep"
	"funnel-cost/core/types"
	"funnel-cost/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatYAML is machine-readable YAML
	FormatYAML Format = "yaml"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCLI, FormatJSON, FormatYAML, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", errors.Newf(errors.TypeInput, "unknown output format %q (cli, json, yaml, markdown)", s)
}

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for every section present in the report
	Render(w io.Writer, report *Report) error
}

// Report contains everything one command produced. Sections are
// optional; formatters skip the ones that are nil.
type Report struct {
	// Metadata contains execution context
	Metadata Metadata `json:"metadata" yaml:"metadata"`

	// Scenario is the input the report was computed from
	Scenario *scenario.Scenario `json:"scenario,omitempty" yaml:"scenario,omitempty"`

	Simulation *Simulation            `json:"simulation,omitempty" yaml:"simulation,omitempty"`
	Economics  *projection.Economics  `json:"economics,omitempty" yaml:"economics,omitempty"`
	Comparison *compare.Comparison    `json:"comparison,omitempty" yaml:"comparison,omitempty"`
	Projection *projection.Projection `json:"projection,omitempty" yaml:"projection,omitempty"`
	Sweep      *Sweep                 `json:"sweep,omitempty" yaml:"sweep,omitempty"`
	Grid       *Grid                  `json:"grid,omitempty" yaml:"grid,omitempty"`
	Diff       *Diff                  `json:"diff,omitempty" yaml:"diff,omitempty"`
	Tables     []PriceTable           `json:"tables,omitempty" yaml:"tables,omitempty"`
}

// Metadata contains execution context
type Metadata struct {
	// ID uniquely identifies this report
	ID string `json:"id" yaml:"id"`

	// Timestamp is when the report was produced
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Version is the tool version
	Version string `json:"version" yaml:"version"`

	// Scenario names the scenario that was run
	Scenario string `json:"scenario,omitempty" yaml:"scenario,omitempty"`

	// Fingerprint is the scenario's content hash
	Fingerprint string `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`

	// Currency labels every amount in the report
	Currency types.Currency `json:"currency" yaml:"currency"`
}

// NewMetadata stamps a report for s
func NewMetadata(version string, s *scenario.Scenario, currency types.Currency) Metadata {
	m := Metadata{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Version:   version,
		Currency:  currency,
	}
	if s != nil {
		m.Scenario = s.Name
		m.Fingerprint = s.Fingerprint().Hex()
	}
	return m
}

// Simulation is one engine run with its composition
type Simulation struct {
	Result    funnel.Result         `json:"result" yaml:"result"`
	Breakdown []funnel.BreakdownRow `json:"breakdown" yaml:"breakdown"`
	Lines     []types.CostUnit      `json:"lines,omitempty" yaml:"lines,omitempty"`
}

// NewSimulation wraps a result with its breakdown and cost lines
func NewSimulation(r funnel.Result) *Simulation {
	return &Simulation{
		Result:    r,
		Breakdown: r.Breakdown(),
		Lines:     r.Lines(),
	}
}

// Sweep is a set of volume curves for one rate
type Sweep struct {
	Param  sweep.Param    `json:"param" yaml:"param"`
	Series []sweep.Series `json:"series" yaml:"series"`
}

// Volumes returns the lead volumes shared by every curve
func (s *Sweep) Volumes() []decimal.Decimal {
	if len(s.Series) == 0 {
		return nil
	}
	volumes := make([]decimal.Decimal, len(s.Series[0].Points))
	for i, p := range s.Series[0].Points {
		volumes[i] = p.Leads
	}
	return volumes
}

// Grid is a qualification x booking matrix
type Grid struct {
	Matrix   *sweep.Grid     `json:"matrix" yaml:"matrix"`
	Insights *sweep.Insights `json:"insights,omitempty" yaml:"insights,omitempty"`

	// Row and Col locate the scenario's own rates, -1 when unset
	Row int `json:"selected_row" yaml:"selected_row"`
	Col int `json:"selected_col" yaml:"selected_col"`
}

// NewGrid wraps g, marking the cell nearest to rates
func NewGrid(g *sweep.Grid, rates funnel.Rates) *Grid {
	out := &Grid{Matrix: g, Insights: g.Insights(), Row: -1, Col: -1}
	if len(g.Qualification) > 0 && len(g.Booking) > 0 {
		out.Row, out.Col = g.Nearest(rates.Qualification, rates.Booking)
	}
	return out
}

// topChanges is how many components the largest-changes list shows
const topChanges = 3

// Diff compares two named runs
type Diff struct {
	Before string           `json:"before" yaml:"before"`
	After  string           `json:"after" yaml:"after"`
	Result *diff.DiffResult `json:"result" yaml:"result"`
}

// PriceTable describes one validated price table
type PriceTable struct {
	Name  string         `json:"name" yaml:"name"`
	Tiers []pricing.Tier `json:"tiers" yaml:"tiers"`
	Gaps  []pricing.Gap  `json:"gaps,omitempty" yaml:"gaps,omitempty"`
}

// NewPriceTables describes every table of a scenario input
func NewPriceTables(t funnel.Tables) []PriceTable {
	tables := []struct {
		name  string
		table pricing.Table
	}{
		{"no_reply", t.NoReply},
		{scenario.TableReplies, t.Replies},
		{scenario.TableQualified, t.Qualified},
		{scenario.TableBooked, t.Booked},
	}
	out := make([]PriceTable, 0, len(tables))
	for _, e := range tables {
		out = append(out, PriceTable{Name: e.name, Tiers: e.table.Tiers(), Gaps: e.table.Gaps()})
	}
	return out
}

// Options configure the human-readable formatters
type Options struct {
	Printer *Printer

	// NoColor disables ANSI colors in CLI output
	NoColor bool

	// Details adds per-band charges and cost lineage
	Details bool

	// Verbose adds the assumptions behind each lineage formula
	Verbose bool
}

// Registry manages formatter registration
type Registry struct {
	formatters map[Format]Formatter
}

// NewRegistry returns a registry holding every built-in formatter
func NewRegistry(opts Options) *Registry {
	if opts.Printer == nil {
		opts.Printer = DefaultPrinter()
	}
	r := &Registry{formatters: make(map[Format]Formatter)}
	for _, f := range []Formatter{
		&CLIFormatter{opts: opts},
		&JSONFormatter{Indent: "  "},
		&YAMLFormatter{Indent: 2},
		&MarkdownFormatter{opts: opts},
	} {
		// Built-ins never collide
		_ = r.Register(f)
	}
	return r
}

// Register adds a formatter to the registry
func (r *Registry) Register(f Formatter) error {
	if _, exists := r.formatters[f.Format()]; exists {
		return errors.Newf(errors.TypeInternal, "formatter %q already registered", f.Format())
	}
	r.formatters[f.Format()] = f
	return nil
}

// GetFormatter returns a formatter for a format type
func (r *Registry) GetFormatter(format Format) (Formatter, bool) {
	f, ok := r.formatters[format]
	return f, ok
}

// GetAll returns all registered formatters ordered by format name
func (r *Registry) GetAll() []Formatter {
	all := make([]Formatter, 0, len(r.formatters))
	for _, f := range r.formatters {
		all = append(all, f)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Format() < all[j].Format() })
	return all
}

// Render looks up format and renders report with it
func (r *Registry) Render(w io.Writer, format Format, report *Report) error {
	f, ok := r.GetFormatter(format)
	if !ok {
		return errors.NotSupported("output format " + string(format))
	}
	return f.Render(w, report)
}
