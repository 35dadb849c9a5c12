// Package diff provides stage-level cost diffing.
// Compares two simulation results component by component.
package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"funnel-cost/core/funnel"
)

var hundred = decimal.NewFromInt(100)

// DiffResult is the complete diff between two simulation results
type DiffResult struct {
	// Overall summary
	TotalBefore  decimal.Decimal `json:"total_before" yaml:"total_before"`
	TotalAfter   decimal.Decimal `json:"total_after" yaml:"total_after"`
	TotalDelta   decimal.Decimal `json:"total_delta" yaml:"total_delta"`
	DeltaPercent decimal.Decimal `json:"delta_percent" yaml:"delta_percent"`

	// Unit economics
	CPLBefore    decimal.Decimal `json:"cpl_before" yaml:"cpl_before"`
	CPLAfter     decimal.Decimal `json:"cpl_after" yaml:"cpl_after"`
	CPABefore    decimal.Decimal `json:"cpa_before" yaml:"cpa_before"`
	CPAAfter     decimal.Decimal `json:"cpa_after" yaml:"cpa_after"`
	BookedBefore decimal.Decimal `json:"booked_before" yaml:"booked_before"`
	BookedAfter  decimal.Decimal `json:"booked_after" yaml:"booked_after"`

	// Components in report order
	Components []*ComponentDiff `json:"components" yaml:"components"`

	// Counts
	AddedCount     int `json:"added" yaml:"added"`
	RemovedCount   int `json:"removed" yaml:"removed"`
	ChangedCount   int `json:"changed" yaml:"changed"`
	UnchangedCount int `json:"unchanged" yaml:"unchanged"`
}

// ChangeType indicates the type of change
type ChangeType int

const (
	ChangeUnchanged ChangeType = iota // Within the threshold
	ChangeAdded                       // Billed only after
	ChangeRemoved                     // Billed only before
	ChangeIncreased                   // Cost went up
	ChangeDecreased                   // Cost went down
)

// String returns the change type name
func (c ChangeType) String() string {
	switch c {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	case ChangeIncreased:
		return "increased"
	case ChangeDecreased:
		return "decreased"
	case ChangeUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// MarshalText renders the change type by name
func (c ChangeType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ComponentDiff describes changes to one billed stage
type ComponentDiff struct {
	Stage      funnel.Stage `json:"stage" yaml:"stage"`
	Label      string       `json:"label" yaml:"label"`
	ChangeType ChangeType   `json:"change" yaml:"change"`

	Before decimal.Decimal `json:"before" yaml:"before"`
	After  decimal.Decimal `json:"after" yaml:"after"`
	Delta  decimal.Decimal `json:"delta" yaml:"delta"`

	// Percent is Delta relative to Before; zero when Before is zero
	Percent decimal.Decimal `json:"percent" yaml:"percent"`
}

// Differ computes diffs between simulation results
type Differ struct {
	// Threshold for "unchanged" as a fraction of the before amount
	// (e.g., 0.01 = 1%), not a currency amount
	Threshold decimal.Decimal
}

// NewDiffer creates a new differ
func NewDiffer(threshold float64) *Differ {
	if threshold <= 0 {
		threshold = 0.001 // 0.1% default
	}
	return &Differ{Threshold: decimal.NewFromFloat(threshold)}
}

// Diff computes the diff between before and after
func (d *Differ) Diff(before, after funnel.Result) *DiffResult {
	result := &DiffResult{
		TotalBefore:  before.TotalCost,
		TotalAfter:   after.TotalCost,
		TotalDelta:   after.TotalCost.Sub(before.TotalCost),
		CPLBefore:    before.CostPerLead,
		CPLAfter:     after.CostPerLead,
		CPABefore:    before.CostPerAcquisition,
		CPAAfter:     after.CostPerAcquisition,
		BookedBefore: before.Booked,
		BookedAfter:  after.Booked,
		Components:   make([]*ComponentDiff, 0, len(funnel.Stages)),
	}
	if before.TotalCost.IsPositive() {
		result.DeltaPercent = result.TotalDelta.Div(before.TotalCost).Mul(hundred)
	}

	for _, stage := range funnel.Stages {
		c := d.compareStage(stage, before.Amount(stage), after.Amount(stage))
		if c == nil {
			continue
		}
		result.Components = append(result.Components, c)

		switch c.ChangeType {
		case ChangeAdded:
			result.AddedCount++
		case ChangeRemoved:
			result.RemovedCount++
		case ChangeIncreased, ChangeDecreased:
			result.ChangedCount++
		default:
			result.UnchangedCount++
		}
	}

	return result
}

// compareStage returns nil when the stage is billed on neither side
func (d *Differ) compareStage(stage funnel.Stage, before, after decimal.Decimal) *ComponentDiff {
	if before.IsZero() && after.IsZero() {
		return nil
	}

	c := &ComponentDiff{
		Stage:  stage,
		Label:  stage.Label(),
		Before: before,
		After:  after,
		Delta:  after.Sub(before),
	}

	switch {
	case before.IsZero():
		c.ChangeType = ChangeAdded
		return c
	case after.IsZero():
		c.ChangeType = ChangeRemoved
		c.Percent = hundred.Neg()
		return c
	}

	change := c.Delta.Div(before)
	c.Percent = change.Mul(hundred)

	switch {
	case change.Abs().LessThanOrEqual(d.Threshold):
		c.ChangeType = ChangeUnchanged
	case change.IsPositive():
		c.ChangeType = ChangeIncreased
	default:
		c.ChangeType = ChangeDecreased
	}
	return c
}

// Summary provides a human-readable summary. money formats amounts;
// nil prints them with two decimals.
func (r *DiffResult) Summary(money func(decimal.Decimal) string) string {
	if money == nil {
		money = func(d decimal.Decimal) string { return d.StringFixed(2) }
	}
	var b strings.Builder

	// Overall change
	switch {
	case r.TotalDelta.IsZero():
		b.WriteString("No cost change\n")
	case r.TotalDelta.IsNegative():
		fmt.Fprintf(&b, "Cost decreased by %s (%s%%)\n", money(r.TotalDelta.Abs()), r.DeltaPercent.StringFixed(1))
	default:
		fmt.Fprintf(&b, "Cost increased by %s (+%s%%)\n", money(r.TotalDelta), r.DeltaPercent.StringFixed(1))
	}

	// Component changes
	if r.AddedCount > 0 {
		fmt.Fprintf(&b, "  + %d components added\n", r.AddedCount)
	}
	if r.RemovedCount > 0 {
		fmt.Fprintf(&b, "  - %d components removed\n", r.RemovedCount)
	}
	if r.ChangedCount > 0 {
		fmt.Fprintf(&b, "  ~ %d components changed\n", r.ChangedCount)
	}

	return b.String()
}

// TopChanges returns the components with largest cost impact, skipping
// unchanged ones
func (r *DiffResult) TopChanges(n int) []*ComponentDiff {
	all := make([]*ComponentDiff, 0, len(r.Components))
	for _, c := range r.Components {
		if c.ChangeType != ChangeUnchanged {
			all = append(all, c)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Delta.Abs().GreaterThan(all[j].Delta.Abs())
	})

	n = max(0, min(n, len(all)))
	return all[:n]
}
