package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"funnel-cost/core/types"
)

// MarkdownFormatter renders reports as GitHub-flavored markdown, for
// proposals and pull requests
type MarkdownFormatter struct {
	opts Options
}

// NewMarkdownFormatter creates a markdown formatter
func NewMarkdownFormatter(opts Options) *MarkdownFormatter {
	if opts.Printer == nil {
		opts.Printer = DefaultPrinter()
	}
	return &MarkdownFormatter{opts: opts}
}

// Format returns the format type
func (f *MarkdownFormatter) Format() Format {
	return FormatMarkdown
}

// mdTable accumulates a markdown table
type mdTable struct {
	b *strings.Builder
}

func newMDTable(b *strings.Builder, headers []string, right ...int) mdTable {
	aligned := make(map[int]bool, len(right))
	for _, c := range right {
		aligned[c] = true
	}
	b.WriteString("| " + strings.Join(headers, " | ") + " |\n|")
	for i := range headers {
		if aligned[i] {
			b.WriteString("---:|")
		} else {
			b.WriteString("---|")
		}
	}
	b.WriteString("\n")
	return mdTable{b: b}
}

func (t mdTable) row(cells ...string) {
	t.b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
}

// Render writes every section present in the report
func (f *MarkdownFormatter) Render(w io.Writer, r *Report) error {
	p := f.opts.Printer
	var b strings.Builder

	title := "Funnel cost report"
	if r.Metadata.Scenario != "" {
		title += ": " + r.Metadata.Scenario
	}
	b.WriteString("# " + title + "\n\n")

	if s := r.Simulation; s != nil {
		res := s.Result
		b.WriteString("## Simulation\n\n")
		fmt.Fprintf(&b, "**Total cost:** %s  \n", p.Money(res.TotalCost))
		fmt.Fprintf(&b, "**Cost per lead:** %s  \n", p.Money(res.CostPerLead))
		fmt.Fprintf(&b, "**Cost per acquisition:** %s\n\n", p.Money(res.CostPerAcquisition))
		if res.FloorApplied {
			fmt.Fprintf(&b, "> Minimum billing applied: %s added to the calculated %s.\n\n",
				p.Money(res.MinimumAdjustment), p.Money(res.CalculatedCost))
		}

		t := newMDTable(&b, []string{"Component", "Quantity", "Amount", "Share"}, 1, 2, 3)
		for _, row := range s.Breakdown {
			t.row(row.Label, p.Quantity(row.Quantity), p.Money(row.Amount), p.Percent(row.Share))
		}
		t.row("**Total**", "", "**"+p.Money(res.TotalCost)+"**", p.Percent(hundred))
		b.WriteString("\n")

		if f.opts.Details {
			b.WriteString("### Lineage\n\n")
			for _, line := range s.Lines {
				fmt.Fprintf(&b, "- **%s** (%s): `%s`\n", line.Label, p.Money(line.Amount), line.Lineage.Formula)
			}
			fmt.Fprintf(&b, "- **Total**: %s\n", p.Money(types.SumAmounts(s.Lines)))
			b.WriteString("\n")
		}
	}

	if e := r.Economics; e != nil {
		b.WriteString("## Unit economics\n\n")
		t := newMDTable(&b, []string{"Metric", "Value"}, 1)
		t.row("Monthly revenue", p.Money(e.MonthlyRevenue))
		t.row("Monthly profit", p.Money(e.MonthlyProfit))
		t.row("Revenue over LTV", p.Money(e.LTVRevenue))
		t.row("ROI on LTV", p.Percent(e.ROIOnLTV))
		if e.SetupPayback != nil {
			t.row("Setup payback", p.Fixed(*e.SetupPayback, 1)+" months")
		}
		b.WriteString("\n")
	}

	if c := r.Comparison; c != nil {
		b.WriteString("## Manual team comparison\n\n")
		t := newMDTable(&b, []string{"Item", "Value"}, 1)
		t.row("Team monthly cost", p.Money(c.TeamMonthlyCost))
		t.row("Team cost for these leads", p.Money(c.ProportionalCost))
		t.row("Simulated cost", p.Money(c.SimulatedCost))
		t.row("Savings", p.Money(c.Savings)+" ("+p.Percent(c.SavingsPercent)+")")
		b.WriteString("\n")
	}

	if proj := r.Projection; proj != nil {
		fmt.Fprintf(&b, "## %d-month projection\n\n", len(proj.Months))
		t := newMDTable(&b, []string{"Month", "Active", "Revenue", "Cum. profit"}, 0, 1, 2, 3)
		for _, m := range proj.Months {
			t.row(strconv.Itoa(m.Month), p.Quantity(m.ActiveCustomers), p.Money(m.Revenue), p.Money(m.CumulativeProfit))
		}
		b.WriteString("\n")
		if month, ok := proj.BreakEvenMonth(); ok {
			fmt.Fprintf(&b, "Break-even in **month %d**. ", month)
		} else {
			b.WriteString("No break-even within the horizon. ")
		}
		fmt.Fprintf(&b, "ROI %s.\n\n", p.Percent(proj.ROI))
	}

	if s := r.Sweep; s != nil {
		fmt.Fprintf(&b, "## Sensitivity: %s rate\n\n", s.Param)
		headers := []string{"Leads"}
		right := []int{0}
		for i, series := range s.Series {
			headers = append(headers, series.Variation.Label)
			right = append(right, i+1)
		}
		t := newMDTable(&b, headers, right...)
		for i, leads := range s.Volumes() {
			row := []string{p.Quantity(leads)}
			for _, series := range s.Series {
				row = append(row, p.Money(series.Points[i].TotalCost))
			}
			t.row(row...)
		}
		b.WriteString("\n")
	}

	if g := r.Grid; g != nil {
		b.WriteString("## Total cost by qualification and booking\n\n")
		headers := []string{"Qual \\ Book"}
		right := make([]int, 0, len(g.Matrix.Booking))
		for j, bk := range g.Matrix.Booking {
			headers = append(headers, p.Rate(bk))
			right = append(right, j+1)
		}
		t := newMDTable(&b, headers, right...)
		for i, q := range g.Matrix.Qualification {
			row := []string{p.Rate(q)}
			for j, cell := range g.Matrix.Cells[i] {
				v := p.Money(cell.TotalCost)
				if i == g.Row && j == g.Col {
					v = "**" + v + "**"
				}
				row = append(row, v)
			}
			t.row(row...)
		}
		b.WriteString("\n")
	}

	if d := r.Diff; d != nil {
		res := d.Result
		fmt.Fprintf(&b, "## %s vs %s\n\n", d.Before, d.After)
		for _, line := range strings.Split(strings.TrimRight(res.Summary(p.Money), "\n"), "\n") {
			b.WriteString(strings.TrimSpace(line) + "  \n")
		}
		b.WriteString("\n")
		t := newMDTable(&b, []string{"Component", d.Before, d.After, "Change"}, 1, 2, 3)
		for _, c := range res.Components {
			t.row(c.Label, p.Money(c.Before), p.Money(c.After), signed(p, c.Delta))
		}
		t.row("**Total**", p.Money(res.TotalBefore), p.Money(res.TotalAfter), "**"+signed(p, res.TotalDelta)+"**")
		b.WriteString("\n")

		if top := res.TopChanges(topChanges); len(top) > 0 {
			b.WriteString("**Largest changes**\n\n")
			for i, c := range top {
				fmt.Fprintf(&b, "%d. %s: %s (%s)\n", i+1, c.Label, signed(p, c.Delta), c.ChangeType)
			}
			b.WriteString("\n")
		}
	}

	for _, pt := range r.Tables {
		fmt.Fprintf(&b, "## Price table: %s\n\n", pt.Name)
		t := newMDTable(&b, []string{"Band", "Unit price"}, 1)
		for _, tier := range pt.Tiers {
			t.row(tier.Range(), p.Money(tier.UnitPrice))
		}
		b.WriteString("\n")
	}

	if r.Metadata.ID != "" {
		fmt.Fprintf(&b, "<sub>report %s · %s</sub>\n", r.Metadata.ID, r.Metadata.Timestamp.Format("2006-01-02 15:04 MST"))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func signed(p *Printer, d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + p.Money(d)
	}
	if d.IsNegative() {
		return "-" + p.Money(d.Abs())
	}
	return p.Money(d)
}
