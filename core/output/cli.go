package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"funnel-cost/core/diff"
	"funnel-cost/core/funnel"
	"funnel-cost/core/pricing"
	"funnel-cost/core/sweep"
	"funnel-cost/core/types"
	"funnel-cost/core/ui"
)

// CLIFormatter renders reports as terminal tables
type CLIFormatter struct {
	opts Options
}

// NewCLIFormatter creates a terminal formatter
func NewCLIFormatter(opts Options) *CLIFormatter {
	if opts.Printer == nil {
		opts.Printer = DefaultPrinter()
	}
	return &CLIFormatter{opts: opts}
}

// Format returns the format type
func (f *CLIFormatter) Format() Format {
	return FormatCLI
}

// Render prints every section present in the report
func (f *CLIFormatter) Render(out io.Writer, r *Report) error {
	w := ui.NewWriter(out, f.opts.NoColor)
	if f.opts.Verbose {
		w.SetVerbosity(2)
	}

	if r.Simulation != nil {
		f.renderSimulation(w, r.Simulation)
	}
	if r.Economics != nil {
		f.renderEconomics(w, r)
	}
	if r.Comparison != nil {
		f.renderComparison(w, r)
	}
	if r.Projection != nil {
		f.renderProjection(w, r)
	}
	if r.Sweep != nil {
		f.renderSweep(w, r.Sweep)
	}
	if r.Grid != nil {
		f.renderGrid(w, r.Grid)
	}
	if r.Diff != nil {
		f.renderDiff(w, r.Diff)
	}
	if len(r.Tables) > 0 {
		f.renderTables(w, r.Tables)
	}

	if r.Metadata.Scenario != "" {
		w.Line("")
		w.Line(w.Color(ui.Dim, fmt.Sprintf("scenario %s · fingerprint %.12s · report %s",
			r.Metadata.Scenario, r.Metadata.Fingerprint, r.Metadata.ID)))
	}
	return nil
}

func (f *CLIFormatter) renderSimulation(w *ui.Writer, s *Simulation) {
	p := f.opts.Printer
	res := s.Result

	summary := w.NewSummary("Simulation").
		Add("Total cost", p.Money(res.TotalCost)).
		Add("Cost per lead", p.Money(res.CostPerLead)).
		Add("Cost per acquisition", p.Money(res.CostPerAcquisition)).
		Add("Calculated cost", p.Money(res.CalculatedCost))
	if res.FloorApplied {
		summary.Note("Minimum billing applied: %s added to reach the floor", p.Money(res.MinimumAdjustment))
	}
	summary.Render()

	w.Line("")
	w.SubHeader("Funnel")
	volumes := w.NewTable("Stage", "Volume").AlignRight(1)
	volumes.AddRow("Leads", p.Quantity(res.TotalLeads))
	volumes.AddRow("No reply", p.Quantity(res.NoReplies))
	volumes.AddRow("Replied", p.Quantity(res.Replies))
	volumes.AddRow("Qualified", p.Quantity(res.Qualified))
	volumes.AddRow("Booked / advanced", p.Quantity(res.Booked))
	volumes.AddRow("Sales", p.Quantity(res.Sales))
	volumes.Render()

	w.Line("")
	w.SubHeader("Cost breakdown")
	table := w.NewTable("Component", "Quantity", "Amount", "Share").AlignRight(1, 2, 3)
	for _, row := range s.Breakdown {
		qty := ""
		if row.Stage != funnel.StageMinimumAdjustment {
			qty = p.Quantity(row.Quantity)
		}
		table.AddRow(row.Label, qty, p.Money(row.Amount), p.Percent(row.Share))
	}
	table.SetFooter("Total", "", p.Money(res.TotalCost), p.Percent(decimal.NewFromInt(100)))
	table.Render()

	if !f.opts.Details {
		return
	}

	for _, stage := range []struct {
		label   string
		charges []pricing.TierCharge
	}{
		{funnel.StageReplies.Label(), res.Charges.Replies},
		{funnel.StageQualified.Label(), res.Charges.Qualified},
		{funnel.StageBooked.Label(), res.Charges.Booked},
	} {
		if len(stage.charges) == 0 {
			continue
		}
		w.Line("")
		w.SubHeader(stage.label + " by band")
		bands := w.NewTable("Band", "Unit price", "Quantity", "Amount").AlignRight(1, 2, 3)
		for _, c := range stage.charges {
			bands.AddRow(c.Tier.Range(), p.Money(c.Tier.UnitPrice), p.Quantity(c.Quantity), p.Money(c.Amount))
		}
		bands.Render()
	}

	w.Line("")
	w.SubHeader("Lineage")
	for _, line := range s.Lines {
		w.Println("  %-28s %16s  %s", line.Label, p.Money(line.Amount), line.Lineage.Formula)
		for _, a := range line.Lineage.Assumptions {
			w.Debug("assumes %s", a)
		}
	}
	w.Println("  %-28s %16s", "Total", p.Money(types.SumAmounts(s.Lines)))
}

func (f *CLIFormatter) renderEconomics(w *ui.Writer, r *Report) {
	p := f.opts.Printer
	e := r.Economics

	summary := w.NewSummary("Unit economics").
		Add("Monthly revenue", p.Money(e.MonthlyRevenue)).
		Add("Monthly profit", p.Money(e.MonthlyProfit)).
		Add("Revenue over LTV", p.Money(e.LTVRevenue)).
		Add("ROI on LTV", p.Percent(e.ROIOnLTV))
	if e.SetupPayback != nil {
		summary.Add("Setup payback", p.Fixed(*e.SetupPayback, 1)+" months")
	} else {
		summary.Note("The setup fee is not recovered within 36 months of monthly profit")
	}
	summary.Render()
}

func (f *CLIFormatter) renderComparison(w *ui.Writer, r *Report) {
	p := f.opts.Printer
	c := r.Comparison

	w.Header("Manual team comparison")
	table := w.NewTable("Item", "Value").AlignRight(1)
	table.AddRow("Team monthly cost", p.Money(c.TeamMonthlyCost))
	table.AddRow("Team cost per lead", p.Money(c.TeamCostPerLead))
	table.AddRow("Team capacity used", p.Percent(c.CapacityShare))
	table.AddRow("Team cost for these leads", p.Money(c.ProportionalCost))
	table.AddRow("Simulated cost", p.Money(c.SimulatedCost))
	table.SetFooter("Savings", p.Money(c.Savings)+" ("+p.Percent(c.SavingsPercent)+")")
	table.Render()

	if !c.Saves() {
		w.Warning("The simulated cost is above the team's cost for the same leads")
	}
}

func (f *CLIFormatter) renderProjection(w *ui.Writer, r *Report) {
	p := f.opts.Printer
	proj := r.Projection

	w.Header(fmt.Sprintf("%d-month projection", len(proj.Months)))
	table := w.NewTable("Month", "Active", "Revenue", "Cum. revenue", "Cum. cost", "Cum. profit").
		AlignRight(0, 1, 2, 3, 4, 5)
	for _, m := range proj.Months {
		table.AddRow(strconv.Itoa(m.Month), p.Quantity(m.ActiveCustomers), p.Money(m.Revenue),
			p.Money(m.CumulativeRevenue), p.Money(m.CumulativeCost), p.Money(m.CumulativeProfit))
	}
	table.Render()

	w.Line("")
	if month, ok := proj.BreakEvenMonth(); ok {
		w.Success("Break-even in month %d", month)
	} else {
		w.Warning("No break-even within %d months", len(proj.Months))
	}
	w.Println("  Revenue %s · cost %s · profit %s · ROI %s",
		p.Money(proj.Revenue), p.Money(proj.Cost), p.Money(proj.Profit), p.Percent(proj.ROI))
}

func (f *CLIFormatter) renderSweep(w *ui.Writer, s *Sweep) {
	p := f.opts.Printer
	w.Header("Sensitivity: " + string(s.Param) + " rate")

	metrics := []struct {
		title string
		value func(pt sweep.Point) decimal.Decimal
	}{
		{"Total cost", func(pt sweep.Point) decimal.Decimal { return pt.TotalCost }},
		{"Cost per acquisition", func(pt sweep.Point) decimal.Decimal { return pt.CostPerAcquisition }},
	}

	headers := []string{"Leads"}
	cols := []int{0}
	for i, series := range s.Series {
		headers = append(headers, series.Variation.Label)
		cols = append(cols, i+1)
	}

	for _, m := range metrics {
		w.SubHeader(m.title)
		table := w.NewTable(headers...).AlignRight(cols...)
		for i, leads := range s.Volumes() {
			row := []string{p.Quantity(leads)}
			for _, series := range s.Series {
				row = append(row, p.Money(m.value(series.Points[i])))
			}
			table.AddRow(row...)
		}
		table.Render()
		w.Line("")
	}
}

func (f *CLIFormatter) renderGrid(w *ui.Writer, g *Grid) {
	p := f.opts.Printer
	m := g.Matrix
	w.Header("Qualification x booking")

	metrics := []struct {
		title string
		value func(c sweep.Cell) decimal.Decimal
	}{
		{"Total cost", func(c sweep.Cell) decimal.Decimal { return c.TotalCost }},
		{"Cost per acquisition", func(c sweep.Cell) decimal.Decimal { return c.CostPerAcquisition }},
	}

	headers := []string{"Qual \\ Book"}
	cols := []int{}
	for j, b := range m.Booking {
		headers = append(headers, p.Rate(b))
		cols = append(cols, j+1)
	}

	for _, metric := range metrics {
		w.SubHeader(metric.title)
		table := w.NewTable(headers...).AlignRight(cols...)
		for i, q := range m.Qualification {
			row := []string{p.Rate(q)}
			for j, cell := range m.Cells[i] {
				v := p.Money(metric.value(cell))
				if i == g.Row && j == g.Col {
					v = "*" + v
				}
				row = append(row, v)
			}
			table.AddRow(row...)
		}
		table.Render()
		w.Line("")
	}

	if ins := g.Insights; ins != nil {
		w.SubHeader("Insights")
		cell := func(c sweep.Cell) string {
			return fmt.Sprintf("qualification %s, booking %s", p.Rate(c.Qualification), p.Rate(c.Booking))
		}
		w.Println("  Lowest cost:   %s at %s", p.Money(ins.MinCost.TotalCost), cell(ins.MinCost))
		w.Println("  Highest cost:  %s at %s", p.Money(ins.MaxCost.TotalCost), cell(ins.MaxCost))
		if ins.MinCPA != nil {
			w.Println("  Best CPA:      %s at %s", p.Money(ins.MinCPA.CostPerAcquisition), cell(*ins.MinCPA))
		}
		w.Println("  Most booked:   %s at %s", p.Quantity(ins.MaxBooked.Booked), cell(ins.MaxBooked))
	}
	if g.Row >= 0 {
		w.Info("* marks the cell nearest to the scenario's rates")
	}
}

func (f *CLIFormatter) renderDiff(w *ui.Writer, d *Diff) {
	p := f.opts.Printer
	res := d.Result

	w.Header(d.Before + " → " + d.After)
	for _, line := range strings.Split(strings.TrimRight(res.Summary(p.Money), "\n"), "\n") {
		w.Line(line)
	}
	w.Line("")
	table := w.NewTable("Metric", d.Before, d.After).AlignRight(1, 2)
	table.AddRow("Total cost", p.Money(res.TotalBefore), p.Money(res.TotalAfter))
	table.AddRow("Cost per lead", p.Money(res.CPLBefore), p.Money(res.CPLAfter))
	table.AddRow("Cost per acquisition", p.Money(res.CPABefore), p.Money(res.CPAAfter))
	table.AddRow("Booked", p.Quantity(res.BookedBefore), p.Quantity(res.BookedAfter))
	table.Render()

	view := w.NewDiffView()
	for _, c := range res.Components {
		item := ui.DiffItem{
			Name:       c.Label,
			OldCost:    p.Money(c.Before),
			NewCost:    p.Money(c.After),
			Change:     p.Money(c.Delta.Abs()),
			IsIncrease: c.Delta.IsPositive(),
		}
		switch c.ChangeType {
		case diff.ChangeAdded:
			view.Added = append(view.Added, item)
		case diff.ChangeRemoved:
			view.Removed = append(view.Removed, item)
		case diff.ChangeIncreased, diff.ChangeDecreased:
			if !item.IsIncrease {
				item.Change = "-" + item.Change
			}
			view.Changed = append(view.Changed, item)
		}
	}
	view.TotalChange = p.Money(res.TotalDelta.Abs())
	if res.TotalDelta.IsNegative() {
		view.TotalChange = "-" + view.TotalChange
	}
	view.IsIncrease = res.TotalDelta.IsPositive()
	view.Render()

	if top := res.TopChanges(topChanges); len(top) > 0 {
		w.Line("")
		w.SubHeader("Largest changes")
		for i, c := range top {
			w.Println("  %d. %-24s %s (%s)", i+1, c.Label, signed(p, c.Delta), c.ChangeType)
		}
	}
}

func (f *CLIFormatter) renderTables(w *ui.Writer, tables []PriceTable) {
	p := f.opts.Printer
	w.Header("Price tables")
	for _, t := range tables {
		w.SubHeader(t.Name)
		table := w.NewTable("Band", "Unit price").AlignRight(1)
		for _, tier := range t.Tiers {
			table.AddRow(tier.Range(), p.Money(tier.UnitPrice))
		}
		table.Render()
		for _, g := range t.Gaps {
			w.Warning("volume between %s and %s is not priced", p.Quantity(g.From), p.Quantity(g.To))
		}
		w.Line("")
	}
}
