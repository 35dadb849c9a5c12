// Package ui - Terminal user interface
// CLI output with colors, tables, summary boxes and diffs.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// Colors for terminal output
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
)

// Writer is the UI output destination
type Writer struct {
	out       io.Writer
	noColor   bool
	verbosity int
}

// NewWriter creates a UI writer
func NewWriter(out io.Writer, noColor bool) *Writer {
	if out == nil {
		out = os.Stdout
	}
	return &Writer{
		out:       out,
		noColor:   noColor,
		verbosity: 1,
	}
}

// SetVerbosity sets output verbosity (0=quiet, 1=normal, 2=verbose)
func (w *Writer) SetVerbosity(level int) {
	w.verbosity = level
}

// Color applies color if enabled
func (w *Writer) Color(c, text string) string {
	if w.noColor {
		return text
	}
	return c + text + Reset
}

// Print writes formatted text
func (w *Writer) Print(format string, args ...any) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line with newline
func (w *Writer) Println(format string, args ...any) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Line writes text verbatim followed by a newline
func (w *Writer) Line(text string) {
	fmt.Fprintln(w.out, text)
}

// Header prints a section header
func (w *Writer) Header(title string) {
	w.Line("")
	w.Line(w.Color(Bold+Cyan, "━━━ "+title+" ━━━"))
	w.Line("")
}

// SubHeader prints a subsection header
func (w *Writer) SubHeader(title string) {
	w.Line(w.Color(Bold, "▸ "+title))
}

// Success prints a success message
func (w *Writer) Success(format string, args ...any) {
	w.Line(w.Color(Green, "✓ ") + fmt.Sprintf(format, args...))
}

// Warning prints a warning
func (w *Writer) Warning(format string, args ...any) {
	w.Line(w.Color(Yellow, "⚠ ") + fmt.Sprintf(format, args...))
}

// Error prints an error
func (w *Writer) Error(format string, args ...any) {
	w.Line(w.Color(Red, "✗ ") + fmt.Sprintf(format, args...))
}

// Info prints an info message
func (w *Writer) Info(format string, args ...any) {
	if w.verbosity < 1 {
		return
	}
	w.Line(w.Color(Blue, "ℹ ") + fmt.Sprintf(format, args...))
}

// Debug prints a debug message
func (w *Writer) Debug(format string, args ...any) {
	if w.verbosity < 2 {
		return
	}
	w.Line(w.Color(Dim, "  "+fmt.Sprintf(format, args...)))
}

// width is the display width of s, counting runes rather than bytes
func width(s string) int {
	return utf8.RuneCountInString(s)
}

func pad(s string, n int, right bool) string {
	gap := n - width(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

// Table renders a table
type Table struct {
	w       *Writer
	headers []string
	rows    [][]string
	footer  []string
	widths  []int
	right   map[int]bool
}

// NewTable creates a table
func (w *Writer) NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = width(h)
	}
	return &Table{
		w:       w,
		headers: headers,
		rows:    [][]string{},
		widths:  widths,
		right:   make(map[int]bool),
	}
}

// AlignRight right-aligns the given columns, for figures
func (t *Table) AlignRight(cols ...int) *Table {
	for _, c := range cols {
		t.right[c] = true
	}
	return t
}

func (t *Table) fit(cells []string) []string {
	// Pad or truncate cells to match header count
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
		if n := width(row[i]); n > t.widths[i] {
			t.widths[i] = n
		}
	}
	return row
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, t.fit(cells))
}

// SetFooter sets a bold closing row, e.g. totals
func (t *Table) SetFooter(cells ...string) {
	t.footer = t.fit(cells)
}

func (t *Table) format(row []string) string {
	cells := make([]string, len(row))
	for i, cell := range row {
		cells[i] = pad(cell, t.widths[i], t.right[i])
	}
	return strings.Join(cells, " │ ")
}

func (t *Table) separator() string {
	parts := make([]string, len(t.widths))
	for i, w := range t.widths {
		parts[i] = strings.Repeat("─", w)
	}
	return strings.Join(parts, "─┼─")
}

// Render prints the table
func (t *Table) Render() {
	t.w.Line(t.w.Color(Bold, t.format(t.headers)))
	t.w.Line(t.separator())
	for _, row := range t.rows {
		t.w.Line(t.format(row))
	}
	if t.footer != nil {
		t.w.Line(t.separator())
		t.w.Line(t.w.Color(Bold, t.format(t.footer)))
	}
}

// SummaryLine is one label/value pair of a summary box
type SummaryLine struct {
	Label string
	Value string
}

// Summary renders the headline figures of a run in a box
type Summary struct {
	w     *Writer
	Title string
	Lines []SummaryLine
	Notes []string
}

// NewSummary creates a summary box
func (w *Writer) NewSummary(title string) *Summary {
	return &Summary{w: w, Title: title}
}

// Add appends a label/value pair
func (s *Summary) Add(label, value string) *Summary {
	s.Lines = append(s.Lines, SummaryLine{Label: label, Value: value})
	return s
}

// Note appends a highlighted remark printed under the box
func (s *Summary) Note(format string, args ...any) *Summary {
	s.Notes = append(s.Notes, fmt.Sprintf(format, args...))
	return s
}

// Render prints the summary box
func (s *Summary) Render() {
	s.w.Header(s.Title)

	labelWidth, valueWidth := 0, 0
	for _, l := range s.Lines {
		labelWidth = max(labelWidth, width(l.Label))
		valueWidth = max(valueWidth, width(l.Value))
	}
	inner := labelWidth + valueWidth + 6

	s.w.Line(s.w.Color(Bold, "╭"+strings.Repeat("─", inner)+"╮"))
	for i, l := range s.Lines {
		text := "  " + pad(l.Label+":", labelWidth+1, false) + " " + pad(l.Value, valueWidth, true) + "  "
		c := Dim
		if i == 0 {
			c = Green
		}
		s.w.Line(s.w.Color(Bold, "│") + s.w.Color(c, pad(text, inner, false)) + s.w.Color(Bold, "│"))
	}
	s.w.Line(s.w.Color(Bold, "╰"+strings.Repeat("─", inner)+"╯"))

	for _, n := range s.Notes {
		s.w.Warning("%s", n)
	}
}

// DiffView shows stage cost changes between two runs
type DiffView struct {
	w           *Writer
	Added       []DiffItem
	Removed     []DiffItem
	Changed     []DiffItem
	TotalChange string
	IsIncrease  bool
}

// DiffItem is a single diff item
type DiffItem struct {
	Name       string
	OldCost    string
	NewCost    string
	Change     string
	IsIncrease bool
}

// NewDiffView creates a diff view
func (w *Writer) NewDiffView() *DiffView {
	return &DiffView{w: w}
}

// Render prints the diff
func (d *DiffView) Render() {
	d.w.Header("Cost Changes")

	// Added
	if len(d.Added) > 0 {
		d.w.SubHeader(fmt.Sprintf("Added (%d)", len(d.Added)))
		for _, item := range d.Added {
			d.w.Line(d.w.Color(Red, "+ ") + item.Name + ": " + item.NewCost)
		}
		d.w.Line("")
	}

	// Removed
	if len(d.Removed) > 0 {
		d.w.SubHeader(fmt.Sprintf("Removed (%d)", len(d.Removed)))
		for _, item := range d.Removed {
			d.w.Line(d.w.Color(Green, "- ") + item.Name + ": " + item.OldCost)
		}
		d.w.Line("")
	}

	// Changed
	if len(d.Changed) > 0 {
		d.w.SubHeader(fmt.Sprintf("Changed (%d)", len(d.Changed)))
		for _, item := range d.Changed {
			arrow := d.w.Color(Yellow, "→")
			change := item.Change
			if item.IsIncrease {
				change = d.w.Color(Red, "+"+change)
			} else {
				change = d.w.Color(Green, change)
			}
			d.w.Println("  %s: %s %s %s (%s)", item.Name, item.OldCost, arrow, item.NewCost, change)
		}
		d.w.Line("")
	}

	// Total
	d.w.Line(strings.Repeat("─", 40))
	changeColor := Green
	changePrefix := ""
	if d.IsIncrease {
		changeColor = Red
		changePrefix = "+"
	}
	d.w.Line(d.w.Color(Bold, "Total Change: ") + d.w.Color(changeColor, changePrefix+d.TotalChange))
}
