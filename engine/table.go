package engine

import (
	"fmt"
	"strconv"
)

// ============================================================================
// TABLE BUILDER — The statistics behind a chart, as rows of text
// ============================================================================
// Same validation and filters as Layout, but instead of geometry it returns
// the numbers each chart kind is drawn from: points, group means, bins, or
// box summaries. Used by CSV export and the table endpoint.
// ============================================================================

// TableData is a rendered table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// BuildTable tabulates what Layout would draw for the same arguments.
// Histogram bins use the same niced domain as the chart.
func BuildTable(kind ChartKind, view RecordView, sel Selection, opts ...Option) (*TableData, error) {
	if err := validateSelection(kind, view, sel); err != nil {
		return nil, err
	}
	c := applyOptions(opts)
	filtered := ApplyFilters(view, c.Filters)

	switch kind {
	case Scatter:
		return pointTable(filtered, sel, c), nil
	case Bar:
		return groupTable(filtered, sel, c), nil
	case Histogram:
		return binTable(filtered, sel, c)
	default:
		return summaryTable(filtered, sel, c), nil
	}
}

// ── Scatter ───────────────────────────────────────────────────────────────

func pointTable(view RecordView, sel Selection, c *config) *TableData {
	rows := make([][]string, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		rows = append(rows, []string{
			formatTick(view.Measure(i, sel.X)),
			formatTick(view.Measure(i, sel.Y)),
		})
	}
	return &TableData{
		Title: c.Label(sel.Y) + " vs " + c.Label(sel.X),
		Columns: []Column{
			numberColumn(sel.X, c.Label(sel.X)),
			numberColumn(sel.Y, c.Label(sel.Y)),
		},
		Rows:    rows,
		Summary: &Summary{Label: fmt.Sprintf("%d points", view.Len()), Values: map[string]string{}},
	}
}

// ── Bar ───────────────────────────────────────────────────────────────────

func groupTable(view RecordView, sel Selection, c *config) *TableData {
	groups := Aggregate(view, sel.X, sel.Y)

	rows := make([][]string, 0, len(groups))
	var totalCount int
	for _, g := range groups {
		rows = append(rows, []string{
			g.Label,
			fmt.Sprintf("%.2f", g.Value),
			strconv.Itoa(g.Count),
		})
		totalCount += g.Count
	}

	return &TableData{
		Title: "Mean " + c.Label(sel.Y) + " by " + c.Label(sel.X),
		Columns: []Column{
			{Key: "group", Label: c.Label(sel.X), Type: "text", Align: "left"},
			numberColumn("value", "Mean "+c.Label(sel.Y)),
			{Key: "count", Label: "Count", Type: "number", Align: "center"},
		},
		Rows: rows,
		Summary: &Summary{
			Label:  "Total",
			Values: map[string]string{"count": strconv.Itoa(totalCount)},
		},
	}
}

// ── Histogram ─────────────────────────────────────────────────────────────

func binTable(view RecordView, sel Selection, c *config) (*TableData, error) {
	xs := measureColumn(view, sel.X)
	x, err := NewLinearScale(xs, 0, 1, c.Nice, c.TickCount)
	if err != nil {
		return nil, err
	}
	lo, hi := x.Domain()
	bins := BinValues(xs, lo, hi, c.Thresholds)

	rows := make([][]string, 0, len(bins))
	total := 0
	for _, b := range bins {
		rows = append(rows, []string{formatTick(b.X0), formatTick(b.X1), strconv.Itoa(b.Count)})
		total += b.Count
	}

	return &TableData{
		Title: "Distribution of " + c.Label(sel.X),
		Columns: []Column{
			numberColumn("x0", "From"),
			numberColumn("x1", "To"),
			{Key: "count", Label: "Count", Type: "number", Align: "center"},
		},
		Rows: rows,
		Summary: &Summary{
			Label:  "Total",
			Values: map[string]string{"count": strconv.Itoa(total)},
		},
	}, nil
}

// ── Box ───────────────────────────────────────────────────────────────────

func summaryTable(view RecordView, sel Selection, c *config) *TableData {
	summaries := Summarize(view, sel.X, sel.Y)

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Key,
			strconv.Itoa(s.Count),
			formatTick(s.WhiskerLow),
			formatTick(s.Q1),
			formatTick(s.Median),
			formatTick(s.Q3),
			formatTick(s.WhiskerHigh),
			strconv.Itoa(len(s.Outliers)),
		})
	}

	return &TableData{
		Title: c.Label(sel.Y) + " by " + c.Label(sel.X),
		Columns: []Column{
			{Key: "group", Label: c.Label(sel.X), Type: "text", Align: "left"},
			{Key: "count", Label: "Count", Type: "number", Align: "center"},
			numberColumn("whiskerLow", "Whisker Low"),
			numberColumn("q1", "Q1"),
			numberColumn("median", "Median"),
			numberColumn("q3", "Q3"),
			numberColumn("whiskerHigh", "Whisker High"),
			{Key: "outliers", Label: "Outliers", Type: "number", Align: "center"},
		},
		Rows: rows,
	}
}

func numberColumn(key, label string) Column {
	return Column{Key: key, Label: label, Type: "number", Align: "right"}
}
