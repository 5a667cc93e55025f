package engine

import (
	"fmt"
	"strings"
)

// ============================================================================
// CHARTKIT ENGINE TYPES — Rows, Datasets, Scenes
// ============================================================================
// Raw records come from an acquisition collaborator (CSV file, SQL query).
// The sanitizer turns them into typed Rows; the layout engine turns Rows
// into a Scene that any renderer can draw.
//
// Dependency: engine depends only on go-moremath for scale/stat math.
// ============================================================================

// ============================================================================
// RAW RECORD — One untyped source row
// ============================================================================

// RawRecord maps a column name to its raw cell text.
// An absent key means the cell was null. "" and "?" are also missing.
type RawRecord map[string]string

// ============================================================================
// ROW — Typed, immutable record
// ============================================================================

// Row is a single sanitized record with numeric measures and categorical
// dimensions. Every measure is finite and every dimension is non-empty.
// Rows are immutable: NewRow copies its inputs and there are no setters.
type Row struct {
	dimensions map[string]string
	measures   map[string]float64
}

// NewRow builds a Row from dimension and measure maps. The maps are copied.
func NewRow(dimensions map[string]string, measures map[string]float64) Row {
	r := Row{
		dimensions: make(map[string]string, len(dimensions)),
		measures:   make(map[string]float64, len(measures)),
	}
	for k, v := range dimensions {
		r.dimensions[k] = v
	}
	for k, v := range measures {
		r.measures[k] = v
	}
	return r
}

// Dimension returns a categorical value, or "" if the row has no such field.
func (r Row) Dimension(key string) string { return r.dimensions[key] }

// Measure returns a numeric value, or 0 if the row has no such field.
func (r Row) Measure(key string) float64 { return r.measures[key] }

// ============================================================================
// DATASET — Ordered rows plus their schema
// ============================================================================

// Dataset is an ordered sequence of Rows in source order, together with the
// numeric and categorical field lists every row satisfies.
type Dataset struct {
	rows    []Row
	mesKeys []string
	dimKeys []string
}

// NewDataset creates a Dataset over rows. The field slices describe the
// schema and are copied.
func NewDataset(numericFields, categoricalFields []string, rows ...Row) *Dataset {
	return &Dataset{
		rows:    rows,
		mesKeys: append([]string(nil), numericFields...),
		dimKeys: append([]string(nil), categoricalFields...),
	}
}

// Row returns the i-th row.
func (d *Dataset) Row(i int) Row { return d.rows[i] }

// ============================================================================
// SELECTION + CHART KIND
// ============================================================================

// ChartKind names one of the supported chart types.
type ChartKind string

const (
	Scatter   ChartKind = "scatter"
	Bar       ChartKind = "bar"
	Histogram ChartKind = "histogram"
	Box       ChartKind = "box"
)

// ChartKinds lists every supported kind in display order.
var ChartKinds = []ChartKind{Scatter, Bar, Histogram, Box}

// ParseChartKind resolves a user-supplied kind name (case-insensitive).
func ParseChartKind(s string) (ChartKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scatter", "scatterplot":
		return Scatter, nil
	case "bar", "barchart":
		return Bar, nil
	case "histogram", "hist":
		return Histogram, nil
	case "box", "boxplot":
		return Box, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChartKind, s)
}

// Selection holds the fields a chart is drawn from.
// Y is ignored for histograms.
type Selection struct {
	X string `json:"x"`
	Y string `json:"y,omitempty"`
}

// ============================================================================
// LAYOUT CONFIG — Explicit plot dimensions
// ============================================================================

// Margin is the space reserved around the plot area for axes.
type Margin struct {
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
}

// LayoutConfig gives the outer chart size and its margins. Callers own the
// defaults; the engine never falls back to global dimensions.
type LayoutConfig struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	Margin Margin  `json:"margin" yaml:"margin"`
}

// DefaultLayoutConfig returns an 800×500 chart with room for both axes.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		Width:  800,
		Height: 500,
		Margin: Margin{Top: 20, Right: 30, Bottom: 50, Left: 60},
	}
}

// Bounded returns the size of the plot area inside the margins.
func (c LayoutConfig) Bounded() (width, height float64) {
	return c.Width - c.Margin.Left - c.Margin.Right,
		c.Height - c.Margin.Top - c.Margin.Bottom
}

// ============================================================================
// SCENE — Render-ready output
// ============================================================================

// PrimitiveKind is the geometric shape of a draw primitive.
type PrimitiveKind string

const (
	PointPrimitive PrimitiveKind = "point"
	RectPrimitive  PrimitiveKind = "rect"
	LinePrimitive  PrimitiveKind = "line"
)

// Style carries rendering hints. Renderers may ignore them.
type Style struct {
	Fill    string  `json:"fill,omitempty"`
	Stroke  string  `json:"stroke,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
}

// Primitive is one positioned shape in plot-local pixels.
//
//	point: center (X, Y), radius R
//	rect:  top-left (X, Y), size Width × Height
//	line:  from (X, Y) to (X2, Y2)
type Primitive struct {
	Kind   PrimitiveKind `json:"kind"`
	Role   string        `json:"role"` // "point", "bar", "bin", "box", "median", "whisker", "outlier"
	Key    string        `json:"key,omitempty"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	X2     float64       `json:"x2,omitempty"`
	Y2     float64       `json:"y2,omitempty"`
	Width  float64       `json:"width,omitempty"`
	Height float64       `json:"height,omitempty"`
	R      float64       `json:"r,omitempty"`
	Style  Style         `json:"style"`
}

// Tick is one axis tick: its data value, pixel position along the axis, and label.
type Tick struct {
	Value    float64 `json:"value"`
	Position float64 `json:"position"`
	Label    string  `json:"label"`
}

// Axis describes one axis of the plot area.
type Axis struct {
	Orient string  `json:"orient"` // "bottom", "left"
	Title  string  `json:"title"`
	Length float64 `json:"length"`
	Ticks  []Tick  `json:"ticks"`
}

// Scene is the layout engine's output: primitives plus axis descriptors.
// A Scene is never mutated after Layout returns it.
type Scene struct {
	Kind          ChartKind   `json:"kind"`
	Title         string      `json:"title"`
	Width         float64     `json:"width"`
	Height        float64     `json:"height"`
	Margin        Margin      `json:"margin"`
	BoundedWidth  float64     `json:"boundedWidth"`
	BoundedHeight float64     `json:"boundedHeight"`
	Primitives    []Primitive `json:"primitives"`
	XAxis         Axis        `json:"xAxis"`
	YAxis         Axis        `json:"yAxis"`
}
