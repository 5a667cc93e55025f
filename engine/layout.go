package engine

import (
	"fmt"
	"log/slog"
	"math"
)

// ============================================================================
// LAYOUT ENGINE — Dispatcher + Scene Assembly
// ============================================================================
// Entry point: Layout(kind, view, selection, config, opts...)
//
// Pipeline:
//   1. Validate plot size and field selection
//   2. Apply dimension filters → SubView
//   3. Build chart-specific structures (scales, aggregates, bins, summaries)
//   4. Emit primitives + axis descriptors in plot-local pixels
//   5. Reject any non-finite coordinate
//
// Every call rebuilds every scale. Nothing is cached between calls, so the
// same inputs always produce the same Scene.
// ============================================================================

// Primitive roles.
const (
	RolePoint   = "point"
	RoleBar     = "bar"
	RoleBin     = "bin"
	RoleWhisker = "whisker"
	RoleBox     = "box"
	RoleMedian  = "median"
	RoleOutlier = "outlier"
)

var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// Layout turns a view into a render-ready Scene for the given chart kind.
//
// Options:
//   - WithThresholds(n) — histogram bin count (default 10)
//   - WithNice(bool) — round linear domains outward (default true)
//   - WithTickCount(n) — target ticks per linear axis (default 10)
//   - WithBandPadding(inner, outer) — bar band padding (default 0.2, 0.2)
//   - WithFilters(f) — restrict rows by dimension values
func Layout(kind ChartKind, view RecordView, sel Selection, cfg LayoutConfig, opts ...Option) (*Scene, error) {
	w, h := cfg.Bounded()
	if !isFinite(w) || !isFinite(h) || w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: bounded area %vx%v", ErrInvalidLayout, w, h)
	}
	if err := validateSelection(kind, view, sel); err != nil {
		return nil, err
	}

	c := applyOptions(opts)
	filtered := ApplyFilters(view, c.Filters)

	scene := &Scene{
		Kind:          kind,
		Width:         cfg.Width,
		Height:        cfg.Height,
		Margin:        cfg.Margin,
		BoundedWidth:  w,
		BoundedHeight: h,
	}

	var err error
	switch kind {
	case Scatter:
		err = layoutScatter(scene, filtered, sel, c)
	case Bar:
		err = layoutBar(scene, filtered, sel, c)
	case Histogram:
		err = layoutHistogram(scene, filtered, sel, c)
	case Box:
		err = layoutBox(scene, filtered, sel, c)
	}
	if err != nil {
		return nil, fmt.Errorf("%s layout: %w", kind, err)
	}
	if err := checkFinite(scene); err != nil {
		return nil, err
	}

	slog.Debug("chartkit: layout",
		"kind", kind, "x", sel.X, "y", sel.Y,
		"rows", filtered.Len(), "primitives", len(scene.Primitives))
	return scene, nil
}

// ── Selection ─────────────────────────────────────────────────────────────

func validateSelection(kind ChartKind, view RecordView, sel Selection) error {
	numeric := func(axis, field string) error {
		if field == "" || !hasKey(view.MeasureKeys(), field) {
			return fmt.Errorf("%w: %s chart needs a numeric %s field, got %q", ErrInvalidSelection, kind, axis, field)
		}
		return nil
	}
	categorical := func(axis, field string) error {
		if field == "" || !hasKey(view.DimensionKeys(), field) {
			return fmt.Errorf("%w: %s chart needs a categorical %s field, got %q", ErrInvalidSelection, kind, axis, field)
		}
		return nil
	}

	switch kind {
	case Scatter:
		if err := numeric("x", sel.X); err != nil {
			return err
		}
		return numeric("y", sel.Y)
	case Bar, Box:
		if err := categorical("x", sel.X); err != nil {
			return err
		}
		return numeric("y", sel.Y)
	case Histogram:
		return numeric("x", sel.X)
	}
	return fmt.Errorf("%w: %q", ErrUnknownChartKind, kind)
}

// ============================================================================
// CHART KINDS
// ============================================================================

func layoutScatter(scene *Scene, view RecordView, sel Selection, c *config) error {
	w, h := scene.BoundedWidth, scene.BoundedHeight
	xs := measureColumn(view, sel.X)
	ys := measureColumn(view, sel.Y)

	x, err := NewLinearScale(xs, 0, w, c.Nice, c.TickCount)
	if err != nil {
		return err
	}
	y, err := NewLinearScale(ys, h, 0, c.Nice, c.TickCount)
	if err != nil {
		return err
	}

	scene.Primitives = make([]Primitive, 0, len(xs))
	for i := range xs {
		scene.Primitives = append(scene.Primitives, Primitive{
			Kind:  PointPrimitive,
			Role:  RolePoint,
			X:     x.Map(xs[i]),
			Y:     y.Map(ys[i]),
			R:     c.PointRadius,
			Style: Style{Fill: c.Palette[0], Opacity: 0.7},
		})
	}

	scene.Title = c.Label(sel.Y) + " vs " + c.Label(sel.X)
	scene.XAxis = linearAxis("bottom", c.Label(sel.X), w, x)
	scene.YAxis = linearAxis("left", c.Label(sel.Y), h, y)
	return nil
}

func layoutBar(scene *Scene, view RecordView, sel Selection, c *config) error {
	w, h := scene.BoundedWidth, scene.BoundedHeight
	groups := Aggregate(view, sel.X, sel.Y)

	keys := make([]string, len(groups))
	values := make([]float64, 0, len(groups)+1)
	for i, g := range groups {
		keys[i] = g.Key
		values = append(values, g.Value)
	}

	x, err := NewBandScale(keys, 0, w, c.PaddingInner, c.PaddingOuter)
	if err != nil {
		return err
	}
	// Bars grow from zero, so the domain always includes it.
	y, err := NewLinearScale(append(values, 0), h, 0, c.Nice, c.TickCount)
	if err != nil {
		return err
	}

	colors := assignColors(len(groups), c.Palette)
	base := y.Map(0)
	scene.Primitives = make([]Primitive, 0, len(groups))
	for i, g := range groups {
		start, width, _ := x.Band(g.Key)
		top := y.Map(g.Value)
		scene.Primitives = append(scene.Primitives, Primitive{
			Kind:   RectPrimitive,
			Role:   RoleBar,
			Key:    g.Key,
			X:      start,
			Y:      math.Min(top, base),
			Width:  width,
			Height: math.Abs(base - top),
			Style:  Style{Fill: colors[i]},
		})
	}

	scene.Title = "Mean " + c.Label(sel.Y) + " by " + c.Label(sel.X)
	scene.XAxis = bandAxis("bottom", c.Label(sel.X), w, x)
	scene.YAxis = linearAxis("left", "Mean "+c.Label(sel.Y), h, y)
	return nil
}

func layoutHistogram(scene *Scene, view RecordView, sel Selection, c *config) error {
	w, h := scene.BoundedWidth, scene.BoundedHeight
	xs := measureColumn(view, sel.X)

	x, err := NewLinearScale(xs, 0, w, c.Nice, c.TickCount)
	if err != nil {
		return err
	}
	lo, hi := x.Domain()
	bins := BinValues(xs, lo, hi, c.Thresholds)

	maxCount := 0
	for _, b := range bins {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	y, err := NewLinearScale([]float64{0, float64(maxCount)}, h, 0, c.Nice, c.TickCount)
	if err != nil {
		return err
	}

	base := y.Map(0)
	scene.Primitives = make([]Primitive, 0, len(bins))
	for _, b := range bins {
		x0, x1 := x.Map(b.X0), x.Map(b.X1)
		if x.Degenerate() {
			// A single repeated value still gets a visible bar.
			x0, x1 = 0, w
		}
		top := y.Map(float64(b.Count))
		scene.Primitives = append(scene.Primitives, Primitive{
			Kind:   RectPrimitive,
			Role:   RoleBin,
			Key:    formatTick(b.X0),
			X:      x0,
			Y:      top,
			Width:  math.Max(0, x1-x0-c.BarGap),
			Height: base - top,
			Style:  Style{Fill: c.Palette[0]},
		})
	}

	scene.Title = "Distribution of " + c.Label(sel.X)
	scene.XAxis = linearAxis("bottom", c.Label(sel.X), w, x)
	scene.YAxis = linearAxis("left", "Count", h, y)
	return nil
}

func layoutBox(scene *Scene, view RecordView, sel Selection, c *config) error {
	w, h := scene.BoundedWidth, scene.BoundedHeight
	summaries := Summarize(view, sel.X, sel.Y)

	keys := make([]string, len(summaries))
	for i, s := range summaries {
		keys[i] = s.Key
	}
	x, err := NewBandScale(keys, 0, w, 1, 0.5)
	if err != nil {
		return err
	}
	y, err := NewLinearScale(measureColumn(view, sel.Y), h, 0, c.Nice, c.TickCount)
	if err != nil {
		return err
	}

	colors := assignColors(len(summaries), c.Palette)
	boxW := x.Step() * c.BoxWidthRatio
	scene.Primitives = make([]Primitive, 0, len(summaries)*3)
	for i, s := range summaries {
		cx, _ := x.Center(s.Key)
		q1, q3 := y.Map(s.Q1), y.Map(s.Q3)
		med := y.Map(s.Median)

		scene.Primitives = append(scene.Primitives,
			Primitive{
				Kind: LinePrimitive, Role: RoleWhisker, Key: s.Key,
				X: cx, Y: y.Map(s.WhiskerLow), X2: cx, Y2: y.Map(s.WhiskerHigh),
				Style: Style{Stroke: "#000000"},
			},
			Primitive{
				Kind: RectPrimitive, Role: RoleBox, Key: s.Key,
				X: cx - boxW/2, Y: math.Min(q1, q3), Width: boxW, Height: math.Abs(q1 - q3),
				Style: Style{Fill: colors[i], Stroke: "#000000"},
			},
			Primitive{
				Kind: LinePrimitive, Role: RoleMedian, Key: s.Key,
				X: cx - boxW/2, Y: med, X2: cx + boxW/2, Y2: med,
				Style: Style{Stroke: "#000000"},
			},
		)
		for _, v := range s.Outliers {
			scene.Primitives = append(scene.Primitives, Primitive{
				Kind: PointPrimitive, Role: RoleOutlier, Key: s.Key,
				X: cx, Y: y.Map(v), R: c.PointRadius,
				Style: Style{Fill: colors[i], Opacity: 0.7},
			})
		}
	}

	scene.Title = c.Label(sel.Y) + " by " + c.Label(sel.X)
	scene.XAxis = bandAxis("bottom", c.Label(sel.X), w, x)
	scene.YAxis = linearAxis("left", c.Label(sel.Y), h, y)
	return nil
}

// ============================================================================
// AXES
// ============================================================================

func linearAxis(orient, title string, length float64, s *LinearScale) Axis {
	values := s.Ticks()
	ticks := make([]Tick, len(values))
	for i, v := range values {
		ticks[i] = Tick{Value: v, Position: s.Map(v), Label: formatTick(v)}
	}
	return Axis{Orient: orient, Title: title, Length: length, Ticks: ticks}
}

func bandAxis(orient, title string, length float64, b *BandScale) Axis {
	keys := b.Keys()
	ticks := make([]Tick, len(keys))
	for i, k := range keys {
		pos, _ := b.Center(k)
		ticks[i] = Tick{Value: float64(i), Position: pos, Label: k}
	}
	return Axis{Orient: orient, Title: title, Length: length, Ticks: ticks}
}

// ============================================================================
// HELPERS
// ============================================================================

func assignColors(count int, palette []string) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = palette[i%len(palette)]
	}
	return colors
}

// checkFinite guards the Scene against NaN/Inf from any upstream math.
func checkFinite(s *Scene) error {
	for i, p := range s.Primitives {
		for _, v := range [...]float64{p.X, p.Y, p.X2, p.Y2, p.Width, p.Height, p.R} {
			if !isFinite(v) {
				return fmt.Errorf("%w: %s primitive %d (%s)", ErrNonFinite, p.Kind, i, p.Role)
			}
		}
	}
	for _, a := range [...]Axis{s.XAxis, s.YAxis} {
		for _, t := range a.Ticks {
			if !isFinite(t.Value) || !isFinite(t.Position) {
				return fmt.Errorf("%w: %s axis tick %q", ErrNonFinite, a.Orient, t.Label)
			}
		}
	}
	return nil
}
