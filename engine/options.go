package engine

// ============================================================================
// ENGINE OPTIONS — Functional options for Layout()
// ============================================================================

// Option configures layout behavior via functional options pattern.
type Option func(*config)

type config struct {
	Thresholds    int     // histogram bin count
	Nice          bool    // round linear domains outward
	TickCount     int     // target ticks per linear axis
	PaddingInner  float64 // bar band padding
	PaddingOuter  float64
	PointRadius   float64
	BarGap        float64 // pixels removed from each histogram bin width
	BoxWidthRatio float64 // box width as a fraction of the band step
	Palette       []string
	Filters       Filters
	Label         func(field string) string // axis and column titles
}

// MaxThresholds caps the histogram bin count. Layout emits one rectangle
// per bin, so the bin count bounds the scene size.
const MaxThresholds = 10000

// WithThresholds sets the histogram bin count, clamped to [1, MaxThresholds].
func WithThresholds(n int) Option {
	return func(c *config) {
		switch {
		case n < 1:
			n = 1
		case n > MaxThresholds:
			n = MaxThresholds
		}
		c.Thresholds = n
	}
}

// WithNice toggles outward rounding of linear scale domains.
func WithNice(nice bool) Option {
	return func(c *config) {
		c.Nice = nice
	}
}

// WithTickCount sets the target number of ticks on linear axes.
func WithTickCount(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.TickCount = n
		}
	}
}

// WithBandPadding sets the inner and outer padding of the bar chart band scale.
func WithBandPadding(inner, outer float64) Option {
	return func(c *config) {
		c.PaddingInner = inner
		c.PaddingOuter = outer
	}
}

// WithPointRadius sets the radius of scatter points and box outliers.
func WithPointRadius(r float64) Option {
	return func(c *config) {
		if r > 0 {
			c.PointRadius = r
		}
	}
}

// WithBarGap sets the horizontal gap between histogram bars in pixels.
func WithBarGap(px float64) Option {
	return func(c *config) {
		if px >= 0 {
			c.BarGap = px
		}
	}
}

// WithBoxWidthRatio sets the box width relative to the category step.
func WithBoxWidthRatio(ratio float64) Option {
	return func(c *config) {
		if ratio > 0 && ratio <= 1 {
			c.BoxWidthRatio = ratio
		}
	}
}

// WithPalette overrides the fill colors cycled across groups.
func WithPalette(colors ...string) Option {
	return func(c *config) {
		if len(colors) > 0 {
			c.Palette = colors
		}
	}
}

// WithLabels sets how field keys become axis and column titles, e.g. a
// catalog's display names. The default is LabelForField.
func WithLabels(label func(field string) string) Option {
	return func(c *config) {
		if label != nil {
			c.Label = label
		}
	}
}

// WithFilters restricts the rows laid out to those matching the filters.
func WithFilters(f Filters) Option {
	return func(c *config) {
		c.Filters = f
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Thresholds:    10,
		Nice:          true,
		TickCount:     10,
		PaddingInner:  0.2,
		PaddingOuter:  0.2,
		PointRadius:   4,
		BarGap:        1,
		BoxWidthRatio: 0.5,
		Palette:       defaultColors,
		Label:         LabelForField,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
