package engine

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func countRoles(s *Scene) map[string]int {
	out := make(map[string]int)
	for _, p := range s.Primitives {
		out[p.Role]++
	}
	return out
}

func TestLayoutScatter(t *testing.T) {
	cfg := DefaultLayoutConfig()
	scene, err := Layout(Scatter, carsDataset(), Selection{X: "horsepower", Y: "price"}, cfg)
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}

	if scene.BoundedWidth != 710 || scene.BoundedHeight != 430 {
		t.Errorf("bounded = %vx%v, want 710x430", scene.BoundedWidth, scene.BoundedHeight)
	}
	if len(scene.Primitives) != 4 {
		t.Fatalf("len(Primitives) = %d, want 4", len(scene.Primitives))
	}
	for i, p := range scene.Primitives {
		if p.Kind != PointPrimitive || p.R != 4 {
			t.Errorf("primitive %d = %+v, want point with r 4", i, p)
		}
		if p.X < 0 || p.X > 710 || p.Y < 0 || p.Y > 430 {
			t.Errorf("primitive %d at (%v, %v) outside plot area", i, p.X, p.Y)
		}
	}
	if scene.Title != "Price vs Horsepower" {
		t.Errorf("Title = %q, want %q", scene.Title, "Price vs Horsepower")
	}
	if len(scene.XAxis.Ticks) == 0 || len(scene.YAxis.Ticks) == 0 {
		t.Error("axes have no ticks")
	}
}

func TestLayoutBar(t *testing.T) {
	scene, err := Layout(Bar, carsDataset(), Selection{X: "make", Y: "price"}, DefaultLayoutConfig())
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if len(scene.Primitives) != 2 {
		t.Fatalf("len(Primitives) = %d, want 2", len(scene.Primitives))
	}

	bmw, audi := scene.Primitives[0], scene.Primitives[1]
	if bmw.Key != "bmw" || audi.Key != "audi" {
		t.Errorf("bar order = [%s %s], want [bmw audi]", bmw.Key, audi.Key)
	}
	if bmw.Height <= audi.Height {
		t.Errorf("bmw height %v <= audi height %v, want taller", bmw.Height, audi.Height)
	}
	for _, p := range scene.Primitives {
		assertFloat(t, p.Key+" baseline", p.Y+p.Height, scene.BoundedHeight)
		if p.Width <= 0 {
			t.Errorf("%s width = %v, want > 0", p.Key, p.Width)
		}
	}
	if first := scene.YAxis.Ticks[0]; first.Value != 0 {
		t.Errorf("first y tick = %v, want 0", first.Value)
	}
	if got := scene.XAxis.Ticks[0].Label; got != "bmw" {
		t.Errorf("first x tick label = %q, want bmw", got)
	}
}

func TestLayoutHistogramEndToEnd(t *testing.T) {
	records := []RawRecord{
		{"price": "10"},
		{"price": "20"},
		{"price": "?"},
	}
	ds, stats := SanitizeAll(records, []string{"price"}, nil)
	if stats.Kept != 2 {
		t.Fatalf("Kept = %d, want 2", stats.Kept)
	}

	sel := Selection{X: "price"}
	scene, err := Layout(Histogram, ds, sel, DefaultLayoutConfig(), WithThresholds(2))
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if len(scene.Primitives) != 2 {
		t.Fatalf("len(Primitives) = %d, want 2", len(scene.Primitives))
	}

	table, err := BuildTable(Histogram, ds, sel, WithThresholds(2))
	if err != nil {
		t.Fatalf("BuildTable() error = %v", err)
	}
	want := [][]string{{"10", "15", "1"}, {"15", "20", "1"}}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Errorf("table rows = %v, want %v", table.Rows, want)
	}
	if got := table.Summary.Values["count"]; got != "2" {
		t.Errorf("total count = %s, want 2", got)
	}
}

func TestLayoutHistogramDegenerate(t *testing.T) {
	ds := NewDataset([]string{"price"}, nil,
		NewRow(nil, map[string]float64{"price": 5}),
		NewRow(nil, map[string]float64{"price": 5}),
	)
	scene, err := Layout(Histogram, ds, Selection{X: "price"}, DefaultLayoutConfig())
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if len(scene.Primitives) != 1 {
		t.Fatalf("len(Primitives) = %d, want 1", len(scene.Primitives))
	}
	p := scene.Primitives[0]
	if p.X != 0 || p.Width != scene.BoundedWidth-1 {
		t.Errorf("bin at x=%v width=%v, want full width less the gap", p.X, p.Width)
	}
}

func TestLayoutBox(t *testing.T) {
	scene, err := Layout(Box, carsDataset(), Selection{X: "make", Y: "price"}, DefaultLayoutConfig())
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	roles := countRoles(scene)
	want := map[string]int{RoleWhisker: 2, RoleBox: 2, RoleMedian: 2}
	if !reflect.DeepEqual(roles, want) {
		t.Errorf("roles = %v, want %v", roles, want)
	}

	// Whisker and median sit on the band center.
	whisker, box := scene.Primitives[0], scene.Primitives[1]
	assertFloat(t, "box center", box.X+box.Width/2, whisker.X)
	if whisker.X != whisker.X2 {
		t.Errorf("whisker not vertical: x=%v x2=%v", whisker.X, whisker.X2)
	}
}

func TestLayoutBoxOutliers(t *testing.T) {
	type reading struct {
		sensor string
		value  float64
	}
	data := []reading{{"s1", 1}, {"s1", 2}, {"s1", 3}, {"s1", 4}, {"s1", 100}}
	view := NewDomainAdapter[reading]().
		Dimension("sensor", func(r reading) string { return r.sensor }).
		Measure("value", func(r reading) float64 { return r.value }).
		Bind(data)

	scene, err := Layout(Box, view, Selection{X: "sensor", Y: "value"}, DefaultLayoutConfig())
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if got := countRoles(scene)[RoleOutlier]; got != 1 {
		t.Errorf("outliers = %d, want 1", got)
	}
}

func TestLayoutIdempotent(t *testing.T) {
	ds := carsDataset()
	sel := Selection{X: "make", Y: "price"}
	for _, kind := range []ChartKind{Bar, Box} {
		a, err := Layout(kind, ds, sel, DefaultLayoutConfig())
		if err != nil {
			t.Fatalf("Layout(%s) error = %v", kind, err)
		}
		b, _ := Layout(kind, ds, sel, DefaultLayoutConfig())
		if !reflect.DeepEqual(a, b) {
			t.Errorf("Layout(%s) differs between identical calls", kind)
		}
	}
}

func TestLayoutFiltersAndPalette(t *testing.T) {
	scene, err := Layout(Bar, carsDataset(), Selection{X: "make", Y: "price"}, DefaultLayoutConfig(),
		WithFilters(Filters{Dimensions: map[string][]string{"make": {"AUDI"}}}),
		WithPalette("#123456"),
	)
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if len(scene.Primitives) != 1 || scene.Primitives[0].Key != "audi" {
		t.Fatalf("primitives = %+v, want one audi bar", scene.Primitives)
	}
	if got := scene.Primitives[0].Style.Fill; got != "#123456" {
		t.Errorf("Fill = %q, want #123456", got)
	}
}

func TestLayoutLabels(t *testing.T) {
	names := map[string]string{"make": "Manufacturer"}
	label := func(field string) string {
		if n, ok := names[field]; ok {
			return n
		}
		return LabelForField(field)
	}

	scene, err := Layout(Bar, carsDataset(), Selection{X: "make", Y: "price"}, DefaultLayoutConfig(), WithLabels(label))
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if scene.Title != "Mean Price by Manufacturer" {
		t.Errorf("Title = %q, want %q", scene.Title, "Mean Price by Manufacturer")
	}
	if scene.XAxis.Title != "Manufacturer" {
		t.Errorf("XAxis.Title = %q, want Manufacturer", scene.XAxis.Title)
	}

	table, err := BuildTable(Bar, carsDataset(), Selection{X: "make", Y: "price"}, WithLabels(label))
	if err != nil {
		t.Fatalf("BuildTable() error = %v", err)
	}
	if table.Columns[0].Label != "Manufacturer" {
		t.Errorf("Columns[0].Label = %q, want Manufacturer", table.Columns[0].Label)
	}
}

func TestWithThresholdsClamps(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 1},
		{25, 25},
		{MaxThresholds, MaxThresholds},
		{10_000_000, MaxThresholds},
	}
	for _, tt := range tests {
		if got := applyOptions([]Option{WithThresholds(tt.in)}).Thresholds; got != tt.want {
			t.Errorf("WithThresholds(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLayoutErrors(t *testing.T) {
	cars := carsDataset()
	empty := NewDataset([]string{"price"}, []string{"make"})
	narrow := DefaultLayoutConfig()
	narrow.Width = 50

	tests := []struct {
		name string
		kind ChartKind
		view RecordView
		sel  Selection
		cfg  LayoutConfig
		opts []Option
		want error
	}{
		{"bar numeric x", Bar, cars, Selection{X: "price", Y: "price"}, DefaultLayoutConfig(), nil, ErrInvalidSelection},
		{"scatter missing y", Scatter, cars, Selection{X: "price"}, DefaultLayoutConfig(), nil, ErrInvalidSelection},
		{"histogram categorical x", Histogram, cars, Selection{X: "make"}, DefaultLayoutConfig(), nil, ErrInvalidSelection},
		{"unknown field", Box, cars, Selection{X: "make", Y: "weight"}, DefaultLayoutConfig(), nil, ErrInvalidSelection},
		{"unknown kind", ChartKind("pie"), cars, Selection{X: "make"}, DefaultLayoutConfig(), nil, ErrUnknownChartKind},
		{"no plot area", Bar, cars, Selection{X: "make", Y: "price"}, narrow, nil, ErrInvalidLayout},
		{"empty histogram", Histogram, empty, Selection{X: "price"}, DefaultLayoutConfig(), nil, ErrEmptyDomain},
		{"empty bar", Bar, empty, Selection{X: "make", Y: "price"}, DefaultLayoutConfig(), nil, ErrEmptyDomain},
		{"bad padding", Bar, cars, Selection{X: "make", Y: "price"}, DefaultLayoutConfig(),
			[]Option{WithBandPadding(1.5, 0)}, ErrInvalidPadding},
		{"filtered to nothing", Scatter, cars, Selection{X: "horsepower", Y: "price"}, DefaultLayoutConfig(),
			[]Option{WithFilters(Filters{Dimensions: map[string][]string{"make": {"volvo"}}})}, ErrEmptyDomain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scene, err := Layout(tt.kind, tt.view, tt.sel, tt.cfg, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Errorf("Layout() error = %v, want %v", err, tt.want)
			}
			if scene != nil {
				t.Error("Layout() returned a scene alongside an error")
			}
		})
	}
}

func TestCheckFinite(t *testing.T) {
	s := &Scene{Primitives: []Primitive{{Kind: PointPrimitive, Role: RolePoint, X: math.NaN()}}}
	if err := checkFinite(s); !errors.Is(err, ErrNonFinite) {
		t.Errorf("checkFinite() error = %v, want ErrNonFinite", err)
	}
	s = &Scene{YAxis: Axis{Orient: "left", Ticks: []Tick{{Position: math.Inf(1)}}}}
	if err := checkFinite(s); !errors.Is(err, ErrNonFinite) {
		t.Errorf("checkFinite(axis) error = %v, want ErrNonFinite", err)
	}
}

func TestParseChartKind(t *testing.T) {
	tests := map[string]ChartKind{
		"scatter": Scatter, "Boxplot": Box, " hist ": Histogram, "BAR": Bar,
	}
	for in, want := range tests {
		got, err := ParseChartKind(in)
		if err != nil || got != want {
			t.Errorf("ParseChartKind(%q) = %q, %v, want %q", in, got, err, want)
		}
	}
	if _, err := ParseChartKind("pie"); !errors.Is(err, ErrUnknownChartKind) {
		t.Errorf("ParseChartKind(pie) error = %v, want ErrUnknownChartKind", err)
	}
}

func TestLabelForField(t *testing.T) {
	tests := map[string]string{
		"engine_size": "Engine Size",
		"city-mpg":    "City Mpg",
		"price":       "Price",
		"":            "",
		"élan_vital":  "Élan Vital",
	}
	for in, want := range tests {
		if got := LabelForField(in); got != want {
			t.Errorf("LabelForField(%q) = %q, want %q", in, got, want)
		}
	}
}
