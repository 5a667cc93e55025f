package engine

import "testing"

func TestApplyFilters(t *testing.T) {
	cars := carsDataset()

	tests := []struct {
		name    string
		filters Filters
		want    int
	}{
		{"empty", Filters{}, 4},
		{"case and space insensitive", Filters{Dimensions: map[string][]string{"make": {" AUDI "}}}, 2},
		{"OR within a dimension", Filters{Dimensions: map[string][]string{"make": {"audi", "bmw"}}}, 4},
		{"AND across dimensions", Filters{Dimensions: map[string][]string{"make": {"audi"}, "body": {"sedan"}}}, 1},
		{"no match", Filters{Dimensions: map[string][]string{"make": {"volvo"}}}, 0},
		{"empty value list ignored", Filters{Dimensions: map[string][]string{"make": {}}}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyFilters(cars, tt.filters).Len(); got != tt.want {
				t.Errorf("ApplyFilters().Len() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFiltersIsEmpty(t *testing.T) {
	f := Filters{Dimensions: map[string][]string{"make": {"audi"}, "body": nil}}
	if f.IsEmpty() {
		t.Error("IsEmpty() = true, want false")
	}
	if !(Filters{}).IsEmpty() {
		t.Error("zero Filters IsEmpty() = false, want true")
	}
	if !(Filters{Dimensions: map[string][]string{"body": nil}}).IsEmpty() {
		t.Error("Filters with only empty lists IsEmpty() = false, want true")
	}
}

func TestSubViewReadsThroughParent(t *testing.T) {
	cars := carsDataset()
	view := ApplyFilters(cars, Filters{Dimensions: map[string][]string{"make": {"bmw"}}})

	if view.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", view.Len())
	}
	if got := view.Measure(1, "price"); got != 30760 {
		t.Errorf("Measure(1, price) = %v, want 30760", got)
	}
	if got := view.Dimension(5, "make"); got != "" {
		t.Errorf("Dimension(out of range) = %q, want empty", got)
	}
	if len(view.MeasureKeys()) != 2 || len(view.DimensionKeys()) != 2 {
		t.Error("SubView does not expose the parent's keys")
	}
}

func TestDomainAdapter(t *testing.T) {
	type car struct {
		Origin     string
		Horsepower float64
	}
	adapter := NewDomainAdapter[car]().
		Dimension("origin", func(c car) string { return c.Origin }).
		Measure("horsepower", func(c car) float64 { return c.Horsepower }).
		Measure("horsepower", func(c car) float64 { return c.Horsepower * 2 })

	view := adapter.Bind([]car{{"usa", 130}, {"japan", 95}})

	if view.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", view.Len())
	}
	if got := view.MeasureKeys(); len(got) != 1 {
		t.Errorf("MeasureKeys() = %v, want one key after re-registration", got)
	}
	if got := view.Measure(0, "horsepower"); got != 260 {
		t.Errorf("Measure(0) = %v, want 260 from the latest accessor", got)
	}
	if got := view.Dimension(1, "origin"); got != "japan" {
		t.Errorf("Dimension(1) = %q, want japan", got)
	}
	if got := view.Measure(0, "weight"); got != 0 {
		t.Errorf("Measure(unknown) = %v, want 0", got)
	}
}
