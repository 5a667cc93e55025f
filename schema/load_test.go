package schema

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const carsCatalog = `
name: Cars
dimensions:
  - key: Origin
  - key: model_year
    display_name: Year
measures:
  - key: horsepower
    unit: hp
  - key: Weight
`

func TestParseCatalog(t *testing.T) {
	config, err := Parse([]byte(carsCatalog))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if got, want := strings.Join(config.CategoricalFields(), ","), "origin,model_year"; got != want {
		t.Errorf("CategoricalFields() = %v, want %v", got, want)
	}
	if got, want := strings.Join(config.NumericFields(), ","), "horsepower,weight"; got != want {
		t.Errorf("NumericFields() = %v, want %v", got, want)
	}
	if got := config.DisplayName("model_year"); got != "Year" {
		t.Errorf("DisplayName(model_year) = %q, want %q", got, "Year")
	}
	if got := config.DisplayName("horsepower"); got != "Horsepower" {
		t.Errorf("DisplayName(horsepower) = %q, want %q", got, "Horsepower")
	}
	if got := config.DisplayName("top_speed"); got != "Top Speed" {
		t.Errorf("DisplayName(top_speed) = %q, want %q", got, "Top Speed")
	}
}

func TestValidateCatalog(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"empty", "name: nothing\n", "no fields"},
		{"duplicate measure", "measures:\n  - key: a\n  - key: A\n", `duplicate measure "a"`},
		{"overlap", "dimensions:\n  - key: a\nmeasures:\n  - key: a\n", "both dimension and measure"},
		{"empty key", "measures:\n  - key: ''\n", "empty key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("error = %v, want ErrInvalidCatalog", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("dimensions: [")); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadAndMarshalRoundTrip(t *testing.T) {
	discovered, err := DiscoverFromCSV(carsCSV)
	if err != nil {
		t.Fatalf("DiscoverFromCSV failed: %v", err)
	}
	data, err := Marshal(discovered)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "cars.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got, want := strings.Join(loaded.NumericFields(), ","), strings.Join(discovered.NumericFields(), ","); got != want {
		t.Errorf("NumericFields() = %v, want %v", got, want)
	}
	if got, want := strings.Join(loaded.CategoricalFields(), ","), strings.Join(discovered.CategoricalFields(), ","); got != want {
		t.Errorf("CategoricalFields() = %v, want %v", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
