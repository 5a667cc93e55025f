package engine

import (
	"math"
	"testing"
)

const eps = 1e-9

func assertFloat(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > eps {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertFloats(t *testing.T, name string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("%s = %v, want %v", name, got, want)
		return
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > eps {
			t.Errorf("%s = %v, want %v", name, got, want)
			return
		}
	}
}

// carsDataset is a small sanitized fixture: four cars, two makes.
func carsDataset() *Dataset {
	row := func(mk, body string, price, hp float64) Row {
		return NewRow(
			map[string]string{"make": mk, "body": body},
			map[string]float64{"price": price, "horsepower": hp},
		)
	}
	return NewDataset(
		[]string{"price", "horsepower"},
		[]string{"make", "body"},
		row("audi", "sedan", 13950, 102),
		row("audi", "wagon", 17450, 115),
		row("bmw", "sedan", 16430, 101),
		row("bmw", "sedan", 30760, 182),
	)
}
