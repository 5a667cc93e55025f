package engine

import "math"

// ============================================================================
// BINNER — Equal-width histogram bins
// ============================================================================

// Bin is the half-open interval [X0, X1) and the number of values in it.
// The last bin of a sequence is closed on the right.
type Bin struct {
	X0    float64 `json:"x0"`
	X1    float64 `json:"x1"`
	Count int     `json:"count"`
}

// BinValues partitions [lo, hi] into thresholdCount equal-width bins and
// counts values into them, emitting empty bins too. Adjacent bins share
// their edge exactly. hi == lo yields one bin; thresholdCount < 1 means 1.
// Values outside [lo, hi] are not counted.
func BinValues(values []float64, lo, hi float64, thresholdCount int) []Bin {
	if thresholdCount < 1 || hi == lo {
		thresholdCount = 1
	}
	n := thresholdCount
	width := (hi - lo) / float64(n)

	edges := make([]float64, n+1)
	for i := 0; i < n; i++ {
		edges[i] = lo + width*float64(i)
	}
	edges[n] = hi

	bins := make([]Bin, n)
	for i := range bins {
		bins[i] = Bin{X0: edges[i], X1: edges[i+1]}
	}

	for _, v := range values {
		if math.IsNaN(v) || v < lo || v > hi {
			continue
		}
		bins[binIndex(edges, v)].Count++
	}
	return bins
}

// binIndex finds i with edges[i] <= v < edges[i+1]; v == hi goes last.
func binIndex(edges []float64, v float64) int {
	n := len(edges) - 1
	lo, hi := edges[0], edges[n]
	if hi == lo {
		return 0
	}
	i := int(math.Floor((v - lo) / (hi - lo) * float64(n)))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	// Rounding can put v one bin off; correct against the stored edges.
	for i > 0 && v < edges[i] {
		i--
	}
	for i < n-1 && v >= edges[i+1] {
		i++
	}
	return i
}
