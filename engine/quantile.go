package engine

import (
	"math"
	"sort"
)

// ============================================================================
// QUANTILE SUMMARIZER — Box plot statistics per category
// ============================================================================
// Quartiles use linear interpolation between closest ranks
// (rank = p·(n−1)). Whiskers follow Tukey's 1.5·IQR fences but never reach
// past the observed data range.
// ============================================================================

// GroupSummary holds the box plot statistics of one category.
type GroupSummary struct {
	Key         string    `json:"key"`
	Count       int       `json:"count"`
	Min         float64   `json:"min"`
	Q1          float64   `json:"q1"`
	Median      float64   `json:"median"`
	Q3          float64   `json:"q3"`
	Max         float64   `json:"max"`
	WhiskerLow  float64   `json:"whiskerLow"`
	WhiskerHigh float64   `json:"whiskerHigh"`
	Outliers    []float64 `json:"outliers,omitempty"` // ascending
}

// Quantile returns the p-quantile of ascending-sorted values using linear
// interpolation. p is clamped to [0, 1]. Empty input returns NaN.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	rank := p * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Summarize computes one GroupSummary per distinct groupField value, sorted
// ascending by key. A single-value group has every statistic equal to it.
func Summarize(view RecordView, groupField, valueField string) []GroupSummary {
	groups := groupBy(view, groupField)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })

	out := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		values := measureColumn(g.View, valueField)
		sort.Float64s(values)
		out = append(out, summarizeSorted(g.Key, values))
	}
	return out
}

func summarizeSorted(key string, values []float64) GroupSummary {
	n := len(values)
	s := GroupSummary{
		Key:    key,
		Count:  n,
		Min:    values[0],
		Max:    values[n-1],
		Q1:     Quantile(values, 0.25),
		Median: Quantile(values, 0.5),
		Q3:     Quantile(values, 0.75),
	}

	iqr := s.Q3 - s.Q1
	s.WhiskerLow = math.Max(s.Min, s.Q1-1.5*iqr)
	s.WhiskerHigh = math.Min(s.Max, s.Q3+1.5*iqr)

	for _, v := range values {
		if v < s.WhiskerLow || v > s.WhiskerHigh {
			s.Outliers = append(s.Outliers, v)
		}
	}
	return s
}
