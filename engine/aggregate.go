package engine

import (
	"sort"
	"strings"

	"github.com/aclements/go-moremath/stats"
)

// ============================================================================
// AGGREGATOR — Grouping, Mean Reduction, and Sorting via RecordView
// ============================================================================
// All functions operate on RecordView — zero-copy access to any data source.
// Grouping produces SubViews (index lists into parent view).
// ============================================================================

// Group is one categorical key with its reduced value.
type Group struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Value float64    `json:"value"`
	Count int        `json:"count"`
	View  RecordView `json:"-"` // Sub-view for records in this group (zero-copy)
}

// Aggregate groups rows by groupField and reduces valueField to its mean.
// Output is sorted by value descending; ties keep first-seen key order.
func Aggregate(view RecordView, groupField, valueField string) []Group {
	if view.Len() == 0 {
		return nil
	}

	groups := groupBy(view, groupField)
	for i := range groups {
		g := &groups[i]
		g.Count = g.View.Len()
		g.Value = stats.Mean(measureColumn(g.View, valueField))
	}

	SortGroups(groups, "value_desc")
	return groups
}

// ============================================================================
// GROUPING
// ============================================================================

// groupBy splits a view by a dimension, in first-seen key order.
func groupBy(view RecordView, dimension string) []Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := view.Dimension(i, dimension)
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:   key,
			Label: key,
			View:  newSubView(view, grouped[key]),
		})
	}
	return groups
}

// UniqueValues returns distinct values for a dimension in first-seen order.
func UniqueValues(view RecordView, dimension string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Dimension(i, dimension)
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}

// ============================================================================
// SORTING
// ============================================================================

// SortGroups sorts groups by the specified sort mode. Sorting is stable, so
// equal values keep their existing order. Unknown modes leave order as is.
func SortGroups(groups []Group, sortBy string) {
	switch sortBy {
	case "value_desc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })
	case "value_asc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value < groups[j].Value })
	case "label_asc":
		sort.SliceStable(groups, func(i, j int) bool { return strings.ToLower(groups[i].Key) < strings.ToLower(groups[j].Key) })
	case "label_desc":
		sort.SliceStable(groups, func(i, j int) bool { return strings.ToLower(groups[i].Key) > strings.ToLower(groups[j].Key) })
	default:
		// preserve grouping order
	}
}
