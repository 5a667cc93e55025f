package engine

import (
	"math"
	"strconv"
	"strings"
)

// ============================================================================
// ROW SANITIZER — RawRecord → Row
// ============================================================================
// Whole-row rejection: one missing or unparseable required cell drops the
// record. Downstream scales and statistics assume complete vectors.
// ============================================================================

// missingMarker is the placeholder some exports write for unknown values.
const missingMarker = "?"

// IsMissing reports whether a raw cell counts as missing: absent from the
// record, empty, or the "?" marker (after trimming whitespace).
func IsMissing(raw RawRecord, field string) bool {
	v, ok := raw[field]
	if !ok {
		return true
	}
	v = strings.TrimSpace(v)
	return v == "" || v == missingMarker
}

// Sanitize converts one raw record into a typed Row. It returns a *RowError
// wrapping ErrInvalidRow when any numeric field is missing or not a finite
// number, or any required categorical field is missing.
func Sanitize(raw RawRecord, numericFields, requiredCategoricalFields []string) (Row, error) {
	measures := make(map[string]float64, len(numericFields))
	for _, f := range numericFields {
		if IsMissing(raw, f) {
			return Row{}, &RowError{Field: f, Reason: "is missing"}
		}
		text := strings.TrimSpace(raw[f])
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Row{}, &RowError{Field: f, Value: text, Reason: "is not a number"}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Row{}, &RowError{Field: f, Value: text, Reason: "is not finite"}
		}
		measures[f] = v
	}

	dimensions := make(map[string]string, len(requiredCategoricalFields))
	for _, f := range requiredCategoricalFields {
		if IsMissing(raw, f) {
			return Row{}, &RowError{Field: f, Reason: "is missing"}
		}
		dimensions[f] = strings.TrimSpace(raw[f])
	}

	return Row{dimensions: dimensions, measures: measures}, nil
}

// SanitizeStats summarizes a dataset-level sanitization pass.
type SanitizeStats struct {
	Total   int            `json:"total"`
	Kept    int            `json:"kept"`
	Dropped int            `json:"dropped"`
	ByField map[string]int `json:"byField,omitempty"` // rejections per offending field
}

// SanitizeAll maps every record through Sanitize, keeps accepted rows in
// source order, and reports what was dropped. Row rejections never escape.
func SanitizeAll(records []RawRecord, numericFields, categoricalFields []string) (*Dataset, SanitizeStats) {
	stats := SanitizeStats{Total: len(records), ByField: make(map[string]int)}
	rows := make([]Row, 0, len(records))

	for _, raw := range records {
		row, err := Sanitize(raw, numericFields, categoricalFields)
		if err != nil {
			stats.Dropped++
			if re, ok := err.(*RowError); ok {
				stats.ByField[re.Field]++
			}
			continue
		}
		rows = append(rows, row)
	}
	stats.Kept = len(rows)

	return NewDataset(numericFields, categoricalFields, rows...), stats
}
