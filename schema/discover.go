package schema

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ============================================================================
// AUTO-DISCOVERY — Heuristic field catalog drafting
// ============================================================================
// Inspects raw CSV data and drafts a schema.Config: which columns are
// numeric (measures), which are categorical (dimensions), which to skip.
// The draft is meant to be reviewed and saved as a YAML catalog; the
// sanitizer never infers types from data on its own.
//
// Each column gets a value type (numeric, date, bool, string) and then a
// role from type and cardinality: measure, dimension, or skipped.
//
// A value counts as null when it is empty, "?", or a null spelling such as
// "NULL" or "N/A". Numeric detection uses the same parse as the sanitizer,
// so a discovered measure never rejects a row the draft called numeric.
// ============================================================================

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	SampleSize     int      // Max rows to inspect (0 = all). Default: 1000
	RecoverColumns []string // Force-include columns that were auto-skipped
	Name           string   // Dataset name override (otherwise inferred)
}

// DefaultDiscoverOptions returns sensible defaults.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{
		SampleSize: 1000,
	}
}

// DiscoverFromCSV drafts a schema.Config by inspecting CSV data.
// Returns a Config with dimensions, measures, and skipped columns.
func DiscoverFromCSV(data []byte, opts ...DiscoverOptions) (*Config, error) {
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	// 1. Read headers
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	if len(headers) == 0 {
		return nil, fmt.Errorf("CSV has no columns")
	}

	// 2. Read sample rows
	var rows [][]string
	limit := opt.SampleSize
	if limit <= 0 {
		limit = 100000 // safety cap
	}

	for i := 0; i < limit; i++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV has no data rows")
	}

	recoverSet := make(map[string]bool, len(opt.RecoverColumns))
	for _, col := range opt.RecoverColumns {
		recoverSet[strings.ToLower(col)] = true
	}

	config := &Config{
		Name:           opt.Name,
		DiscoveredFrom: "CSV",
		DiscoveredAt:   time.Now().Format(time.RFC3339),
	}
	if config.Name == "" {
		config.Name = "Auto-discovered Dataset"
	}

	used := make(map[string]bool, len(headers))
	for i, header := range headers {
		col := analyzeColumn(header, i, rows)
		if col.key == "" || used[col.key] {
			config.SkippedColumns = append(config.SkippedColumns, SkippedColumn{
				Column: col.header,
				Reason: fmt.Sprintf("Key %q is empty or already used by another column", col.key),
			})
			continue
		}

		role := col.role
		if role == roleSkipped && len(col.samples) > 0 &&
			(recoverSet[strings.ToLower(col.header)] || recoverSet[col.key]) {
			role = roleDimension
		}

		switch role {
		case roleDimension:
			config.Dimensions = append(config.Dimensions, DefaultDimension(col.key, col.samples...))
		case roleMeasure:
			config.Measures = append(config.Measures, DefaultMeasure(col.key))
		default:
			config.SkippedColumns = append(config.SkippedColumns, SkippedColumn{
				Column:      col.header,
				Reason:      col.skipReason,
				Recoverable: col.recoverable,
			})
			continue
		}
		used[col.key] = true
	}

	return config, nil
}

// ============================================================================
// COLUMN ANALYSIS
// ============================================================================

type columnRole int

const (
	roleDimension columnRole = iota
	roleMeasure
	roleSkipped
)

type columnType int

const (
	typeString columnType = iota
	typeNumeric
	typeDate
	typeBool
)

type columnAnalysis struct {
	header      string
	key         string
	colType     columnType
	role        columnRole
	skipReason  string
	recoverable bool
	decimals    bool // some value has a fraction or exponent
	distinct    int
	samples     []string
}

// nullValues are the spellings of a missing cell, compared after trimming.
var nullValues = map[string]bool{
	"": true, "?": true, "null": true, "NULL": true, "N/A": true, "n/a": true, "NA": true,
}

// analyzeColumn reads one column across the sampled rows and classifies it.
func analyzeColumn(header string, index int, rows [][]string) columnAnalysis {
	col := columnAnalysis{header: header, key: FieldKey(header)}

	values := make([]string, 0, len(rows))
	distinct := make(map[string]bool)
	for _, row := range rows {
		if index >= len(row) {
			continue
		}
		val := strings.TrimSpace(row[index])
		if nullValues[val] {
			continue
		}
		values = append(values, val)
		distinct[val] = true
	}
	col.distinct = len(distinct)

	if len(values) == 0 {
		col.role = roleSkipped
		col.skipReason = "All values are empty/null"
		return col
	}

	col.samples = collectSamples(distinct, 10)
	col.colType = detectType(values)
	if col.colType == typeNumeric {
		for _, v := range values {
			if strings.ContainsAny(v, ".eE") {
				col.decimals = true
				break
			}
		}
	}
	col.classifyRole(len(values))
	return col
}

// classifyRole picks dimension, measure or skip from the type and the number
// of distinct non-null values among n.
func (col *columnAnalysis) classifyRole(n int) {
	unique := col.distinct == n && n > 10

	switch col.colType {
	case typeNumeric:
		switch {
		case unique && !col.decimals:
			col.role = roleSkipped
			col.skipReason = "Unique integer per row, likely an ID column"
		case col.decimals:
			col.role = roleMeasure
		case col.distinct < 20 && float64(col.distinct)/float64(n) < 0.3:
			// A handful of repeated integers is a code: cylinders, model year.
			col.role = roleDimension
		default:
			col.role = roleMeasure
		}

	case typeDate, typeBool:
		col.role = roleDimension

	default:
		switch {
		case unique:
			col.role = roleSkipped
			col.skipReason = "Unique per row, likely an identifier"
		case col.distinct > n/2 && col.distinct > 50:
			col.role = roleSkipped
			col.skipReason = fmt.Sprintf("High cardinality (%d unique values), not useful for grouping", col.distinct)
			col.recoverable = true
		default:
			col.role = roleDimension
		}
	}
}

// ============================================================================
// TYPE DETECTION
// ============================================================================

// detectType inspects values to determine column type.
// Numeric requires every non-null value to parse, since the sanitizer drops
// any row whose measure doesn't. Date and bool require 80%+.
func detectType(values []string) columnType {
	if len(values) == 0 {
		return typeString
	}

	numCount := 0
	dateCount := 0
	boolCount := 0

	for _, v := range values {
		if isNumeric(v) {
			numCount++
		}
		if isDate(v) {
			dateCount++
		}
		if isBool(v) {
			boolCount++
		}
	}

	threshold := int(float64(len(values)) * 0.8)

	// Numbers win over dates: "3504" parses as a year but is a weight.
	if boolCount >= threshold {
		return typeBool
	}
	if numCount == len(values) {
		return typeNumeric
	}
	if dateCount >= threshold {
		return typeDate
	}
	return typeString
}

// isNumeric matches engine.Sanitize: a plain finite float after trimming.
// Formatted amounts like "$1,234" stay strings.
func isNumeric(s string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil && !math.IsNaN(v) && !math.IsInf(v, 0)
}

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"02/01/2006",
	"Jan-2006",
	"January 2006",
	"2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

func isDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func isBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "false" || s == "yes" || s == "no" || s == "1" || s == "0"
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// toSnakeCase converts "Column Name" or "columnName" → "column_name".
func toSnakeCase(s string) string {
	// Handle camelCase: insert underscore before uppercase letters
	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			prev := rune(s[i-1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				result.WriteRune('_')
			}
		}
		result.WriteRune(r)
	}

	s = result.String()
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "__", "_")
	s = strings.Trim(s, "_")
	return s
}

// toDisplayName cleans a header for human display.
// "story_points" → "Story Points", "assignee" → "Assignee"
func toDisplayName(s string) string {
	// If already has spaces/mixed case, just trim
	if strings.Contains(s, " ") {
		return strings.TrimSpace(s)
	}

	// Convert snake_case to Title Case
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}

// collectSamples picks up to maxSamples representative values.
func collectSamples(uniqueSet map[string]bool, maxSamples int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}

	// Sort for deterministic output
	sort.Strings(samples)

	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}