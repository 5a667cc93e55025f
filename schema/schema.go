package schema

import "strings"

// ============================================================================
// SCHEMA — Field catalogs for the sanitizer and the chart selection surface
// ============================================================================
// A catalog lists the numeric fields (measures) and categorical fields
// (dimensions) of a dataset. It is configured once, from a YAML file or an
// auto-discovered draft, and never recomputed from the data it describes.
//
// Measures feed engine.Sanitize as numericFields; dimensions feed it as
// requiredCategoricalFields.
// ============================================================================

// Config describes the complete shape of a dataset.
type Config struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Dimensions []DimensionMeta `json:"dimensions" yaml:"dimensions"`
	Measures   []MeasureMeta   `json:"measures" yaml:"measures"`

	// Auto-discovery metadata
	DiscoveredFrom string `json:"discoveredFrom,omitempty" yaml:"discovered_from,omitempty"`
	DiscoveredAt   string `json:"discoveredAt,omitempty" yaml:"discovered_at,omitempty"`

	// Columns skipped during auto-discovery
	SkippedColumns []SkippedColumn `json:"skippedColumns,omitempty" yaml:"skipped_columns,omitempty"`
}

// DimensionMeta describes a categorical field used for grouping.
type DimensionMeta struct {
	Key          string   `json:"key" yaml:"key"`
	DisplayName  string   `json:"displayName" yaml:"display_name"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	SampleValues []string `json:"sampleValues,omitempty" yaml:"sample_values,omitempty"`
}

// MeasureMeta describes a numeric field.
type MeasureMeta struct {
	Key         string `json:"key" yaml:"key"`
	DisplayName string `json:"displayName" yaml:"display_name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Unit        string `json:"unit,omitempty" yaml:"unit,omitempty"` // "mpg", "lbs", "hours", ...
}

// SkippedColumn records why a column was excluded during auto-discovery.
type SkippedColumn struct {
	Column      string `json:"column" yaml:"column"`
	Reason      string `json:"reason" yaml:"reason"`
	Recoverable bool   `json:"recoverable" yaml:"recoverable"` // Can be restored if consumer overrides
}

// DefaultDimension creates a DimensionMeta with a display name derived from the key.
func DefaultDimension(key string, samples ...string) DimensionMeta {
	return DimensionMeta{
		Key:          key,
		DisplayName:  toDisplayName(key),
		SampleValues: samples,
	}
}

// DefaultMeasure creates a MeasureMeta with a display name derived from the key.
func DefaultMeasure(key string) MeasureMeta {
	return MeasureMeta{
		Key:         key,
		DisplayName: toDisplayName(key),
	}
}

// CategoricalFields returns all dimension keys in catalog order.
func (c Config) CategoricalFields() []string {
	keys := make([]string, len(c.Dimensions))
	for i, d := range c.Dimensions {
		keys[i] = d.Key
	}
	return keys
}

// NumericFields returns all measure keys in catalog order.
func (c Config) NumericFields() []string {
	keys := make([]string, len(c.Measures))
	for i, m := range c.Measures {
		keys[i] = m.Key
	}
	return keys
}

// DisplayName returns the catalog's display name for a field key. Fields the
// catalog doesn't name get one derived from the key. Used for chart titles.
func (c Config) DisplayName(key string) string {
	for _, d := range c.Dimensions {
		if d.Key == key && d.DisplayName != "" {
			return d.DisplayName
		}
	}
	for _, m := range c.Measures {
		if m.Key == key && m.DisplayName != "" {
			return m.DisplayName
		}
	}
	return toDisplayName(key)
}

// FieldKey normalizes a column header into a catalog key:
// "Model Year" → "model_year", "cityMPG" → "city_mpg".
func FieldKey(header string) string {
	return toSnakeCase(strings.TrimSpace(header))
}
