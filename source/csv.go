package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spektr-org/chartkit/engine"
	"github.com/spektr-org/chartkit/schema"
)

// ============================================================================
// CSV SOURCE — Parses delimited text into []engine.RawRecord
// ============================================================================
// Consumer reads the CSV from wherever it lives (file, upload, pipe).
// Header cells become field keys via schema.FieldKey. Cells are passed
// through untouched, so "", "?" and friends reach the sanitizer as-is.
// A row shorter than the header leaves its trailing fields absent.
//
// Any read or parse failure wraps engine.ErrAcquisition: a broken file is
// reported, never turned into an empty dataset.
// ============================================================================

// ReadCSV reads a header row and all data rows. It returns the records and
// the normalized field keys in column order.
func ReadCSV(r io.Reader) ([]engine.RawRecord, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	// Read header
	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%w: CSV is empty", engine.ErrAcquisition)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read CSV headers: %v", engine.ErrAcquisition, err)
	}

	keys, err := fieldKeys(headers)
	if err != nil {
		return nil, nil, err
	}

	// Read rows
	var records []engine.RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", engine.ErrAcquisition, err)
		}

		rec := make(engine.RawRecord, len(keys))
		for i, val := range row {
			if i >= len(keys) {
				break
			}
			if keys[i] == "" {
				continue
			}
			rec[keys[i]] = val
		}
		records = append(records, rec)
	}

	return records, keys, nil
}

// fieldKeys normalizes column names with schema.FieldKey. Two columns that
// normalize to the same key would overwrite each other in every record, so
// that is an acquisition error. Columns with an empty key are ignored.
func fieldKeys(names []string) ([]string, error) {
	keys := make([]string, len(names))
	first := make(map[string]string, len(names))
	for i, name := range names {
		key := schema.FieldKey(name)
		if prev, dup := first[key]; dup && key != "" {
			return nil, fmt.Errorf("%w: columns %q and %q both map to field %q",
				engine.ErrAcquisition, prev, name, key)
		}
		first[key] = name
		keys[i] = key
	}
	return keys, nil
}

// ReadCSVFile opens path and reads it with ReadCSV.
func ReadCSVFile(path string) ([]engine.RawRecord, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", engine.ErrAcquisition, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// Sanitize runs raw records through the catalog's field lists and logs
// what was dropped.
func Sanitize(records []engine.RawRecord, catalog *schema.Config) (*engine.Dataset, engine.SanitizeStats) {
	ds, stats := engine.SanitizeAll(records, catalog.NumericFields(), catalog.CategoricalFields())
	slog.Debug("chartkit: sanitized records",
		"total", stats.Total, "kept", stats.Kept, "dropped", stats.Dropped, "by_field", stats.ByField)
	return ds, stats
}

// CheckColumns reports catalog fields missing from a source's columns.
// A missing column would silently reject every row, so callers treat it as
// an acquisition failure.
func CheckColumns(keys []string, catalog *schema.Config) error {
	have := make(map[string]bool, len(keys))
	for _, k := range keys {
		have[k] = true
	}
	var missing []string
	for _, f := range append(catalog.NumericFields(), catalog.CategoricalFields()...) {
		if !have[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: source has no column for %v", engine.ErrAcquisition, missing)
	}
	return nil
}
