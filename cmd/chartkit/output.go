package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spektr-org/chartkit/engine"
	"github.com/spektr-org/chartkit/render"
	"github.com/spektr-org/chartkit/schema"
)

// ============================================================================
// OUTPUT
// ============================================================================

var (
	sceneFormats   = map[string]bool{"json": true, "pretty": true, "svg": true, "csv": true}
	catalogFormats = map[string]bool{"json": true, "pretty": true, "yaml": true}
)

// checkFormat rejects a --format the chosen mode cannot produce.
func checkFormat(format string, discover bool) error {
	if discover {
		if !catalogFormats[format] {
			return fmt.Errorf("--format %q: --discover writes json, pretty or yaml", format)
		}
		return nil
	}
	if !sceneFormats[format] {
		return fmt.Errorf("--format %q: must be json, pretty, svg or csv", format)
	}
	return nil
}

// emit writes out to path, or to stdout when path is empty.
func emit(path string, out []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(out)
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

func writeScene(w io.Writer, scene *engine.Scene, format string) error {
	if format == "svg" {
		return render.WriteSVG(w, scene)
	}
	return writeJSON(w, scene, format)
}

// writeCatalog prints a catalog as YAML, or JSON when asked for json/pretty.
func writeCatalog(w io.Writer, c *schema.Config, format string) error {
	if format == "json" || format == "pretty" {
		return writeJSON(w, c, format)
	}
	out, err := schema.Marshal(c)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// writeCSV writes a table with its column labels as the header row and the
// summary, if any, as a trailing row.
func writeCSV(w io.Writer, table *engine.TableData) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c.Label
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	if s := table.Summary; s != nil && len(table.Columns) > 0 {
		row := make([]string, len(table.Columns))
		row[0] = s.Label
		for i, c := range table.Columns[1:] {
			row[i+1] = s.Values[c.Key]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, v any, format string) error {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
