// Package chartkit turns tabular records into renderer-agnostic chart scenes.
//
// Usage:
//
//	import "github.com/spektr-org/chartkit/engine"
//
//	ds, stats := engine.SanitizeAll(records, catalog.NumericFields(), catalog.CategoricalFields())
//	scene, err := engine.Layout(engine.Histogram, ds, engine.Selection{X: "price"},
//	    engine.DefaultLayoutConfig(),
//	    engine.WithThresholds(20),
//	)
//
// The engine takes sanitized rows (typed numeric measures and categorical
// dimensions) and returns a Scene: positioned points, rectangles and lines
// plus axis descriptors, in plot-local pixels.
//
// Acquisition (CSV, Postgres) lives in the source package, field catalogs in
// schema, and the SVG sink in render. The engine performs no I/O.
package chartkit
