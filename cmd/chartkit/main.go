package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/spektr-org/chartkit/config"
	"github.com/spektr-org/chartkit/engine"
	"github.com/spektr-org/chartkit/logging"
	"github.com/spektr-org/chartkit/schema"
	"github.com/spektr-org/chartkit/server"
	"github.com/spektr-org/chartkit/source"
)

// ============================================================================
// CHARTKIT CLI — CSV or Postgres rows → chart scene
// ============================================================================

const version = "0.3.0"

func main() {
	// .env is optional; real environment variables win.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fatalf("%v", err)
	}
	// Logs go to stderr so stdout stays clean for scene output.
	slog.SetDefault(logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format))
	if envErr == nil {
		slog.Debug("loaded .env file")
	}

	// ── Flags ─────────────────────────────────────────────────────────────
	filePath := flag.String("file", "", "Path to CSV data file")
	catalogPath := flag.String("catalog", cfg.Data.CatalogPath, "Path to YAML field catalog (skips auto-discovery)")
	pgQuery := flag.String("pg-query", "", "SQL query to read rows from DATABASE_URL instead of --file")
	kindStr := flag.String("kind", "", "Chart kind: scatter, bar, histogram, box")
	xField := flag.String("x", "", "Field on the x axis")
	yField := flag.String("y", "", "Field on the y axis (not used by histogram)")
	bins := flag.Int("bins", cfg.Layout.Bins, "Histogram threshold count")
	width := flag.Int("width", cfg.Layout.Width, "Chart width in pixels")
	height := flag.Int("height", cfg.Layout.Height, "Chart height in pixels")
	format := flag.String("format", "json", "Output format: json, pretty, svg, csv (yaml with --discover)")
	outFile := flag.String("out", "", "Write output to file instead of stdout")
	discover := flag.Bool("discover", false, "Print the auto-discovered field catalog and exit")
	serve := flag.Bool("serve", false, "Run the HTTP server")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `chartkit: tabular records to chart scenes

Usage:
  chartkit --file cars.csv --kind histogram --x price --bins 20
  chartkit --file cars.csv --kind bar --x make --y price --format svg --out price.svg
  chartkit --file cars.csv --discover --format yaml --out catalog.yaml
  chartkit --catalog cars.yaml --pg-query "SELECT * FROM cars" --kind scatter --x horsepower --y price
  chartkit --serve

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Environment:
  DATABASE_URL      Required for --pg-query
  CHARTKIT_CATALOG  Default for --catalog
  LOG_LEVEL, LOG_FORMAT, SERVER_PORT, CHART_*  See config package

Formats:
  json      Scene as JSON (default)
  pretty    Pretty-printed JSON
  svg       Rendered SVG document
  csv       Underlying chart data as CSV
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("chartkit %s\n", version)
		os.Exit(0)
	}

	// ── Catalog ───────────────────────────────────────────────────────────
	var catalog *schema.Config
	if *catalogPath != "" {
		catalog, err = schema.Load(*catalogPath)
		if err != nil {
			fatalf("%v", err)
		}
		slog.Info("catalog loaded", "name", catalog.Name,
			"dimensions", len(catalog.Dimensions), "measures", len(catalog.Measures))
	}

	// ── Serve mode ────────────────────────────────────────────────────────
	if *serve {
		runServer(cfg, catalog)
		return
	}

	if *filePath == "" && *pgQuery == "" {
		fmt.Fprintln(os.Stderr, "Error: --file or --pg-query is required")
		flag.Usage()
		os.Exit(1)
	}
	if !*discover && *kindStr == "" {
		fmt.Fprintln(os.Stderr, "Error: either --discover or --kind is required")
		flag.Usage()
		os.Exit(1)
	}
	if err := checkFormat(*format, *discover); err != nil {
		fatalf("%v", err)
	}
	if !*discover && (*bins < 1 || *bins > cfg.Layout.MaxBins) {
		fatalf("--bins (%d) must be 1-%d", *bins, cfg.Layout.MaxBins)
	}

	// Output is rendered into memory first so a failed run leaves no file.
	var out bytes.Buffer

	// ── Acquire ───────────────────────────────────────────────────────────
	var (
		records []engine.RawRecord
		keys    []string
	)
	if *pgQuery != "" {
		if catalog == nil && !*discover {
			fatalf("--pg-query needs --catalog")
		}
		records, keys, err = queryPostgres(cfg, *pgQuery)
	} else {
		var data []byte
		data, err = os.ReadFile(*filePath)
		if err != nil {
			fatalf("%v: %v", engine.ErrAcquisition, err)
		}
		if catalog == nil {
			catalog, err = schema.DiscoverFromCSV(data)
			if err != nil {
				fatalf("Auto-discovery failed: %v", err)
			}
			slog.Info("catalog discovered", "dimensions", len(catalog.Dimensions),
				"measures", len(catalog.Measures), "skipped", len(catalog.SkippedColumns))
		}
		records, keys, err = source.ReadCSV(bytes.NewReader(data))
	}
	if err != nil {
		fatalf("%v", err)
	}

	// ── Discover mode ─────────────────────────────────────────────────────
	if *discover {
		if catalog == nil {
			fatalf("--discover needs --file")
		}
		if err := writeCatalog(&out, catalog, *format); err != nil {
			fatalf("Failed to write catalog: %v", err)
		}
		if err := emit(*outFile, out.Bytes()); err != nil {
			fatalf("Failed to write output: %v", err)
		}
		return
	}

	if err := source.CheckColumns(keys, catalog); err != nil {
		fatalf("%v", err)
	}
	ds, stats := source.Sanitize(records, catalog)
	slog.Info("rows sanitized", "total", stats.Total, "kept", stats.Kept, "dropped", stats.Dropped)

	// ── Layout ────────────────────────────────────────────────────────────
	kind, err := engine.ParseChartKind(*kindStr)
	if err != nil {
		fatalf("%v", err)
	}
	sel := engine.Selection{X: schema.FieldKey(*xField), Y: schema.FieldKey(*yField)}

	layout := cfg.Layout.Engine()
	layout.Width, layout.Height = float64(*width), float64(*height)
	opts := []engine.Option{
		engine.WithThresholds(*bins),
		engine.WithTickCount(cfg.Layout.TickCount),
		engine.WithLabels(catalog.DisplayName),
	}

	// ── Render output ─────────────────────────────────────────────────────
	switch *format {
	case "csv":
		table, err := engine.BuildTable(kind, ds, sel, opts...)
		if err != nil {
			fatalf("%v", err)
		}
		if err := writeCSV(&out, table); err != nil {
			fatalf("Failed to write CSV: %v", err)
		}
	default:
		scene, err := engine.Layout(kind, ds, sel, layout, opts...)
		if err != nil {
			fatalf("%v", err)
		}
		if err := writeScene(&out, scene, *format); err != nil {
			fatalf("Failed to render output: %v", err)
		}
	}
	if err := emit(*outFile, out.Bytes()); err != nil {
		fatalf("Failed to write output: %v", err)
	}
	if *outFile != "" {
		slog.Info("output written", "path", *outFile, "format", *format)
	}
}

func queryPostgres(cfg *config.Config, sql string) ([]engine.RawRecord, []string, error) {
	if cfg.Database.URL == "" {
		return nil, nil, fmt.Errorf("%w: DATABASE_URL is not set", engine.ErrAcquisition)
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.QueryTimeout)
	defer cancel()

	pool, err := source.OpenPool(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	defer pool.Close()

	return source.QueryRecords(ctx, pool, sql)
}

func runServer(cfg *config.Config, catalog *schema.Config) {
	// A long-running server logs to stdout like any other service.
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	srv := server.New(cfg, catalog)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fatalf("server: %v", err)
	}
	slog.Info("server stopped")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
