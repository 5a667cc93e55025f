// Package config loads chartkit settings from environment variables with
// defaults, and validates them on startup.
package config

import (
	"fmt"
	"time"

	"github.com/spektr-org/chartkit/engine"
)

// Config holds all chartkit configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Data     DataConfig
	Layout   LayoutConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`

	// RequestTimeout is the middleware timeout per request (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`

	// MaxUploadBytes caps a dataset upload body (default: 32MB)
	MaxUploadBytes int64 `env:"SERVER_MAX_UPLOAD_BYTES" default:"33554432"`

	// MaxDatasets caps how many uploaded datasets are held in memory (default: 64)
	MaxDatasets int `env:"SERVER_MAX_DATASETS" default:"64"`
}

// DatabaseConfig holds the optional PostgreSQL source.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Empty disables the source.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// QueryTimeout bounds a single acquisition query (default: 30s)
	QueryTimeout time.Duration `env:"DB_QUERY_TIMEOUT" default:"30s"`
}

// DataConfig locates the field catalog.
type DataConfig struct {
	// CatalogPath is a YAML catalog. Empty means discover it from the CSV header.
	CatalogPath string `env:"CHARTKIT_CATALOG"`
}

// LayoutConfig holds the default canvas and binning settings.
type LayoutConfig struct {
	Width        int `env:"CHART_WIDTH" default:"800"`
	Height       int `env:"CHART_HEIGHT" default:"500"`
	MarginTop    int `env:"CHART_MARGIN_TOP" default:"20"`
	MarginRight  int `env:"CHART_MARGIN_RIGHT" default:"30"`
	MarginBottom int `env:"CHART_MARGIN_BOTTOM" default:"50"`
	MarginLeft   int `env:"CHART_MARGIN_LEFT" default:"60"`

	// Bins is the default histogram threshold count (default: 10)
	Bins int `env:"CHART_BINS" default:"10"`

	// MaxBins is the largest bin count a request may ask for (default: 1000)
	MaxBins int `env:"CHART_MAX_BINS" default:"1000"`

	// TickCount is the target tick count per linear axis (default: 10)
	TickCount int `env:"CHART_TICK_COUNT" default:"10"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Engine converts the layout settings to the engine's canvas description.
func (c LayoutConfig) Engine() engine.LayoutConfig {
	return engine.LayoutConfig{
		Width:  float64(c.Width),
		Height: float64(c.Height),
		Margin: engine.Margin{
			Top:    float64(c.MarginTop),
			Right:  float64(c.MarginRight),
			Bottom: float64(c.MarginBottom),
			Left:   float64(c.MarginLeft),
		},
	}
}
