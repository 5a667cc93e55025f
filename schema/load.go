package schema

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ============================================================================
// CATALOG FILES — YAML load + validation
// ============================================================================
//
//	name: Cars
//	dimensions:
//	  - key: origin
//	    display_name: Origin
//	measures:
//	  - key: horsepower
//	    display_name: Horsepower
//	    unit: hp
//
// ============================================================================

// ErrInvalidCatalog is returned when a catalog fails validation.
var ErrInvalidCatalog = errors.New("invalid field catalog")

// Load reads and validates a YAML catalog file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog. Keys are normalized with
// FieldKey and empty display names are derived from the key.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing catalog file: %w", err)
	}

	for i := range config.Dimensions {
		d := &config.Dimensions[i]
		d.Key = FieldKey(d.Key)
		if d.DisplayName == "" {
			d.DisplayName = toDisplayName(d.Key)
		}
	}
	for i := range config.Measures {
		m := &config.Measures[i]
		m.Key = FieldKey(m.Key)
		if m.DisplayName == "" {
			m.DisplayName = toDisplayName(m.Key)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Marshal encodes a catalog as YAML, e.g. to save a discovered draft.
func Marshal(c *Config) ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks that the catalog can drive the sanitizer: at least one
// field, no empty or duplicate keys, and no key listed as both numeric and
// categorical. All problems are reported together.
func (c Config) Validate() error {
	var problems []string

	if len(c.Dimensions) == 0 && len(c.Measures) == 0 {
		problems = append(problems, "catalog lists no fields")
	}

	seen := make(map[string]string)
	check := func(kind, key string) {
		if key == "" {
			problems = append(problems, fmt.Sprintf("%s with empty key", kind))
			return
		}
		if prev, dup := seen[key]; dup {
			if prev == kind {
				problems = append(problems, fmt.Sprintf("duplicate %s %q", kind, key))
			} else {
				problems = append(problems, fmt.Sprintf("%q is listed as both %s and %s", key, prev, kind))
			}
			return
		}
		seen[key] = kind
	}
	for _, d := range c.Dimensions {
		check("dimension", d.Key)
	}
	for _, m := range c.Measures {
		check("measure", m.Key)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidCatalog, strings.Join(problems, "\n  - "))
	}
	return nil
}
