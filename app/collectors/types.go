package collectors

import (
	"context"

	"github.com/lysyi3m/signal-comb/app/signal"
)

// Collector gathers raw records about the target company from one source.
// Implementations never interpret record contents; the normalizer's adapters
// do that.
type Collector interface {
	Name() string
	Collect(ctx context.Context) ([]signal.RawRecord, error)
}

// Configuration types

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	Kind     string         `yaml:"kind"` // "rss" or "file"
	URL      string         `yaml:"url"`
	Path     string         `yaml:"path"`
	Source   string         `yaml:"source"`      // display name, e.g. "TechCrunch"
	Type     string         `yaml:"signal_type"` // default signal type for this source
	Settings ConfigSettings `yaml:"settings"`
	Filters  []ConfigFilter `yaml:"filters"`
}

type ConfigSettings struct {
	Enabled        bool    `yaml:"enabled"`
	MaxItems       int     `yaml:"max_items"`
	Timeout        int     `yaml:"timeout"` // seconds
	ExtractContent bool    `yaml:"extract_content"`
	RequestsPerSec float64 `yaml:"requests_per_sec"`
}

type ConfigFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}
