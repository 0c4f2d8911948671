package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./signal_comb.db" description:"Path to the SQLite database file"`

	// Application configuration
	SourcesDir        string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing source configuration files"`
	OutputDir         string `long:"output-dir" env:"OUTPUT_DIR" default:"./output" description:"Directory for aggregation artifacts and reports"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for collection and aggregation"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Pipeline configuration
	TargetCompany          string  `long:"target-company" env:"TARGET_COMPANY" default:"Stripe" description:"Company the collected signals are about"`
	MaxSignals             int     `long:"max-signals" env:"MAX_SIGNALS" default:"15" description:"Maximum number of signals in the final output (0 = unlimited)"`
	MinConfidence          string  `long:"min-confidence" env:"MIN_CONFIDENCE" default:"medium" description:"Minimum confidence level for output signals (low, medium, high)"`
	DaysLookback           int     `long:"days-lookback" env:"DAYS_LOOKBACK" default:"90" description:"Discard signals older than this many days (0 = unlimited)"`
	FuzzyDedupThreshold    float64 `long:"fuzzy-dedup-threshold" env:"FUZZY_DEDUP_THRESHOLD" default:"0.85" description:"Headline similarity above which same-date signals are duplicates"`
	ConflictGroupThreshold float64 `long:"conflict-group-threshold" env:"CONFLICT_GROUP_THRESHOLD" default:"0.70" description:"Headline similarity above which same-date signals describe one event"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Signal Comb/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:                 raw.DBPath,
		SourcesDir:             raw.SourcesDir,
		OutputDir:              raw.OutputDir,
		Port:                   raw.Port,
		WorkerCount:            raw.WorkerCount,
		SchedulerInterval:      raw.SchedulerInterval,
		APIAccessKey:           raw.APIAccessKey,
		TargetCompany:          raw.TargetCompany,
		MaxSignals:             raw.MaxSignals,
		MinConfidence:          raw.MinConfidence,
		DaysLookback:           raw.DaysLookback,
		FuzzyDedupThreshold:    raw.FuzzyDedupThreshold,
		ConflictGroupThreshold: raw.ConflictGroupThreshold,
		UserAgent:              raw.UserAgent,
		Timezone:               raw.Timezone,
		Debug:                  raw.Debug,
		Version:                GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
