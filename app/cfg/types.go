package cfg

import "github.com/lysyi3m/signal-comb/app/signal"

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	SourcesDir        string
	OutputDir         string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Pipeline configuration
	TargetCompany          string
	MaxSignals             int
	MinConfidence          string
	DaysLookback           int
	FuzzyDedupThreshold    float64
	ConflictGroupThreshold float64

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

// PipelineOptions maps the pipeline-related settings onto the aggregation
// pipeline's option struct. Validation happens at pipeline construction.
func (c *Cfg) PipelineOptions() signal.Options {
	return signal.Options{
		MaxSignals:             c.MaxSignals,
		MinConfidence:          signal.Confidence(c.MinConfidence),
		DaysLookback:           c.DaysLookback,
		FuzzyDedupThreshold:    c.FuzzyDedupThreshold,
		ConflictGroupThreshold: c.ConflictGroupThreshold,
	}
}
