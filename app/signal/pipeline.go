package signal

import (
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// Pipeline runs the full aggregation sequence: normalize, deduplicate,
// resolve conflicts, filter by confidence and date, sort, cap, classify.
// The whole batch either completes deterministically or an invalid
// configuration is rejected at construction; there is no partial failure.
type Pipeline struct {
	opts       Options
	normalizer *Normalizer
	dedup      *Deduplicator
	resolver   *Resolver
	classifier *Classifier

	// now is swapped out in tests to pin the lookback cutoff.
	now func() time.Time
}

// Result is the pipeline output: the ordered classified signal list plus
// observable stage counts for diagnostics.
type Result struct {
	Signals           []Signal `json:"signals"`
	Summary           Summary  `json:"summary"`
	TotalCollected    int      `json:"total_collected"`
	Skipped           int      `json:"skipped"`
	DuplicatesRemoved int      `json:"duplicates_removed"`
}

func NewPipeline(trust *TrustTable, opts Options) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline options: %w", err)
	}
	return &Pipeline{
		opts:       opts,
		normalizer: NewNormalizer(trust),
		dedup:      NewDeduplicator(opts.FuzzyDedupThreshold),
		resolver:   NewResolver(opts.ConflictGroupThreshold),
		classifier: NewClassifier(),
		now:        time.Now,
	}, nil
}

// Normalizer exposes the pipeline's normalizer so callers can register
// additional collector adapters before running.
func (p *Pipeline) Normalizer() *Normalizer {
	return p.normalizer
}

// Options returns the validated options this pipeline runs with.
func (p *Pipeline) Options() Options {
	return p.opts
}

// Run aggregates a batch of raw records into the final classified signal
// list. Given the same input records it always produces identical output.
// Zero surviving signals is a valid, non-exceptional outcome.
func (p *Pipeline) Run(records []SourceRecord) *Result {
	started := time.Now()

	normalized, skipped := p.normalizer.Run(records)
	unique, removed := p.dedup.Run(normalized)
	resolved := p.resolver.Run(unique)
	filtered := p.filter(resolved)
	p.sortSignals(filtered)

	if p.opts.MaxSignals > 0 && len(filtered) > p.opts.MaxSignals {
		filtered = filtered[:p.opts.MaxSignals]
	}

	classified := p.classifyParallel(filtered)

	slog.Info("Aggregation complete",
		"collected", len(records),
		"skipped", skipped,
		"duplicates", removed,
		"events", len(resolved),
		"returned", len(classified),
		"duration", time.Since(started).Round(time.Millisecond))

	return &Result{
		Signals:           classified,
		Summary:           Summarize(classified),
		TotalCollected:    len(records),
		Skipped:           skipped,
		DuplicatesRemoved: removed,
	}
}

func (p *Pipeline) filter(signals []Signal) []Signal {
	minRank := p.opts.MinConfidence.Rank()

	var cutoff Date
	if p.opts.DaysLookback > 0 {
		cutoff = DateOf(p.now().AddDate(0, 0, -p.opts.DaysLookback))
	}

	out := make([]Signal, 0, len(signals))
	for _, sig := range signals {
		if sig.Confidence.Rank() < minRank {
			continue
		}
		if p.opts.DaysLookback > 0 {
			// Unknown dates are excluded under any finite lookback.
			if sig.Date.IsZero() || sig.Date.Before(cutoff) {
				continue
			}
		}
		out = append(out, sig)
	}
	return out
}

// sortSignals orders by confidence tier descending, then date descending
// (unknown dates last), then id so the output order is total and stable
// across runs.
func (p *Pipeline) sortSignals(signals []Signal) {
	sort.SliceStable(signals, func(i, j int) bool {
		a, b := signals[i], signals[j]
		if a.Confidence.Rank() != b.Confidence.Rank() {
			return a.Confidence.Rank() > b.Confidence.Rank()
		}
		if a.Date.Key() != b.Date.Key() {
			return a.Date.Key() > b.Date.Key()
		}
		return a.ID < b.ID
	})
}

// classifyParallel classifies signals concurrently. Classification is a
// pure per-signal transform, so indexed writes keep the output order
// canonical regardless of scheduling.
func (p *Pipeline) classifyParallel(signals []Signal) []Signal {
	out := make([]Signal, len(signals))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := range signals {
		g.Go(func() error {
			out[i] = p.classifier.Classify(signals[i])
			return nil
		})
	}
	g.Wait() // classifiers never return errors
	return out
}

// Summarize computes the summary object over a final signal list.
func Summarize(signals []Signal) Summary {
	summary := Summary{
		Total:        len(signals),
		ByType:       make(map[string]int),
		BySource:     make(map[string]int),
		ByConfidence: make(map[Confidence]int),
	}

	for _, sig := range signals {
		summary.ByType[sig.Type]++
		summary.BySource[sig.Source]++
		summary.ByConfidence[sig.Confidence]++

		if sig.Date.IsZero() {
			continue
		}
		if summary.EarliestDate.IsZero() || sig.Date.Before(summary.EarliestDate) {
			summary.EarliestDate = sig.Date
		}
		if summary.LatestDate.IsZero() || summary.LatestDate.Before(sig.Date) {
			summary.LatestDate = sig.Date
		}
	}

	return summary
}
