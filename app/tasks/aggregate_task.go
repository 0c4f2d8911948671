package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/signal-comb/app/collectors"
	"github.com/lysyi3m/signal-comb/app/database"
	"github.com/lysyi3m/signal-comb/app/report"
	"github.com/lysyi3m/signal-comb/app/signal"
)

// AggregateTask runs one full aggregation: collect from all sources in
// parallel, push the records through the pipeline, persist the run and write
// the artifacts. A failing source is logged and skipped; the task only fails
// when every source fails or persistence does.
type AggregateTask struct {
	Task
	collectors    []collectors.Collector
	pipeline      *signal.Pipeline
	runRepo       database.RunRepository
	signalRepo    database.SignalRepository
	generator     *report.Generator
	targetCompany string
	outputDir     string
}

var _ TaskInterface = (*AggregateTask)(nil)

func NewAggregateTask(sources []collectors.Collector, pipeline *signal.Pipeline,
	runRepo database.RunRepository, signalRepo database.SignalRepository,
	generator *report.Generator, targetCompany, outputDir string) *AggregateTask {
	return &AggregateTask{
		Task:          NewTask(TaskTypeAggregate),
		collectors:    sources,
		pipeline:      pipeline,
		runRepo:       runRepo,
		signalRepo:    signalRepo,
		generator:     generator,
		targetCompany: targetCompany,
		outputDir:     outputDir,
	}
}

func (t *AggregateTask) Execute(ctx context.Context) error {
	records, failed := t.collect(ctx)

	if len(t.collectors) > 0 && failed == len(t.collectors) {
		return fmt.Errorf("all %d sources failed", failed)
	}

	result := t.pipeline.Run(records)
	generatedAt := time.Now().UTC()

	options, err := json.Marshal(t.pipeline.Options())
	if err != nil {
		return fmt.Errorf("failed to encode options snapshot: %w", err)
	}

	runID, err := t.runRepo.CreateRun(database.Run{
		TargetCompany:     t.targetCompany,
		GeneratedAt:       generatedAt,
		Options:           string(options),
		TotalCollected:    result.TotalCollected,
		Skipped:           result.Skipped,
		DuplicatesRemoved: result.DuplicatesRemoved,
		TotalSignals:      len(result.Signals),
	})
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	if err := t.signalRepo.SaveSignals(runID, result.Signals); err != nil {
		return fmt.Errorf("failed to store signals: %w", err)
	}

	doc := t.generator.Build(t.targetCompany, generatedAt, result)
	artifactPath, err := t.generator.WriteJSON(t.outputDir, doc)
	if err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	reportPath, err := t.generator.WriteMarkdown(t.outputDir, doc)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	slog.Info("Task completed",
		"type", "Aggregate",
		"duration", t.GetDuration(),
		"run_id", runID,
		"sources", len(t.collectors),
		"sources_failed", failed,
		"collected", result.TotalCollected,
		"signals", len(result.Signals),
		"artifact", artifactPath,
		"report", reportPath)

	return nil
}

// collect fans out to all sources concurrently. Indexed writes keep the
// record batch in source order, so pipeline input order does not depend on
// scheduling.
func (t *AggregateTask) collect(ctx context.Context) ([]signal.SourceRecord, int) {
	batches := make([][]signal.RawRecord, len(t.collectors))
	var mu sync.Mutex
	failed := 0

	var g errgroup.Group
	for i, c := range t.collectors {
		g.Go(func() error {
			records, err := c.Collect(ctx)
			if err != nil {
				slog.Warn("Source collection failed", "source", c.Name(), "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			batches[i] = records
			return nil
		})
	}
	g.Wait() // collector errors are handled per source

	var records []signal.SourceRecord
	for i, batch := range batches {
		for _, rec := range batch {
			records = append(records, signal.SourceRecord{
				Collector: t.collectors[i].Name(),
				Record:    rec,
			})
		}
	}

	return records, failed
}
