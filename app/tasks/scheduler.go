package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/lysyi3m/signal-comb/app/cfg"
	"github.com/lysyi3m/signal-comb/app/collectors"
	"github.com/lysyi3m/signal-comb/app/database"
	"github.com/lysyi3m/signal-comb/app/report"
	"github.com/lysyi3m/signal-comb/app/signal"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	configCache   *collectors.ConfigCache
	runRepo       database.RunRepository
	signalRepo    database.SignalRepository
	httpClient    *http.Client
	pipeline      *signal.Pipeline
	generator     *report.Generator
	userAgent     string
	targetCompany string
	outputDir     string
	interval      time.Duration
	workerCount   int
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	taskQueue     chan TaskInterface
}

func NewScheduler(configCache *collectors.ConfigCache, runRepo database.RunRepository,
	signalRepo database.SignalRepository, httpClient *http.Client,
	pipeline *signal.Pipeline, generator *report.Generator) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		configCache:   configCache,
		runRepo:       runRepo,
		signalRepo:    signalRepo,
		httpClient:    httpClient,
		pipeline:      pipeline,
		generator:     generator,
		userAgent:     cfg.UserAgent,
		targetCompany: cfg.TargetCompany,
		outputDir:     cfg.OutputDir,
		interval:      time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount:   cfg.WorkerCount,
		ctx:           ctx,
		cancel:        cancel,
		taskQueue:     make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueAggregateTask()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueAggregateTask()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// EnqueueAggregation builds an aggregation task over the currently enabled
// sources and queues it. The API uses this for on-demand runs.
func (s *Scheduler) EnqueueAggregation() error {
	sources, err := s.buildCollectors()
	if err != nil {
		return err
	}
	return s.EnqueueTask(NewAggregateTask(sources, s.pipeline, s.runRepo, s.signalRepo,
		s.generator, s.targetCompany, s.outputDir))
}

func (s *Scheduler) enqueueAggregateTask() {
	if err := s.EnqueueAggregation(); err != nil {
		slog.Warn("Failed to enqueue AggregateTask", "error", err)
	}
}

func (s *Scheduler) buildCollectors() ([]collectors.Collector, error) {
	configs := s.configCache.GetEnabledConfigs()
	if len(configs) == 0 {
		return nil, fmt.Errorf("no enabled source configurations")
	}

	sources := make([]collectors.Collector, 0, len(configs))
	for _, sourceConfig := range configs {
		collector, err := collectors.New(sourceConfig, s.httpClient, s.userAgent)
		if err != nil {
			slog.Warn("Skipping source", "source", sourceConfig.Name, "error", err)
			continue
		}
		sources = append(sources, collector)
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no usable source configurations")
	}

	return sources, nil
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
