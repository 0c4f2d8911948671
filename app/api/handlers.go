package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/signal-comb/app/collectors"
	"github.com/lysyi3m/signal-comb/app/database"
	"github.com/lysyi3m/signal-comb/app/signal"
	"github.com/lysyi3m/signal-comb/app/tasks"
)

func NewHandler(configCache *collectors.ConfigCache, runRepo database.RunRepository,
	signalRepo database.SignalRepository, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		runRepo:     runRepo,
		signalRepo:  signalRepo,
		configCache: configCache,
		scheduler:   scheduler,
	}
}

// GetSignals serves the latest run's signal list in pipeline output order.
func (h *Handler) GetSignals(c *gin.Context) {
	run, err := h.runRepo.GetLatestRun()
	if err != nil {
		slog.Error("Database error", "operation", "get_latest_run", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No aggregation run recorded yet"})
		return
	}

	signals, err := h.signalRepo.GetSignals(run.ID)
	if err != nil {
		slog.Error("Database error", "operation", "get_signals", "run_id", run.ID, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":         run.ID,
		"target_company": run.TargetCompany,
		"generated_at":   run.GeneratedAt.Format(time.RFC3339),
		"signals":        signals,
	})
}

// GetSummary serves the latest run's counts without the signal bodies.
func (h *Handler) GetSummary(c *gin.Context) {
	run, err := h.runRepo.GetLatestRun()
	if err != nil {
		slog.Error("Database error", "operation", "get_latest_run", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No aggregation run recorded yet"})
		return
	}

	signals, err := h.signalRepo.GetSignals(run.ID)
	if err != nil {
		slog.Error("Database error", "operation", "get_signals", "run_id", run.ID, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":             run.ID,
		"target_company":     run.TargetCompany,
		"generated_at":       run.GeneratedAt.Format(time.RFC3339),
		"total_collected":    run.TotalCollected,
		"skipped":            run.Skipped,
		"duplicates_removed": run.DuplicatesRemoved,
		"summary":            signal.Summarize(signals),
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if runCount, err := h.runRepo.GetRunCount(); err == nil {
		health["runs"] = runCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

// TriggerAggregation queues an on-demand aggregation run.
func (h *Handler) TriggerAggregation(c *gin.Context) {
	if err := h.scheduler.EnqueueAggregation(); err != nil {
		slog.Error("Failed to enqueue aggregation", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "aggregation queued"})
}

func (h *Handler) GetRun(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid run id"})
		return
	}

	run, err := h.runRepo.GetRun(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_run", "run_id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	signals, err := h.signalRepo.GetSignals(run.ID)
	if err != nil {
		slog.Error("Database error", "operation", "get_signals", "run_id", run.ID, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":             run.ID,
		"target_company":     run.TargetCompany,
		"generated_at":       run.GeneratedAt.Format(time.RFC3339),
		"options":            json.RawMessage(run.Options),
		"total_collected":    run.TotalCollected,
		"skipped":            run.Skipped,
		"duplicates_removed": run.DuplicatesRemoved,
		"total_signals":      run.TotalSignals,
		"signals":            signals,
	})
}
