package api

import (
	"github.com/lysyi3m/signal-comb/app/collectors"
	"github.com/lysyi3m/signal-comb/app/database"
	"github.com/lysyi3m/signal-comb/app/tasks"
)

type Handler struct {
	runRepo     database.RunRepository
	signalRepo  database.SignalRepository
	configCache *collectors.ConfigCache
	scheduler   tasks.TaskSchedulerInterface
}
