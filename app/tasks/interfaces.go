package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API to manage background aggregation.
// Example usage:
//
//	scheduler := NewScheduler(configCache, runRepo, signalRepo, httpClient, pipeline, generator)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueAggregation()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueAggregation() error
}
