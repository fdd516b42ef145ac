package tasks

// TaskSchedulerInterface defines the interface for background task
// scheduling. The scheduler owns a worker pool and a bounded queue;
// extraction work for saved articles is enqueued periodically and on demand.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
