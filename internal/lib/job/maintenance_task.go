package job

import (
	"time"

	"github.com/hibiken/asynq"
)

const TaskSessionCleanup = "auth:session_cleanup"

// SessionCleanupSchedule runs the expired session purge at minute 15 of
// every hour.
const SessionCleanupSchedule = "15 * * * *"

// NewSessionCleanupTask is enqueued by the scheduler. Unique keeps at most
// one pending purge even if several schedulers run.
func NewSessionCleanupTask() *asynq.Task {
	return asynq.NewTask(
		TaskSessionCleanup,
		nil,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(time.Minute),
		asynq.Unique(30*time.Minute),
	)
}
