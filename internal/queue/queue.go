package queue

import (
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"
)

// Retry budgets per task type. Wide-scope batches get more headroom and a
// longer base delay than single-account tasks, so a flapping platform API
// does not hammer the queue.
const (
	maxRetrySyncAll      = 3
	maxRetrySyncUser     = 3
	maxRetrySyncPlatform = 3
	maxRetrySyncAccount  = 2
	maxRetryCleanup      = 1

	baseDelaySyncAll     = 300 * time.Second
	baseDelaySyncUser    = 60 * time.Second
	baseDelaySyncAccount = 30 * time.Second
)

func EnqueueSyncJob(asynqClient *asynq.Client, taskType string, payload SyncJobPayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(taskType, taskPayload)

	_, err = asynqClient.Enqueue(task, asynq.MaxRetry(maxRetryFor(taskType)))
	if err != nil {
		return err
	}

	log.Printf("Task enqueued: %s %+v", taskType, payload)
	return nil
}

func EnqueueCleanup(asynqClient *asynq.Client, payload CleanupPayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeCleanup, taskPayload)

	_, err = asynqClient.Enqueue(task, asynq.MaxRetry(maxRetryCleanup))
	if err != nil {
		return err
	}

	log.Printf("Task enqueued: %s %+v", TaskTypeCleanup, payload)
	return nil
}

func maxRetryFor(taskType string) int {
	switch taskType {
	case TaskTypeSyncUser:
		return maxRetrySyncUser
	case TaskTypeSyncPlatform:
		return maxRetrySyncPlatform
	case TaskTypeSyncAccount:
		return maxRetrySyncAccount
	case TaskTypeCleanup:
		return maxRetryCleanup
	default:
		return maxRetrySyncAll
	}
}

// RetryDelay doubles the per-type base delay on every attempt. Plug it into
// asynq.Config.RetryDelayFunc.
func RetryDelay(n int, _ error, task *asynq.Task) time.Duration {
	base := baseDelaySyncAll
	switch task.Type() {
	case TaskTypeSyncUser:
		base = baseDelaySyncUser
	case TaskTypeSyncAccount:
		base = baseDelaySyncAccount
	}
	return base * (1 << n)
}
