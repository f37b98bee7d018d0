package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

// HandleSyncJobTask runs a pre-created sync job. Returning an error hands
// the task back to asynq for retry; the job row itself guards against
// double execution.
func (q *Queue) HandleSyncJobTask(ctx context.Context, task *asynq.Task) error {
	var payload SyncJobPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	job, err := q.ss.RunJob(ctx, payload.JobID)
	if err != nil {
		log.Printf("Error running sync job %s: %v", payload.JobID, err)
		return err
	}

	log.Printf("Sync job %s finished with status %s", job.JobID, job.Status)
	return nil
}

func (q *Queue) HandleCleanupTask(ctx context.Context, task *asynq.Task) error {
	var payload CleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	result, err := q.ss.CleanupOldData(ctx, payload.Days)
	if err != nil {
		log.Printf("Error cleaning up old sync data: %v", err)
		return err
	}

	log.Printf("Cleanup removed %d snapshots and %d jobs", result.DeletedSnapshots, result.DeletedSyncJobs)
	return nil
}
