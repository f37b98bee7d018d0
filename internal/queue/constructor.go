package queue

import (
	"github.com/creatorlink/socialsync/internal/models"
	"github.com/creatorlink/socialsync/internal/service"
)

type Queue struct {
	ss service.SyncService
}

func NewQueue(ss service.SyncService) *Queue {
	return &Queue{ss: ss}
}

const (
	TaskTypeSyncAll      = "sync:all"
	TaskTypeSyncUser     = "sync:user"
	TaskTypeSyncPlatform = "sync:platform"
	TaskTypeSyncAccount  = "sync:account"
	TaskTypeCleanup      = "sync:cleanup"
)

// SyncJobPayload carries the pre-created job id. The job row already exists
// as pending when the task is enqueued, so status lookups work immediately
// and redelivery of the same task stays idempotent.
type SyncJobPayload struct {
	JobID string `json:"job_id"`
}

type CleanupPayload struct {
	Days int `json:"days"`
}

func TaskTypeFor(jobType models.JobType) string {
	switch jobType {
	case models.JobTypeUserSync:
		return TaskTypeSyncUser
	case models.JobTypePlatformSync:
		return TaskTypeSyncPlatform
	case models.JobTypeSingleAccount:
		return TaskTypeSyncAccount
	default:
		return TaskTypeSyncAll
	}
}
