package models

import (
	"database/sql"
	"time"
)

type JobType string

const (
	JobTypeFullSync      JobType = "full_sync"
	JobTypeUserSync      JobType = "user_sync"
	JobTypePlatformSync  JobType = "platform_sync"
	JobTypeSingleAccount JobType = "single_account"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// IsTerminal reports whether the job can never change status again.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// SyncJob is one orchestrated batch-sync execution and its outcome summary.
// ErrorDetails maps account ids to error message strings.
type SyncJob struct {
	ID                 int64             `db:"id" json:"-"`
	JobID              string            `db:"job_id" json:"job_id"`
	JobType            JobType           `db:"job_type" json:"job_type"`
	Status             JobStatus         `db:"status" json:"status"`
	UserID             sql.NullInt64     `db:"user_id" json:"user_id,omitempty"`
	Platform           string            `db:"platform" json:"platform,omitempty"`
	AccountID          sql.NullInt64     `db:"account_id" json:"account_id,omitempty"`
	AccountsProcessed  int               `db:"accounts_processed" json:"accounts_processed"`
	AccountsSuccessful int               `db:"accounts_successful" json:"accounts_successful"`
	AccountsFailed     int               `db:"accounts_failed" json:"accounts_failed"`
	ErrorDetails       map[string]string `db:"error_details" json:"error_details"`
	CreatedAt          time.Time         `db:"created_at" json:"created_at"`
	StartedAt          sql.NullTime      `db:"started_at" json:"started_at"`
	CompletedAt        sql.NullTime      `db:"completed_at" json:"completed_at"`
}

// Duration returns how long the job ran, or nil when the job has not both
// started and finished.
func (j *SyncJob) Duration() *time.Duration {
	if !j.StartedAt.Valid || !j.CompletedAt.Valid {
		return nil
	}
	d := j.CompletedAt.Time.Sub(j.StartedAt.Time)
	return &d
}
