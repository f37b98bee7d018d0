package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/creatorlink/socialsync/internal/models"
	"github.com/creatorlink/socialsync/internal/transfer"
)

// ErrJobNotTransitionable is returned when a status update would violate
// the pending -> running -> terminal state machine, e.g. completing a job
// that already finished.
var ErrJobNotTransitionable = errors.New("sync job is not in a transitionable state")

type SyncJobRepository interface {
	Create(ctx context.Context, job *models.SyncJob) (int64, error)
	GetByJobID(ctx context.Context, jobID string) (*models.SyncJob, error)
	MarkStarted(ctx context.Context, jobID string) error
	MarkCompleted(ctx context.Context, jobID string, processed, successful, failed int, errorDetails map[string]string) error
	MarkFailed(ctx context.Context, jobID string, errorDetails map[string]string) error
	Statistics(ctx context.Context, since time.Time) (*transfer.SyncStatistics, error)
	DeleteTerminalOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	MarkStaleFailed(ctx context.Context, runningSince time.Time) (int64, error)
}

type syncJobRepository struct {
	db *sql.DB
}

func NewSyncJobRepository(db *sql.DB) SyncJobRepository {
	return &syncJobRepository{db: db}
}

func marshalErrorDetails(errorDetails map[string]string) ([]byte, error) {
	if errorDetails == nil {
		errorDetails = map[string]string{}
	}
	return json.Marshal(errorDetails)
}

func (r *syncJobRepository) Create(ctx context.Context, job *models.SyncJob) (int64, error) {
	query := `
		INSERT INTO sync_jobs(job_id, job_type, status, user_id, platform, account_id, error_details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	details, err := marshalErrorDetails(job.ErrorDetails)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	var id int64
	err = r.db.QueryRowContext(ctx, query,
		job.JobID,
		job.JobType,
		models.JobStatusPending,
		job.UserID,
		job.Platform,
		job.AccountID,
		details,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *syncJobRepository) GetByJobID(ctx context.Context, jobID string) (*models.SyncJob, error) {
	query := `
		SELECT id, job_id, job_type, status, user_id, platform, account_id,
			accounts_processed, accounts_successful, accounts_failed, error_details,
			created_at, started_at, completed_at
		FROM sync_jobs
		WHERE job_id = $1
	`
	row := r.db.QueryRowContext(ctx, query, jobID)

	var job models.SyncJob
	var details []byte
	err := row.Scan(&job.ID, &job.JobID, &job.JobType, &job.Status, &job.UserID, &job.Platform,
		&job.AccountID, &job.AccountsProcessed, &job.AccountsSuccessful, &job.AccountsFailed,
		&details, &job.CreatedAt, &job.StartedAt, &job.CompletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	if len(details) > 0 {
		if err := json.Unmarshal(details, &job.ErrorDetails); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
	}

	return &job, nil
}

// MarkStarted moves a pending job to running. Jobs in any other state are
// left untouched and ErrJobNotTransitionable is returned.
func (r *syncJobRepository) MarkStarted(ctx context.Context, jobID string) error {
	query := `
		UPDATE sync_jobs
		SET status = $2, started_at = CURRENT_TIMESTAMP
		WHERE job_id = $1 AND status = $3
	`
	result, err := r.db.ExecContext(ctx, query, jobID, models.JobStatusRunning, models.JobStatusPending)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected != 1 {
		return ErrJobNotTransitionable
	}
	return nil
}

// MarkCompleted finalizes a running job. Terminal rows are never mutated
// again; the WHERE clause enforces that.
func (r *syncJobRepository) MarkCompleted(ctx context.Context, jobID string, processed, successful, failed int, errorDetails map[string]string) error {
	details, err := marshalErrorDetails(errorDetails)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	query := `
		UPDATE sync_jobs
		SET
			status = $2,
			accounts_processed = $3,
			accounts_successful = $4,
			accounts_failed = $5,
			error_details = $6,
			completed_at = CURRENT_TIMESTAMP
		WHERE job_id = $1 AND status = $7
	`
	result, err := r.db.ExecContext(ctx, query, jobID, models.JobStatusCompleted,
		processed, successful, failed, details, models.JobStatusRunning)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected != 1 {
		return ErrJobNotTransitionable
	}
	return nil
}

func (r *syncJobRepository) MarkFailed(ctx context.Context, jobID string, errorDetails map[string]string) error {
	details, err := marshalErrorDetails(errorDetails)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	query := `
		UPDATE sync_jobs
		SET status = $2, error_details = $3, completed_at = CURRENT_TIMESTAMP
		WHERE job_id = $1 AND status IN ($4, $5)
	`
	result, err := r.db.ExecContext(ctx, query, jobID, models.JobStatusFailed, details,
		models.JobStatusPending, models.JobStatusRunning)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected != 1 {
		return ErrJobNotTransitionable
	}
	return nil
}

func (r *syncJobRepository) Statistics(ctx context.Context, since time.Time) (*transfer.SyncStatistics, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'failed'),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'running'),
			COALESCE(SUM(accounts_processed), 0),
			COALESCE(SUM(accounts_successful), 0),
			COALESCE(SUM(accounts_failed), 0)
		FROM sync_jobs
		WHERE created_at >= $1
	`

	var stats transfer.SyncStatistics
	err := r.db.QueryRowContext(ctx, query, since).Scan(
		&stats.TotalJobs,
		&stats.CompletedJobs,
		&stats.FailedJobs,
		&stats.PendingJobs,
		&stats.RunningJobs,
		&stats.TotalAccountsProcessed,
		&stats.TotalAccountsSuccessful,
		&stats.TotalAccountsFailed,
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &stats, nil
}

func (r *syncJobRepository) DeleteTerminalOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM sync_jobs
		WHERE created_at < $1 AND status IN ($2, $3, $4)
	`
	result, err := r.db.ExecContext(ctx, query, cutoff,
		models.JobStatusCompleted, models.JobStatusFailed, models.JobStatusCancelled)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return deleted, nil
}

// MarkStaleFailed fails jobs that have been running since before the given
// time. A crashed worker leaves its job stuck in running; this is the
// recovery path.
func (r *syncJobRepository) MarkStaleFailed(ctx context.Context, runningSince time.Time) (int64, error) {
	query := `
		UPDATE sync_jobs
		SET status = $2, error_details = $3, completed_at = CURRENT_TIMESTAMP
		WHERE status = $4 AND started_at < $1
	`
	details, err := marshalErrorDetails(map[string]string{"job": "marked failed after exceeding the stale running threshold"})
	if err != nil {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx, query, runningSince, models.JobStatusFailed, details, models.JobStatusRunning)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return affected, nil
}
