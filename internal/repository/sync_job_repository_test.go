package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatorlink/socialsync/internal/models"
)

func newJobRepo(t *testing.T) (SyncJobRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSyncJobRepository(db), mock
}

func TestSyncJobCreate(t *testing.T) {
	repo, mock := newJobRepo(t)

	mock.ExpectQuery("INSERT INTO sync_jobs").
		WithArgs("abc123", models.JobTypeFullSync, models.JobStatusPending,
			sqlmock.AnyArg(), "", sqlmock.AnyArg(), []byte("{}")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	id, err := repo.Create(context.Background(), &models.SyncJob{
		JobID:   "abc123",
		JobType: models.JobTypeFullSync,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByJobIDNoRows(t *testing.T) {
	repo, mock := newJobRepo(t)

	mock.ExpectQuery("(?s)SELECT .+ FROM sync_jobs").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	job, err := repo.GetByJobID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestMarkStartedTransitionsPendingJob(t *testing.T) {
	repo, mock := newJobRepo(t)

	mock.ExpectExec("UPDATE sync_jobs").
		WithArgs("abc123", models.JobStatusRunning, models.JobStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkStarted(context.Background(), "abc123"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkStartedRejectsNonPendingJob(t *testing.T) {
	repo, mock := newJobRepo(t)

	mock.ExpectExec("UPDATE sync_jobs").
		WithArgs("abc123", models.JobStatusRunning, models.JobStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkStarted(context.Background(), "abc123")
	assert.ErrorIs(t, err, ErrJobNotTransitionable)
}

func TestMarkCompletedRequiresRunningJob(t *testing.T) {
	repo, mock := newJobRepo(t)

	mock.ExpectExec("UPDATE sync_jobs").
		WithArgs("abc123", models.JobStatusCompleted, 5, 4, 1, sqlmock.AnyArg(), models.JobStatusRunning).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkCompleted(context.Background(), "abc123", 5, 4, 1, nil)
	assert.ErrorIs(t, err, ErrJobNotTransitionable)
}

func TestMarkFailedFromPendingOrRunning(t *testing.T) {
	repo, mock := newJobRepo(t)

	mock.ExpectExec("UPDATE sync_jobs").
		WithArgs("abc123", models.JobStatusFailed, sqlmock.AnyArg(),
			models.JobStatusPending, models.JobStatusRunning).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkFailed(context.Background(), "abc123", map[string]string{"job": "boom"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatistics(t *testing.T) {
	repo, mock := newJobRepo(t)
	since := time.Now().AddDate(0, 0, -30)

	rows := sqlmock.NewRows([]string{
		"count", "completed", "failed", "pending", "running", "processed", "successful", "failed_accounts",
	}).AddRow(12, 9, 1, 1, 1, 340, 320, 20)

	mock.ExpectQuery("(?s)SELECT .+ FROM sync_jobs").
		WithArgs(since).
		WillReturnRows(rows)

	stats, err := repo.Statistics(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.TotalJobs)
	assert.Equal(t, int64(9), stats.CompletedJobs)
	assert.Equal(t, int64(340), stats.TotalAccountsProcessed)
	assert.Equal(t, int64(320), stats.TotalAccountsSuccessful)
}

func TestDeleteTerminalOlderThan(t *testing.T) {
	repo, mock := newJobRepo(t)
	cutoff := time.Now().AddDate(0, 0, -90)

	mock.ExpectExec("DELETE FROM sync_jobs").
		WithArgs(cutoff, models.JobStatusCompleted, models.JobStatusFailed, models.JobStatusCancelled).
		WillReturnResult(sqlmock.NewResult(0, 4))

	deleted, err := repo.DeleteTerminalOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
}

func TestMarkStaleFailed(t *testing.T) {
	repo, mock := newJobRepo(t)
	runningSince := time.Now().Add(-6 * time.Hour)

	mock.ExpectExec("UPDATE sync_jobs").
		WithArgs(runningSince, models.JobStatusFailed, sqlmock.AnyArg(), models.JobStatusRunning).
		WillReturnResult(sqlmock.NewResult(0, 2))

	affected, err := repo.MarkStaleFailed(context.Background(), runningSince)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
}
