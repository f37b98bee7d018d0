package transfer

import (
	"time"

	"github.com/creatorlink/socialsync/internal/models"
)

// SyncRequest describes the scope of a sync job to create. Exactly one of
// the scope fields is consulted, depending on JobType.
type SyncRequest struct {
	JobType   models.JobType  `json:"job_type"`
	UserID    int64           `json:"user_id,omitempty"`
	Platform  models.Platform `json:"platform,omitempty"`
	AccountID int64           `json:"account_id,omitempty"`
}

type SyncStatistics struct {
	TotalJobs                int64   `json:"total_jobs"`
	CompletedJobs            int64   `json:"completed_jobs"`
	FailedJobs               int64   `json:"failed_jobs"`
	PendingJobs              int64   `json:"pending_jobs"`
	RunningJobs              int64   `json:"running_jobs"`
	TotalAccountsProcessed   int64   `json:"total_accounts_processed"`
	TotalAccountsSuccessful  int64   `json:"total_accounts_successful"`
	TotalAccountsFailed      int64   `json:"total_accounts_failed"`
	SuccessRate              float64 `json:"success_rate"`
	RateLimitSkipsByPlatform map[string]int64 `json:"rate_limit_skips_by_platform,omitempty"`
}

type CleanupResult struct {
	DeletedSnapshots int64 `json:"deleted_snapshots"`
	DeletedSyncJobs  int64 `json:"deleted_sync_jobs"`
}

type AccountStatistics struct {
	TotalAccounts   int64 `json:"total_accounts"`
	ActiveAccounts  int64 `json:"active_accounts"`
	ExpiredAccounts int64 `json:"expired_accounts"`
	RevokedAccounts int64 `json:"revoked_accounts"`
	ErrorAccounts   int64 `json:"error_accounts"`
}

type SyncReport struct {
	GeneratedAt        time.Time        `json:"generated_at"`
	SyncStatistics     *SyncStatistics  `json:"sync_statistics"`
	AccountStatistics  *AccountStatistics `json:"account_statistics"`
	PlatformStatistics map[string]int64 `json:"platform_statistics"`
}
