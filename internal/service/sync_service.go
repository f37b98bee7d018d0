package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	config "github.com/creatorlink/socialsync/configs"
	"github.com/creatorlink/socialsync/internal/clients"
	"github.com/creatorlink/socialsync/internal/models"
	"github.com/creatorlink/socialsync/internal/ratelimit"
	"github.com/creatorlink/socialsync/internal/repository"
	"github.com/creatorlink/socialsync/internal/transfer"
	"github.com/creatorlink/socialsync/internal/vault"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrAccountNotFound = errors.New("social account not found")
	ErrJobNotFound     = errors.New("sync job not found")
)

// SyncService is the orchestrator. Batch methods are designed to run as one
// queued unit of work; accounts inside a batch are processed sequentially,
// since external rate limits dominate throughput anyway.
type SyncService interface {
	CreateJob(ctx context.Context, req transfer.SyncRequest) (*models.SyncJob, error)
	RunJob(ctx context.Context, jobID string) (*models.SyncJob, error)
	JobStatus(ctx context.Context, jobID string) (*models.SyncJob, error)
	RefreshAccountToken(ctx context.Context, account *models.SocialAccount) error
	Statistics(ctx context.Context, days int) (*transfer.SyncStatistics, error)
	AccountHistory(ctx context.Context, accountID int64, limit int) ([]*models.FollowerSnapshot, error)
	CleanupOldData(ctx context.Context, days int) (*transfer.CleanupResult, error)
	FailStaleJobs(ctx context.Context, olderThan time.Duration) (int64, error)
}

type syncService struct {
	cfg       config.Config
	users     repository.UserRepository
	accounts  repository.SocialAccountRepository
	snapshots repository.FollowerSnapshotRepository
	jobs      repository.SyncJobRepository
	profiles  ProfileService
	limiter   ratelimit.Limiter
	vault     *vault.Vault
	newClient clients.Factory
}

func NewSyncService(
	cfg config.Config,
	users repository.UserRepository,
	accounts repository.SocialAccountRepository,
	snapshots repository.FollowerSnapshotRepository,
	jobs repository.SyncJobRepository,
	profiles ProfileService,
	limiter ratelimit.Limiter,
	v *vault.Vault,
	newClient clients.Factory) SyncService {
	if newClient == nil {
		newClient = clients.New
	}
	return &syncService{
		cfg:       cfg,
		users:     users,
		accounts:  accounts,
		snapshots: snapshots,
		jobs:      jobs,
		profiles:  profiles,
		limiter:   limiter,
		vault:     v,
		newClient: newClient,
	}
}

// CreateJob validates the requested scope and inserts a pending job row.
// Scope validation happens here, before the row exists, so a bad request
// never produces a job that reaches running.
func (s *syncService) CreateJob(ctx context.Context, req transfer.SyncRequest) (*models.SyncJob, error) {
	job := &models.SyncJob{
		JobType: req.JobType,
		Status:  models.JobStatusPending,
	}

	switch req.JobType {
	case models.JobTypeFullSync:
	case models.JobTypeUserSync:
		user, err := s.users.GetByID(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, fmt.Errorf("%w: %d", ErrUserNotFound, req.UserID)
		}
		job.UserID.Int64 = user.ID
		job.UserID.Valid = true
	case models.JobTypePlatformSync:
		platform, err := models.ParsePlatform(string(req.Platform))
		if err != nil {
			return nil, err
		}
		job.Platform = string(platform)
	case models.JobTypeSingleAccount:
		account, err := s.accounts.GetByID(ctx, req.AccountID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, fmt.Errorf("%w: %d", ErrAccountNotFound, req.AccountID)
		}
		job.AccountID.Int64 = account.ID
		job.AccountID.Valid = true
	default:
		return nil, fmt.Errorf("unknown job type: %q", req.JobType)
	}

	jobID, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	job.JobID = jobID

	if _, err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	return job, nil
}

// RunJob executes a pending job to completion over its selected account
// set. Jobs already terminal are returned as-is, which makes requeued
// deliveries of the same job id harmless.
func (s *syncService) RunJob(ctx context.Context, jobID string) (*models.SyncJob, error) {
	job, err := s.jobs.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if job.Status != models.JobStatusPending {
		return job, nil
	}

	if err := s.jobs.MarkStarted(ctx, jobID); err != nil {
		if errors.Is(err, repository.ErrJobNotTransitionable) {
			return s.jobs.GetByJobID(ctx, jobID)
		}
		return nil, err
	}

	accounts, err := s.selectAccounts(ctx, job)
	if err != nil {
		if ferr := s.jobs.MarkFailed(ctx, jobID, map[string]string{"job": err.Error()}); ferr != nil {
			slog.Info(ferr.Error())
		}
		return nil, err
	}

	var successful, failed int
	errorDetails := map[string]string{}

	for _, account := range accounts {
		skipped, err := s.syncAccount(ctx, account)
		if skipped {
			slog.Warn("platform rate limited, deferring account", "platform", account.Platform, "account_id", account.ID)
			continue
		}
		if err != nil {
			slog.Error("failed to sync account", "account_id", account.ID, "error", err.Error())
			failed++
			errorDetails[fmt.Sprintf("%d", account.ID)] = err.Error()
			continue
		}
		successful++
	}

	processed := successful + failed
	if err := s.jobs.MarkCompleted(ctx, jobID, processed, successful, failed, errorDetails); err != nil {
		if ferr := s.jobs.MarkFailed(ctx, jobID, map[string]string{"job": err.Error()}); ferr != nil {
			slog.Info(ferr.Error())
		}
		return nil, err
	}

	slog.Info("sync job completed", "job_id", jobID, "successful", successful, "failed", failed)

	if job.JobType == models.JobTypeUserSync && job.UserID.Valid {
		if err := s.profiles.UpdateForUser(ctx, job.UserID.Int64); err != nil {
			slog.Error("failed to update influencer profile", "user_id", job.UserID.Int64, "error", err.Error())
		}
	}

	return s.jobs.GetByJobID(ctx, jobID)
}

func (s *syncService) selectAccounts(ctx context.Context, job *models.SyncJob) ([]*models.SocialAccount, error) {
	switch job.JobType {
	case models.JobTypeFullSync:
		return s.accounts.ListActive(ctx)
	case models.JobTypeUserSync:
		return s.accounts.ListActiveByUserID(ctx, job.UserID.Int64)
	case models.JobTypePlatformSync:
		return s.accounts.ListActiveByPlatform(ctx, models.Platform(job.Platform))
	case models.JobTypeSingleAccount:
		// single-account jobs bypass the status filter
		account, err := s.accounts.GetByID(ctx, job.AccountID.Int64)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, fmt.Errorf("%w: %d", ErrAccountNotFound, job.AccountID.Int64)
		}
		return []*models.SocialAccount{account}, nil
	default:
		return nil, fmt.Errorf("unknown job type: %q", job.JobType)
	}
}

// syncAccount processes one account: refresh an expired token, fetch
// engagement metrics, append a snapshot. The returned skipped flag marks
// accounts deferred by an active platform cooldown; those count as neither
// successful nor failed.
func (s *syncService) syncAccount(ctx context.Context, account *models.SocialAccount) (skipped bool, err error) {
	if s.limiter.IsLimited(ctx, account.Platform) {
		s.limiter.RecordSkip(ctx, account.Platform)
		return true, nil
	}

	if account.IsTokenExpired() {
		if account.EncryptedRefreshToken == "" {
			msg := "token expired and no refresh token is stored"
			if serr := s.accounts.SetStatus(ctx, account.ID, models.AccountStatusExpired, msg); serr != nil {
				slog.Info(serr.Error())
			}
			return false, errors.New(msg)
		}
		if err := s.RefreshAccountToken(ctx, account); err != nil {
			return false, fmt.Errorf("token refresh failed: %w", err)
		}
	}

	accessToken, err := s.vault.Decrypt(account.EncryptedAccessToken)
	if err != nil {
		s.recordSyncError(ctx, account, err)
		return false, err
	}
	refreshToken, err := s.vault.Decrypt(account.EncryptedRefreshToken)
	if err != nil {
		s.recordSyncError(ctx, account, err)
		return false, err
	}

	client, err := s.newClient(s.cfg, account.Platform, accessToken, refreshToken)
	if err != nil {
		s.recordSyncError(ctx, account, err)
		return false, err
	}

	metrics, err := client.EngagementMetrics(ctx)
	if err != nil {
		s.recordSyncError(ctx, account, err)
		return false, err
	}

	snapshot := &models.FollowerSnapshot{
		AccountID:      account.ID,
		FollowerCount:  metrics.FollowerCount,
		FollowingCount: metrics.FollowingCount,
		PostsCount:     metrics.PostsCount,
		EngagementRate: metrics.EngagementRate,
		LikesCount:     metrics.LikesCount,
		CommentsCount:  metrics.CommentsCount,
		SharesCount:    metrics.SharesCount,
		ViewsCount:     metrics.ViewsCount,
		SyncSource:     models.SyncSourceAPI,
	}
	if err := s.snapshots.RecordSnapshot(ctx, snapshot); err != nil {
		s.recordSyncError(ctx, account, err)
		return false, err
	}

	if err := s.accounts.ResetErrors(ctx, account.ID); err != nil {
		slog.Info(err.Error())
	}

	slog.Info("account synced", "account_id", account.ID, "platform", account.Platform, "followers", metrics.FollowerCount)
	return false, nil
}

// recordSyncError applies the account-status consequences of a failed sync.
// A 401 is unambiguous and flips the account to expired immediately; a 403
// means revoked permissions; a 429 cools the whole platform down without
// penalizing the account; anything else counts toward the consecutive
// error threshold.
func (s *syncService) recordSyncError(ctx context.Context, account *models.SocialAccount, err error) {
	var unauthorized *clients.UnauthorizedError
	var forbidden *clients.ForbiddenError
	var rateLimited *clients.RateLimitError

	switch {
	case errors.As(err, &unauthorized):
		if rerr := s.accounts.RecordError(ctx, account.ID, err.Error(), models.AccountStatusExpired); rerr != nil {
			slog.Info(rerr.Error())
		}
	case errors.As(err, &forbidden):
		if rerr := s.accounts.RecordError(ctx, account.ID, err.Error(), models.AccountStatusRevoked); rerr != nil {
			slog.Info(rerr.Error())
		}
	case errors.As(err, &rateLimited):
		s.limiter.SetCooldown(ctx, account.Platform)
	default:
		status := account.Status
		if account.SyncErrorCount+1 >= s.cfg.ErrorThreshold {
			status = models.AccountStatusError
		}
		if rerr := s.accounts.RecordError(ctx, account.ID, err.Error(), status); rerr != nil {
			slog.Info(rerr.Error())
		}
	}
}

// RefreshAccountToken exchanges the stored refresh token for a fresh access
// token and persists the re-encrypted result. Failure marks the account
// expired; it stays out of sync batches until reconnected or refreshed.
func (s *syncService) RefreshAccountToken(ctx context.Context, account *models.SocialAccount) error {
	accessToken, err := s.vault.Decrypt(account.EncryptedAccessToken)
	if err != nil {
		return err
	}
	refreshToken, err := s.vault.Decrypt(account.EncryptedRefreshToken)
	if err != nil {
		return err
	}

	client, err := s.newClient(s.cfg, account.Platform, accessToken, refreshToken)
	if err != nil {
		return err
	}

	refreshed, err := client.RefreshAccessToken(ctx)
	if err != nil {
		if serr := s.accounts.SetStatus(ctx, account.ID, models.AccountStatusExpired, err.Error()); serr != nil {
			slog.Info(serr.Error())
		}
		return err
	}

	encAccess, err := s.vault.Encrypt(refreshed.AccessToken)
	if err != nil {
		return err
	}
	encRefresh, err := s.vault.Encrypt(refreshed.RefreshToken)
	if err != nil {
		return err
	}

	if err := s.accounts.UpdateTokens(ctx, account.ID, encAccess, encRefresh, refreshed.ExpiresAt); err != nil {
		return err
	}

	account.EncryptedAccessToken = encAccess
	if encRefresh != "" {
		account.EncryptedRefreshToken = encRefresh
	}
	account.TokenExpiresAt.Time = refreshed.ExpiresAt
	account.TokenExpiresAt.Valid = true
	account.Status = models.AccountStatusActive

	slog.Info("token refreshed", "account_id", account.ID, "platform", account.Platform)
	return nil
}

func (s *syncService) JobStatus(ctx context.Context, jobID string) (*models.SyncJob, error) {
	job, err := s.jobs.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return job, nil
}

func (s *syncService) Statistics(ctx context.Context, days int) (*transfer.SyncStatistics, error) {
	since := time.Now().AddDate(0, 0, -days)

	stats, err := s.jobs.Statistics(ctx, since)
	if err != nil {
		return nil, err
	}

	if stats.TotalAccountsProcessed > 0 {
		stats.SuccessRate = float64(stats.TotalAccountsSuccessful) / float64(stats.TotalAccountsProcessed) * 100
	}

	skips := make(map[string]int64)
	for _, platform := range []models.Platform{models.PlatformInstagram, models.PlatformYoutube, models.PlatformTiktok, models.PlatformTwitter, models.PlatformFacebook} {
		if count := s.limiter.Skips(ctx, platform); count > 0 {
			skips[string(platform)] = count
		}
	}
	if len(skips) > 0 {
		stats.RateLimitSkipsByPlatform = skips
	}

	return stats, nil
}

func (s *syncService) AccountHistory(ctx context.Context, accountID int64, limit int) ([]*models.FollowerSnapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.snapshots.ListByAccount(ctx, accountID, limit)
}

// CleanupOldData removes snapshots and terminal jobs older than the given
// horizon. Running it twice in a row deletes nothing the second time.
func (s *syncService) CleanupOldData(ctx context.Context, days int) (*transfer.CleanupResult, error) {
	cutoff := time.Now().AddDate(0, 0, -days)

	deletedSnapshots, err := s.snapshots.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	deletedJobs, err := s.jobs.DeleteTerminalOlderThan(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	slog.Info("cleaned up old sync data", "deleted_snapshots", deletedSnapshots, "deleted_jobs", deletedJobs)

	return &transfer.CleanupResult{
		DeletedSnapshots: deletedSnapshots,
		DeletedSyncJobs:  deletedJobs,
	}, nil
}

// FailStaleJobs fails jobs stuck in running longer than olderThan, which
// happens when a worker dies mid-batch.
func (s *syncService) FailStaleJobs(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.jobs.MarkStaleFailed(ctx, time.Now().Add(-olderThan))
}
