package job

import (
	"context"
	"log/slog"
	"time"

	config "github.com/creatorlink/socialsync/configs"
	"github.com/creatorlink/socialsync/internal/service"
)

type CleanupJob struct {
	cfg config.Config
	ss  service.SyncService
}

func NewCleanupJob(cfg config.Config, ss service.SyncService) *CleanupJob {
	return &CleanupJob{
		cfg: cfg,
		ss:  ss,
	}
}

func (c *CleanupJob) CleanupOldData() {
	ctx := context.Background()

	result, err := c.ss.CleanupOldData(ctx, c.cfg.RetentionDays)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	slog.Info("retention cleanup finished", "deleted_snapshots", result.DeletedSnapshots, "deleted_jobs", result.DeletedSyncJobs)
}

// FailStaleJobs reaps jobs stuck in running after a worker crash so they
// stop polluting the statistics.
func (c *CleanupJob) FailStaleJobs() {
	ctx := context.Background()

	count, err := c.ss.FailStaleJobs(ctx, time.Duration(c.cfg.StaleJobHours)*time.Hour)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	if count > 0 {
		slog.Warn("failed stale sync jobs", "count", count)
	}
}
