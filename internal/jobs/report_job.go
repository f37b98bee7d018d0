package job

import (
	"context"
	"log/slog"

	"github.com/creatorlink/socialsync/internal/service"
)

type ReportJob struct {
	rs service.ReportService
}

func NewReportJob(rs service.ReportService) *ReportJob {
	return &ReportJob{rs: rs}
}

func (c *ReportJob) GenerateDailyReport() {
	ctx := context.Background()

	report, err := c.rs.Generate(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	slog.Info("daily sync report generated",
		"total_jobs", report.SyncStatistics.TotalJobs,
		"success_rate", report.SyncStatistics.SuccessRate)
}
