package job

import (
	"context"
	"log/slog"

	"github.com/creatorlink/socialsync/internal/service"
)

const webhookSweepBatchSize = 100

type WebhookSweepJob struct {
	ws service.WebhookService
}

func NewWebhookSweepJob(ws service.WebhookService) *WebhookSweepJob {
	return &WebhookSweepJob{ws: ws}
}

// ProcessPending retries webhook events left in pending after a crash
// between ingestion and settlement.
func (j *WebhookSweepJob) ProcessPending() {
	ctx := context.Background()

	count, err := j.ws.ProcessPending(ctx, webhookSweepBatchSize)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	if count > 0 {
		slog.Info("settled pending webhook events", "count", count)
	}
}
