package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/creatorlink/socialsync/internal/models"
)

type WebhookEventRepository interface {
	Create(ctx context.Context, we *models.WebhookEvent) (int64, error)
	ListPending(ctx context.Context, limit int) ([]*models.WebhookEvent, error)
	SetStatus(ctx context.Context, id int64, status models.WebhookStatus, errorMessage string) error
}

type webhookEventRepository struct {
	db *sql.DB
}

func NewWebhookEventRepository(db *sql.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

func (r *webhookEventRepository) Create(ctx context.Context, we *models.WebhookEvent) (int64, error) {
	query := `
		INSERT INTO webhook_events(platform, event_type, platform_user_id, raw_data, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, we.Platform, we.EventType, we.PlatformUserID,
		[]byte(we.RawData), models.WebhookStatusPending).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *webhookEventRepository) ListPending(ctx context.Context, limit int) ([]*models.WebhookEvent, error) {
	query := `
		SELECT id, platform, event_type, platform_user_id, raw_data, status, error_message, processed_at, received_at
		FROM webhook_events
		WHERE status = $1
		ORDER BY received_at
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, models.WebhookStatusPending, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var events []*models.WebhookEvent
	for rows.Next() {
		var we models.WebhookEvent
		var raw []byte
		err := rows.Scan(&we.ID, &we.Platform, &we.EventType, &we.PlatformUserID, &raw,
			&we.Status, &we.ErrorMessage, &we.ProcessedAt, &we.ReceivedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		we.RawData = raw
		events = append(events, &we)
	}
	return events, nil
}

func (r *webhookEventRepository) SetStatus(ctx context.Context, id int64, status models.WebhookStatus, errorMessage string) error {
	query := `
		UPDATE webhook_events
		SET status = $2, error_message = $3, processed_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, status, errorMessage)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
