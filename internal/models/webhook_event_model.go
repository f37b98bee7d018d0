package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

const (
	WebhookEventFollowerUpdate      = "follower_update"
	WebhookEventProfileUpdate       = "profile_update"
	WebhookEventPostUpdate          = "post_update"
	WebhookEventAccountDeauthorized = "account_deauthorized"
)

type WebhookStatus string

const (
	WebhookStatusPending   WebhookStatus = "pending"
	WebhookStatusProcessed WebhookStatus = "processed"
	WebhookStatusFailed    WebhookStatus = "failed"
	WebhookStatusIgnored   WebhookStatus = "ignored"
)

// WebhookEvent stores a raw push notification from a platform. The polling
// path does not depend on these; they are an ingestion extension point.
type WebhookEvent struct {
	ID             int64           `db:"id" json:"id"`
	Platform       Platform        `db:"platform" json:"platform"`
	EventType      string          `db:"event_type" json:"event_type"`
	PlatformUserID string          `db:"platform_user_id" json:"platform_user_id"`
	RawData        json.RawMessage `db:"raw_data" json:"raw_data"`
	Status         WebhookStatus   `db:"status" json:"status"`
	ErrorMessage   string          `db:"error_message" json:"error_message"`
	ProcessedAt    sql.NullTime    `db:"processed_at" json:"processed_at"`
	ReceivedAt     time.Time       `db:"received_at" json:"received_at"`
}
