package models

import "time"

const (
	SyncSourceAPI     = "api"
	SyncSourceManual  = "manual"
	SyncSourceWebhook = "webhook"
)

// FollowerSnapshot is one point-in-time measurement of an account's
// follower and engagement metrics. Rows are append-only; they are never
// updated, only deleted by retention cleanup.
type FollowerSnapshot struct {
	ID             int64     `db:"id" json:"id"`
	AccountID      int64     `db:"account_id" json:"account_id"`
	FollowerCount  int64     `db:"follower_count" json:"follower_count"`
	FollowingCount int64     `db:"following_count" json:"following_count"`
	PostsCount     int64     `db:"posts_count" json:"posts_count"`
	EngagementRate float64   `db:"engagement_rate" json:"engagement_rate"`
	LikesCount     int64     `db:"likes_count" json:"likes_count"`
	CommentsCount  int64     `db:"comments_count" json:"comments_count"`
	SharesCount    int64     `db:"shares_count" json:"shares_count"`
	ViewsCount     int64     `db:"views_count" json:"views_count"`
	RecordedAt     time.Time `db:"recorded_at" json:"recorded_at"`
	SyncSource     string    `db:"sync_source" json:"sync_source"`
}
