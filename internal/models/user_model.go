package models

import "time"

type User struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// InfluencerProfile is the user-facing summary the aggregator recomputes
// after a user-scoped sync.
type InfluencerProfile struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	FollowersCount int64     `db:"followers_count" json:"followers_count"`
	EngagementRate float64   `db:"engagement_rate" json:"engagement_rate"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
