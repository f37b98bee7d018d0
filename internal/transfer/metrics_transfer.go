package transfer

import "time"

// Profile is the normalized shape platform profile responses are mapped
// into, regardless of which API produced them.
type Profile struct {
	PlatformUserID    string `json:"platform_user_id"`
	Username          string `json:"username"`
	DisplayName       string `json:"display_name"`
	ProfilePictureURL string `json:"profile_picture_url"`
	FollowerCount     int64  `json:"follower_count"`
	FollowingCount    int64  `json:"following_count"`
	PostsCount        int64  `json:"posts_count"`
	ViewsCount        int64  `json:"views_count"`
}

// Metrics is the normalized engagement record written to the snapshot
// ledger. EngagementRate is a sampled estimate computed over a bounded
// recent-content window, not a platform-reported figure.
type Metrics struct {
	FollowerCount  int64   `json:"follower_count"`
	FollowingCount int64   `json:"following_count"`
	PostsCount     int64   `json:"posts_count"`
	LikesCount     int64   `json:"likes_count"`
	CommentsCount  int64   `json:"comments_count"`
	SharesCount    int64   `json:"shares_count"`
	ViewsCount     int64   `json:"views_count"`
	EngagementRate float64 `json:"engagement_rate"`
}

// RefreshedToken carries the result of a token refresh. RefreshToken may be
// empty when the platform keeps the old refresh token valid.
type RefreshedToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}
