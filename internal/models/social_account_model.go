package models

import (
	"database/sql"
	"fmt"
	"time"
)

type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformYoutube   Platform = "youtube"
	PlatformTiktok    Platform = "tiktok"
	PlatformTwitter   Platform = "twitter"
	PlatformFacebook  Platform = "facebook"
)

func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformInstagram, PlatformYoutube, PlatformTiktok, PlatformTwitter, PlatformFacebook:
		return Platform(s), nil
	}
	return "", fmt.Errorf("unknown platform: %q", s)
}

type AccountStatus string

const (
	AccountStatusActive  AccountStatus = "active"
	AccountStatusExpired AccountStatus = "expired"
	AccountStatusRevoked AccountStatus = "revoked"
	AccountStatusError   AccountStatus = "error"
)

// SocialAccount is one linked (user, platform) OAuth connection. Tokens are
// stored encrypted; only the vault ever sees plaintext.
type SocialAccount struct {
	ID                    int64         `db:"id" json:"id"`
	UserID                int64         `db:"user_id" json:"user_id"`
	Platform              Platform      `db:"platform" json:"platform"`
	PlatformUserID        string        `db:"platform_user_id" json:"platform_user_id"`
	Username              string        `db:"username" json:"username"`
	DisplayName           string        `db:"display_name" json:"display_name"`
	ProfilePictureURL     string        `db:"profile_picture_url" json:"profile_picture_url"`
	EncryptedAccessToken  string        `db:"encrypted_access_token" json:"-"`
	EncryptedRefreshToken string        `db:"encrypted_refresh_token" json:"-"`
	TokenExpiresAt        sql.NullTime  `db:"token_expires_at" json:"token_expires_at"`
	Status                AccountStatus `db:"status" json:"status"`
	SyncErrorCount        int           `db:"sync_error_count" json:"sync_error_count"`
	LastError             string        `db:"last_error" json:"last_error"`
	LastSync              sql.NullTime  `db:"last_sync" json:"last_sync"`
	ConnectedAt           time.Time     `db:"connected_at" json:"connected_at"`
	UpdatedAt             time.Time     `db:"updated_at" json:"updated_at"`
}

// IsTokenExpired reports whether the stored access token has passed its
// expiry. Accounts without an expiry never count as expired.
func (a *SocialAccount) IsTokenExpired() bool {
	if !a.TokenExpiresAt.Valid {
		return false
	}
	return !time.Now().Before(a.TokenExpiresAt.Time)
}
