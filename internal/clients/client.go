package clients

import (
	"context"
	"math"

	config "github.com/creatorlink/socialsync/configs"
	"github.com/creatorlink/socialsync/internal/models"
	"github.com/creatorlink/socialsync/internal/transfer"
)

// Client is the capability set every platform integration provides. All
// responses are normalized into the transfer shapes so the orchestrator
// never sees platform-specific payloads.
type Client interface {
	UserProfile(ctx context.Context) (*transfer.Profile, error)
	FollowerCount(ctx context.Context) (int64, error)
	EngagementMetrics(ctx context.Context) (*transfer.Metrics, error)
	RefreshAccessToken(ctx context.Context) (*transfer.RefreshedToken, error)
}

// Factory constructs a Client for a platform from already-decrypted tokens.
// The orchestrator takes one so tests can substitute scripted clients.
type Factory func(cfg config.Config, platform models.Platform, accessToken, refreshToken string) (Client, error)

// New returns the client for the given platform. The platform set is
// closed; unknown values fail with UnsupportedPlatformError.
func New(cfg config.Config, platform models.Platform, accessToken, refreshToken string) (Client, error) {
	switch platform {
	case models.PlatformInstagram:
		return newInstagramClient(cfg, accessToken, refreshToken), nil
	case models.PlatformYoutube:
		return newYoutubeClient(cfg, accessToken, refreshToken), nil
	default:
		return nil, &UnsupportedPlatformError{Platform: string(platform)}
	}
}

// engagementRate computes total engagement over followers times sampled
// content count, as a percentage rounded to two decimals. This is a sampled
// estimate over a bounded recent-content window, not a platform-reported
// figure. Returns 0 when either denominator term is 0.
func engagementRate(totalEngagement, followers, sampledCount int64) float64 {
	if followers <= 0 || sampledCount <= 0 {
		return 0
	}
	rate := float64(totalEngagement) / (float64(followers) * float64(sampledCount)) * 100
	return math.Round(rate*100) / 100
}
