package clients

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/creatorlink/socialsync/configs"
	"github.com/creatorlink/socialsync/internal/models"
)

func TestEngagementRate(t *testing.T) {
	tests := []struct {
		name            string
		totalEngagement int64
		followers       int64
		sampledCount    int64
		want            float64
	}{
		{"typical sample", 7500, 10000, 25, 3},
		{"rounded to two decimals", 1234, 5000, 10, 2.47},
		{"zero followers", 500, 0, 25, 0},
		{"zero sampled content", 500, 10000, 0, 0},
		{"zero engagement", 0, 10000, 25, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engagementRate(tt.totalEngagement, tt.followers, tt.sampledCount))
		})
	}
}

func TestNewUnsupportedPlatform(t *testing.T) {
	_, err := New(config.Config{}, models.PlatformTiktok, "access", "refresh")
	var unsupported *UnsupportedPlatformError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "tiktok", unsupported.Platform)

	_, err = New(config.Config{}, models.Platform("myspace"), "access", "refresh")
	require.True(t, errors.As(err, &unsupported))
}

func TestNewKnownPlatforms(t *testing.T) {
	client, err := New(config.Config{}, models.PlatformInstagram, "access", "")
	require.NoError(t, err)
	assert.NotNil(t, client)

	client, err = New(config.Config{}, models.PlatformYoutube, "access", "refresh")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestClassifyStatus(t *testing.T) {
	var unauthorized *UnauthorizedError
	assert.True(t, errors.As(classifyStatus(401, ""), &unauthorized))

	var forbidden *ForbiddenError
	assert.True(t, errors.As(classifyStatus(403, ""), &forbidden))

	var rateLimited *RateLimitError
	assert.True(t, errors.As(classifyStatus(429, ""), &rateLimited))

	var apiErr *APIError
	require.True(t, errors.As(classifyStatus(500, "server exploded"), &apiErr))
	assert.Equal(t, 500, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "server exploded")
}
