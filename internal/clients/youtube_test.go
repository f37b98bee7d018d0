package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	config "github.com/creatorlink/socialsync/configs"
)

func newTestYoutubeClient(serverURL string) *youtubeClient {
	c := newYoutubeClient(config.Config{}, "test-access-token", "")
	c.opts = []option.ClientOption{option.WithEndpoint(serverURL)}
	return c
}

const youtubeChannelBody = `{"items":[{
	"id":"UC123",
	"snippet":{"title":"Creator","customUrl":"@creator","thumbnails":{"default":{"url":"https://example.com/pic.jpg"}}},
	"statistics":{"subscriberCount":"10000","videoCount":"320","viewCount":"500000"}
}]}`

func TestYoutubeUserProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/channels", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("mine"))
		fmt.Fprint(w, youtubeChannelBody)
	}))
	defer server.Close()

	client := newTestYoutubeClient(server.URL)

	profile, err := client.UserProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "UC123", profile.PlatformUserID)
	assert.Equal(t, "@creator", profile.Username)
	assert.Equal(t, "Creator", profile.DisplayName)
	assert.Equal(t, int64(10000), profile.FollowerCount)
	assert.Equal(t, int64(320), profile.PostsCount)
	assert.Equal(t, "https://example.com/pic.jpg", profile.ProfilePictureURL)
}

func TestYoutubeEngagementMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/channels":
			fmt.Fprint(w, youtubeChannelBody)
		case "/search":
			assert.Equal(t, "10", r.URL.Query().Get("maxResults"))
			assert.Equal(t, "UC123", r.URL.Query().Get("channelId"))
			fmt.Fprint(w, `{"items":[
				{"id":{"videoId":"v1"}},
				{"id":{"videoId":"v2"}},
				{"id":{"videoId":"v3"}}
			]}`)
		case "/videos":
			assert.Equal(t, "v1,v2,v3", r.URL.Query().Get("id"))
			fmt.Fprint(w, `{"items":[
				{"statistics":{"likeCount":"500","commentCount":"50","viewCount":"4000"}},
				{"statistics":{"likeCount":"300","commentCount":"25","viewCount":"3000"}},
				{"statistics":{"likeCount":"100","commentCount":"25","viewCount":"1000"}}
			]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestYoutubeClient(server.URL)

	metrics, err := client.EngagementMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10000), metrics.FollowerCount)
	assert.Equal(t, int64(900), metrics.LikesCount)
	assert.Equal(t, int64(100), metrics.CommentsCount)
	assert.Equal(t, int64(8000), metrics.ViewsCount)
	// 1000 engagements over 10000 subscribers and 3 sampled videos
	assert.InDelta(t, 3.33, metrics.EngagementRate, 0.001)
}

func TestYoutubeEngagementMetricsNoVideos(t *testing.T) {
	var videoCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/channels":
			fmt.Fprint(w, youtubeChannelBody)
		case "/search":
			fmt.Fprint(w, `{"items":[]}`)
		case "/videos":
			videoCalls++
			fmt.Fprint(w, `{"items":[]}`)
		}
	}))
	defer server.Close()

	client := newTestYoutubeClient(server.URL)

	metrics, err := client.EngagementMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10000), metrics.FollowerCount)
	assert.Zero(t, metrics.EngagementRate)
	assert.Zero(t, videoCalls)
}

func TestYoutubeErrorClassification(t *testing.T) {
	tests := []struct {
		status int
		check  func(t *testing.T, err error)
	}{
		{http.StatusUnauthorized, func(t *testing.T, err error) {
			var unauthorized *UnauthorizedError
			assert.True(t, errors.As(err, &unauthorized))
		}},
		{http.StatusForbidden, func(t *testing.T, err error) {
			var forbidden *ForbiddenError
			assert.True(t, errors.As(err, &forbidden))
		}},
		{http.StatusTooManyRequests, func(t *testing.T, err error) {
			var rateLimited *RateLimitError
			assert.True(t, errors.As(err, &rateLimited))
		}},
		{http.StatusInternalServerError, func(t *testing.T, err error) {
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		}},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprintf(w, `{"error":{"code":%d,"message":"nope"}}`, tt.status)
			}))
			defer server.Close()

			client := newTestYoutubeClient(server.URL)

			_, err := client.UserProfile(context.Background())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestYoutubeRefreshAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "stored-refresh-token", r.Form.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"fresh-token","token_type":"Bearer","expires_in":3600}`)
	}))
	defer server.Close()

	cfg := config.Config{GoogleClientID: "client-id", GoogleClientSecret: "client-secret"}
	client := newYoutubeClient(cfg, "old-token", "stored-refresh-token")
	client.tokenEndpoint = oauth2.Endpoint{TokenURL: server.URL + "/token"}

	refreshed, err := client.RefreshAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", refreshed.AccessToken)
	// Google does not rotate refresh tokens; the stored one is carried over
	assert.Equal(t, "stored-refresh-token", refreshed.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), refreshed.ExpiresAt, 5*time.Second)
}

func TestYoutubeRefreshKeepsRotatedToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"fresh-token","token_type":"Bearer","expires_in":3600,"refresh_token":"rotated"}`)
	}))
	defer server.Close()

	cfg := config.Config{GoogleClientID: "client-id", GoogleClientSecret: "client-secret"}
	client := newYoutubeClient(cfg, "old-token", "stored-refresh-token")
	client.tokenEndpoint = oauth2.Endpoint{TokenURL: server.URL + "/token"}

	refreshed, err := client.RefreshAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rotated", refreshed.RefreshToken)
}

func TestYoutubeRefreshClassifiesOAuthErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	}))
	defer server.Close()

	cfg := config.Config{GoogleClientID: "client-id", GoogleClientSecret: "client-secret"}
	client := newYoutubeClient(cfg, "old-token", "stored-refresh-token")
	client.tokenEndpoint = oauth2.Endpoint{TokenURL: server.URL + "/token"}

	_, err := client.RefreshAccessToken(context.Background())
	var unauthorized *UnauthorizedError
	require.True(t, errors.As(err, &unauthorized))
}

func TestYoutubeRefreshWithoutToken(t *testing.T) {
	client := newYoutubeClient(config.Config{GoogleClientID: "id", GoogleClientSecret: "secret"}, "old-token", "")

	_, err := client.RefreshAccessToken(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
}

func TestYoutubeRefreshRequiresClientCredentials(t *testing.T) {
	client := newYoutubeClient(config.Config{}, "old-token", "stored-refresh-token")

	_, err := client.RefreshAccessToken(context.Background())
	var confErr *ConfigurationError
	require.True(t, errors.As(err, &confErr))
}
