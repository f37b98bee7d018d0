package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	config "github.com/creatorlink/socialsync/configs"
	"github.com/creatorlink/socialsync/internal/transfer"
)

const instagramGraphURL = "https://graph.facebook.com/v18.0"

// Instagram long-lived tokens default to 60 days when the refresh response
// omits expires_in.
const instagramDefaultExpiry = 5184000

type instagramClient struct {
	cfg          config.Config
	accessToken  string
	refreshToken string
	baseURL      string
	httpClient   *http.Client
}

func newInstagramClient(cfg config.Config, accessToken, refreshToken string) *instagramClient {
	return &instagramClient{
		cfg:          cfg,
		accessToken:  accessToken,
		refreshToken: refreshToken,
		baseURL:      instagramGraphURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

type instagramProfile struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	Name              string `json:"name"`
	ProfilePictureURL string `json:"profile_picture_url"`
	FollowersCount    int64  `json:"followers_count"`
	FollowsCount      int64  `json:"follows_count"`
	MediaCount        int64  `json:"media_count"`
}

func (c *instagramClient) getProfile(ctx context.Context) (*instagramProfile, error) {
	params := url.Values{}
	params.Set("fields", "id,username,name,profile_picture_url,followers_count,follows_count,media_count")
	params.Set("access_token", c.accessToken)

	var profile instagramProfile
	if err := c.getJSON(ctx, c.baseURL+"/me?"+params.Encode(), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *instagramClient) UserProfile(ctx context.Context) (*transfer.Profile, error) {
	profile, err := c.getProfile(ctx)
	if err != nil {
		return nil, err
	}

	return &transfer.Profile{
		PlatformUserID:    profile.ID,
		Username:          profile.Username,
		DisplayName:       profile.Name,
		ProfilePictureURL: profile.ProfilePictureURL,
		FollowerCount:     profile.FollowersCount,
		FollowingCount:    profile.FollowsCount,
		PostsCount:        profile.MediaCount,
	}, nil
}

func (c *instagramClient) FollowerCount(ctx context.Context) (int64, error) {
	profile, err := c.getProfile(ctx)
	if err != nil {
		return 0, err
	}
	return profile.FollowersCount, nil
}

// EngagementMetrics samples the 25 most recent media items and computes the
// engagement rate over that window.
func (c *instagramClient) EngagementMetrics(ctx context.Context) (*transfer.Metrics, error) {
	profile, err := c.getProfile(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("fields", "id,like_count,comments_count,timestamp")
	params.Set("limit", "25")
	params.Set("access_token", c.accessToken)

	var media struct {
		Data []struct {
			ID            string `json:"id"`
			LikeCount     int64  `json:"like_count"`
			CommentsCount int64  `json:"comments_count"`
		} `json:"data"`
	}
	mediaURL := fmt.Sprintf("%s/%s/media?%s", c.baseURL, profile.ID, params.Encode())
	if err := c.getJSON(ctx, mediaURL, &media); err != nil {
		return nil, err
	}

	var totalLikes, totalComments int64
	for _, post := range media.Data {
		totalLikes += post.LikeCount
		totalComments += post.CommentsCount
	}

	sampled := int64(len(media.Data))

	return &transfer.Metrics{
		FollowerCount:  profile.FollowersCount,
		FollowingCount: profile.FollowsCount,
		PostsCount:     profile.MediaCount,
		LikesCount:     totalLikes,
		CommentsCount:  totalComments,
		EngagementRate: engagementRate(totalLikes+totalComments, profile.FollowersCount, sampled),
	}, nil
}

// RefreshAccessToken exchanges the current long-lived token for a new one.
// Instagram has no separate refresh token; the access token itself is the
// refresh credential.
func (c *instagramClient) RefreshAccessToken(ctx context.Context) (*transfer.RefreshedToken, error) {
	if c.accessToken == "" {
		return nil, &APIError{Message: "no token available to refresh"}
	}

	params := url.Values{}
	params.Set("grant_type", "ig_refresh_token")
	params.Set("access_token", c.accessToken)

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/oauth/access_token?"+params.Encode(), &result); err != nil {
		return nil, err
	}

	if result.ExpiresIn == 0 {
		result.ExpiresIn = instagramDefaultExpiry
	}

	return &transfer.RefreshedToken{
		AccessToken: result.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(result.ExpiresIn) * time.Second),
	}, nil
}

func (c *instagramClient) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &APIError{Message: err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return &APIError{Message: fmt.Sprintf("instagram request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return classifyStatus(resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		slog.Info(err.Error())
		return &APIError{Message: fmt.Sprintf("failed to decode instagram response: %v", err)}
	}
	return nil
}
