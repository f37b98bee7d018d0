package clients

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	config "github.com/creatorlink/socialsync/configs"
	"github.com/creatorlink/socialsync/internal/transfer"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

type youtubeClient struct {
	cfg          config.Config
	accessToken  string
	refreshToken string
	// extra service options, used by tests to point at a fake endpoint
	opts []option.ClientOption
	// OAuth endpoint for token refresh, overridable the same way
	tokenEndpoint oauth2.Endpoint
}

func newYoutubeClient(cfg config.Config, accessToken, refreshToken string) *youtubeClient {
	return &youtubeClient{
		cfg:           cfg,
		accessToken:   accessToken,
		refreshToken:  refreshToken,
		tokenEndpoint: google.Endpoint,
	}
}

func (c *youtubeClient) service(ctx context.Context) (*youtube.Service, error) {
	token := &oauth2.Token{AccessToken: c.accessToken}
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	opts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, c.opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		slog.Info(err.Error())
		return nil, &APIError{Message: err.Error()}
	}
	return svc, nil
}

func (c *youtubeClient) channel(ctx context.Context) (*youtube.Channel, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Channels.List([]string{"snippet", "statistics"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return nil, classifyGoogleError(err)
	}
	if len(resp.Items) == 0 {
		return nil, &APIError{Message: "no YouTube channel found for this account"}
	}
	return resp.Items[0], nil
}

func (c *youtubeClient) UserProfile(ctx context.Context) (*transfer.Profile, error) {
	channel, err := c.channel(ctx)
	if err != nil {
		return nil, err
	}

	profile := &transfer.Profile{
		PlatformUserID: channel.Id,
		Username:       channel.Snippet.CustomUrl,
		DisplayName:    channel.Snippet.Title,
		FollowerCount:  int64(channel.Statistics.SubscriberCount),
		PostsCount:     int64(channel.Statistics.VideoCount),
		ViewsCount:     int64(channel.Statistics.ViewCount),
	}
	if channel.Snippet.Thumbnails != nil && channel.Snippet.Thumbnails.Default != nil {
		profile.ProfilePictureURL = channel.Snippet.Thumbnails.Default.Url
	}
	return profile, nil
}

func (c *youtubeClient) FollowerCount(ctx context.Context) (int64, error) {
	channel, err := c.channel(ctx)
	if err != nil {
		return 0, err
	}
	return int64(channel.Statistics.SubscriberCount), nil
}

// EngagementMetrics samples the 10 most recent videos and computes the
// engagement rate over that window.
func (c *youtubeClient) EngagementMetrics(ctx context.Context) (*transfer.Metrics, error) {
	channel, err := c.channel(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	search, err := svc.Search.List([]string{"id"}).
		ChannelId(channel.Id).
		Order("date").
		MaxResults(10).
		Type("video").
		Context(ctx).Do()
	if err != nil {
		return nil, classifyGoogleError(err)
	}

	var videoIDs []string
	for _, item := range search.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			videoIDs = append(videoIDs, item.Id.VideoId)
		}
	}

	subscribers := int64(channel.Statistics.SubscriberCount)
	metrics := &transfer.Metrics{
		FollowerCount: subscribers,
		PostsCount:    int64(channel.Statistics.VideoCount),
		ViewsCount:    int64(channel.Statistics.ViewCount),
	}

	if len(videoIDs) == 0 {
		return metrics, nil
	}

	stats, err := svc.Videos.List([]string{"statistics"}).
		Id(strings.Join(videoIDs, ",")).
		Context(ctx).Do()
	if err != nil {
		return nil, classifyGoogleError(err)
	}

	var totalLikes, totalComments, totalViews int64
	for _, video := range stats.Items {
		if video.Statistics == nil {
			continue
		}
		totalLikes += int64(video.Statistics.LikeCount)
		totalComments += int64(video.Statistics.CommentCount)
		totalViews += int64(video.Statistics.ViewCount)
	}

	metrics.LikesCount = totalLikes
	metrics.CommentsCount = totalComments
	metrics.ViewsCount = totalViews
	metrics.EngagementRate = engagementRate(totalLikes+totalComments, subscribers, int64(len(videoIDs)))

	return metrics, nil
}

// RefreshAccessToken exchanges the stored refresh token at the Google OAuth
// endpoint. Google keeps the refresh token stable across refreshes.
func (c *youtubeClient) RefreshAccessToken(ctx context.Context) (*transfer.RefreshedToken, error) {
	if c.refreshToken == "" {
		return nil, &APIError{Message: "no refresh token available"}
	}

	conf := &oauth2.Config{
		ClientID:     c.cfg.GoogleClientID,
		ClientSecret: c.cfg.GoogleClientSecret,
		Scopes:       []string{"https://www.googleapis.com/auth/youtube.readonly"},
		Endpoint:     c.tokenEndpoint,
	}
	if conf.ClientID == "" || conf.ClientSecret == "" {
		return nil, &ConfigurationError{Message: "google client credentials are not set"}
	}

	tokenSource := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: c.refreshToken})
	token, err := tokenSource.Token()
	if err != nil {
		slog.Info(err.Error())
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil {
			return nil, classifyStatus(rerr.Response.StatusCode, string(rerr.Body))
		}
		return nil, &APIError{Message: err.Error()}
	}

	refreshed := &transfer.RefreshedToken{
		AccessToken:  token.AccessToken,
		RefreshToken: c.refreshToken,
		ExpiresAt:    token.Expiry,
	}
	if token.RefreshToken != "" {
		refreshed.RefreshToken = token.RefreshToken
	}
	return refreshed, nil
}

func classifyGoogleError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return classifyStatus(gerr.Code, gerr.Message)
	}
	return &APIError{Message: err.Error()}
}
