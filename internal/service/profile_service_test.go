package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatorlink/socialsync/internal/models"
)

type fakeProfileRepo struct {
	profiles map[int64]*models.InfluencerProfile
	updates  int
}

func (r *fakeProfileRepo) GetByUserID(_ context.Context, userID int64) (*models.InfluencerProfile, error) {
	return r.profiles[userID], nil
}

func (r *fakeProfileRepo) UpdateAggregates(_ context.Context, userID int64, totalFollowers int64, engagementRate float64) error {
	r.profiles[userID] = &models.InfluencerProfile{
		UserID:         userID,
		FollowersCount: totalFollowers,
		EngagementRate: engagementRate,
	}
	r.updates++
	return nil
}

func newProfileHarness() (*fakeAccountRepo, *fakeSnapshotRepo, *fakeProfileRepo, ProfileService) {
	accounts := &fakeAccountRepo{accounts: make(map[int64]*models.SocialAccount)}
	snapshots := &fakeSnapshotRepo{}
	profiles := &fakeProfileRepo{profiles: make(map[int64]*models.InfluencerProfile)}
	return accounts, snapshots, profiles, NewProfileService(accounts, snapshots, profiles)
}

func activeAccount(id, userID int64, platform models.Platform) *models.SocialAccount {
	return &models.SocialAccount{
		ID:       id,
		UserID:   userID,
		Platform: platform,
		Status:   models.AccountStatusActive,
	}
}

func TestUpdateForUserSumsFollowersAndBlendsEngagement(t *testing.T) {
	accounts, snapshots, profiles, svc := newProfileHarness()
	accounts.accounts[1] = activeAccount(1, 10, models.PlatformInstagram)
	accounts.accounts[2] = activeAccount(2, 10, models.PlatformYoutube)
	accounts.accounts[3] = activeAccount(3, 10, models.PlatformTiktok)

	now := time.Now()
	snapshots.snapshots = []*models.FollowerSnapshot{
		{AccountID: 1, FollowerCount: 5000, EngagementRate: 2.0, RecordedAt: now},
		{AccountID: 2, FollowerCount: 7000, EngagementRate: 4.0, RecordedAt: now},
		{AccountID: 3, FollowerCount: 3000, EngagementRate: 3.0, RecordedAt: now},
	}

	require.NoError(t, svc.UpdateForUser(context.Background(), 10))

	profile := profiles.profiles[10]
	require.NotNil(t, profile)
	assert.Equal(t, int64(15000), profile.FollowersCount)
	assert.InDelta(t, 3.0, profile.EngagementRate, 0.001)
}

func TestUpdateForUserUsesLatestSnapshotOnly(t *testing.T) {
	accounts, snapshots, profiles, svc := newProfileHarness()
	accounts.accounts[1] = activeAccount(1, 10, models.PlatformInstagram)

	snapshots.snapshots = []*models.FollowerSnapshot{
		{AccountID: 1, FollowerCount: 900, EngagementRate: 1.0, RecordedAt: time.Now().Add(-time.Hour)},
		{AccountID: 1, FollowerCount: 1000, EngagementRate: 2.0, RecordedAt: time.Now()},
	}

	require.NoError(t, svc.UpdateForUser(context.Background(), 10))

	profile := profiles.profiles[10]
	require.NotNil(t, profile)
	assert.Equal(t, int64(1000), profile.FollowersCount)
	assert.InDelta(t, 2.0, profile.EngagementRate, 0.001)
}

func TestUpdateForUserExcludesAccountsWithoutHistoryFromMean(t *testing.T) {
	accounts, snapshots, profiles, svc := newProfileHarness()
	accounts.accounts[1] = activeAccount(1, 10, models.PlatformInstagram)
	accounts.accounts[2] = activeAccount(2, 10, models.PlatformYoutube)

	snapshots.snapshots = []*models.FollowerSnapshot{
		{AccountID: 1, FollowerCount: 1000, EngagementRate: 2.0, RecordedAt: time.Now()},
	}

	require.NoError(t, svc.UpdateForUser(context.Background(), 10))

	profile := profiles.profiles[10]
	require.NotNil(t, profile)
	assert.Equal(t, int64(1000), profile.FollowersCount)
	// never-synced accounts do not drag the mean toward zero
	assert.InDelta(t, 2.0, profile.EngagementRate, 0.001)
}

func TestUpdateForUserWithNoHistoryZeroesProfile(t *testing.T) {
	accounts, _, profiles, svc := newProfileHarness()
	accounts.accounts[1] = activeAccount(1, 10, models.PlatformInstagram)

	require.NoError(t, svc.UpdateForUser(context.Background(), 10))

	profile := profiles.profiles[10]
	require.NotNil(t, profile)
	assert.Zero(t, profile.FollowersCount)
	assert.Zero(t, profile.EngagementRate)
	assert.Equal(t, 1, profiles.updates)
}

func TestGetReturnsStoredProfile(t *testing.T) {
	_, _, profiles, svc := newProfileHarness()
	profiles.profiles[10] = &models.InfluencerProfile{
		UserID:         10,
		FollowersCount: 15000,
		EngagementRate: 3.0,
	}

	profile, err := svc.Get(context.Background(), 10)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, int64(15000), profile.FollowersCount)

	missing, err := svc.Get(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdateForUserIgnoresInactiveAccounts(t *testing.T) {
	accounts, snapshots, profiles, svc := newProfileHarness()
	accounts.accounts[1] = activeAccount(1, 10, models.PlatformInstagram)
	expired := activeAccount(2, 10, models.PlatformYoutube)
	expired.Status = models.AccountStatusExpired
	accounts.accounts[2] = expired

	now := time.Now()
	snapshots.snapshots = []*models.FollowerSnapshot{
		{AccountID: 1, FollowerCount: 1000, EngagementRate: 2.0, RecordedAt: now},
		{AccountID: 2, FollowerCount: 9000, EngagementRate: 9.0, RecordedAt: now},
	}

	require.NoError(t, svc.UpdateForUser(context.Background(), 10))

	profile := profiles.profiles[10]
	require.NotNil(t, profile)
	assert.Equal(t, int64(1000), profile.FollowersCount)
}
