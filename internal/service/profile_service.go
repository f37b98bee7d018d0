package service

import (
	"context"
	"log/slog"

	"github.com/creatorlink/socialsync/internal/models"
	"github.com/creatorlink/socialsync/internal/repository"
)

// ProfileService recomputes the user-facing summary fields from the latest
// snapshot of each active account.
type ProfileService interface {
	Get(ctx context.Context, userID int64) (*models.InfluencerProfile, error)
	UpdateForUser(ctx context.Context, userID int64) error
}

type profileService struct {
	accounts  repository.SocialAccountRepository
	snapshots repository.FollowerSnapshotRepository
	profiles  repository.ProfileRepository
}

func NewProfileService(
	accounts repository.SocialAccountRepository,
	snapshots repository.FollowerSnapshotRepository,
	profiles repository.ProfileRepository) ProfileService {
	return &profileService{
		accounts:  accounts,
		snapshots: snapshots,
		profiles:  profiles,
	}
}

func (s *profileService) Get(ctx context.Context, userID int64) (*models.InfluencerProfile, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

// UpdateForUser is a full recomputation, not an incremental update, so it
// is idempotent and safe to invoke repeatedly. Accounts with no snapshot
// history contribute 0 followers and are excluded from the blended mean.
func (s *profileService) UpdateForUser(ctx context.Context, userID int64) error {
	accounts, err := s.accounts.ListActiveByUserID(ctx, userID)
	if err != nil {
		return err
	}

	var totalFollowers int64
	var totalEngagement float64
	var accountsWithHistory int

	for _, account := range accounts {
		latest, err := s.snapshots.Latest(ctx, account.ID)
		if err != nil {
			return err
		}
		if latest == nil {
			continue
		}
		totalFollowers += latest.FollowerCount
		totalEngagement += latest.EngagementRate
		accountsWithHistory++
	}

	var blendedRate float64
	if accountsWithHistory > 0 {
		blendedRate = totalEngagement / float64(accountsWithHistory)
	}

	if err := s.profiles.UpdateAggregates(ctx, userID, totalFollowers, blendedRate); err != nil {
		return err
	}

	slog.Info("updated influencer profile", "user_id", userID, "total_followers", totalFollowers, "blended_engagement_rate", blendedRate)
	return nil
}
