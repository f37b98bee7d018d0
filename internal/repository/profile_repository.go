package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/creatorlink/socialsync/internal/models"
)

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.InfluencerProfile, error)
	UpdateAggregates(ctx context.Context, userID int64, totalFollowers int64, engagementRate float64) error
}

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID int64) (*models.InfluencerProfile, error) {
	query := `SELECT id, user_id, followers_count, engagement_rate, updated_at
		FROM influencer_profiles WHERE user_id = $1`
	row := r.db.QueryRowContext(ctx, query, userID)

	var p models.InfluencerProfile
	err := row.Scan(&p.ID, &p.UserID, &p.FollowersCount, &p.EngagementRate, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &p, nil
}

// UpdateAggregates replaces the summary fields wholesale. The aggregator
// always recomputes from scratch, so an upsert is correct here.
func (r *profileRepository) UpdateAggregates(ctx context.Context, userID int64, totalFollowers int64, engagementRate float64) error {
	query := `
		INSERT INTO influencer_profiles(user_id, followers_count, engagement_rate)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET
			followers_count = EXCLUDED.followers_count,
			engagement_rate = EXCLUDED.engagement_rate,
			updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.ExecContext(ctx, query, userID, totalFollowers, engagementRate)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
