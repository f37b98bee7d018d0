package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/creatorlink/socialsync/internal/models"
)

type FollowerSnapshotRepository interface {
	Create(ctx context.Context, tx *sql.Tx, fs *models.FollowerSnapshot) (int64, error)
	RecordSnapshot(ctx context.Context, fs *models.FollowerSnapshot) error
	Latest(ctx context.Context, accountID int64) (*models.FollowerSnapshot, error)
	ListByAccount(ctx context.Context, accountID int64, limit int) ([]*models.FollowerSnapshot, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type followerSnapshotRepository struct {
	db *sql.DB
}

func NewFollowerSnapshotRepository(db *sql.DB) FollowerSnapshotRepository {
	return &followerSnapshotRepository{db: db}
}

const followerSnapshotColumns = `id, account_id, follower_count, following_count, posts_count,
	engagement_rate, likes_count, comments_count, shares_count, views_count, recorded_at, sync_source`

const insertSnapshotQuery = `
	INSERT INTO follower_snapshots(
		account_id,
		follower_count,
		following_count,
		posts_count,
		engagement_rate,
		likes_count,
		comments_count,
		shares_count,
		views_count,
		sync_source
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id
`

func (r *followerSnapshotRepository) Create(ctx context.Context, tx *sql.Tx, fs *models.FollowerSnapshot) (int64, error) {
	args := []interface{}{
		fs.AccountID,
		fs.FollowerCount,
		fs.FollowingCount,
		fs.PostsCount,
		fs.EngagementRate,
		fs.LikesCount,
		fs.CommentsCount,
		fs.SharesCount,
		fs.ViewsCount,
		fs.SyncSource,
	}

	var err error
	var id int64
	if tx != nil {
		err = tx.QueryRowContext(ctx, insertSnapshotQuery, args...).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, insertSnapshotQuery, args...).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

// RecordSnapshot inserts a snapshot and advances the account's last_sync
// marker in one transaction, so a snapshot never exists without the account
// reflecting it.
func (r *followerSnapshotRepository) RecordSnapshot(ctx context.Context, fs *models.FollowerSnapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer tx.Rollback()

	if _, err := r.Create(ctx, tx, fs); err != nil {
		return err
	}

	updateQuery := `UPDATE social_accounts SET last_sync = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updateQuery, fs.AccountID); err != nil {
		slog.Info(err.Error())
		return err
	}

	if err := tx.Commit(); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *followerSnapshotRepository) Latest(ctx context.Context, accountID int64) (*models.FollowerSnapshot, error) {
	query := `SELECT ` + followerSnapshotColumns + `
		FROM follower_snapshots
		WHERE account_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, accountID)

	var fs models.FollowerSnapshot
	err := row.Scan(&fs.ID, &fs.AccountID, &fs.FollowerCount, &fs.FollowingCount, &fs.PostsCount,
		&fs.EngagementRate, &fs.LikesCount, &fs.CommentsCount, &fs.SharesCount, &fs.ViewsCount,
		&fs.RecordedAt, &fs.SyncSource)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &fs, nil
}

func (r *followerSnapshotRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]*models.FollowerSnapshot, error) {
	query := `SELECT ` + followerSnapshotColumns + `
		FROM follower_snapshots
		WHERE account_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var snapshots []*models.FollowerSnapshot
	for rows.Next() {
		var fs models.FollowerSnapshot
		err := rows.Scan(&fs.ID, &fs.AccountID, &fs.FollowerCount, &fs.FollowingCount, &fs.PostsCount,
			&fs.EngagementRate, &fs.LikesCount, &fs.CommentsCount, &fs.SharesCount, &fs.ViewsCount,
			&fs.RecordedAt, &fs.SyncSource)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		snapshots = append(snapshots, &fs)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return snapshots, nil
}

func (r *followerSnapshotRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM follower_snapshots WHERE recorded_at < $1`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return deleted, nil
}
