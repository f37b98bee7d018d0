package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/creatorlink/socialsync/internal/models"
	"github.com/creatorlink/socialsync/internal/transfer"
)

type SocialAccountRepository interface {
	Create(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.SocialAccount, error)
	GetByPlatformUserID(ctx context.Context, platform models.Platform, platformUserID string) (*models.SocialAccount, error)
	ListActive(ctx context.Context) ([]*models.SocialAccount, error)
	ListActiveByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	ListActiveByPlatform(ctx context.Context, platform models.Platform) ([]*models.SocialAccount, error)
	ListExpiringTokens(ctx context.Context, before time.Time) ([]*models.SocialAccount, error)
	ListInfoByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	UpdateTokens(ctx context.Context, id int64, encAccessToken, encRefreshToken string, expiresAt time.Time) error
	UpdateUsername(ctx context.Context, id int64, username string) error
	RecordError(ctx context.Context, id int64, message string, status models.AccountStatus) error
	ResetErrors(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status models.AccountStatus, lastError string) error
	Remove(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context) (*transfer.AccountStatistics, error)
	CountByPlatform(ctx context.Context) (map[string]int64, error)
}

type socialAccountRepository struct {
	db *sql.DB
}

func NewSocialAccountRepository(db *sql.DB) SocialAccountRepository {
	return &socialAccountRepository{db: db}
}

const socialAccountColumns = `id, user_id, platform, platform_user_id, username, display_name,
	profile_picture_url, encrypted_access_token, encrypted_refresh_token, token_expires_at,
	status, sync_error_count, last_error, last_sync, connected_at, updated_at`

func scanSocialAccount(row interface{ Scan(...interface{}) error }) (*models.SocialAccount, error) {
	var sa models.SocialAccount
	err := row.Scan(&sa.ID, &sa.UserID, &sa.Platform, &sa.PlatformUserID, &sa.Username,
		&sa.DisplayName, &sa.ProfilePictureURL, &sa.EncryptedAccessToken, &sa.EncryptedRefreshToken,
		&sa.TokenExpiresAt, &sa.Status, &sa.SyncErrorCount, &sa.LastError, &sa.LastSync,
		&sa.ConnectedAt, &sa.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sa, nil
}

func (r *socialAccountRepository) Create(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error) {
	var insertQuery = `
		INSERT INTO social_accounts(
			user_id,
			platform,
			platform_user_id,
			username,
			display_name,
			profile_picture_url,
			encrypted_access_token,
			encrypted_refresh_token,
			token_expires_at,
			status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	args := []interface{}{
		sa.UserID,
		sa.Platform,
		sa.PlatformUserID,
		sa.Username,
		sa.DisplayName,
		sa.ProfilePictureURL,
		sa.EncryptedAccessToken,
		sa.EncryptedRefreshToken,
		sa.TokenExpiresAt,
		models.AccountStatusActive,
	}

	var err error
	var id int64
	if tx != nil {
		err = tx.QueryRowContext(ctx, insertQuery, args...).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, insertQuery, args...).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *socialAccountRepository) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE id = $1`
	sa, err := scanSocialAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return sa, nil
}

func (r *socialAccountRepository) GetByPlatformUserID(ctx context.Context, platform models.Platform, platformUserID string) (*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE platform = $1 AND platform_user_id = $2`
	sa, err := scanSocialAccount(r.db.QueryRowContext(ctx, query, platform, platformUserID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return sa, nil
}

func (r *socialAccountRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.SocialAccount, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.SocialAccount
	for rows.Next() {
		sa, err := scanSocialAccount(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, sa)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return accounts, nil
}

func (r *socialAccountRepository) ListActive(ctx context.Context) ([]*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE status = $1 ORDER BY id`
	return r.list(ctx, query, models.AccountStatusActive)
}

func (r *socialAccountRepository) ListActiveByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE user_id = $1 AND status = $2 ORDER BY id`
	return r.list(ctx, query, userID, models.AccountStatusActive)
}

func (r *socialAccountRepository) ListActiveByPlatform(ctx context.Context, platform models.Platform) ([]*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE platform = $1 AND status = $2 ORDER BY id`
	return r.list(ctx, query, platform, models.AccountStatusActive)
}

func (r *socialAccountRepository) ListExpiringTokens(ctx context.Context, before time.Time) ([]*models.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + `
		FROM social_accounts
		WHERE status = $1
		AND token_expires_at IS NOT NULL
		AND token_expires_at <= $2
		ORDER BY token_expires_at`
	return r.list(ctx, query, models.AccountStatusActive, before)
}

func (r *socialAccountRepository) ListInfoByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	query := `SELECT id, platform, username, display_name, profile_picture_url, status, last_sync
		FROM social_accounts WHERE user_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.SocialAccount
	for rows.Next() {
		var sa models.SocialAccount
		err := rows.Scan(&sa.ID, &sa.Platform, &sa.Username, &sa.DisplayName, &sa.ProfilePictureURL, &sa.Status, &sa.LastSync)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &sa)
	}
	return accounts, nil
}

func (r *socialAccountRepository) UpdateTokens(ctx context.Context, id int64, encAccessToken, encRefreshToken string, expiresAt time.Time) error {
	query := `
		UPDATE social_accounts
		SET
			encrypted_access_token = $2,
			encrypted_refresh_token = COALESCE(NULLIF($3, ''), encrypted_refresh_token),
			token_expires_at = $4,
			status = $5,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, encAccessToken, encRefreshToken, expiresAt, models.AccountStatusActive)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialAccountRepository) UpdateUsername(ctx context.Context, id int64, username string) error {
	query := `UPDATE social_accounts SET username = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, username)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// RecordError increments the consecutive error counter and applies the
// status decided by the caller. Last-write-wins is acceptable here; status
// fields are idempotent and mutation frequency is low.
func (r *socialAccountRepository) RecordError(ctx context.Context, id int64, message string, status models.AccountStatus) error {
	query := `
		UPDATE social_accounts
		SET
			sync_error_count = sync_error_count + 1,
			last_error = $2,
			status = $3,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, message, status)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// ResetErrors clears the error counter after a successful sync and restores
// accounts that had tripped into the error status back to active.
func (r *socialAccountRepository) ResetErrors(ctx context.Context, id int64) error {
	query := `
		UPDATE social_accounts
		SET
			sync_error_count = 0,
			last_error = '',
			status = CASE WHEN status = 'error' THEN 'active' ELSE status END,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialAccountRepository) SetStatus(ctx context.Context, id int64, status models.AccountStatus, lastError string) error {
	query := `
		UPDATE social_accounts
		SET status = $2, last_error = COALESCE(NULLIF($3, ''), last_error), updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, status, lastError)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialAccountRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM social_accounts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialAccountRepository) CountByStatus(ctx context.Context) (*transfer.AccountStatistics, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE status = 'expired'),
			COUNT(*) FILTER (WHERE status = 'revoked'),
			COUNT(*) FILTER (WHERE status = 'error')
		FROM social_accounts
	`

	var stats transfer.AccountStatistics
	err := r.db.QueryRowContext(ctx, query).Scan(&stats.TotalAccounts, &stats.ActiveAccounts,
		&stats.ExpiredAccounts, &stats.RevokedAccounts, &stats.ErrorAccounts)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &stats, nil
}

func (r *socialAccountRepository) CountByPlatform(ctx context.Context) (map[string]int64, error) {
	query := `SELECT platform, COUNT(*) FROM social_accounts GROUP BY platform`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var platform string
		var count int64
		if err := rows.Scan(&platform, &count); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		counts[platform] = count
	}
	return counts, nil
}
