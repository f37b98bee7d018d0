package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatorlink/socialsync/internal/models"
)

func newAccountRepo(t *testing.T) (SocialAccountRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSocialAccountRepository(db), mock
}

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "platform", "platform_user_id", "username", "display_name",
		"profile_picture_url", "encrypted_access_token", "encrypted_refresh_token", "token_expires_at",
		"status", "sync_error_count", "last_error", "last_sync", "connected_at", "updated_at",
	})
}

func TestGetByIDReturnsNilWhenMissing(t *testing.T) {
	repo, mock := newAccountRepo(t)

	mock.ExpectQuery("(?s)SELECT .+ FROM social_accounts").
		WithArgs(int64(99)).
		WillReturnRows(accountRows())

	account, err := repo.GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, account)
}

func TestGetByID(t *testing.T) {
	repo, mock := newAccountRepo(t)
	now := time.Now()

	rows := accountRows().AddRow(
		1, 10, "instagram", "17841401234567890", "creator", "Creator",
		"https://example.com/pic.jpg", "enc-access", "enc-refresh", now.Add(time.Hour),
		"active", 0, "", now, now, now,
	)
	mock.ExpectQuery("(?s)SELECT .+ FROM social_accounts").
		WithArgs(int64(1)).
		WillReturnRows(rows)

	account, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, models.PlatformInstagram, account.Platform)
	assert.Equal(t, "creator", account.Username)
	assert.True(t, account.TokenExpiresAt.Valid)
}

func TestRecordErrorIncrementsCounter(t *testing.T) {
	repo, mock := newAccountRepo(t)

	mock.ExpectExec("UPDATE social_accounts").
		WithArgs(int64(1), "server error", models.AccountStatusError).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RecordError(context.Background(), 1, "server error", models.AccountStatusError))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetErrors(t *testing.T) {
	repo, mock := newAccountRepo(t)

	mock.ExpectExec("UPDATE social_accounts").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ResetErrors(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListExpiringTokens(t *testing.T) {
	repo, mock := newAccountRepo(t)
	before := time.Now().Add(24 * time.Hour)
	now := time.Now()

	rows := accountRows().AddRow(
		1, 10, "youtube", "UC123", "creator", "Creator",
		"", "enc-access", "enc-refresh", now.Add(time.Hour),
		"active", 0, "", now, now, now,
	)
	mock.ExpectQuery("(?s)SELECT .+ FROM social_accounts").
		WithArgs(models.AccountStatusActive, before).
		WillReturnRows(rows)

	accounts, err := repo.ListExpiringTokens(context.Background(), before)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, models.PlatformYoutube, accounts[0].Platform)
}

func TestCountByStatus(t *testing.T) {
	repo, mock := newAccountRepo(t)

	rows := sqlmock.NewRows([]string{"total", "active", "expired", "revoked", "error"}).
		AddRow(20, 15, 3, 1, 1)
	mock.ExpectQuery("(?s)SELECT .+ FROM social_accounts").
		WillReturnRows(rows)

	stats, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(20), stats.TotalAccounts)
	assert.Equal(t, int64(15), stats.ActiveAccounts)
	assert.Equal(t, int64(1), stats.ErrorAccounts)
}
