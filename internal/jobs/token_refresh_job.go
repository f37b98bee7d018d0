package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	config "github.com/creatorlink/socialsync/configs"
	"github.com/creatorlink/socialsync/internal/models"
	"github.com/creatorlink/socialsync/internal/repository"
	"github.com/creatorlink/socialsync/internal/service"
)

type TokenRefreshJob struct {
	cfg config.Config
	sr  repository.SocialAccountRepository
	ss  service.SyncService
}

func NewTokenRefreshJob(cfg config.Config, sr repository.SocialAccountRepository, ss service.SyncService) *TokenRefreshJob {
	return &TokenRefreshJob{
		cfg: cfg,
		sr:  sr,
		ss:  ss,
	}
}

// RefreshTokens sweeps accounts whose tokens expire within the configured
// lookahead window and refreshes them proactively. Accounts without a
// stored refresh token cannot be refreshed and are marked expired so the
// user is prompted to reconnect.
func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	lookahead := time.Now().Add(time.Duration(c.cfg.TokenLookaheadHours) * time.Hour)

	accounts, err := c.sr.ListExpiringTokens(ctx, lookahead)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {

		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if acc.EncryptedRefreshToken == "" {
				if err := c.sr.SetStatus(ctx, acc.ID, models.AccountStatusExpired, "no refresh token stored"); err != nil {
					slog.Info(err.Error())
				}
				return
			}

			if err := c.ss.RefreshAccountToken(ctx, acc); err != nil {
				slog.Info("Unable to refresh token", "account_id", acc.ID, "platform", acc.Platform)
			}
		}(acc)
	}

	wg.Wait()
}
