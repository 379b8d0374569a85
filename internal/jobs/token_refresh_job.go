package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/crosspilot/crosspilot/internal/models"
	"github.com/crosspilot/crosspilot/internal/repository"
	"github.com/crosspilot/crosspilot/internal/service"
)

// TokenRefreshJob proactively refreshes credentials that expire soon,
// so scheduled publishes are unlikely to hit an expired token at all.
type TokenRefreshJob struct {
	sr repository.SocialAccountRepository
	tm service.TokenManager
}

func NewTokenRefreshJob(sr repository.SocialAccountRepository, tm service.TokenManager) *TokenRefreshJob {
	return &TokenRefreshJob{
		sr: sr,
		tm: tm,
	}
}

func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	currentTime := time.Now()
	timeIn30Minutes := currentTime.Add(30 * time.Minute)

	accounts, err := c.sr.ListExpiring(ctx, currentTime, timeIn30Minutes)
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

			if _, err := c.tm.Refresh(ctx, acc); err != nil {
				slog.Info("unable to refresh tokens", "platform", acc.Platform, "account_id", acc.ID)
			}
		}(acc)
	}
	wg.Wait()
}
