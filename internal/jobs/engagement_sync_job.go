package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	config "github.com/crosspilot/crosspilot/configs"
	"github.com/crosspilot/crosspilot/internal/models"
	"github.com/crosspilot/crosspilot/internal/platform"
	"github.com/crosspilot/crosspilot/internal/repository"
	"github.com/crosspilot/crosspilot/pkg/utils"
)

// engagementWindow bounds how far back metrics are refreshed. Posts
// older than this have settled and rarely change.
const engagementWindow = 7 * 24 * time.Hour

// EngagementSyncJob pulls like/comment/share counts for recently
// published targets from each platform's metrics endpoint.
type EngagementSyncJob struct {
	cfg      config.Config
	registry *platform.Registry
	pp       repository.PostPlatformRepository
	sa       repository.SocialAccountRepository
}

func NewEngagementSyncJob(
	cfg config.Config,
	registry *platform.Registry,
	pp repository.PostPlatformRepository,
	sa repository.SocialAccountRepository) *EngagementSyncJob {
	return &EngagementSyncJob{
		cfg:      cfg,
		registry: registry,
		pp:       pp,
		sa:       sa,
	}
}

func (c *EngagementSyncJob) SyncEngagement() {
	ctx := context.Background()

	targets, err := c.pp.ListPublishedSince(ctx, time.Now().Add(-engagementWindow))
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, target := range targets {
		if target.PlatformPostID == "" {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(target *models.PostPlatform) {
			defer wg.Done()
			defer func() { <-semaphore }()

			c.syncTarget(ctx, target)
		}(target)
	}
	wg.Wait()
}

func (c *EngagementSyncJob) syncTarget(ctx context.Context, target *models.PostPlatform) {
	adapter, ok := c.registry.Resolve(target.Platform)
	if !ok {
		return
	}

	account, err := c.sa.GetByID(ctx, target.SocialAccountID)
	if err != nil || account == nil || !account.IsActive {
		return
	}

	accessToken, err := utils.Decrypt(account.AccessToken, []byte(c.cfg.SecretKey))
	if err != nil {
		slog.Info(err.Error())
		return
	}

	creds := platform.Credentials{
		AccessToken: accessToken,
		UserID:      account.PlatformUserID,
		Handle:      account.Username,
	}

	data, err := adapter.GetEngagement(ctx, creds, target.PlatformPostID)
	if err != nil {
		slog.Info("unable to fetch engagement", "platform", target.Platform, "post_id", target.PostID)
		return
	}

	if err := c.pp.UpdateEngagement(ctx, target.ID, data, time.Now()); err != nil {
		slog.Info(err.Error())
	}
}
