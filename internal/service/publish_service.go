package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	config "github.com/crosspilot/crosspilot/configs"
	"github.com/crosspilot/crosspilot/internal/models"
	"github.com/crosspilot/crosspilot/internal/platform"
	"github.com/crosspilot/crosspilot/internal/repository"
	"github.com/crosspilot/crosspilot/pkg/utils"
)

type PublishService interface {
	Publish(ctx context.Context, postID string) (map[string]platform.PostResult, error)
	RetryFailed(ctx context.Context, userID int64, postID string) (map[string]platform.PostResult, error)
}

type publishService struct {
	cfg      config.Config
	registry *platform.Registry
	pr       repository.PostRepository
	pp       repository.PostPlatformRepository
	sa       repository.SocialAccountRepository
	tm       TokenManager
}

func NewPublishService(
	cfg config.Config,
	registry *platform.Registry,
	pr repository.PostRepository,
	pp repository.PostPlatformRepository,
	sa repository.SocialAccountRepository,
	tm TokenManager) PublishService {
	return &publishService{
		cfg:      cfg,
		registry: registry,
		pr:       pr,
		pp:       pp,
		sa:       sa,
		tm:       tm,
	}
}

// Publish moves a post through publishing and fans out to every
// pending target concurrently. The status transition is a compare and
// swap, so two workers racing on the same post (queue delivery plus a
// poller tick, say) leave exactly one of them doing the work.
func (s *publishService) Publish(ctx context.Context, postID string) (map[string]platform.PostResult, error) {
	claimed, err := s.pr.TransitionStatus(ctx, postID,
		[]string{models.PostStatusDraft, models.PostStatusScheduled, models.PostStatusFailed},
		models.PostStatusPublishing)
	if err != nil {
		return nil, err
	}
	if !claimed {
		post, err := s.pr.GetByID(ctx, postID)
		if err != nil {
			return nil, err
		}
		if post == nil {
			return nil, ErrNotFound
		}
		if post.Status == models.PostStatusPublishing {
			return nil, ErrAlreadyPublishing
		}
		return nil, fmt.Errorf("%w: post is %s", ErrInvalidState, post.Status)
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}

	targets, err := s.pp.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	var pending []*models.PostPlatform
	for _, t := range targets {
		if t.Status != models.TargetStatusPublished {
			pending = append(pending, t)
		}
	}

	results := s.fanOut(ctx, post, pending)

	// Already-published targets count toward the overall outcome when
	// this is a retry of a partially failed post.
	status := OverallStatus(len(targets)-len(pending), results)

	var publishedAt *time.Time
	if status == models.PostStatusPublished {
		now := time.Now()
		publishedAt = &now
	}
	if err := s.pr.SetPublished(ctx, postID, status, publishedAt); err != nil {
		return results, err
	}

	return results, nil
}

// OverallStatus reduces per-target results to a post status. One
// success is enough for published; a post only fails when every
// target failed.
func OverallStatus(priorSuccesses int, results map[string]platform.PostResult) string {
	succeeded := priorSuccesses
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	if succeeded > 0 {
		return models.PostStatusPublished
	}
	return models.PostStatusFailed
}

// RetryFailed republishes only the targets that failed last time.
// Succeeded targets are never re-sent, so no platform sees a
// duplicate. A post with nothing in failed state is a no-op.
func (s *publishService) RetryFailed(ctx context.Context, userID int64, postID string) (map[string]platform.PostResult, error) {
	owned, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrNotFound
	}

	targets, err := s.pp.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	var failed []*models.PostPlatform
	for _, t := range targets {
		if t.Status == models.TargetStatusFailed {
			failed = append(failed, t)
		}
	}
	if len(failed) == 0 {
		return map[string]platform.PostResult{}, nil
	}

	claimed, err := s.pr.TransitionStatus(ctx, postID,
		[]string{models.PostStatusPublished, models.PostStatusFailed},
		models.PostStatusPublishing)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrAlreadyPublishing
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	results := s.fanOut(ctx, post, failed)

	prior := 0
	for _, t := range targets {
		if t.Status == models.TargetStatusPublished {
			prior++
		}
	}
	status := OverallStatus(prior, results)

	var publishedAt *time.Time
	if status == models.PostStatusPublished {
		if post.PublishedAt != nil {
			publishedAt = post.PublishedAt
		} else {
			now := time.Now()
			publishedAt = &now
		}
	}
	if err := s.pr.SetPublished(ctx, postID, status, publishedAt); err != nil {
		return results, err
	}

	return results, nil
}

// fanOut publishes each target in its own goroutine and keys the
// results by target id. A failure on one platform never blocks or
// aborts the others.
func (s *publishService) fanOut(ctx context.Context, post *models.Post, targets []*models.PostPlatform) map[string]platform.PostResult {
	results := make(map[string]platform.PostResult, len(targets))

	var wg sync.WaitGroup
	var mu sync.Mutex

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, target := range targets {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(target *models.PostPlatform) {
			defer wg.Done()
			defer func() { <-semaphore }()

			result := s.publishTarget(ctx, post, target)

			mu.Lock()
			results[target.ID] = result
			mu.Unlock()
		}(target)
	}
	wg.Wait()

	return results
}

func (s *publishService) publishTarget(ctx context.Context, post *models.Post, target *models.PostPlatform) platform.PostResult {
	fail := func(msg string) platform.PostResult {
		slog.Info(msg, "post_id", post.ID, "platform", target.Platform)
		if err := s.pp.MarkFailed(ctx, target.ID, msg); err != nil {
			slog.Info(err.Error())
		}
		return platform.PostResult{Platform: target.Platform, ErrorMessage: msg}
	}

	adapter, ok := s.registry.Resolve(target.Platform)
	if !ok {
		return fail(fmt.Sprintf("no adapter registered for platform %s", target.Platform))
	}

	account, err := s.sa.GetByID(ctx, target.SocialAccountID)
	if err != nil {
		return fail(err.Error())
	}
	if account == nil || !account.IsActive {
		return fail("account not connected")
	}

	accessToken, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return fail("unable to decrypt access token")
	}

	creds := platform.Credentials{
		AccessToken: accessToken,
		UserID:      account.PlatformUserID,
		Handle:      account.Username,
	}

	if err := s.pp.UpdateStatus(ctx, target.ID, models.TargetStatusPublishing); err != nil {
		slog.Info(err.Error())
	}

	result := s.attempt(ctx, adapter, creds, post, target)
	if !result.Success && result.ErrCode == platform.ErrCodeTokenExpired {
		// One refresh, one retry. A second expired-token failure means
		// the connection itself is broken and the target stays failed.
		fresh, err := s.tm.Refresh(ctx, account)
		if err != nil {
			return fail("token refresh failed: " + err.Error())
		}
		result = s.attempt(ctx, adapter, fresh, post, target)
	}

	if !result.Success {
		return fail(result.ErrorMessage)
	}

	if err := s.pp.MarkPublished(ctx, target.ID, result.PostID, result.PostURL, time.Now()); err != nil {
		slog.Info(err.Error())
	}
	return result
}

func (s *publishService) attempt(ctx context.Context, adapter platform.Adapter, creds platform.Credentials, post *models.Post, target *models.PostPlatform) platform.PostResult {
	content := target.Content
	if content == "" {
		content = post.Content
	}

	switch post.PostType {
	case models.PostTypeVideo, models.PostTypeReel:
		if len(post.MediaURLs) == 0 {
			return platform.PostResult{Platform: target.Platform, ErrorMessage: "video post has no media"}
		}
		return adapter.PostVideo(ctx, creds, content, post.MediaURLs[0])
	case models.PostTypeImage, models.PostTypeCarousel, models.PostTypeStory:
		if len(post.MediaURLs) == 0 {
			return platform.PostResult{Platform: target.Platform, ErrorMessage: "image post has no media"}
		}
		return adapter.PostImage(ctx, creds, content, post.MediaURLs[0])
	default:
		if len(post.MediaURLs) > 0 {
			return adapter.PostImage(ctx, creds, content, post.MediaURLs[0])
		}
		return adapter.PostText(ctx, creds, content)
	}
}
