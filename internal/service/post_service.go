package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/crosspilot/crosspilot/internal/models"
	"github.com/crosspilot/crosspilot/internal/platform"
	"github.com/crosspilot/crosspilot/internal/repository"
	"github.com/crosspilot/crosspilot/internal/transfer"
)

type PostService interface {
	Create(ctx context.Context, userID int64, pc *transfer.PostCreation) (*models.Post, time.Duration, error)
	Update(ctx context.Context, userID int64, postID string, pu *transfer.PostUpdate) (*models.Post, error)
	PostInfo(ctx context.Context, userID int64, postID string) (*models.Post, []*models.PostPlatform, error)
	List(ctx context.Context, userID int64) ([]*models.Post, error)
	Remove(ctx context.Context, userID int64, postID string) error
	DuePosts(ctx context.Context, asOf time.Time) ([]*models.Post, error)
}

type postService struct {
	db TxBeginner
	pr repository.PostRepository
	pp repository.PostPlatformRepository
	sa repository.SocialAccountRepository
}

func NewPostService(
	db TxBeginner,
	pr repository.PostRepository,
	pp repository.PostPlatformRepository,
	sa repository.SocialAccountRepository) PostService {
	return &postService{
		db: db,
		pr: pr,
		pp: pp,
		sa: sa,
	}
}

// Create validates the draft against every requested platform and
// persists the post together with its per-platform targets in one
// transaction. Nothing is written when any platform rejects the
// content. The returned delay is zero for drafts and the time until
// scheduled_at for scheduled posts.
func (s *postService) Create(ctx context.Context, userID int64, pc *transfer.PostCreation) (*models.Post, time.Duration, error) {
	if pc == nil {
		err := errors.New("post creation data is nil")
		slog.Error(err.Error())
		return nil, 0, err
	}
	if len(pc.Platforms) == 0 {
		err := errors.New("no platforms selected")
		slog.Info(err.Error())
		return nil, 0, err
	}

	postType := pc.PostType
	if postType == "" {
		postType = models.PostTypeText
		if len(pc.MediaURLs) == 1 {
			postType = models.PostTypeImage
		} else if len(pc.MediaURLs) > 1 {
			postType = models.PostTypeCarousel
		}
	}

	var scheduledAt *time.Time
	if pc.ScheduledAt != "" {
		t, err := transfer.ParseScheduledAt(pc.ScheduledAt)
		if err != nil {
			err = fmt.Errorf("invalid scheduled time format: %w", err)
			slog.Info(err.Error())
			return nil, 0, err
		}
		if !t.After(time.Now()) {
			err = errors.New("scheduled time must be in the future")
			slog.Info(err.Error())
			return nil, 0, err
		}
		scheduledAt = &t
	}

	accounts, err := s.resolveAccounts(ctx, userID, pc.Platforms)
	if err != nil {
		return nil, 0, err
	}

	if violations := platform.ValidateAll(pc.Platforms, pc.Content, postType, len(pc.MediaURLs)); len(violations) > 0 {
		return nil, 0, &ContentValidationError{Violations: violations}
	}

	status := models.PostStatusDraft
	if scheduledAt != nil {
		status = models.PostStatusScheduled
	}

	post := &models.Post{
		ID:          uuid.NewString(),
		UserID:      userID,
		Content:     pc.Content,
		PostType:    postType,
		MediaURLs:   pc.MediaURLs,
		Hashtags:    pc.Hashtags,
		AIGenerated: pc.AIGenerated,
		Status:      status,
		ScheduledAt: scheduledAt,
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	if err = s.pr.Create(ctx, tx, post); err != nil {
		return nil, 0, fmt.Errorf("error creating post: %w", err)
	}

	for _, p := range pc.Platforms {
		target := &models.PostPlatform{
			ID:              uuid.NewString(),
			PostID:          post.ID,
			SocialAccountID: accounts[p].ID,
			Platform:        p,
			Content:         pc.Content,
			Status:          models.TargetStatusPending,
		}
		if err = s.pp.Create(ctx, tx, target); err != nil {
			return nil, 0, fmt.Errorf("error creating post target: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	var delay time.Duration
	if scheduledAt != nil {
		delay = time.Until(*scheduledAt)
		if delay < 0 {
			delay = 0
		}
	}

	return post, delay, nil
}

func (s *postService) resolveAccounts(ctx context.Context, userID int64, platforms []string) (map[string]*models.SocialAccount, error) {
	accounts := make(map[string]*models.SocialAccount, len(platforms))
	var missing []string
	for _, p := range platforms {
		if _, dup := accounts[p]; dup {
			return nil, fmt.Errorf("platform %s listed more than once", p)
		}
		acc, err := s.sa.GetActiveByUserAndPlatform(ctx, userID, p)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			missing = append(missing, p)
			continue
		}
		accounts[p] = acc
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrAccountNotConnected, missing)
	}
	return accounts, nil
}

// Update rewrites mutable fields of a post that has not started
// publishing yet. Content changes are re-validated against the post's
// existing targets.
func (s *postService) Update(ctx context.Context, userID int64, postID string, pu *transfer.PostUpdate) (*models.Post, error) {
	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	switch post.Status {
	case models.PostStatusDraft, models.PostStatusScheduled, models.PostStatusFailed:
	default:
		return nil, fmt.Errorf("%w: cannot update a %s post", ErrInvalidState, post.Status)
	}

	if pu.Content != nil {
		post.Content = *pu.Content
	}
	if pu.PostType != nil {
		post.PostType = *pu.PostType
	}
	if pu.MediaURLs != nil {
		post.MediaURLs = pu.MediaURLs
	}
	if pu.Hashtags != nil {
		post.Hashtags = pu.Hashtags
	}
	if pu.ScheduledAt != nil {
		if *pu.ScheduledAt == "" {
			post.ScheduledAt = nil
			if post.Status == models.PostStatusScheduled {
				post.Status = models.PostStatusDraft
			}
		} else {
			t, err := transfer.ParseScheduledAt(*pu.ScheduledAt)
			if err != nil {
				err = fmt.Errorf("invalid scheduled time format: %w", err)
				slog.Info(err.Error())
				return nil, err
			}
			if !t.After(time.Now()) {
				return nil, errors.New("scheduled time must be in the future")
			}
			post.ScheduledAt = &t
			if post.Status == models.PostStatusDraft {
				post.Status = models.PostStatusScheduled
			}
		}
	}

	targets, err := s.pp.ListByPostID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	platforms := make([]string, 0, len(targets))
	for _, t := range targets {
		platforms = append(platforms, t.Platform)
	}
	if violations := platform.ValidateAll(platforms, post.Content, post.PostType, len(post.MediaURLs)); len(violations) > 0 {
		return nil, &ContentValidationError{Violations: violations}
	}

	if err := s.pr.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("error updating post: %w", err)
	}
	return post, nil
}

func (s *postService) PostInfo(ctx context.Context, userID int64, postID string) (*models.Post, []*models.PostPlatform, error) {
	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return nil, nil, err
	}

	targets, err := s.pp.ListByPostID(ctx, post.ID)
	if err != nil {
		return nil, nil, err
	}
	return post, targets, nil
}

func (s *postService) List(ctx context.Context, userID int64) ([]*models.Post, error) {
	posts, err := s.pr.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return posts, nil
}

// Remove deletes a post and its targets. Posts mid-publish are
// protected so a concurrent worker never writes results for a row
// that no longer exists.
func (s *postService) Remove(ctx context.Context, userID int64, postID string) error {
	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return err
	}

	if post.Status == models.PostStatusPublishing {
		return fmt.Errorf("%w: cannot delete while publishing", ErrInvalidState)
	}

	if err := s.pr.Remove(ctx, post.ID); err != nil {
		return fmt.Errorf("error removing post: %w", err)
	}
	return nil
}

func (s *postService) DuePosts(ctx context.Context, asOf time.Time) ([]*models.Post, error) {
	return s.pr.ListDue(ctx, asOf)
}

func (s *postService) ownedPost(ctx context.Context, userID int64, postID string) (*models.Post, error) {
	if postID == "" {
		slog.Info("post id is not valid")
		return nil, ErrNotFound
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || post.UserID != userID {
		slog.Info("post doesn't exist")
		return nil, ErrNotFound
	}
	return post, nil
}
