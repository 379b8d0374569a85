package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/crosspilot/crosspilot/internal/models"
	"github.com/crosspilot/crosspilot/internal/platform"
)

type PostPlatformRepository interface {
	Create(ctx context.Context, tx Execer, pp *models.PostPlatform) error
	GetByID(ctx context.Context, id string) (*models.PostPlatform, error)
	ListByPostID(ctx context.Context, postID string) ([]*models.PostPlatform, error)
	UpdateStatus(ctx context.Context, id, status string) error
	MarkPublished(ctx context.Context, id, platformPostID, platformPostURL string, publishedAt time.Time) error
	MarkFailed(ctx context.Context, id, errorMessage string) error
	UpdateEngagement(ctx context.Context, id string, data platform.EngagementData, at time.Time) error
	ListPublishedSince(ctx context.Context, since time.Time) ([]*models.PostPlatform, error)
}

type postPlatformRepository struct {
	db *sql.DB
}

func NewPostPlatformRepository(db *sql.DB) PostPlatformRepository {
	return &postPlatformRepository{db: db}
}

const postPlatformColumns = `id, post_id, social_account_id, platform, content, status, platform_post_id, platform_post_url, error_message, likes_count, comments_count, shares_count, impressions, reach, published_at, metrics_updated_at, created_at`

func scanPostPlatform(row interface{ Scan(...any) error }) (*models.PostPlatform, error) {
	var pp models.PostPlatform
	err := row.Scan(&pp.ID, &pp.PostID, &pp.SocialAccountID, &pp.Platform,
		&pp.Content, &pp.Status, &pp.PlatformPostID, &pp.PlatformPostURL,
		&pp.ErrorMessage, &pp.LikesCount, &pp.CommentsCount, &pp.SharesCount,
		&pp.Impressions, &pp.Reach, &pp.PublishedAt, &pp.MetricsUpdatedAt, &pp.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &pp, nil
}

func (r *postPlatformRepository) Create(ctx context.Context, tx Execer, pp *models.PostPlatform) error {
	query := `
		INSERT INTO post_platforms (id, post_id, social_account_id, platform, content, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	args := []any{pp.ID, pp.PostID, pp.SocialAccountID, pp.Platform, pp.Content, pp.Status}

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postPlatformRepository) GetByID(ctx context.Context, id string) (*models.PostPlatform, error) {
	query := `SELECT ` + postPlatformColumns + ` FROM post_platforms WHERE id = $1`

	pp, err := scanPostPlatform(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return pp, nil
}

func (r *postPlatformRepository) ListByPostID(ctx context.Context, postID string) ([]*models.PostPlatform, error) {
	query := `SELECT ` + postPlatformColumns + ` FROM post_platforms WHERE post_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var targets []*models.PostPlatform
	for rows.Next() {
		pp, err := scanPostPlatform(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		targets = append(targets, pp)
	}
	return targets, rows.Err()
}

func (r *postPlatformRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE post_platforms SET status = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postPlatformRepository) MarkPublished(ctx context.Context, id, platformPostID, platformPostURL string, publishedAt time.Time) error {
	query := `
		UPDATE post_platforms
		SET status = $1,
			platform_post_id = $2,
			platform_post_url = $3,
			error_message = '',
			published_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, models.TargetStatusPublished,
		platformPostID, platformPostURL, publishedAt, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postPlatformRepository) MarkFailed(ctx context.Context, id, errorMessage string) error {
	query := `UPDATE post_platforms SET status = $1, error_message = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, models.TargetStatusFailed, errorMessage, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postPlatformRepository) UpdateEngagement(ctx context.Context, id string, data platform.EngagementData, at time.Time) error {
	query := `
		UPDATE post_platforms
		SET likes_count = $1,
			comments_count = $2,
			shares_count = $3,
			impressions = $4,
			reach = $5,
			metrics_updated_at = $6
		WHERE id = $7
	`
	_, err := r.db.ExecContext(ctx, query, data.Likes, data.Comments,
		data.Shares, data.Impressions, data.Reach, at, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// ListPublishedSince feeds the engagement sync job.
func (r *postPlatformRepository) ListPublishedSince(ctx context.Context, since time.Time) ([]*models.PostPlatform, error) {
	query := `SELECT ` + postPlatformColumns + ` FROM post_platforms
		WHERE status = $1 AND published_at >= $2`

	rows, err := r.db.QueryContext(ctx, query, models.TargetStatusPublished, since)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var targets []*models.PostPlatform
	for rows.Next() {
		pp, err := scanPostPlatform(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		targets = append(targets, pp)
	}
	return targets, rows.Err()
}
