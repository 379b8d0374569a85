package models

import (
	"time"

	"github.com/lib/pq"
)

type Post struct {
	ID          string         `db:"id" json:"id"`
	UserID      int64          `db:"user_id" json:"user_id"`
	Content     string         `db:"content" json:"content"`
	PostType    string         `db:"post_type" json:"post_type"`
	MediaURLs   pq.StringArray `db:"media_urls" json:"media_urls"`
	Hashtags    pq.StringArray `db:"hashtags" json:"hashtags"`
	AIGenerated bool           `db:"ai_generated" json:"ai_generated"`
	Status      string         `db:"status" json:"status"`
	ScheduledAt *time.Time     `db:"scheduled_at" json:"scheduled_at"`
	PublishedAt *time.Time     `db:"published_at" json:"published_at"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// PostPlatform is the per-target publication record, one row per
// (post, platform) pair. Its status moves independently of siblings.
type PostPlatform struct {
	ID               string     `db:"id" json:"id"`
	PostID           string     `db:"post_id" json:"post_id"`
	SocialAccountID  int64      `db:"social_account_id" json:"social_account_id"`
	Platform         string     `db:"platform" json:"platform"`
	Content          string     `db:"content" json:"content"`
	Status           string     `db:"status" json:"status"`
	PlatformPostID   string     `db:"platform_post_id" json:"platform_post_id"`
	PlatformPostURL  string     `db:"platform_post_url" json:"platform_post_url"`
	ErrorMessage     string     `db:"error_message" json:"error_message"`
	LikesCount       int        `db:"likes_count" json:"likes_count"`
	CommentsCount    int        `db:"comments_count" json:"comments_count"`
	SharesCount      int        `db:"shares_count" json:"shares_count"`
	Impressions      int        `db:"impressions" json:"impressions"`
	Reach            int        `db:"reach" json:"reach"`
	PublishedAt      *time.Time `db:"published_at" json:"published_at"`
	MetricsUpdatedAt *time.Time `db:"metrics_updated_at" json:"metrics_updated_at"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

const (
	PostStatusDraft      = "draft"
	PostStatusScheduled  = "scheduled"
	PostStatusPublishing = "publishing"
	PostStatusPublished  = "published"
	PostStatusFailed     = "failed"
)

const (
	TargetStatusPending    = "pending"
	TargetStatusPublishing = "publishing"
	TargetStatusPublished  = "published"
	TargetStatusFailed     = "failed"
)

const (
	PostTypeText     = "text"
	PostTypeImage    = "image"
	PostTypeVideo    = "video"
	PostTypeCarousel = "carousel"
	PostTypeStory    = "story"
	PostTypeReel     = "reel"
)
