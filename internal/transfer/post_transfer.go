package transfer

import (
	"time"

	"github.com/crosspilot/crosspilot/internal/models"
)

type PostCreation struct {
	Content     string   `json:"content" validate:"required"`
	PostType    string   `json:"post_type" validate:"omitempty,oneof=text image video carousel story reel"`
	Platforms   []string `json:"platforms" validate:"required,min=1,dive,required"`
	MediaURLs   []string `json:"media_urls" validate:"omitempty,dive,url"`
	Hashtags    []string `json:"hashtags"`
	AIGenerated bool     `json:"ai_generated"`
	ScheduledAt string   `json:"scheduled_at" validate:"omitempty"`
}

type PostUpdate struct {
	Content     *string  `json:"content" validate:"omitempty,min=1"`
	PostType    *string  `json:"post_type" validate:"omitempty,oneof=text image video carousel story reel"`
	MediaURLs   []string `json:"media_urls" validate:"omitempty,dive,url"`
	Hashtags    []string `json:"hashtags"`
	ScheduledAt *string  `json:"scheduled_at"`
}

type PostResponse struct {
	Post    *models.Post           `json:"post"`
	Targets []*models.PostPlatform `json:"targets,omitempty"`
}

type PublishSummary struct {
	PostID  string                  `json:"post_id"`
	Status  string                  `json:"status"`
	Results map[string]TargetResult `json:"results"`
}

type TargetResult struct {
	Success  bool   `json:"success"`
	PostID   string `json:"platform_post_id,omitempty"`
	PostURL  string `json:"platform_post_url,omitempty"`
	ErrorMsg string `json:"error,omitempty"`
}

// ParseScheduledAt accepts RFC 3339 as well as the datetime-local
// format browsers submit.
func ParseScheduledAt(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04", value)
}
