package platform

import (
	"context"
	"encoding/json"
)

// Supported platform identifiers.
const (
	Instagram = "instagram"
	Facebook  = "facebook"
	X         = "x"
	Bluesky   = "bluesky"
	TikTok    = "tiktok"
	Threads   = "threads"
	LinkedIn  = "linkedin"
)

// ErrCodeTokenExpired marks a publish failure caused by an expired or
// revoked access token. The publisher reacts with a single refresh-and-retry.
const ErrCodeTokenExpired = "token_expired"

// Credentials is the decrypted credential material handed to an adapter
// for a single call. Adapters never persist it.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	Handle       string
}

// TokenPair is the result of a credential refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// PostResult is the outcome of a publish attempt against one platform.
// Provider failures are reported through Success/ErrorMessage, never as a
// Go error, so the publisher can aggregate outcomes uniformly.
type PostResult struct {
	Success      bool            `json:"success"`
	Platform     string          `json:"platform"`
	PostID       string          `json:"post_id,omitempty"`
	PostURL      string          `json:"post_url,omitempty"`
	ErrorMessage string          `json:"error,omitempty"`
	ErrCode      string          `json:"-"`
	Raw          json.RawMessage `json:"-"`
}

type CommentResult struct {
	Success      bool   `json:"success"`
	Platform     string `json:"platform"`
	CommentID    string `json:"comment_id,omitempty"`
	ErrorMessage string `json:"error,omitempty"`
}

type EngagementData struct {
	Likes       int `json:"likes"`
	Comments    int `json:"comments"`
	Shares      int `json:"shares"`
	Impressions int `json:"impressions"`
	Reach       int `json:"reach"`
}

type Profile struct {
	UserID         string `json:"user_id"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	FollowersCount int    `json:"followers_count"`
	FollowingCount int    `json:"following_count"`
}

// Adapter is the capability contract every platform integration satisfies.
// The publishing service depends on this interface only; concrete adapters
// hide their provider's wire protocol.
type Adapter interface {
	Platform() string
	PostText(ctx context.Context, creds Credentials, content string) PostResult
	PostImage(ctx context.Context, creds Credentials, content, imageURL string) PostResult
	PostVideo(ctx context.Context, creds Credentials, content, videoURL string) PostResult
	DeletePost(ctx context.Context, creds Credentials, postID string) (bool, error)
	GetEngagement(ctx context.Context, creds Credentials, postID string) (EngagementData, error)
	ReplyToComment(ctx context.Context, creds Credentials, commentID, content string) CommentResult
	GetProfile(ctx context.Context, creds Credentials) (*Profile, error)
	RefreshCredentials(ctx context.Context, refreshToken string) (*TokenPair, error)
}

func failure(platform, msg string) PostResult {
	return PostResult{Platform: platform, ErrorMessage: msg}
}

func expired(platform, msg string) PostResult {
	return PostResult{Platform: platform, ErrorMessage: msg, ErrCode: ErrCodeTokenExpired}
}

func success(platform, postID, postURL string, raw []byte) PostResult {
	return PostResult{
		Success:  true,
		Platform: platform,
		PostID:   postID,
		PostURL:  postURL,
		Raw:      json.RawMessage(raw),
	}
}
