package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	config "github.com/crosspilot/crosspilot/configs"
)

const instagramGraphBase = "https://graph.instagram.com/v21.0"

// InstagramAdapter publishes through the two-step container flow: create a
// media container, then publish it. Text-only posts are not supported by
// the platform; validation keeps them from ever reaching this adapter.
type InstagramAdapter struct {
	cfg    config.Config
	client *resty.Client
}

func NewInstagramAdapter(cfg config.Config) *InstagramAdapter {
	return &InstagramAdapter{cfg: cfg, client: newClient(instagramGraphBase)}
}

func (a *InstagramAdapter) Platform() string { return Instagram }

func (a *InstagramAdapter) igFailure(resp *resty.Response) PostResult {
	var ge graphError
	_ = json.Unmarshal(resp.Body(), &ge)
	msg := ge.Error.Message
	if msg == "" {
		msg = resp.Status()
	}
	if resp.StatusCode() == http.StatusUnauthorized || ge.Error.Code == 190 {
		return expired(Instagram, msg)
	}
	return failure(Instagram, msg)
}

func (a *InstagramAdapter) PostText(ctx context.Context, creds Credentials, content string) PostResult {
	return failure(Instagram, "instagram does not support text-only posts")
}

func (a *InstagramAdapter) PostImage(ctx context.Context, creds Credentials, content, imageURL string) PostResult {
	return a.publishMedia(ctx, creds, map[string]string{
		"image_url": imageURL,
		"caption":   content,
	})
}

func (a *InstagramAdapter) PostVideo(ctx context.Context, creds Credentials, content, videoURL string) PostResult {
	return a.publishMedia(ctx, creds, map[string]string{
		"video_url":  videoURL,
		"media_type": "REELS",
		"caption":    content,
	})
}

func (a *InstagramAdapter) publishMedia(ctx context.Context, creds Credentials, container map[string]string) PostResult {
	var created struct {
		ID string `json:"id"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", creds.AccessToken).
		SetBody(container).
		SetResult(&created).
		Post(fmt.Sprintf("/%s/media", creds.UserID))
	if err != nil {
		return failure(Instagram, err.Error())
	}
	if resp.IsError() {
		return a.igFailure(resp)
	}

	var published struct {
		ID string `json:"id"`
	}
	resp, err = a.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", creds.AccessToken).
		SetBody(map[string]string{"creation_id": created.ID}).
		SetResult(&published).
		Post(fmt.Sprintf("/%s/media_publish", creds.UserID))
	if err != nil {
		return failure(Instagram, err.Error())
	}
	if resp.IsError() {
		return a.igFailure(resp)
	}

	permalink := a.mediaPermalink(ctx, creds, published.ID)
	return success(Instagram, published.ID, permalink, resp.Body())
}

func (a *InstagramAdapter) mediaPermalink(ctx context.Context, creds Credentials, mediaID string) string {
	var out struct {
		Permalink string `json:"permalink"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", creds.AccessToken).
		SetQueryParam("fields", "permalink").
		SetResult(&out).
		Get("/" + mediaID)
	if err != nil || resp.IsError() {
		return ""
	}
	return out.Permalink
}

func (a *InstagramAdapter) DeletePost(ctx context.Context, creds Credentials, postID string) (bool, error) {
	// The content publishing API has no media delete; treat as unsupported.
	return false, fmt.Errorf("instagram does not support deleting published media via API")
}

func (a *InstagramAdapter) GetEngagement(ctx context.Context, creds Credentials, postID string) (EngagementData, error) {
	var out struct {
		LikeCount     int `json:"like_count"`
		CommentsCount int `json:"comments_count"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", creds.AccessToken).
		SetQueryParam("fields", "like_count,comments_count").
		SetResult(&out).
		Get("/" + postID)
	if err != nil {
		return EngagementData{}, err
	}
	if resp.IsError() {
		return EngagementData{}, fmt.Errorf("instagram engagement fetch failed: %s", resp.Status())
	}
	return EngagementData{Likes: out.LikeCount, Comments: out.CommentsCount}, nil
}

func (a *InstagramAdapter) ReplyToComment(ctx context.Context, creds Credentials, commentID, content string) CommentResult {
	var out struct {
		ID string `json:"id"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", creds.AccessToken).
		SetBody(map[string]string{"message": content}).
		SetResult(&out).
		Post(fmt.Sprintf("/%s/replies", commentID))
	if err != nil {
		return CommentResult{Platform: Instagram, ErrorMessage: err.Error()}
	}
	if resp.IsError() {
		return CommentResult{Platform: Instagram, ErrorMessage: resp.Status()}
	}
	return CommentResult{Success: true, Platform: Instagram, CommentID: out.ID}
}

func (a *InstagramAdapter) GetProfile(ctx context.Context, creds Credentials) (*Profile, error) {
	var out struct {
		ID             string `json:"id"`
		Username       string `json:"username"`
		Name           string `json:"name"`
		FollowersCount int    `json:"followers_count"`
		FollowsCount   int    `json:"follows_count"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", creds.AccessToken).
		SetQueryParam("fields", "id,username,name,followers_count,follows_count").
		SetResult(&out).
		Get("/me")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("instagram profile fetch failed: %s", resp.Status())
	}
	return &Profile{
		UserID:         out.ID,
		Username:       out.Username,
		DisplayName:    out.Name,
		FollowersCount: out.FollowersCount,
		FollowingCount: out.FollowsCount,
	}, nil
}

func (a *InstagramAdapter) RefreshCredentials(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"grant_type":   "ig_refresh_token",
			"access_token": refreshToken,
		}).
		SetResult(&out).
		Get("/refresh_access_token")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("instagram token refresh failed: %s", resp.Status())
	}
	return &TokenPair{
		AccessToken:  out.AccessToken,
		RefreshToken: out.AccessToken,
		ExpiresIn:    out.ExpiresIn,
	}, nil
}
