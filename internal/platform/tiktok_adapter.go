package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	config "github.com/crosspilot/crosspilot/configs"
)

const tiktokAPIBase = "https://open.tiktokapis.com/v2"

// TikTokAdapter publishes through the direct-post content API with
// PULL_FROM_URL sourcing, so media never passes through this process.
type TikTokAdapter struct {
	cfg    config.Config
	client *resty.Client
}

func NewTikTokAdapter(cfg config.Config) *TikTokAdapter {
	return &TikTokAdapter{cfg: cfg, client: newClient(tiktokAPIBase)}
}

func (a *TikTokAdapter) Platform() string { return TikTok }

type tiktokEnvelope struct {
	Data struct {
		PublishID string `json:"publish_id"`
	} `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (a *TikTokAdapter) tiktokFailure(resp *resty.Response) PostResult {
	var env tiktokEnvelope
	_ = json.Unmarshal(resp.Body(), &env)
	msg := env.Error.Message
	if msg == "" {
		msg = resp.Status()
	}
	if resp.StatusCode() == http.StatusUnauthorized || env.Error.Code == "access_token_invalid" {
		return expired(TikTok, msg)
	}
	return failure(TikTok, msg)
}

func (a *TikTokAdapter) PostText(ctx context.Context, creds Credentials, content string) PostResult {
	return failure(TikTok, "tiktok does not support text-only posts")
}

func (a *TikTokAdapter) PostImage(ctx context.Context, creds Credentials, content, imageURL string) PostResult {
	body := map[string]any{
		"post_info": map[string]any{
			"title":           content,
			"privacy_level":   "PUBLIC_TO_EVERYONE",
			"disable_comment": false,
			"auto_add_music":  true,
		},
		"source_info": map[string]any{
			"source":            "PULL_FROM_URL",
			"photo_cover_index": 0,
			"photo_images":      []string{imageURL},
		},
		"post_mode":  "DIRECT_POST",
		"media_type": "PHOTO",
	}
	return a.initPublish(ctx, creds, "/post/publish/content/init/", body)
}

func (a *TikTokAdapter) PostVideo(ctx context.Context, creds Credentials, content, videoURL string) PostResult {
	body := map[string]any{
		"post_info": map[string]any{
			"title":                    content,
			"privacy_level":            "PUBLIC_TO_EVERYONE",
			"disable_duet":             false,
			"disable_comment":          false,
			"disable_stitch":           false,
			"video_cover_timestamp_ms": 1000,
		},
		"source_info": map[string]any{
			"source":    "PULL_FROM_URL",
			"video_url": videoURL,
		},
	}
	return a.initPublish(ctx, creds, "/post/publish/video/init/", body)
}

func (a *TikTokAdapter) initPublish(ctx context.Context, creds Credentials, path string, body map[string]any) PostResult {
	var env tiktokEnvelope
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(creds.AccessToken).
		SetBody(body).
		SetResult(&env).
		Post(path)
	if err != nil {
		return failure(TikTok, err.Error())
	}
	if resp.IsError() || (env.Error.Code != "" && env.Error.Code != "ok") {
		return a.tiktokFailure(resp)
	}
	url := fmt.Sprintf("https://www.tiktok.com/@%s", creds.Handle)
	return success(TikTok, env.Data.PublishID, url, resp.Body())
}

func (a *TikTokAdapter) DeletePost(ctx context.Context, creds Credentials, postID string) (bool, error) {
	return false, fmt.Errorf("tiktok does not support deleting posts via API")
}

func (a *TikTokAdapter) GetEngagement(ctx context.Context, creds Credentials, postID string) (EngagementData, error) {
	var out struct {
		Data struct {
			Videos []struct {
				LikeCount    int `json:"like_count"`
				CommentCount int `json:"comment_count"`
				ShareCount   int `json:"share_count"`
				ViewCount    int `json:"view_count"`
			} `json:"videos"`
		} `json:"data"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(creds.AccessToken).
		SetQueryParam("fields", "like_count,comment_count,share_count,view_count").
		SetBody(map[string]any{
			"filters": map[string]any{"video_ids": []string{postID}},
		}).
		SetResult(&out).
		Post("/video/query/")
	if err != nil {
		return EngagementData{}, err
	}
	if resp.IsError() {
		return EngagementData{}, fmt.Errorf("tiktok engagement fetch failed: %s", resp.Status())
	}
	if len(out.Data.Videos) == 0 {
		return EngagementData{}, nil
	}
	v := out.Data.Videos[0]
	return EngagementData{
		Likes:       v.LikeCount,
		Comments:    v.CommentCount,
		Shares:      v.ShareCount,
		Impressions: v.ViewCount,
	}, nil
}

func (a *TikTokAdapter) ReplyToComment(ctx context.Context, creds Credentials, commentID, content string) CommentResult {
	return CommentResult{
		Platform:     TikTok,
		ErrorMessage: "tiktok comment replies are not supported via the content API",
	}
}

func (a *TikTokAdapter) GetProfile(ctx context.Context, creds Credentials) (*Profile, error) {
	var out struct {
		Data struct {
			User struct {
				OpenID         string `json:"open_id"`
				Username       string `json:"username"`
				DisplayName    string `json:"display_name"`
				FollowerCount  int    `json:"follower_count"`
				FollowingCount int    `json:"following_count"`
			} `json:"user"`
		} `json:"data"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(creds.AccessToken).
		SetQueryParam("fields", "open_id,username,display_name,follower_count,following_count").
		SetResult(&out).
		Get("/user/info/")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("tiktok profile fetch failed: %s", resp.Status())
	}
	u := out.Data.User
	return &Profile{
		UserID:         u.OpenID,
		Username:       u.Username,
		DisplayName:    u.DisplayName,
		FollowersCount: u.FollowerCount,
		FollowingCount: u.FollowingCount,
	}, nil
}

func (a *TikTokAdapter) RefreshCredentials(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"client_key":    a.cfg.TiktokClientKey,
			"client_secret": a.cfg.TiktokClientSecret,
			"grant_type":    "refresh_token",
			"refresh_token": refreshToken,
		}).
		SetResult(&out).
		Post("/oauth/token/")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("tiktok token refresh failed: %s", resp.Status())
	}
	return &TokenPair{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresIn:    out.ExpiresIn,
	}, nil
}
