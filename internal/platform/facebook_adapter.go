package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	config "github.com/crosspilot/crosspilot/configs"
)

const graphAPIBase = "https://graph.facebook.com/v21.0"

type FacebookAdapter struct {
	cfg    config.Config
	client *resty.Client
}

func NewFacebookAdapter(cfg config.Config) *FacebookAdapter {
	return &FacebookAdapter{cfg: cfg, client: newClient(graphAPIBase)}
}

func (a *FacebookAdapter) Platform() string { return Facebook }

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (a *FacebookAdapter) graphFailure(resp *resty.Response) PostResult {
	var ge graphError
	_ = json.Unmarshal(resp.Body(), &ge)
	msg := ge.Error.Message
	if msg == "" {
		msg = resp.Status()
	}
	// Graph code 190 covers expired and invalidated tokens.
	if resp.StatusCode() == http.StatusUnauthorized || ge.Error.Code == 190 {
		return expired(Facebook, msg)
	}
	return failure(Facebook, msg)
}

func (a *FacebookAdapter) PostText(ctx context.Context, creds Credentials, content string) PostResult {
	var out struct {
		ID string `json:"id"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", creds.AccessToken).
		SetBody(map[string]string{"message": content}).
		SetResult(&out).
		Post(fmt.Sprintf("/%s/feed", creds.UserID))
	if err != nil {
		return failure(Facebook, err.Error())
	}
	if resp.IsError() {
		return a.graphFailure(resp)
	}
	return success(Facebook, out.ID, fmt.Sprintf("https://www.facebook.com/%s", out.ID), resp.Body())
}

func (a *FacebookAdapter) PostImage(ctx context.Context, creds Credentials, content, imageURL string) PostResult {
	var out struct {
		PostID string `json:"post_id"`
		ID     string `json:"id"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", creds.AccessToken).
		SetBody(map[string]string{"url": imageURL, "caption": content}).
		SetResult(&out).
		Post(fmt.Sprintf("/%s/photos", creds.UserID))
	if err != nil {
		return failure(Facebook, err.Error())
	}
	if resp.IsError() {
		return a.graphFailure(resp)
	}
	postID := out.PostID
	if postID == "" {
		postID = out.ID
	}
	return success(Facebook, postID, fmt.Sprintf("https://www.facebook.com/%s", postID), resp.Body())
}

func (a *FacebookAdapter) PostVideo(ctx context.Context, creds Credentials, content, videoURL string) PostResult {
	var out struct {
		ID string `json:"id"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", creds.AccessToken).
		SetBody(map[string]string{"file_url": videoURL, "description": content}).
		SetResult(&out).
		Post(fmt.Sprintf("/%s/videos", creds.UserID))
	if err != nil {
		return failure(Facebook, err.Error())
	}
	if resp.IsError() {
		return a.graphFailure(resp)
	}
	return success(Facebook, out.ID, fmt.Sprintf("https://www.facebook.com/%s", out.ID), resp.Body())
}

func (a *FacebookAdapter) DeletePost(ctx context.Context, creds Credentials, postID string) (bool, error) {
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", creds.AccessToken).
		Delete("/" + postID)
	if err != nil {
		return false, err
	}
	if resp.IsError() {
		return false, fmt.Errorf("facebook delete failed: %s", resp.Status())
	}
	return true, nil
}

func (a *FacebookAdapter) GetEngagement(ctx context.Context, creds Credentials, postID string) (EngagementData, error) {
	var out struct {
		Reactions struct {
			Summary struct {
				TotalCount int `json:"total_count"`
			} `json:"summary"`
		} `json:"reactions"`
		Comments struct {
			Summary struct {
				TotalCount int `json:"total_count"`
			} `json:"summary"`
		} `json:"comments"`
		Shares struct {
			Count int `json:"count"`
		} `json:"shares"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", creds.AccessToken).
		SetQueryParam("fields", "reactions.summary(true),comments.summary(true),shares").
		SetResult(&out).
		Get("/" + postID)
	if err != nil {
		return EngagementData{}, err
	}
	if resp.IsError() {
		return EngagementData{}, fmt.Errorf("facebook engagement fetch failed: %s", resp.Status())
	}
	return EngagementData{
		Likes:    out.Reactions.Summary.TotalCount,
		Comments: out.Comments.Summary.TotalCount,
		Shares:   out.Shares.Count,
	}, nil
}

func (a *FacebookAdapter) ReplyToComment(ctx context.Context, creds Credentials, commentID, content string) CommentResult {
	var out struct {
		ID string `json:"id"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", creds.AccessToken).
		SetBody(map[string]string{"message": content}).
		SetResult(&out).
		Post(fmt.Sprintf("/%s/comments", commentID))
	if err != nil {
		return CommentResult{Platform: Facebook, ErrorMessage: err.Error()}
	}
	if resp.IsError() {
		return CommentResult{Platform: Facebook, ErrorMessage: resp.Status()}
	}
	return CommentResult{Success: true, Platform: Facebook, CommentID: out.ID}
}

func (a *FacebookAdapter) GetProfile(ctx context.Context, creds Credentials) (*Profile, error) {
	var out struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Followers struct {
			Summary struct {
				TotalCount int `json:"total_count"`
			} `json:"summary"`
		} `json:"followers"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", creds.AccessToken).
		SetQueryParam("fields", "id,name,followers.summary(true)").
		SetResult(&out).
		Get("/me")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("facebook profile fetch failed: %s", resp.Status())
	}
	return &Profile{
		UserID:         out.ID,
		Username:       out.Name,
		DisplayName:    out.Name,
		FollowersCount: out.Followers.Summary.TotalCount,
	}, nil
}

// RefreshCredentials exchanges a long-lived token for a fresh one. Facebook
// has no separate refresh token, so the previous token rides along.
func (a *FacebookAdapter) RefreshCredentials(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"grant_type":        "fb_exchange_token",
			"client_id":         a.cfg.MetaAppID,
			"client_secret":     a.cfg.MetaAppSecret,
			"fb_exchange_token": refreshToken,
		}).
		SetResult(&out).
		Get("/oauth/access_token")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("facebook token refresh failed: %s", resp.Status())
	}
	return &TokenPair{
		AccessToken:  out.AccessToken,
		RefreshToken: out.AccessToken,
		ExpiresIn:    out.ExpiresIn,
	}, nil
}
