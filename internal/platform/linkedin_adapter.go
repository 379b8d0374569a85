package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	config "github.com/crosspilot/crosspilot/configs"
)

const linkedinAPIBase = "https://api.linkedin.com"

type LinkedInAdapter struct {
	cfg    config.Config
	client *resty.Client
}

func NewLinkedInAdapter(cfg config.Config) *LinkedInAdapter {
	return &LinkedInAdapter{cfg: cfg, client: newClient(linkedinAPIBase)}
}

func (a *LinkedInAdapter) Platform() string { return LinkedIn }

func (a *LinkedInAdapter) liFailure(resp *resty.Response) PostResult {
	var le struct {
		Message       string `json:"message"`
		ServiceErrorCode int `json:"serviceErrorCode"`
	}
	_ = json.Unmarshal(resp.Body(), &le)
	msg := le.Message
	if msg == "" {
		msg = resp.Status()
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return expired(LinkedIn, msg)
	}
	return failure(LinkedIn, msg)
}

func personURN(creds Credentials) string {
	return fmt.Sprintf("urn:li:person:%s", creds.UserID)
}

func (a *LinkedInAdapter) createShare(ctx context.Context, creds Credentials, content string, media []map[string]any) PostResult {
	shareContent := map[string]any{
		"shareCommentary":    map[string]string{"text": content},
		"shareMediaCategory": "NONE",
	}
	if len(media) > 0 {
		shareContent["shareMediaCategory"] = "ARTICLE"
		shareContent["media"] = media
	}

	var out struct {
		ID string `json:"id"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(creds.AccessToken).
		SetHeader("X-Restli-Protocol-Version", "2.0.0").
		SetBody(map[string]any{
			"author":         personURN(creds),
			"lifecycleState": "PUBLISHED",
			"specificContent": map[string]any{
				"com.linkedin.ugc.ShareContent": shareContent,
			},
			"visibility": map[string]string{
				"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
			},
		}).
		SetResult(&out).
		Post("/v2/ugcPosts")
	if err != nil {
		return failure(LinkedIn, err.Error())
	}
	if resp.IsError() {
		return a.liFailure(resp)
	}
	url := fmt.Sprintf("https://www.linkedin.com/feed/update/%s", out.ID)
	return success(LinkedIn, out.ID, url, resp.Body())
}

func (a *LinkedInAdapter) PostText(ctx context.Context, creds Credentials, content string) PostResult {
	return a.createShare(ctx, creds, content, nil)
}

func (a *LinkedInAdapter) PostImage(ctx context.Context, creds Credentials, content, imageURL string) PostResult {
	media := []map[string]any{{
		"status":      "READY",
		"originalUrl": imageURL,
	}}
	return a.createShare(ctx, creds, content, media)
}

func (a *LinkedInAdapter) PostVideo(ctx context.Context, creds Credentials, content, videoURL string) PostResult {
	media := []map[string]any{{
		"status":      "READY",
		"originalUrl": videoURL,
	}}
	return a.createShare(ctx, creds, content, media)
}

func (a *LinkedInAdapter) DeletePost(ctx context.Context, creds Credentials, postID string) (bool, error) {
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(creds.AccessToken).
		Delete("/v2/ugcPosts/" + postID)
	if err != nil {
		return false, err
	}
	if resp.IsError() {
		return false, fmt.Errorf("linkedin delete failed: %s", resp.Status())
	}
	return true, nil
}

func (a *LinkedInAdapter) GetEngagement(ctx context.Context, creds Credentials, postID string) (EngagementData, error) {
	var out struct {
		LikesSummary struct {
			TotalLikes int `json:"totalLikes"`
		} `json:"likesSummary"`
		CommentsSummary struct {
			AggregatedTotalComments int `json:"aggregatedTotalComments"`
		} `json:"commentsSummary"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(creds.AccessToken).
		SetResult(&out).
		Get("/v2/socialActions/" + postID)
	if err != nil {
		return EngagementData{}, err
	}
	if resp.IsError() {
		return EngagementData{}, fmt.Errorf("linkedin engagement fetch failed: %s", resp.Status())
	}
	return EngagementData{
		Likes:    out.LikesSummary.TotalLikes,
		Comments: out.CommentsSummary.AggregatedTotalComments,
	}, nil
}

func (a *LinkedInAdapter) ReplyToComment(ctx context.Context, creds Credentials, commentID, content string) CommentResult {
	var out struct {
		ID string `json:"id"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(creds.AccessToken).
		SetBody(map[string]any{
			"actor":   personURN(creds),
			"message": map[string]string{"text": content},
		}).
		SetResult(&out).
		Post(fmt.Sprintf("/v2/socialActions/%s/comments", commentID))
	if err != nil {
		return CommentResult{Platform: LinkedIn, ErrorMessage: err.Error()}
	}
	if resp.IsError() {
		return CommentResult{Platform: LinkedIn, ErrorMessage: resp.Status()}
	}
	return CommentResult{Success: true, Platform: LinkedIn, CommentID: out.ID}
}

func (a *LinkedInAdapter) GetProfile(ctx context.Context, creds Credentials) (*Profile, error) {
	var out struct {
		Sub     string `json:"sub"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(creds.AccessToken).
		SetResult(&out).
		Get("/v2/userinfo")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("linkedin profile fetch failed: %s", resp.Status())
	}
	return &Profile{UserID: out.Sub, Username: out.Name, DisplayName: out.Name}, nil
}

func (a *LinkedInAdapter) RefreshCredentials(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": refreshToken,
			"client_id":     a.cfg.LinkedinClientID,
			"client_secret": a.cfg.LinkedinClientSecret,
		}).
		SetResult(&out).
		Post("/oauth/v2/accessToken")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("linkedin token refresh failed: %s", resp.Status())
	}
	return &TokenPair{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresIn:    out.ExpiresIn,
	}, nil
}
