package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	config "github.com/crosspilot/crosspilot/configs"
)

const (
	xAPIBase    = "https://api.x.com/2"
	xUploadBase = "https://upload.twitter.com/1.1"
)

type XAdapter struct {
	cfg    config.Config
	client *resty.Client
	upload *resty.Client
}

func NewXAdapter(cfg config.Config) *XAdapter {
	return &XAdapter{
		cfg:    cfg,
		client: newClient(xAPIBase),
		upload: newClient(xUploadBase),
	}
}

func (a *XAdapter) Platform() string { return X }

type xError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

func (a *XAdapter) xFailure(resp *resty.Response) PostResult {
	var xe xError
	_ = json.Unmarshal(resp.Body(), &xe)
	msg := xe.Detail
	if msg == "" {
		msg = resp.Status()
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return expired(X, msg)
	}
	return failure(X, msg)
}

func (a *XAdapter) postTweet(ctx context.Context, creds Credentials, body map[string]any) PostResult {
	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(creds.AccessToken).
		SetBody(body).
		SetResult(&out).
		Post("/tweets")
	if err != nil {
		return failure(X, err.Error())
	}
	if resp.IsError() {
		return a.xFailure(resp)
	}
	url := fmt.Sprintf("https://x.com/%s/status/%s", creds.Handle, out.Data.ID)
	return success(X, out.Data.ID, url, resp.Body())
}

func (a *XAdapter) PostText(ctx context.Context, creds Credentials, content string) PostResult {
	return a.postTweet(ctx, creds, map[string]any{"text": content})
}

func (a *XAdapter) PostImage(ctx context.Context, creds Credentials, content, imageURL string) PostResult {
	mediaID, err := a.uploadMedia(ctx, creds, imageURL)
	if err != nil {
		return failure(X, fmt.Sprintf("media upload failed: %v", err))
	}
	return a.postTweet(ctx, creds, map[string]any{
		"text":  content,
		"media": map[string]any{"media_ids": []string{mediaID}},
	})
}

func (a *XAdapter) PostVideo(ctx context.Context, creds Credentials, content, videoURL string) PostResult {
	mediaID, err := a.uploadMedia(ctx, creds, videoURL)
	if err != nil {
		return failure(X, fmt.Sprintf("media upload failed: %v", err))
	}
	return a.postTweet(ctx, creds, map[string]any{
		"text":  content,
		"media": map[string]any{"media_ids": []string{mediaID}},
	})
}

// uploadMedia pulls the media bytes from our storage and pushes them to the
// v1.1 upload endpoint, which is still the only way to attach media to a
// v2 tweet.
func (a *XAdapter) uploadMedia(ctx context.Context, creds Credentials, mediaURL string) (string, error) {
	blob, err := a.upload.R().SetContext(ctx).Get(mediaURL)
	if err != nil {
		return "", err
	}
	if blob.IsError() {
		return "", fmt.Errorf("fetching media: %s", blob.Status())
	}

	var out struct {
		MediaIDString string `json:"media_id_string"`
	}
	resp, err := a.upload.R().
		SetContext(ctx).
		SetAuthToken(creds.AccessToken).
		SetFileReader("media", "media", bytes.NewReader(blob.Body())).
		SetResult(&out).
		Post("/media/upload.json")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("upload endpoint: %s", resp.Status())
	}
	return out.MediaIDString, nil
}

func (a *XAdapter) DeletePost(ctx context.Context, creds Credentials, postID string) (bool, error) {
	var out struct {
		Data struct {
			Deleted bool `json:"deleted"`
		} `json:"data"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(creds.AccessToken).
		SetResult(&out).
		Delete("/tweets/" + postID)
	if err != nil {
		return false, err
	}
	if resp.IsError() {
		return false, fmt.Errorf("x delete failed: %s", resp.Status())
	}
	return out.Data.Deleted, nil
}

func (a *XAdapter) GetEngagement(ctx context.Context, creds Credentials, postID string) (EngagementData, error) {
	var out struct {
		Data struct {
			PublicMetrics struct {
				LikeCount       int `json:"like_count"`
				ReplyCount      int `json:"reply_count"`
				RetweetCount    int `json:"retweet_count"`
				QuoteCount      int `json:"quote_count"`
				ImpressionCount int `json:"impression_count"`
			} `json:"public_metrics"`
		} `json:"data"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(creds.AccessToken).
		SetQueryParam("tweet.fields", "public_metrics").
		SetResult(&out).
		Get("/tweets/" + postID)
	if err != nil {
		return EngagementData{}, err
	}
	if resp.IsError() {
		return EngagementData{}, fmt.Errorf("x engagement fetch failed: %s", resp.Status())
	}
	m := out.Data.PublicMetrics
	return EngagementData{
		Likes:       m.LikeCount,
		Comments:    m.ReplyCount,
		Shares:      m.RetweetCount + m.QuoteCount,
		Impressions: m.ImpressionCount,
	}, nil
}

// ReplyToComment posts a reply tweet; on X a comment is just a tweet.
func (a *XAdapter) ReplyToComment(ctx context.Context, creds Credentials, commentID, content string) CommentResult {
	result := a.postTweet(ctx, creds, map[string]any{
		"text":  content,
		"reply": map[string]string{"in_reply_to_tweet_id": commentID},
	})
	return CommentResult{
		Success:      result.Success,
		Platform:     X,
		CommentID:    result.PostID,
		ErrorMessage: result.ErrorMessage,
	}
}

func (a *XAdapter) GetProfile(ctx context.Context, creds Credentials) (*Profile, error) {
	var out struct {
		Data struct {
			ID            string `json:"id"`
			Username      string `json:"username"`
			Name          string `json:"name"`
			PublicMetrics struct {
				FollowersCount int `json:"followers_count"`
				FollowingCount int `json:"following_count"`
			} `json:"public_metrics"`
		} `json:"data"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(creds.AccessToken).
		SetQueryParam("user.fields", "public_metrics").
		SetResult(&out).
		Get("/users/me")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("x profile fetch failed: %s", resp.Status())
	}
	return &Profile{
		UserID:         out.Data.ID,
		Username:       out.Data.Username,
		DisplayName:    out.Data.Name,
		FollowersCount: out.Data.PublicMetrics.FollowersCount,
		FollowingCount: out.Data.PublicMetrics.FollowingCount,
	}, nil
}

func (a *XAdapter) RefreshCredentials(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBasicAuth(a.cfg.XClientID, a.cfg.XClientSecret).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": refreshToken,
			"client_id":     a.cfg.XClientID,
		}).
		SetResult(&out).
		Post("/oauth2/token")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("x token refresh failed: %s", resp.Status())
	}
	return &TokenPair{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresIn:    out.ExpiresIn,
	}, nil
}
