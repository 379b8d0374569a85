package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	config "github.com/crosspilot/crosspilot/configs"
)

const threadsAPIBase = "https://graph.threads.net/v1.0"

// ThreadsAdapter uses the same container-then-publish flow as Instagram.
type ThreadsAdapter struct {
	cfg    config.Config
	client *resty.Client
}

func NewThreadsAdapter(cfg config.Config) *ThreadsAdapter {
	return &ThreadsAdapter{cfg: cfg, client: newClient(threadsAPIBase)}
}

func (a *ThreadsAdapter) Platform() string { return Threads }

func (a *ThreadsAdapter) threadsFailure(resp *resty.Response) PostResult {
	var ge graphError
	_ = json.Unmarshal(resp.Body(), &ge)
	msg := ge.Error.Message
	if msg == "" {
		msg = resp.Status()
	}
	if resp.StatusCode() == http.StatusUnauthorized || ge.Error.Code == 190 {
		return expired(Threads, msg)
	}
	return failure(Threads, msg)
}

func (a *ThreadsAdapter) publishContainer(ctx context.Context, creds Credentials, container map[string]string) PostResult {
	var created struct {
		ID string `json:"id"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", creds.AccessToken).
		SetQueryParams(container).
		SetResult(&created).
		Post(fmt.Sprintf("/%s/threads", creds.UserID))
	if err != nil {
		return failure(Threads, err.Error())
	}
	if resp.IsError() {
		return a.threadsFailure(resp)
	}

	var published struct {
		ID string `json:"id"`
	}
	resp, err = a.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", creds.AccessToken).
		SetQueryParam("creation_id", created.ID).
		SetResult(&published).
		Post(fmt.Sprintf("/%s/threads_publish", creds.UserID))
	if err != nil {
		return failure(Threads, err.Error())
	}
	if resp.IsError() {
		return a.threadsFailure(resp)
	}

	return success(Threads, published.ID, a.permalink(ctx, creds, published.ID), resp.Body())
}

func (a *ThreadsAdapter) permalink(ctx context.Context, creds Credentials, mediaID string) string {
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

func (a *ThreadsAdapter) PostText(ctx context.Context, creds Credentials, content string) PostResult {
	return a.publishContainer(ctx, creds, map[string]string{
		"media_type": "TEXT",
		"text":       content,
	})
}

func (a *ThreadsAdapter) PostImage(ctx context.Context, creds Credentials, content, imageURL string) PostResult {
	return a.publishContainer(ctx, creds, map[string]string{
		"media_type": "IMAGE",
		"image_url":  imageURL,
		"text":       content,
	})
}

func (a *ThreadsAdapter) PostVideo(ctx context.Context, creds Credentials, content, videoURL string) PostResult {
	return a.publishContainer(ctx, creds, map[string]string{
		"media_type": "VIDEO",
		"video_url":  videoURL,
		"text":       content,
	})
}

func (a *ThreadsAdapter) DeletePost(ctx context.Context, creds Credentials, postID string) (bool, error) {
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", creds.AccessToken).
		Delete("/" + postID)
	if err != nil {
		return false, err
	}
	if resp.IsError() {
		return false, fmt.Errorf("threads delete failed: %s", resp.Status())
	}
	return true, nil
}

func (a *ThreadsAdapter) GetEngagement(ctx context.Context, creds Credentials, postID string) (EngagementData, error) {
	var out struct {
		Data []struct {
			Name   string `json:"name"`
			Values []struct {
				Value int `json:"value"`
			} `json:"values"`
		} `json:"data"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", creds.AccessToken).
		SetQueryParam("metric", "likes,replies,reposts,views").
		SetResult(&out).
		Get(fmt.Sprintf("/%s/insights", postID))
	if err != nil {
		return EngagementData{}, err
	}
	if resp.IsError() {
		return EngagementData{}, fmt.Errorf("threads engagement fetch failed: %s", resp.Status())
	}

	var data EngagementData
	for _, metric := range out.Data {
		if len(metric.Values) == 0 {
			continue
		}
		value := metric.Values[0].Value
		switch metric.Name {
		case "likes":
			data.Likes = value
		case "replies":
			data.Comments = value
		case "reposts":
			data.Shares = value
		case "views":
			data.Impressions = value
		}
	}
	return data, nil
}

func (a *ThreadsAdapter) ReplyToComment(ctx context.Context, creds Credentials, commentID, content string) CommentResult {
	result := a.publishContainer(ctx, creds, map[string]string{
		"media_type":  "TEXT",
		"text":        content,
		"reply_to_id": commentID,
	})
	return CommentResult{
		Success:      result.Success,
		Platform:     Threads,
		CommentID:    result.PostID,
		ErrorMessage: result.ErrorMessage,
	}
}

func (a *ThreadsAdapter) GetProfile(ctx context.Context, creds Credentials) (*Profile, error) {
	var out struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Name     string `json:"name"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", creds.AccessToken).
		SetQueryParam("fields", "id,username,name").
		SetResult(&out).
		Get("/me")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("threads profile fetch failed: %s", resp.Status())
	}
	return &Profile{UserID: out.ID, Username: out.Username, DisplayName: out.Name}, nil
}

func (a *ThreadsAdapter) RefreshCredentials(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"grant_type":   "th_refresh_token",
			"access_token": refreshToken,
		}).
		SetResult(&out).
		Get("/refresh_access_token")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("threads token refresh failed: %s", resp.Status())
	}
	return &TokenPair{
		AccessToken:  out.AccessToken,
		RefreshToken: out.AccessToken,
		ExpiresIn:    out.ExpiresIn,
	}, nil
}
