package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	config "github.com/crosspilot/crosspilot/configs"
)

// BlueskyAdapter speaks the AT Protocol XRPC surface. Credentials carry the
// session accessJwt/refreshJwt pair; UserID is the account DID.
type BlueskyAdapter struct {
	cfg    config.Config
	client *resty.Client
}

func NewBlueskyAdapter(cfg config.Config) *BlueskyAdapter {
	base := strings.TrimSuffix(cfg.BlueskyServiceURL, "/") + "/xrpc"
	return &BlueskyAdapter{cfg: cfg, client: newClient(base)}
}

func (a *BlueskyAdapter) Platform() string { return Bluesky }

type xrpcError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *BlueskyAdapter) xrpcFailure(resp *resty.Response) PostResult {
	var xe xrpcError
	_ = json.Unmarshal(resp.Body(), &xe)
	msg := xe.Message
	if msg == "" {
		msg = resp.Status()
	}
	if resp.StatusCode() == http.StatusUnauthorized || xe.Error == "ExpiredToken" {
		return expired(Bluesky, msg)
	}
	return failure(Bluesky, msg)
}

type bskyRecord struct {
	Type      string    `json:"$type"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	Embed     any       `json:"embed,omitempty"`
	Reply     any       `json:"reply,omitempty"`
}

func (a *BlueskyAdapter) createRecord(ctx context.Context, creds Credentials, record bskyRecord) PostResult {
	var out struct {
		URI string `json:"uri"`
		CID string `json:"cid"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(creds.AccessToken).
		SetBody(map[string]any{
			"repo":       creds.UserID,
			"collection": "app.bsky.feed.post",
			"record":     record,
		}).
		SetResult(&out).
		Post("/com.atproto.repo.createRecord")
	if err != nil {
		return failure(Bluesky, err.Error())
	}
	if resp.IsError() {
		return a.xrpcFailure(resp)
	}
	return success(Bluesky, out.URI, postURLFromATURI(out.URI, creds.Handle), resp.Body())
}

// postURLFromATURI turns at://did:plc:xyz/app.bsky.feed.post/rkey into the
// public bsky.app permalink.
func postURLFromATURI(uri, handle string) string {
	parts := strings.Split(uri, "/")
	if len(parts) == 0 {
		return ""
	}
	rkey := parts[len(parts)-1]
	return fmt.Sprintf("https://bsky.app/profile/%s/post/%s", handle, rkey)
}

func (a *BlueskyAdapter) PostText(ctx context.Context, creds Credentials, content string) PostResult {
	return a.createRecord(ctx, creds, bskyRecord{
		Type:      "app.bsky.feed.post",
		Text:      content,
		CreatedAt: time.Now().UTC(),
	})
}

func (a *BlueskyAdapter) PostImage(ctx context.Context, creds Credentials, content, imageURL string) PostResult {
	blobRef, err := a.uploadBlob(ctx, creds, imageURL)
	if err != nil {
		return failure(Bluesky, fmt.Sprintf("blob upload failed: %v", err))
	}
	return a.createRecord(ctx, creds, bskyRecord{
		Type:      "app.bsky.feed.post",
		Text:      content,
		CreatedAt: time.Now().UTC(),
		Embed: map[string]any{
			"$type": "app.bsky.embed.images",
			"images": []map[string]any{
				{"alt": "", "image": blobRef},
			},
		},
	})
}

func (a *BlueskyAdapter) PostVideo(ctx context.Context, creds Credentials, content, videoURL string) PostResult {
	blobRef, err := a.uploadBlob(ctx, creds, videoURL)
	if err != nil {
		return failure(Bluesky, fmt.Sprintf("blob upload failed: %v", err))
	}
	return a.createRecord(ctx, creds, bskyRecord{
		Type:      "app.bsky.feed.post",
		Text:      content,
		CreatedAt: time.Now().UTC(),
		Embed: map[string]any{
			"$type": "app.bsky.embed.video",
			"video": blobRef,
		},
	})
}

func (a *BlueskyAdapter) uploadBlob(ctx context.Context, creds Credentials, mediaURL string) (json.RawMessage, error) {
	blob, err := a.client.R().SetContext(ctx).Get(mediaURL)
	if err != nil {
		return nil, err
	}
	if blob.IsError() {
		return nil, fmt.Errorf("fetching media: %s", blob.Status())
	}

	var out struct {
		Blob json.RawMessage `json:"blob"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(creds.AccessToken).
		SetHeader("Content-Type", blob.Header().Get("Content-Type")).
		SetBody(bytes.NewReader(blob.Body())).
		SetResult(&out).
		Post("/com.atproto.repo.uploadBlob")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("uploadBlob: %s", resp.Status())
	}
	return out.Blob, nil
}

func (a *BlueskyAdapter) DeletePost(ctx context.Context, creds Credentials, postID string) (bool, error) {
	parts := strings.Split(postID, "/")
	rkey := parts[len(parts)-1]
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(creds.AccessToken).
		SetBody(map[string]string{
			"repo":       creds.UserID,
			"collection": "app.bsky.feed.post",
			"rkey":       rkey,
		}).
		Post("/com.atproto.repo.deleteRecord")
	if err != nil {
		return false, err
	}
	if resp.IsError() {
		return false, fmt.Errorf("bluesky delete failed: %s", resp.Status())
	}
	return true, nil
}

func (a *BlueskyAdapter) GetEngagement(ctx context.Context, creds Credentials, postID string) (EngagementData, error) {
	var out struct {
		Thread struct {
			Post struct {
				LikeCount   int `json:"likeCount"`
				ReplyCount  int `json:"replyCount"`
				RepostCount int `json:"repostCount"`
				QuoteCount  int `json:"quoteCount"`
			} `json:"post"`
		} `json:"thread"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(creds.AccessToken).
		SetQueryParam("uri", postID).
		SetQueryParam("depth", "0").
		SetResult(&out).
		Get("/app.bsky.feed.getPostThread")
	if err != nil {
		return EngagementData{}, err
	}
	if resp.IsError() {
		return EngagementData{}, fmt.Errorf("bluesky engagement fetch failed: %s", resp.Status())
	}
	p := out.Thread.Post
	return EngagementData{
		Likes:    p.LikeCount,
		Comments: p.ReplyCount,
		Shares:   p.RepostCount + p.QuoteCount,
	}, nil
}

// ReplyToComment publishes a reply record. The commentID is the at-uri of
// the post being replied to; the reply must carry the parent's uri/cid, so
// one getPostThread lookup happens first.
func (a *BlueskyAdapter) ReplyToComment(ctx context.Context, creds Credentials, commentID, content string) CommentResult {
	var thread struct {
		Thread struct {
			Post struct {
				URI string `json:"uri"`
				CID string `json:"cid"`
			} `json:"post"`
		} `json:"thread"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(creds.AccessToken).
		SetQueryParam("uri", commentID).
		SetQueryParam("depth", "0").
		SetResult(&thread).
		Get("/app.bsky.feed.getPostThread")
	if err != nil {
		return CommentResult{Platform: Bluesky, ErrorMessage: err.Error()}
	}
	if resp.IsError() {
		return CommentResult{Platform: Bluesky, ErrorMessage: resp.Status()}
	}

	ref := map[string]string{"uri": thread.Thread.Post.URI, "cid": thread.Thread.Post.CID}
	result := a.createRecord(ctx, creds, bskyRecord{
		Type:      "app.bsky.feed.post",
		Text:      content,
		CreatedAt: time.Now().UTC(),
		Reply:     map[string]any{"root": ref, "parent": ref},
	})
	return CommentResult{
		Success:      result.Success,
		Platform:     Bluesky,
		CommentID:    result.PostID,
		ErrorMessage: result.ErrorMessage,
	}
}

func (a *BlueskyAdapter) GetProfile(ctx context.Context, creds Credentials) (*Profile, error) {
	var out struct {
		DID            string `json:"did"`
		Handle         string `json:"handle"`
		DisplayName    string `json:"displayName"`
		FollowersCount int    `json:"followersCount"`
		FollowsCount   int    `json:"followsCount"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(creds.AccessToken).
		SetQueryParam("actor", creds.UserID).
		SetResult(&out).
		Get("/app.bsky.actor.getProfile")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("bluesky profile fetch failed: %s", resp.Status())
	}
	return &Profile{
		UserID:         out.DID,
		Username:       out.Handle,
		DisplayName:    out.DisplayName,
		FollowersCount: out.FollowersCount,
		FollowingCount: out.FollowsCount,
	}, nil
}

func (a *BlueskyAdapter) RefreshCredentials(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var out struct {
		AccessJwt  string `json:"accessJwt"`
		RefreshJwt string `json:"refreshJwt"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(refreshToken).
		SetResult(&out).
		Post("/com.atproto.server.refreshSession")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("bluesky session refresh failed: %s", resp.Status())
	}
	// Session access tokens are short-lived, roughly two hours.
	return &TokenPair{
		AccessToken:  out.AccessJwt,
		RefreshToken: out.RefreshJwt,
		ExpiresIn:    7200,
	}, nil
}
