package platform_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"

	config "github.com/crosspilot/crosspilot/configs"
	"github.com/crosspilot/crosspilot/internal/platform"
)

func blueskyTestServer(t *testing.T, handler http.HandlerFunc) *platform.BlueskyAdapter {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return platform.NewBlueskyAdapter(config.Config{BlueskyServiceURL: srv.URL})
}

func TestBlueskyPostText(t *testing.T) {
	c := qt.New(t)

	adapter := blueskyTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		c.Assert(r.URL.Path, qt.Equals, "/xrpc/com.atproto.repo.createRecord")
		c.Assert(r.Header.Get("Authorization"), qt.Equals, "Bearer jwt-123")

		var body struct {
			Repo       string `json:"repo"`
			Collection string `json:"collection"`
			Record     struct {
				Type string `json:"$type"`
				Text string `json:"text"`
			} `json:"record"`
		}
		c.Assert(json.NewDecoder(r.Body).Decode(&body), qt.IsNil)
		c.Assert(body.Repo, qt.Equals, "did:plc:abc")
		c.Assert(body.Collection, qt.Equals, "app.bsky.feed.post")
		c.Assert(body.Record.Type, qt.Equals, "app.bsky.feed.post")
		c.Assert(body.Record.Text, qt.Equals, "hello fediverse")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"uri": "at://did:plc:abc/app.bsky.feed.post/3k44",
			"cid": "bafyrei",
		})
	})

	creds := platform.Credentials{AccessToken: "jwt-123", UserID: "did:plc:abc", Handle: "tester.bsky.social"}
	result := adapter.PostText(context.Background(), creds, "hello fediverse")

	c.Assert(result.Success, qt.IsTrue)
	c.Assert(result.Platform, qt.Equals, platform.Bluesky)
	c.Assert(result.PostID, qt.Equals, "at://did:plc:abc/app.bsky.feed.post/3k44")
	c.Assert(result.PostURL, qt.Equals, "https://bsky.app/profile/tester.bsky.social/post/3k44")
}

func TestBlueskyExpiredToken(t *testing.T) {
	c := qt.New(t)

	adapter := blueskyTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "ExpiredToken",
			"message": "Token has expired",
		})
	})

	result := adapter.PostText(context.Background(), platform.Credentials{AccessToken: "stale"}, "hi")
	c.Assert(result.Success, qt.IsFalse)
	c.Assert(result.ErrCode, qt.Equals, platform.ErrCodeTokenExpired)
	c.Assert(result.ErrorMessage, qt.Equals, "Token has expired")
}

func TestBlueskyGetEngagement(t *testing.T) {
	c := qt.New(t)

	adapter := blueskyTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		c.Assert(r.URL.Path, qt.Equals, "/xrpc/app.bsky.feed.getPostThread")
		c.Assert(r.URL.Query().Get("uri"), qt.Equals, "at://did:plc:abc/app.bsky.feed.post/3k44")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"thread": map[string]any{
				"post": map[string]any{
					"likeCount":   12,
					"replyCount":  3,
					"repostCount": 4,
					"quoteCount":  1,
				},
			},
		})
	})

	data, err := adapter.GetEngagement(context.Background(), platform.Credentials{AccessToken: "jwt"}, "at://did:plc:abc/app.bsky.feed.post/3k44")
	c.Assert(err, qt.IsNil)
	c.Assert(data.Likes, qt.Equals, 12)
	c.Assert(data.Comments, qt.Equals, 3)
	// Reposts and quotes both count as shares.
	c.Assert(data.Shares, qt.Equals, 5)
}

func TestBlueskyRefreshCredentials(t *testing.T) {
	c := qt.New(t)

	adapter := blueskyTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		c.Assert(r.URL.Path, qt.Equals, "/xrpc/com.atproto.server.refreshSession")
		c.Assert(r.Header.Get("Authorization"), qt.Equals, "Bearer refresh-jwt")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"accessJwt":  "new-access",
			"refreshJwt": "new-refresh",
		})
	})

	pair, err := adapter.RefreshCredentials(context.Background(), "refresh-jwt")
	c.Assert(err, qt.IsNil)
	c.Assert(pair.AccessToken, qt.Equals, "new-access")
	c.Assert(pair.RefreshToken, qt.Equals, "new-refresh")
	c.Assert(pair.ExpiresIn, qt.Equals, 7200)
}

func TestBlueskyDeletePost(t *testing.T) {
	c := qt.New(t)

	adapter := blueskyTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		c.Assert(r.URL.Path, qt.Equals, "/xrpc/com.atproto.repo.deleteRecord")

		var body struct {
			Rkey string `json:"rkey"`
		}
		c.Assert(json.NewDecoder(r.Body).Decode(&body), qt.IsNil)
		c.Assert(body.Rkey, qt.Equals, "3k44")

		w.Write([]byte("{}"))
	})

	ok, err := adapter.DeletePost(context.Background(), platform.Credentials{AccessToken: "jwt", UserID: "did:plc:abc"}, "at://did:plc:abc/app.bsky.feed.post/3k44")
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
}
