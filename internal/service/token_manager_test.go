package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/crosspilot/crosspilot/internal/platform"
	"github.com/crosspilot/crosspilot/internal/service"
	"github.com/crosspilot/crosspilot/pkg/utils"
)

func TestTokenManagerRefresh(t *testing.T) {
	c := qt.New(t)

	account := testAccount(c, 10, "x")
	accounts := newFakeAccountRepo(account)

	adapter := &stubAdapter{name: "x"}
	adapter.refresh = func(refreshToken string) (*platform.TokenPair, error) {
		c.Assert(refreshToken, qt.Equals, "refresh-x")
		return &platform.TokenPair{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			ExpiresIn:    3600,
		}, nil
	}

	tm := service.NewTokenManager(testConfig(), platform.NewRegistry(adapter), accounts)

	creds, err := tm.Refresh(context.Background(), account)
	c.Assert(err, qt.IsNil)
	c.Assert(creds.AccessToken, qt.Equals, "new-access")
	c.Assert(creds.RefreshToken, qt.Equals, "new-refresh")

	// The stored tokens are encrypted, never plaintext.
	stored, _ := accounts.GetByID(context.Background(), 10)
	c.Assert(stored.AccessToken, qt.Not(qt.Equals), "new-access")
	decrypted, err := utils.Decrypt(stored.AccessToken, []byte(testSecretKey))
	c.Assert(err, qt.IsNil)
	c.Assert(decrypted, qt.Equals, "new-access")
	c.Assert(stored.TokenExpiresAt.After(time.Now()), qt.IsTrue)
}

func TestTokenManagerKeepsOldRefreshToken(t *testing.T) {
	c := qt.New(t)

	account := testAccount(c, 10, "x")
	accounts := newFakeAccountRepo(account)

	adapter := &stubAdapter{name: "x"}
	adapter.refresh = func(refreshToken string) (*platform.TokenPair, error) {
		// Platform returns no refresh token: the old one stays valid.
		return &platform.TokenPair{AccessToken: "new-access", ExpiresIn: 3600}, nil
	}

	tm := service.NewTokenManager(testConfig(), platform.NewRegistry(adapter), accounts)

	creds, err := tm.Refresh(context.Background(), account)
	c.Assert(err, qt.IsNil)
	c.Assert(creds.RefreshToken, qt.Equals, "refresh-x")

	stored, _ := accounts.GetByID(context.Background(), 10)
	decrypted, err := utils.Decrypt(stored.RefreshToken, []byte(testSecretKey))
	c.Assert(err, qt.IsNil)
	c.Assert(decrypted, qt.Equals, "refresh-x")
}

func TestTokenManagerCollapsesConcurrentRefreshes(t *testing.T) {
	c := qt.New(t)

	account := testAccount(c, 10, "x")
	accounts := newFakeAccountRepo(account)

	var upstreamCalls atomic.Int32
	adapter := &stubAdapter{name: "x"}
	adapter.refresh = func(refreshToken string) (*platform.TokenPair, error) {
		upstreamCalls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return &platform.TokenPair{AccessToken: "new-access", ExpiresIn: 3600}, nil
	}

	tm := service.NewTokenManager(testConfig(), platform.NewRegistry(adapter), accounts)

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			creds, err := tm.Refresh(context.Background(), account)
			c.Check(err, qt.IsNil)
			c.Check(creds.AccessToken, qt.Equals, "new-access")
		}()
	}
	close(start)
	wg.Wait()

	c.Assert(upstreamCalls.Load(), qt.Equals, int32(1))
}

func TestTokenManagerUnknownPlatform(t *testing.T) {
	c := qt.New(t)

	account := testAccount(c, 10, "myspace")
	tm := service.NewTokenManager(testConfig(), platform.NewRegistry(), newFakeAccountRepo(account))

	_, err := tm.Refresh(context.Background(), account)
	c.Assert(err, qt.ErrorMatches, "no adapter registered for platform myspace")
}
