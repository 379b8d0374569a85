package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	config "github.com/crosspilot/crosspilot/configs"
	"github.com/crosspilot/crosspilot/internal/models"
	"github.com/crosspilot/crosspilot/internal/platform"
	"github.com/crosspilot/crosspilot/internal/repository"
	"github.com/crosspilot/crosspilot/pkg/utils"
)

// TokenManager refreshes platform credentials. Concurrent refreshes
// for the same account collapse into a single upstream call so a burst
// of expired-token failures does not burn the refresh token.
type TokenManager interface {
	Refresh(ctx context.Context, account *models.SocialAccount) (platform.Credentials, error)
}

type tokenManager struct {
	cfg      config.Config
	registry *platform.Registry
	sa       repository.SocialAccountRepository
	group    singleflight.Group
}

func NewTokenManager(cfg config.Config, registry *platform.Registry, sa repository.SocialAccountRepository) TokenManager {
	return &tokenManager{
		cfg:      cfg,
		registry: registry,
		sa:       sa,
	}
}

func (m *tokenManager) Refresh(ctx context.Context, account *models.SocialAccount) (platform.Credentials, error) {
	key := strconv.FormatInt(account.ID, 10)
	v, err, _ := m.group.Do(key, func() (interface{}, error) {
		return m.refresh(ctx, account)
	})
	if err != nil {
		return platform.Credentials{}, err
	}
	return v.(platform.Credentials), nil
}

func (m *tokenManager) refresh(ctx context.Context, account *models.SocialAccount) (platform.Credentials, error) {
	adapter, ok := m.registry.Resolve(account.Platform)
	if !ok {
		return platform.Credentials{}, fmt.Errorf("no adapter registered for platform %s", account.Platform)
	}

	refreshToken, err := utils.Decrypt(account.RefreshToken, []byte(m.cfg.SecretKey))
	if err != nil {
		slog.Info(err.Error())
		return platform.Credentials{}, err
	}
	if refreshToken == "" {
		return platform.Credentials{}, errors.New("account has no refresh token")
	}

	pair, err := adapter.RefreshCredentials(ctx, refreshToken)
	if err != nil {
		slog.Info(err.Error())
		return platform.Credentials{}, err
	}

	encryptedAccess, err := utils.Encrypt([]byte(pair.AccessToken), []byte(m.cfg.SecretKey))
	if err != nil {
		return platform.Credentials{}, err
	}

	// Some platforms rotate the refresh token on every refresh, others
	// return it empty to mean "keep using the old one".
	encryptedRefresh := ""
	newRefresh := refreshToken
	if pair.RefreshToken != "" {
		newRefresh = pair.RefreshToken
		encryptedRefresh, err = utils.Encrypt([]byte(pair.RefreshToken), []byte(m.cfg.SecretKey))
		if err != nil {
			return platform.Credentials{}, err
		}
	}

	expiresAt := time.Now().Add(time.Duration(pair.ExpiresIn) * time.Second)
	if err := m.sa.SetTokens(ctx, account.ID, encryptedAccess, encryptedRefresh, expiresAt); err != nil {
		return platform.Credentials{}, err
	}

	return platform.Credentials{
		AccessToken:  pair.AccessToken,
		RefreshToken: newRefresh,
		UserID:       account.PlatformUserID,
		Handle:       account.Username,
	}, nil
}
