package service_test

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/crosspilot/crosspilot/internal/models"
	"github.com/crosspilot/crosspilot/internal/platform"
	"github.com/crosspilot/crosspilot/internal/repository"
	"github.com/crosspilot/crosspilot/internal/service"
)

// fakeTxBeginner hands out no-op transactions and records how they end.
type fakeTxBeginner struct {
	mu     sync.Mutex
	begun  int
	lastTx *fakeTx
}

func (b *fakeTxBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (service.Tx, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.begun++
	b.lastTx = &fakeTx{}
	return b.lastTx, nil
}

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return nil, nil
}

func (t *fakeTx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return nil
}

func (t *fakeTx) Commit() error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback() error {
	t.rolledBack = true
	return nil
}

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[string]*models.Post
}

func newFakePostRepo(posts ...*models.Post) *fakePostRepo {
	r := &fakePostRepo{posts: make(map[string]*models.Post)}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

func (r *fakePostRepo) Create(ctx context.Context, tx repository.Execer, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID] = post
	return nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePostRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Post
	for _, p := range r.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePostRepo) Update(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID] = post
	return nil
}

func (r *fakePostRepo) TransitionStatus(ctx context.Context, id string, from []string, to string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if p.Status == f {
			p.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePostRepo) SetPublished(ctx context.Context, id, status string, publishedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[id]; ok {
		p.Status = status
		p.PublishedAt = publishedAt
	}
	return nil
}

func (r *fakePostRepo) ListDue(ctx context.Context, asOf time.Time) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Post
	for _, p := range r.posts {
		if p.Status == models.PostStatusScheduled && p.ScheduledAt != nil && !p.ScheduledAt.After(asOf) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePostRepo) CheckByUserID(ctx context.Context, postID string, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	return ok && p.UserID == userID, nil
}

func (r *fakePostRepo) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	return nil
}

type fakePostPlatformRepo struct {
	mu      sync.Mutex
	targets map[string]*models.PostPlatform
}

func newFakePostPlatformRepo(targets ...*models.PostPlatform) *fakePostPlatformRepo {
	r := &fakePostPlatformRepo{targets: make(map[string]*models.PostPlatform)}
	for _, t := range targets {
		r.targets[t.ID] = t
	}
	return r
}

func (r *fakePostPlatformRepo) Create(ctx context.Context, tx repository.Execer, pp *models.PostPlatform) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets[pp.ID] = pp
	return nil
}

func (r *fakePostPlatformRepo) GetByID(ctx context.Context, id string) (*models.PostPlatform, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.targets[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *fakePostPlatformRepo) ListByPostID(ctx context.Context, postID string) ([]*models.PostPlatform, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PostPlatform
	for _, t := range r.targets {
		if t.PostID == postID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePostPlatformRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.targets[id]; ok {
		t.Status = status
	}
	return nil
}

func (r *fakePostPlatformRepo) MarkPublished(ctx context.Context, id, platformPostID, platformPostURL string, publishedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.targets[id]; ok {
		t.Status = models.TargetStatusPublished
		t.PlatformPostID = platformPostID
		t.PlatformPostURL = platformPostURL
		t.PublishedAt = &publishedAt
		t.ErrorMessage = ""
	}
	return nil
}

func (r *fakePostPlatformRepo) MarkFailed(ctx context.Context, id, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.targets[id]; ok {
		t.Status = models.TargetStatusFailed
		t.ErrorMessage = errorMessage
	}
	return nil
}

func (r *fakePostPlatformRepo) UpdateEngagement(ctx context.Context, id string, data platform.EngagementData, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.targets[id]; ok {
		t.LikesCount = data.Likes
		t.CommentsCount = data.Comments
		t.SharesCount = data.Shares
		t.Impressions = data.Impressions
		t.Reach = data.Reach
		t.MetricsUpdatedAt = &at
	}
	return nil
}

func (r *fakePostPlatformRepo) ListPublishedSince(ctx context.Context, since time.Time) ([]*models.PostPlatform, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PostPlatform
	for _, t := range r.targets {
		if t.Status == models.TargetStatusPublished && t.PublishedAt != nil && t.PublishedAt.After(since) {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[int64]*models.SocialAccount
}

func newFakeAccountRepo(accounts ...*models.SocialAccount) *fakeAccountRepo {
	r := &fakeAccountRepo{accounts: make(map[int64]*models.SocialAccount)}
	for _, a := range accounts {
		r.accounts[a.ID] = a
	}
	return r
}

func (r *fakeAccountRepo) Create(ctx context.Context, tx repository.Execer, sa *models.SocialAccount) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[sa.ID] = sa
	return sa.ID, nil
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAccountRepo) GetActiveByUserAndPlatform(ctx context.Context, userID int64, platform string) (*models.SocialAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.UserID == userID && a.Platform == platform && a.IsActive {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.SocialAccount
	for _, a := range r.accounts {
		if a.UserID == userID && a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) ListExpiring(ctx context.Context, from, to time.Time) ([]*models.SocialAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.SocialAccount
	for _, a := range r.accounts {
		if a.IsActive && a.TokenExpiresAt.Before(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	return ok && a.UserID == userID && a.IsActive, nil
}

func (r *fakeAccountRepo) SetTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		if accessToken != "" {
			a.AccessToken = accessToken
		}
		if refreshToken != "" {
			a.RefreshToken = refreshToken
		}
		a.TokenExpiresAt = expiresAt
	}
	return nil
}

func (r *fakeAccountRepo) SyncProfile(ctx context.Context, id int64, displayName, username, picture string, followers, following int, syncedAt time.Time) error {
	return nil
}

func (r *fakeAccountRepo) Deactivate(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		a.IsActive = false
	}
	return nil
}

// stubAdapter routes every publish method through a single function so
// tests swap behavior per scenario.
type stubAdapter struct {
	name    string
	publish func(creds platform.Credentials, content string) platform.PostResult
	refresh func(refreshToken string) (*platform.TokenPair, error)
}

func (a *stubAdapter) Platform() string { return a.name }

func (a *stubAdapter) PostText(ctx context.Context, creds platform.Credentials, content string) platform.PostResult {
	return a.publish(creds, content)
}

func (a *stubAdapter) PostImage(ctx context.Context, creds platform.Credentials, content, imageURL string) platform.PostResult {
	return a.publish(creds, content)
}

func (a *stubAdapter) PostVideo(ctx context.Context, creds platform.Credentials, content, videoURL string) platform.PostResult {
	return a.publish(creds, content)
}

func (a *stubAdapter) DeletePost(ctx context.Context, creds platform.Credentials, postID string) (bool, error) {
	return false, nil
}

func (a *stubAdapter) GetEngagement(ctx context.Context, creds platform.Credentials, postID string) (platform.EngagementData, error) {
	return platform.EngagementData{}, nil
}

func (a *stubAdapter) ReplyToComment(ctx context.Context, creds platform.Credentials, commentID, content string) platform.CommentResult {
	return platform.CommentResult{}
}

func (a *stubAdapter) GetProfile(ctx context.Context, creds platform.Credentials) (*platform.Profile, error) {
	return nil, nil
}

func (a *stubAdapter) RefreshCredentials(ctx context.Context, refreshToken string) (*platform.TokenPair, error) {
	if a.refresh != nil {
		return a.refresh(refreshToken)
	}
	return &platform.TokenPair{AccessToken: "refreshed", ExpiresIn: 3600}, nil
}

type fakeTokenManager struct {
	mu        sync.Mutex
	refreshes int
	creds     platform.Credentials
	err       error
}

func (m *fakeTokenManager) Refresh(ctx context.Context, account *models.SocialAccount) (platform.Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshes++
	return m.creds, m.err
}
