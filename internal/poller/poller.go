package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron"

	"github.com/crosspilot/crosspilot/internal/models"
	"github.com/crosspilot/crosspilot/internal/platform"
)

// DueSource lists posts whose scheduled time has passed.
type DueSource interface {
	DuePosts(ctx context.Context, asOf time.Time) ([]*models.Post, error)
}

// Publisher pushes a single post out to its platforms.
type Publisher interface {
	Publish(ctx context.Context, postID string) (map[string]platform.PostResult, error)
}

// Poller periodically sweeps for due scheduled posts and publishes
// them. It is the safety net behind the delayed task queue: a post
// whose queue delivery was lost still goes out on the next tick, and
// the publish-side status guard keeps the two paths from double
// posting.
type Poller struct {
	interval time.Duration
	due      DueSource
	pub      Publisher
	now      func() time.Time

	cron     *cron.Cron
	running  atomic.Bool
	tickMu   sync.Mutex
	lastTick atomic.Pointer[time.Time]
}

func New(interval time.Duration, due DueSource, pub Publisher) *Poller {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Poller{
		interval: interval,
		due:      due,
		pub:      pub,
		now:      time.Now,
	}
}

// Start begins the periodic sweep. Calling Start on a running poller
// is a no-op.
func (p *Poller) Start() {
	if !p.running.CompareAndSwap(false, true) {
		return
	}

	p.cron = cron.New()
	p.cron.AddFunc(fmt.Sprintf("@every %s", p.interval), func() {
		p.tick(context.Background())
	})
	p.cron.Start()
	slog.Info("poller started", "interval", p.interval.String())
}

// Stop halts the schedule and waits for an in-flight tick to finish.
// Publishes already started are never interrupted mid-flight.
func (p *Poller) Stop() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}

	p.cron.Stop()
	p.tickMu.Lock()
	p.tickMu.Unlock()
	slog.Info("poller stopped")
}

func (p *Poller) IsRunning() bool {
	return p.running.Load()
}

// CheckNow runs one sweep immediately, outside the schedule. The next
// scheduled tick is unaffected.
func (p *Poller) CheckNow(ctx context.Context) int {
	return p.tick(ctx)
}

func (p *Poller) Interval() time.Duration {
	return p.interval
}

func (p *Poller) LastTick() *time.Time {
	return p.lastTick.Load()
}

// tick publishes every due post sequentially, oldest first. The tick
// mutex keeps a slow sweep from overlapping with the next one.
func (p *Poller) tick(ctx context.Context) int {
	p.tickMu.Lock()
	defer p.tickMu.Unlock()

	now := p.now()
	p.lastTick.Store(&now)

	posts, err := p.due.DuePosts(ctx, now)
	if err != nil {
		slog.Info(err.Error())
		return 0
	}

	published := 0
	for _, post := range posts {
		if _, err := p.pub.Publish(ctx, post.ID); err != nil {
			// One bad post must not starve the rest of the sweep.
			slog.Info("failed to publish due post", "post_id", post.ID, "error", err.Error())
			continue
		}
		published++
	}

	if published > 0 {
		slog.Info("poller sweep complete", "due", len(posts), "published", published)
	}
	return published
}
