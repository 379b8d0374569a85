package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/robfig/cron"

	"github.com/crosspilot/crosspilot/internal/models"
	"github.com/crosspilot/crosspilot/internal/platform"
)

type fakeDueSource struct {
	mu    sync.Mutex
	posts []*models.Post
	asOf  []time.Time
	err   error
}

func (f *fakeDueSource) DuePosts(ctx context.Context, asOf time.Time) ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asOf = append(f.asOf, asOf)
	if f.err != nil {
		return nil, f.err
	}
	return f.posts, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []string
	failOn    map[string]error
}

func (f *fakePublisher) Publish(ctx context.Context, postID string) (map[string]platform.PostResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failOn[postID]; ok {
		return nil, err
	}
	f.published = append(f.published, postID)
	return map[string]platform.PostResult{}, nil
}

func TestCheckNowPublishesDuePosts(t *testing.T) {
	c := qt.New(t)

	frozen := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	due := &fakeDueSource{posts: []*models.Post{{ID: "p1"}, {ID: "p2"}}}
	pub := &fakePublisher{}

	p := New(time.Minute, due, pub)
	p.now = func() time.Time { return frozen }

	published := p.CheckNow(context.Background())
	c.Assert(published, qt.Equals, 2)
	c.Assert(pub.published, qt.DeepEquals, []string{"p1", "p2"})

	// The sweep queried with the injected clock, not wall time.
	c.Assert(due.asOf, qt.DeepEquals, []time.Time{frozen})
	c.Assert(p.LastTick().Equal(frozen), qt.IsTrue)
}

func TestCheckNowIsolatesFailingPost(t *testing.T) {
	c := qt.New(t)

	due := &fakeDueSource{posts: []*models.Post{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}}}
	pub := &fakePublisher{failOn: map[string]error{"p2": errors.New("boom")}}

	p := New(time.Minute, due, pub)

	published := p.CheckNow(context.Background())
	c.Assert(published, qt.Equals, 2)
	c.Assert(pub.published, qt.DeepEquals, []string{"p1", "p3"})
}

func TestCheckNowSourceError(t *testing.T) {
	c := qt.New(t)

	due := &fakeDueSource{err: errors.New("db down")}
	p := New(time.Minute, due, &fakePublisher{})

	c.Assert(p.CheckNow(context.Background()), qt.Equals, 0)
}

func TestStartIsIdempotent(t *testing.T) {
	c := qt.New(t)

	p := New(time.Hour, &fakeDueSource{}, &fakePublisher{})
	c.Assert(p.IsRunning(), qt.IsFalse)

	p.Start()
	c.Assert(p.IsRunning(), qt.IsTrue)
	first := p.cron

	// A second Start must not replace the schedule.
	p.Start()
	c.Assert(p.cron, qt.Equals, first)

	p.Stop()
	c.Assert(p.IsRunning(), qt.IsFalse)

	// Stopping twice is safe.
	p.Stop()
	c.Assert(p.IsRunning(), qt.IsFalse)
}

func TestStopWaitsForInFlightTick(t *testing.T) {
	c := qt.New(t)

	started := make(chan struct{})
	release := make(chan struct{})

	due := &fakeDueSource{posts: []*models.Post{{ID: "p1"}}}
	pub := &fakePublisher{}
	p := New(time.Hour, due, pub)
	p.running.Store(true)
	p.cron = cron.New()

	go func() {
		p.tickMu.Lock()
		close(started)
		<-release
		p.tickMu.Unlock()
	}()

	<-started
	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()

	select {
	case <-done:
		c.Fatal("Stop returned while a tick was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		c.Fatal("Stop never returned after the tick finished")
	}
}

func TestDefaultInterval(t *testing.T) {
	c := qt.New(t)

	p := New(0, &fakeDueSource{}, &fakePublisher{})
	c.Assert(p.Interval(), qt.Equals, time.Minute)
}
