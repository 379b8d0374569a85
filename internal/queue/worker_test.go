package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/hibiken/asynq"

	"github.com/crosspilot/crosspilot/internal/platform"
	"github.com/crosspilot/crosspilot/internal/service"
)

type stubPublishService struct {
	published []string
	err       error
}

func (s *stubPublishService) Publish(ctx context.Context, postID string) (map[string]platform.PostResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.published = append(s.published, postID)
	return map[string]platform.PostResult{}, nil
}

func (s *stubPublishService) RetryFailed(ctx context.Context, userID int64, postID string) (map[string]platform.PostResult, error) {
	return nil, nil
}

func publishTask(c *qt.C, postID string) *asynq.Task {
	payload, err := json.Marshal(PublishPostPayload{PostID: postID})
	c.Assert(err, qt.IsNil)
	return asynq.NewTask(TaskTypePublishPost, payload)
}

func TestHandlePublishPostTask(t *testing.T) {
	c := qt.New(t)

	ps := &stubPublishService{}
	q := NewQueue(ps)

	err := q.HandlePublishPostTask(context.Background(), publishTask(c, "p1"))
	c.Assert(err, qt.IsNil)
	c.Assert(ps.published, qt.DeepEquals, []string{"p1"})
}

func TestHandlePublishPostTaskSkipsStaleTasks(t *testing.T) {
	c := qt.New(t)

	// A post already claimed by the poller must not requeue forever.
	for _, stale := range []error{service.ErrAlreadyPublishing, service.ErrInvalidState, service.ErrNotFound} {
		q := NewQueue(&stubPublishService{err: stale})
		err := q.HandlePublishPostTask(context.Background(), publishTask(c, "p1"))
		c.Assert(err, qt.IsNil)
	}
}

func TestHandlePublishPostTaskPropagatesRealErrors(t *testing.T) {
	c := qt.New(t)

	boom := errors.New("redis gone")
	q := NewQueue(&stubPublishService{err: boom})

	err := q.HandlePublishPostTask(context.Background(), publishTask(c, "p1"))
	c.Assert(err, qt.ErrorIs, boom)
}

func TestHandlePublishPostTaskBadPayload(t *testing.T) {
	c := qt.New(t)

	q := NewQueue(&stubPublishService{})
	err := q.HandlePublishPostTask(context.Background(), asynq.NewTask(TaskTypePublishPost, []byte("{not json")))
	c.Assert(err, qt.IsNotNil)
}
