package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/hibiken/asynq"

	"github.com/crosspilot/crosspilot/internal/service"
)

type Queue struct {
	ps service.PublishService
}

func NewQueue(ps service.PublishService) *Queue {
	return &Queue{ps: ps}
}

func (q *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	_, err := q.ps.Publish(ctx, payload.PostID)
	if err != nil {
		// The poller or another worker already claimed this post, or
		// it was deleted or rescheduled after the task was enqueued.
		// Either way retrying the task cannot help.
		if errors.Is(err, service.ErrAlreadyPublishing) ||
			errors.Is(err, service.ErrInvalidState) ||
			errors.Is(err, service.ErrNotFound) {
			log.Printf("Skipping publish task for post %s: %v", payload.PostID, err)
			return nil
		}
		return err
	}

	return nil
}
