package handlers

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"github.com/crosspilot/crosspilot/internal/models"
	"github.com/crosspilot/crosspilot/internal/platform"
	"github.com/crosspilot/crosspilot/internal/queue"
	"github.com/crosspilot/crosspilot/internal/service"
	"github.com/crosspilot/crosspilot/internal/transfer"
)

type PostHandler struct {
	s           service.PostService
	ps          service.PublishService
	validate    *validator.Validate
	AsynqClient *asynq.Client
}

func NewPostHandler(s service.PostService, ps service.PublishService, asynqClient *asynq.Client) *PostHandler {
	return &PostHandler{
		s:           s,
		ps:          ps,
		validate:    validator.New(),
		AsynqClient: asynqClient,
	}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var pc transfer.PostCreation
	if err := c.BodyParser(&pc); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	if err := h.validate.Struct(&pc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	post, delay, err := h.s.Create(c.Context(), userID, &pc)
	if err != nil {
		return serviceError(c, err)
	}

	// Drafts wait for an explicit publish; scheduled posts get a
	// delayed task now and the poller as backstop.
	if post.ScheduledAt != nil {
		err = queue.EnqueuePost(h.AsynqClient, queue.PublishPostPayload{PostID: post.ID}, delay)
		if err != nil {
			slog.Info(err.Error())
		}
	}

	return c.Status(fiber.StatusCreated).JSON(transfer.PostResponse{Post: post})
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.Params("id")

	var pu transfer.PostUpdate
	if err := c.BodyParser(&pu); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	if err := h.validate.Struct(&pu); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	post, err := h.s.Update(c.Context(), userID, postID, &pu)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(transfer.PostResponse{Post: post})
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.Params("id")

	post, targets, err := h.s.PostInfo(c.Context(), userID, postID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(transfer.PostResponse{Post: post, Targets: targets})
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	posts, err := h.s.List(c.Context(), userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.Params("id")

	if err := h.s.Remove(c.Context(), userID, postID); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// PublishPost publishes immediately, regardless of schedule.
func (h *PostHandler) PublishPost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.Params("id")

	// Ownership check happens through PostInfo before the publish is
	// kicked off.
	if _, _, err := h.s.PostInfo(c.Context(), userID, postID); err != nil {
		return serviceError(c, err)
	}

	results, err := h.ps.Publish(c.Context(), postID)
	if err != nil {
		return serviceError(c, err)
	}

	post, _, err := h.s.PostInfo(c.Context(), userID, postID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(publishSummary(post, results))
}

func (h *PostHandler) RetryPost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.Params("id")

	results, err := h.ps.RetryFailed(c.Context(), userID, postID)
	if err != nil {
		return serviceError(c, err)
	}

	post, _, err := h.s.PostInfo(c.Context(), userID, postID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(publishSummary(post, results))
}

// publishSummary echoes the post's stored status rather than reducing
// the round's results, so a retry that fails again still reports a
// partially published post as published.
func publishSummary(post *models.Post, results map[string]platform.PostResult) transfer.PublishSummary {
	summary := transfer.PublishSummary{
		PostID:  post.ID,
		Status:  post.Status,
		Results: make(map[string]transfer.TargetResult, len(results)),
	}
	for id, r := range results {
		summary.Results[id] = transfer.TargetResult{
			Success:  r.Success,
			PostID:   r.PostID,
			PostURL:  r.PostURL,
			ErrorMsg: r.ErrorMessage,
		}
	}
	return summary
}
