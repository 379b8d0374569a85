package handlers

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/crosspilot/crosspilot/internal/poller"
	"github.com/crosspilot/crosspilot/internal/scheduler"
	"github.com/crosspilot/crosspilot/internal/transfer"
)

type SchedulerHandler struct {
	sched    *scheduler.SmartScheduler
	poller   *poller.Poller
	validate *validator.Validate
}

func NewSchedulerHandler(sched *scheduler.SmartScheduler, p *poller.Poller) *SchedulerHandler {
	return &SchedulerHandler{
		sched:    sched,
		poller:   p,
		validate: validator.New(),
	}
}

func (h *SchedulerHandler) Suggestions(c *fiber.Ctx) error {
	var req transfer.SuggestionsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	suggestions, err := h.sched.SuggestionsForPlatforms(req.Platforms, time.Now())
	if err != nil {
		if errors.Is(err, scheduler.ErrNoPlatforms) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(transfer.SuggestionsResponse{Suggestions: suggestions})
}

func (h *SchedulerHandler) OptimalTime(c *fiber.Ctx) error {
	var req transfer.SuggestionsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	optimal, err := h.sched.OptimalSingleTime(req.Platforms, time.Now())
	if err != nil {
		if errors.Is(err, scheduler.ErrNoPlatforms) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(transfer.OptimalTimeResponse{Optimal: optimal})
}

func (h *SchedulerHandler) PollerStatus(c *fiber.Ctx) error {
	status := transfer.PollerStatus{
		Running:         h.poller.IsRunning(),
		IntervalSeconds: int(h.poller.Interval().Seconds()),
	}
	if last := h.poller.LastTick(); last != nil {
		status.LastTick = last.Format(time.RFC3339)
	}
	return c.Status(fiber.StatusOK).JSON(status)
}

func (h *SchedulerHandler) StartPoller(c *fiber.Ctx) error {
	h.poller.Start()
	return c.SendStatus(fiber.StatusOK)
}

func (h *SchedulerHandler) StopPoller(c *fiber.Ctx) error {
	h.poller.Stop()
	return c.SendStatus(fiber.StatusOK)
}

func (h *SchedulerHandler) CheckNow(c *fiber.Ctx) error {
	published := h.poller.CheckNow(c.Context())
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"published": published,
	})
}
