package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/crosspilot/crosspilot/internal/service"
)

type MediaHandler struct {
	s service.MediaService
}

func NewMediaHandler(s service.MediaService) *MediaHandler {
	return &MediaHandler{s: s}
}

func (h *MediaHandler) UploadMedia(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse form",
		})
	}

	files := form.File["files"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No files selected",
		})
	}

	urls := make([]string, 0, len(files))
	for _, file := range files {
		url, err := h.s.Upload(c.Context(), file)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		urls = append(urls, url)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"urls": urls,
	})
}
