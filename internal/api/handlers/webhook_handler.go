package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/creatorlink/socialsync/internal/models"
	"github.com/creatorlink/socialsync/internal/service"
)

type WebhookHandler struct {
	s service.WebhookService
}

func NewWebhookHandler(service service.WebhookService) *WebhookHandler {
	return &WebhookHandler{s: service}
}

// ReceiveEvent accepts platform push notifications. Platforms expect a fast
// 200 regardless of whether the event maps to a known account.
func (h *WebhookHandler) ReceiveEvent(c *fiber.Ctx) error {
	platform, err := models.ParsePlatform(c.Params("platform"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var body struct {
		EventType      string `json:"event_type"`
		PlatformUserID string `json:"platform_user_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse payload",
		})
	}

	event := &models.WebhookEvent{
		Platform:       platform,
		EventType:      body.EventType,
		PlatformUserID: body.PlatformUserID,
		RawData:        append([]byte(nil), c.Body()...),
		Status:         models.WebhookStatusPending,
	}

	if err := h.s.Ingest(c.Context(), event); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to process event",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
