package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/creatorlink/socialsync/internal/service"
)

type ProfileHandler struct {
	ps service.ProfileService
}

func NewProfileHandler(ps service.ProfileService) *ProfileHandler {
	return &ProfileHandler{ps: ps}
}

func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID := GetUserID(c)

	profile, err := h.ps.Get(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load profile",
		})
	}
	if profile == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Profile not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(profile)
}
