package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"github.com/creatorlink/socialsync/internal/models"
	"github.com/creatorlink/socialsync/internal/queue"
	"github.com/creatorlink/socialsync/internal/repository"
	"github.com/creatorlink/socialsync/internal/service"
	"github.com/creatorlink/socialsync/internal/transfer"
)

type AccountHandler struct {
	ar          repository.SocialAccountRepository
	ss          service.SyncService
	AsynqClient *asynq.Client
}

func NewAccountHandler(ar repository.SocialAccountRepository, ss service.SyncService, asynqClient *asynq.Client) *AccountHandler {
	return &AccountHandler{ar: ar, ss: ss, AsynqClient: asynqClient}
}

func (h *AccountHandler) ListSocialAccounts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	accounts, err := h.ar.ListInfoByUserID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list social accounts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(accounts)
}

func (h *AccountHandler) RemoveSocialAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	accountID := c.QueryInt("id", 0)

	account, err := h.ar.GetByID(c.Context(), int64(accountID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if account == nil || account.UserID != userID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Social account not found",
		})
	}

	if err := h.ar.Remove(c.Context(), account.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove social account",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

// UpdateUsername changes the stored platform handle and enqueues a sync for
// that account so its metrics reflect the new identity without waiting for
// the next scheduled batch.
func (h *AccountHandler) UpdateUsername(c *fiber.Ctx) error {
	userID := GetUserID(c)
	accountID := c.QueryInt("id", 0)
	username := c.Query("username")

	if username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "username is required",
		})
	}

	account, err := h.ar.GetByID(c.Context(), int64(accountID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if account == nil || account.UserID != userID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Social account not found",
		})
	}

	if err := h.ar.UpdateUsername(c.Context(), account.ID, username); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to update username",
		})
	}

	job, err := h.ss.CreateJob(c.Context(), transfer.SyncRequest{
		JobType:   models.JobTypeSingleAccount,
		AccountID: account.ID,
	})
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Username updated, sync could not be scheduled",
		})
	}

	if err := queue.EnqueueSyncJob(h.AsynqClient, queue.TaskTypeSyncAccount, queue.SyncJobPayload{JobID: job.JobID}); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Username updated, sync could not be scheduled",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Username updated",
		"job_id":  job.JobID,
	})
}
