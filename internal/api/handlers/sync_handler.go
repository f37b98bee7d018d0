package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"github.com/creatorlink/socialsync/internal/models"
	"github.com/creatorlink/socialsync/internal/queue"
	"github.com/creatorlink/socialsync/internal/service"
	"github.com/creatorlink/socialsync/internal/transfer"
)

type SyncHandler struct {
	s           service.SyncService
	AsynqClient *asynq.Client
}

func NewSyncHandler(service service.SyncService, asynqClient *asynq.Client) *SyncHandler {
	return &SyncHandler{s: service, AsynqClient: asynqClient}
}

// TriggerSync creates a sync job scoped by the type query parameter and
// hands it to the queue. With wait=true the job runs in-request and the
// finished row is returned instead of a pending one.
func (h *SyncHandler) TriggerSync(c *fiber.Ctx) error {
	jobType := models.JobType(c.Query("type", string(models.JobTypeUserSync)))

	req := transfer.SyncRequest{
		JobType:   jobType,
		UserID:    GetUserID(c),
		Platform:  models.Platform(c.Query("platform")),
		AccountID: int64(c.QueryInt("account_id", 0)),
	}

	job, err := h.s.CreateJob(c.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if c.QueryBool("wait", false) {
		finished, err := h.s.RunJob(c.Context(), job.JobID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusOK).JSON(finished)
	}

	err = queue.EnqueueSyncJob(h.AsynqClient, queue.TaskTypeFor(jobType), queue.SyncJobPayload{JobID: job.JobID})
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error scheduling sync job",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"job_id": job.JobID,
		"status": job.Status,
	})
}

func (h *SyncHandler) GetJobStatus(c *fiber.Ctx) error {
	jobID := c.Query("job_id")
	if jobID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job_id is required",
		})
	}

	job, err := h.s.JobStatus(c.Context(), jobID)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(job)
}

func (h *SyncHandler) GetStatistics(c *fiber.Ctx) error {
	days := c.QueryInt("days", 30)

	stats, err := h.s.Statistics(c.Context(), days)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}

func (h *SyncHandler) GetAccountHistory(c *fiber.Ctx) error {
	accountID := c.QueryInt("account_id", 0)
	if accountID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "account_id is required",
		})
	}

	snapshots, err := h.s.AccountHistory(c.Context(), int64(accountID), c.QueryInt("limit", 0))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list account history",
		})
	}

	return c.Status(fiber.StatusOK).JSON(snapshots)
}
