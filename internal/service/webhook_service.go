package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/creatorlink/socialsync/internal/models"
	"github.com/creatorlink/socialsync/internal/repository"
)

// WebhookService records platform push events and converts follower
// updates into webhook-sourced snapshots. The polling path works without
// any of this; push ingestion is an extension point.
type WebhookService interface {
	Ingest(ctx context.Context, event *models.WebhookEvent) error
	ProcessPending(ctx context.Context, limit int) (int, error)
}

type webhookService struct {
	accounts  repository.SocialAccountRepository
	snapshots repository.FollowerSnapshotRepository
	events    repository.WebhookEventRepository
}

func NewWebhookService(
	accounts repository.SocialAccountRepository,
	snapshots repository.FollowerSnapshotRepository,
	events repository.WebhookEventRepository) WebhookService {
	return &webhookService{
		accounts:  accounts,
		snapshots: snapshots,
		events:    events,
	}
}

func (s *webhookService) Ingest(ctx context.Context, event *models.WebhookEvent) error {
	id, err := s.events.Create(ctx, event)
	if err != nil {
		return err
	}
	event.ID = id

	return s.process(ctx, event)
}

// ProcessPending re-runs events still marked pending, which only happens
// when the server died between storing an event and settling its status.
func (s *webhookService) ProcessPending(ctx context.Context, limit int) (int, error) {
	events, err := s.events.ListPending(ctx, limit)
	if err != nil {
		return 0, err
	}

	var processed int
	for _, event := range events {
		if err := s.process(ctx, event); err != nil {
			slog.Info(err.Error())
			continue
		}
		processed++
	}
	return processed, nil
}

func (s *webhookService) process(ctx context.Context, event *models.WebhookEvent) error {
	id := event.ID

	if event.EventType != models.WebhookEventFollowerUpdate {
		return s.events.SetStatus(ctx, id, models.WebhookStatusIgnored, "")
	}

	account, err := s.accounts.GetByPlatformUserID(ctx, event.Platform, event.PlatformUserID)
	if err != nil {
		return err
	}
	if account == nil {
		return s.events.SetStatus(ctx, id, models.WebhookStatusIgnored, "no linked account for platform user")
	}

	var payload struct {
		FollowerCount  int64 `json:"follower_count"`
		FollowingCount int64 `json:"following_count"`
		PostsCount     int64 `json:"posts_count"`
	}
	if err := json.Unmarshal(event.RawData, &payload); err != nil {
		slog.Info(err.Error())
		return s.events.SetStatus(ctx, id, models.WebhookStatusFailed, "malformed payload")
	}

	snapshot := &models.FollowerSnapshot{
		AccountID:      account.ID,
		FollowerCount:  payload.FollowerCount,
		FollowingCount: payload.FollowingCount,
		PostsCount:     payload.PostsCount,
		SyncSource:     models.SyncSourceWebhook,
	}
	if err := s.snapshots.RecordSnapshot(ctx, snapshot); err != nil {
		if serr := s.events.SetStatus(ctx, id, models.WebhookStatusFailed, err.Error()); serr != nil {
			slog.Info(serr.Error())
		}
		return err
	}

	return s.events.SetStatus(ctx, id, models.WebhookStatusProcessed, "")
}
