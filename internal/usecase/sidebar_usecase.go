package usecase

import (
	"context"
	"fmt"
	"strings"

	log "github.com/carousell/ct-go/pkg/logger/log_context"

	"github.com/slacklinehq/slackline/internal/livequery"
	"github.com/slacklinehq/slackline/internal/models"
	"github.com/slacklinehq/slackline/internal/store"
)

type sidebarUsecase struct {
	store   store.Store
	queries *livequery.Manager
}

func NewSidebarUsecase(st store.Store, queries *livequery.Manager) SidebarUsecase {
	return &sidebarUsecase{
		store:   st,
		queries: queries,
	}
}

func (uc *sidebarUsecase) Channels(ctx context.Context) *livequery.Subscription {
	return uc.queries.Subscribe(ctx, models.ContainerChannels, store.Query{})
}

func (uc *sidebarUsecase) Users(ctx context.Context, selfUID string) *livequery.Subscription {
	if selfUID == "" {
		selfUID = "none"
	}
	q := store.Query{}.Where("id", store.OpNotEqual, selfUID)
	return uc.queries.Subscribe(ctx, models.ContainerUsers, q)
}

func (uc *sidebarUsecase) ListChannels(ctx context.Context) ([]models.Channel, error) {
	docs, err := uc.store.Query(ctx, models.ContainerChannels, store.Query{})
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	return models.ChannelsFromFields(docs), nil
}

func (uc *sidebarUsecase) ListUsers(ctx context.Context, selfUID string) ([]models.User, error) {
	if selfUID == "" {
		selfUID = "none"
	}
	q := store.Query{}.Where("id", store.OpNotEqual, selfUID)
	docs, err := uc.store.Query(ctx, models.ContainerUsers, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return models.UsersFromFields(docs), nil
}

func (uc *sidebarUsecase) CreateChannel(ctx context.Context, session models.Session, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}

	id, err := uc.store.Insert(ctx, models.ContainerChannels, store.Fields{
		"name":      name,
		"createdBy": session.UID,
		"createdAt": store.ServerTimestamp,
	})
	if err != nil {
		return "", fmt.Errorf("create channel: %w", err)
	}
	return id, nil
}

// Online marks the uid's presence record. Merge semantics: profile fields
// written at sign-in stay untouched.
func (uc *sidebarUsecase) Online(ctx context.Context, uid string) error {
	err := uc.store.UpsertMerge(ctx, models.ContainerUsers, uid, store.Fields{"online": true})
	if err != nil {
		return fmt.Errorf("presence online: %w", err)
	}
	return nil
}

// Offline is best-effort: failures are logged, never retried or surfaced.
func (uc *sidebarUsecase) Offline(ctx context.Context, uid string) {
	err := uc.store.UpsertMerge(ctx, models.ContainerUsers, uid, store.Fields{"online": false})
	if err != nil {
		log.Errorw(ctx, "presence offline failed", "uid", uid, "error", err)
	}
}
