package usecase

import (
	"context"

	"github.com/slacklinehq/slackline/internal/livequery"
	"github.com/slacklinehq/slackline/internal/models"
)

// ChatUsecase is the message view logic: a live window over one chat target
// plus the send and reaction-toggle mutations.
type ChatUsecase interface {
	Messages(ctx context.Context, target models.ChatTarget) *livequery.Subscription
	SendMessage(ctx context.Context, session models.Session, target models.ChatTarget, text, fileURL string) error
	ToggleReaction(ctx context.Context, session models.Session, target models.ChatTarget, messageID, symbol string) error
}

// SidebarUsecase is the channel/presence view logic: channel and user live
// lists, channel creation, and the mount/unmount presence writes.
type SidebarUsecase interface {
	Channels(ctx context.Context) *livequery.Subscription
	Users(ctx context.Context, selfUID string) *livequery.Subscription
	ListChannels(ctx context.Context) ([]models.Channel, error)
	ListUsers(ctx context.Context, selfUID string) ([]models.User, error)
	CreateChannel(ctx context.Context, session models.Session, name string) (string, error)
	Online(ctx context.Context, uid string) error
	Offline(ctx context.Context, uid string)
}
