package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/slacklinehq/slackline/internal/livequery"
	"github.com/slacklinehq/slackline/internal/models"
	"github.com/slacklinehq/slackline/internal/store"
)

// messageWindow is how many of the most recent messages a chat view follows.
const messageWindow = 50

type chatUsecase struct {
	store   store.Store
	queries *livequery.Manager
}

func NewChatUsecase(st store.Store, queries *livequery.Manager) ChatUsecase {
	return &chatUsecase{
		store:   st,
		queries: queries,
	}
}

// Messages follows the target's most recent messages, delivered oldest
// first. The window query runs newest-first with a limit and the delivery is
// reversed, so after the window fills it is always the newest N that remain.
func (uc *chatUsecase) Messages(ctx context.Context, target models.ChatTarget) *livequery.Subscription {
	q := store.Query{Limit: messageWindow, Reverse: true}.
		OrderBy("timestamp", true)
	return uc.queries.Subscribe(ctx, target.Container(), q)
}

func (uc *chatUsecase) SendMessage(ctx context.Context, session models.Session, target models.ChatTarget, text, fileURL string) error {
	if strings.TrimSpace(text) == "" && fileURL == "" {
		return nil
	}
	if session.UID == "" {
		return fmt.Errorf("send message: no active session")
	}

	_, err := uc.store.Insert(ctx, target.Container(), store.Fields{
		"user":      session.Sender(),
		"content":   text,
		"timestamp": store.ServerTimestamp,
		"reactions": store.Fields{},
		"fileUrl":   fileURL,
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// ToggleReaction flips the acting uid's membership in the symbol's reaction
// set. The read only decides the direction; the write is an atomic set
// add/remove, so concurrent toggles from other users converge regardless of
// how stale the read was.
func (uc *chatUsecase) ToggleReaction(ctx context.Context, session models.Session, target models.ChatTarget, messageID, symbol string) error {
	if session.UID == "" {
		return fmt.Errorf("toggle reaction: no active session")
	}

	fields, err := uc.store.GetOnce(ctx, target.Container(), messageID)
	if err != nil {
		return fmt.Errorf("toggle reaction: %w", err)
	}
	message := models.MessageFromFields(fields)

	fieldPath := "reactions." + symbol
	if message.HasReaction(symbol, session.UID) {
		err = uc.store.AtomicSetRemove(ctx, target.Container(), messageID, fieldPath, session.UID)
	} else {
		err = uc.store.AtomicSetAdd(ctx, target.Container(), messageID, fieldPath, session.UID)
	}
	if err != nil {
		return fmt.Errorf("toggle reaction: %w", err)
	}
	return nil
}
