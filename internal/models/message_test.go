package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slacklinehq/slackline/internal/models"
	"github.com/slacklinehq/slackline/internal/store"
)

func TestMessageFromFields(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msg := models.MessageFromFields(store.Fields{
		"id":        "m1",
		"user":      "Alice",
		"content":   "hello",
		"timestamp": ts,
		"reactions": map[string]any{
			"thumbsup": []any{"u1", "u2"},
			"heart":    []string{"u3"},
		},
		"fileUrl": "https://cdn.example.com/cat.png",
	})

	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, "Alice", msg.User)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, ts, msg.Timestamp)
	assert.Equal(t, "https://cdn.example.com/cat.png", msg.FileURL)
	assert.Equal(t, []string{"u1", "u2"}, msg.Reactions["thumbsup"])
	assert.Equal(t, []string{"u3"}, msg.Reactions["heart"])
}

func TestHasReaction(t *testing.T) {
	t.Parallel()

	msg := models.Message{Reactions: map[string][]string{"thumbsup": {"u1"}}}
	assert.True(t, msg.HasReaction("thumbsup", "u1"))
	assert.False(t, msg.HasReaction("thumbsup", "u2"))
	assert.False(t, msg.HasReaction("heart", "u1"))
}

func TestSessionSender(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Alice", models.Session{DisplayName: "Alice", Email: "a@example.com"}.Sender())
	assert.Equal(t, "a@example.com", models.Session{Email: "a@example.com"}.Sender())
}
