package models

import (
	"time"

	"github.com/slacklinehq/slackline/internal/store"
	"github.com/slacklinehq/slackline/pkg/util"
)

// Channel is a flat, globally shared chat room. Channels are insert-only in
// this system: never mutated, never deleted.
type Channel struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func ChannelFromFields(f store.Fields) Channel {
	return Channel{
		ID:        fieldString(f, "id"),
		Name:      fieldString(f, "name"),
		CreatedBy: fieldString(f, "createdBy"),
		CreatedAt: fieldTime(f, "createdAt"),
	}
}

func ChannelsFromFields(docs []store.Fields) []Channel {
	return util.ConvertList(docs, ChannelFromFields)
}
