package models

import (
	"time"

	"github.com/slacklinehq/slackline/internal/store"
	"github.com/slacklinehq/slackline/pkg/util"
)

// Message is an append-only chat entry. Reactions is the only field mutated
// after creation, via atomic set add/remove keyed by (symbol, uid); a uid
// appears at most once per symbol set.
type Message struct {
	ID        string              `json:"id"`
	User      string              `json:"user"`
	Content   string              `json:"content"`
	Timestamp time.Time           `json:"timestamp"`
	Reactions map[string][]string `json:"reactions"`
	FileURL   string              `json:"file_url,omitempty"`
}

func MessageFromFields(f store.Fields) Message {
	return Message{
		ID:        fieldString(f, "id"),
		User:      fieldString(f, "user"),
		Content:   fieldString(f, "content"),
		Timestamp: fieldTime(f, "timestamp"),
		Reactions: fieldStringSetMap(f["reactions"]),
		FileURL:   fieldString(f, "fileUrl"),
	}
}

func MessagesFromFields(docs []store.Fields) []Message {
	return util.ConvertList(docs, MessageFromFields)
}

// HasReaction reports whether uid is in the symbol's reaction set.
func (m Message) HasReaction(symbol, uid string) bool {
	return util.SliceIncludes(m.Reactions[symbol], uid)
}
