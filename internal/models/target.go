package models

import (
	"fmt"
)

// ChatKind selects between a shared channel and a direct-message pair.
type ChatKind string

const (
	ChatKindChannel ChatKind = "channel"
	ChatKindDM      ChatKind = "dm"
)

// ChatTarget addresses one message container, mirroring the routing surface
// channel/{channelId} and dm/{userId}.
type ChatTarget struct {
	Kind ChatKind
	ID   string
}

// DefaultTarget is where unaddressed clients land.
var DefaultTarget = ChatTarget{Kind: ChatKindChannel, ID: "general"}

func ParseChatKind(s string) (ChatKind, error) {
	switch ChatKind(s) {
	case ChatKindChannel:
		return ChatKindChannel, nil
	case ChatKindDM:
		return ChatKindDM, nil
	}
	return "", fmt.Errorf("unknown chat kind %q", s)
}

// Container returns the message container path for the target.
func (t ChatTarget) Container() string {
	if t.Kind == ChatKindDM {
		return fmt.Sprintf("directMessages/%s/messages", t.ID)
	}
	return fmt.Sprintf("channels/%s/messages", t.ID)
}

// Containers for the flat, globally shared collections.
const (
	ContainerChannels = "channels"
	ContainerUsers    = "users"
	ContainerAccounts = "accounts"
)
