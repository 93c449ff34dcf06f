package server

import (
	"context"
	"net/http"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/slacklinehq/slackline/internal/models"
	"github.com/slacklinehq/slackline/internal/usecase"
)

// StreamHandler serves the live query surface over websockets: every remote
// change to a watched container pushes the full recomputed result set to the
// client. Closing the socket tears the subscriptions down before any further
// delivery.
type StreamHandler struct {
	chatUsecase    usecase.ChatUsecase
	sidebarUsecase usecase.SidebarUsecase
	upgrader       websocket.Upgrader
}

func NewStreamHandler(chatUsecase usecase.ChatUsecase, sidebarUsecase usecase.SidebarUsecase) *StreamHandler {
	return &StreamHandler{
		chatUsecase:    chatUsecase,
		sidebarUsecase: sidebarUsecase,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  2048,
			WriteBufferSize: 2048,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// streamEvent is one full-snapshot delivery. Error is sticky per container:
// when set, the accompanying result set is the last known good one.
// The slices never carry omitempty: an empty result set is a real snapshot
// and must arrive on the wire as an explicit [].
type streamEvent struct {
	Type     string           `json:"type"`
	Error    string           `json:"error,omitempty"`
	Messages []models.Message `json:"messages"`
	Channels []models.Channel `json:"channels"`
	Users    []models.User    `json:"users"`
}

// Chat streams the target's message window. An empty target falls back to
// the default channel.
func (h *StreamHandler) Chat(c echo.Context) error {
	target := models.DefaultTarget
	if c.Param("kind") != "" {
		kind, err := models.ParseChatKind(c.Param("kind"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		target = models.ChatTarget{Kind: kind, ID: c.Param("id")}
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	go watchClose(conn, cancel)

	sub := h.chatUsecase.Messages(ctx, target)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-sub.Snapshots():
			if !ok {
				return nil
			}
			evt := streamEvent{
				Type:     "messages",
				Error:    snap.Err,
				Messages: models.MessagesFromFields(snap.Docs),
			}
			if err := conn.WriteJSON(evt); err != nil {
				return nil
			}
		}
	}
}

// Sidebar streams the channel list and the other users' presence. Attaching
// marks the session online; detaching marks it offline, best effort.
func (h *StreamHandler) Sidebar(c echo.Context) error {
	sess := mustSession(c)

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	go watchClose(conn, cancel)

	if err := h.sidebarUsecase.Online(ctx, sess.UID); err != nil {
		log.Errorw(ctx, "presence online failed", "uid", sess.UID, "error", err)
	}
	// The presence write must survive the cancelled stream context.
	defer h.sidebarUsecase.Offline(context.WithoutCancel(ctx), sess.UID)

	channels := h.sidebarUsecase.Channels(ctx)
	defer channels.Close()
	users := h.sidebarUsecase.Users(ctx, sess.UID)
	defer users.Close()

	for {
		var evt streamEvent
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-channels.Snapshots():
			if !ok {
				return nil
			}
			evt = streamEvent{
				Type:     "channels",
				Error:    snap.Err,
				Channels: models.ChannelsFromFields(snap.Docs),
			}
		case snap, ok := <-users.Snapshots():
			if !ok {
				return nil
			}
			evt = streamEvent{
				Type:  "users",
				Error: snap.Err,
				Users: models.UsersFromFields(snap.Docs),
			}
		}
		if err := conn.WriteJSON(evt); err != nil {
			return nil
		}
	}
}

// watchClose drains the client side of the socket and cancels the stream
// when it goes away.
func watchClose(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
