package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/slacklinehq/slackline/internal/models"
	"github.com/slacklinehq/slackline/internal/usecase"
)

type Controller interface {
	Health(c echo.Context) error
	ListChannels(c echo.Context) error
	CreateChannel(c echo.Context) error
	ListUsers(c echo.Context) error
	SendMessage(c echo.Context) error
	ToggleReaction(c echo.Context) error
}

type controller struct {
	chatUsecase    usecase.ChatUsecase
	sidebarUsecase usecase.SidebarUsecase
}

func NewController(chatUsecase usecase.ChatUsecase, sidebarUsecase usecase.SidebarUsecase) Controller {
	return &controller{
		chatUsecase:    chatUsecase,
		sidebarUsecase: sidebarUsecase,
	}
}

func (h *controller) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "slackline",
	})
}

func (h *controller) ListChannels(c echo.Context) error {
	channels, err := h.sidebarUsecase.ListChannels(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, channels)
}

type createChannelRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *controller) CreateChannel(c echo.Context) error {
	var req createChannelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := h.sidebarUsecase.CreateChannel(c.Request().Context(), mustSession(c), req.Name)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if id == "" {
		// Whitespace-only name: nothing was created.
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

func (h *controller) ListUsers(c echo.Context) error {
	users, err := h.sidebarUsecase.ListUsers(c.Request().Context(), mustSession(c).UID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, users)
}

type sendMessageRequest struct {
	Kind    string `param:"kind" validate:"required,chatkind"`
	ChatID  string `param:"id" validate:"required"`
	Content string `json:"content"`
	FileURL string `json:"file_url" validate:"omitempty,url"`
}

func (h *controller) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	target := models.ChatTarget{Kind: models.ChatKind(req.Kind), ID: req.ChatID}
	err := h.chatUsecase.SendMessage(c.Request().Context(), mustSession(c), target, req.Content, req.FileURL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusAccepted)
}

type toggleReactionRequest struct {
	Kind      string `param:"kind" validate:"required,chatkind"`
	ChatID    string `param:"id" validate:"required"`
	MessageID string `param:"messageID" validate:"required"`
	Reaction  string `json:"reaction" validate:"required"`
}

func (h *controller) ToggleReaction(c echo.Context) error {
	var req toggleReactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	target := models.ChatTarget{Kind: models.ChatKind(req.Kind), ID: req.ChatID}
	err := h.chatUsecase.ToggleReaction(c.Request().Context(), mustSession(c), target, req.MessageID, req.Reaction)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusAccepted)
}

// mustSession reads the session attached by the auth middleware. Routes using
// it are always behind SessionAuth.
func mustSession(c echo.Context) models.Session {
	sess, _ := c.Get("session").(models.Session)
	return sess
}
