package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slacklinehq/slackline/internal/livequery"
	"github.com/slacklinehq/slackline/internal/models"
	pkgmdw "github.com/slacklinehq/slackline/internal/server/middleware"
	"github.com/slacklinehq/slackline/internal/store"
	"github.com/slacklinehq/slackline/internal/store/memory"
	"github.com/slacklinehq/slackline/internal/usecase"
)

func newTestController(t *testing.T) (Controller, *memory.Store, *echo.Echo) {
	t.Helper()
	st := memory.New()
	queries := livequery.NewManager(st)
	handler := NewController(
		usecase.NewChatUsecase(st, queries),
		usecase.NewSidebarUsecase(st, queries),
	)

	e := echo.New()
	e.Validator = pkgmdw.NewValidator()
	return handler, st, e
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func withSession(c echo.Context) {
	c.Set("session", models.Session{UID: "u1", DisplayName: "Alice"})
}

func TestHealth(t *testing.T) {
	t.Parallel()
	handler, _, e := newTestController(t)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	require.NoError(t, handler.Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestCreateChannelHandler(t *testing.T) {
	t.Parallel()

	t.Run("created", func(t *testing.T) {
		handler, st, e := newTestController(t)
		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/channels", `{"name":"random"}`), rec)
		withSession(c)

		require.NoError(t, handler.CreateChannel(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		docs, err := st.Query(c.Request().Context(), models.ContainerChannels, store.Query{})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "random", docs[0]["name"])
	})

	t.Run("whitespace name creates nothing", func(t *testing.T) {
		handler, st, e := newTestController(t)
		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/channels", `{"name":"   "}`), rec)
		withSession(c)

		require.NoError(t, handler.CreateChannel(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		docs, err := st.Query(c.Request().Context(), models.ContainerChannels, store.Query{})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("missing name", func(t *testing.T) {
		handler, _, e := newTestController(t)
		c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/channels", `{}`), httptest.NewRecorder())
		withSession(c)

		err := handler.CreateChannel(c)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}

func TestSendMessageHandler(t *testing.T) {
	t.Parallel()

	newContext := func(e *echo.Echo, kind, id, body string) (echo.Context, *httptest.ResponseRecorder) {
		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/", body), rec)
		c.SetPath("/api/v1/chats/:kind/:id/messages")
		c.SetParamNames("kind", "id")
		c.SetParamValues(kind, id)
		withSession(c)
		return c, rec
	}

	t.Run("accepted", func(t *testing.T) {
		handler, st, e := newTestController(t)
		c, rec := newContext(e, "channel", "general", `{"content":"hello"}`)

		require.NoError(t, handler.SendMessage(c))
		assert.Equal(t, http.StatusAccepted, rec.Code)

		docs, err := st.Query(c.Request().Context(), "channels/general/messages", store.Query{})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "hello", docs[0]["content"])
	})

	t.Run("unknown chat kind", func(t *testing.T) {
		handler, _, e := newTestController(t)
		c, _ := newContext(e, "group", "general", `{"content":"hello"}`)

		err := handler.SendMessage(c)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("invalid file url", func(t *testing.T) {
		handler, _, e := newTestController(t)
		c, _ := newContext(e, "channel", "general", `{"content":"x","file_url":"not a url"}`)

		err := handler.SendMessage(c)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}

func TestToggleReactionHandler(t *testing.T) {
	t.Parallel()
	handler, st, e := newTestController(t)

	id, err := st.Insert(t.Context(), "channels/general/messages", store.Fields{
		"user":      "Alice",
		"content":   "hello",
		"reactions": store.Fields{},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/", `{"reaction":"thumbsup"}`), rec)
	c.SetPath("/api/v1/chats/:kind/:id/messages/:messageID/reactions")
	c.SetParamNames("kind", "id", "messageID")
	c.SetParamValues("channel", "general", id)
	withSession(c)

	require.NoError(t, handler.ToggleReaction(c))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	doc, err := st.GetOnce(c.Request().Context(), "channels/general/messages", id)
	require.NoError(t, err)
	assert.True(t, models.MessageFromFields(doc).HasReaction("thumbsup", "u1"))
}
