package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/slacklinehq/slackline/internal/auth"
	"github.com/slacklinehq/slackline/internal/session"
)

const sessionKey = "session"

// SessionAuth resolves the bearer token (or the "token" query parameter for
// websocket upgrades, which cannot carry headers from a browser) and attaches
// the session to both the echo context and the request context.
func SessionAuth(provider auth.Provider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
			}

			ctx := c.Request().Context()
			sess, err := provider.Verify(ctx, token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(sessionKey, sess)
			c.SetRequest(c.Request().WithContext(session.With(ctx, sess)))
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if token := strings.TrimPrefix(header, "Bearer "); token != header {
		return token
	}
	return c.QueryParam("token")
}
