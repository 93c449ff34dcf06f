package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/carousell/ct-go/pkg/logger"
	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"

	"github.com/slacklinehq/slackline/internal/auth"
	"github.com/slacklinehq/slackline/internal/config"
	pkgmdw "github.com/slacklinehq/slackline/internal/server/middleware"
)

func StartServer(
	lc fx.Lifecycle,
	sd fx.Shutdowner,
	conf *config.Config,
	handler Controller,
	authHandler AuthController,
	streams *StreamHandler,
	provider auth.Provider,
) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = pkgmdw.NewValidator()
	e.HTTPErrorHandler = errorHandler()

	logConfig := pkgmdw.LogRequestConfig{
		Logger: logger.MustNamed("http"),
		Enabled: func(c echo.Context) bool {
			uri := c.Request().RequestURI
			return uri != "/health" && uri != "/metrics"
		},
		KeyAndValues: func(c echo.Context) []any {
			if sess := mustSession(c); sess.UID != "" {
				return []any{"uid", sess.UID}
			}
			return nil
		},
	}

	e.Use(pkgmdw.Metrics())
	e.Use(pkgmdw.RequestID())
	e.Use(pkgmdw.LogRequest(logConfig))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Errorw(c.Request().Context(), "PANIC RECOVER", "error", err, "stack", string(stack))
			return nil
		},
	}))

	e.GET("/health", handler.Health)
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/ws/chats/channel/general")
	})

	api := e.Group("/api/v1")
	api.POST("/auth/signup", authHandler.SignUp)
	api.POST("/auth/signin", authHandler.SignIn)
	api.POST("/auth/anonymous", authHandler.SignInAnonymous)
	api.GET("/auth/methods", authHandler.Methods)

	authed := api.Group("", pkgmdw.SessionAuth(provider))
	authed.GET("/auth/me", authHandler.Me)
	authed.POST("/auth/signout", authHandler.SignOut)
	authed.GET("/channels", handler.ListChannels)
	authed.POST("/channels", handler.CreateChannel)
	authed.GET("/users", handler.ListUsers)
	authed.POST("/chats/:kind/:id/messages", handler.SendMessage)
	authed.POST("/chats/:kind/:id/messages/:messageID/reactions", handler.ToggleReaction)

	ws := e.Group("/ws", pkgmdw.SessionAuth(provider))
	ws.GET("/chats/:kind/:id", streams.Chat)
	ws.GET("/sidebar", streams.Sidebar)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Infow(ctx, "starting HTTP server", "addr", conf.Server.Addr)
				if err := e.Start(conf.Server.Addr); !errors.Is(err, http.ErrServerClosed) {
					sd.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}

func errorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			c.Logger().Error(err)
		} else {
			he = &echo.HTTPError{
				Code:    http.StatusInternalServerError,
				Message: http.StatusText(http.StatusInternalServerError),
			}
		}

		if !c.Response().Committed {
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(he.Code)
			} else {
				err = c.JSON(he.Code, he)
			}
			if err != nil {
				c.Logger().Error(err)
			}
		}
	}
}
