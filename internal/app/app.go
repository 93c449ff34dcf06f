package app

import (
	"github.com/carousell/ct-go/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"

	"github.com/slacklinehq/slackline/internal/auth"
	"github.com/slacklinehq/slackline/internal/config"
	"github.com/slacklinehq/slackline/internal/livequery"
	"github.com/slacklinehq/slackline/internal/server"
	"github.com/slacklinehq/slackline/internal/usecase"
)

func Invoke(funcs ...any) *fx.App {
	log := logger.MustNamed("app")
	conf := config.MustLoad()
	log.Debugw("config loaded", log.Reflect("config", conf))
	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{
				Logger: log.Unwrap().Desugar(),
			}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Provide(
			newStore,
			livequery.NewManager,

			auth.NewProvider,

			usecase.NewChatUsecase,
			usecase.NewSidebarUsecase,

			server.NewController,
			server.NewAuthController,
			server.NewStreamHandler,
		),
		fx.Supply(conf),
		fx.Invoke(funcs...),
	)
}
