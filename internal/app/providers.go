package app

import (
	"context"
	"fmt"
	"time"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"go.uber.org/fx"

	"github.com/slacklinehq/slackline/internal/config"
	"github.com/slacklinehq/slackline/internal/store"
	"github.com/slacklinehq/slackline/internal/store/memory"
	"github.com/slacklinehq/slackline/internal/store/mongodb"
)

func newStore(lc fx.Lifecycle, cfg *config.Config) (store.Store, error) {
	switch cfg.Database.Driver {
	case "memory":
		return memory.New(), nil
	case "mongo":
		return newMongoStore(lc, cfg)
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}

func newMongoStore(lc fx.Lifecycle, cfg *config.Config) (store.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := mongodb.NewConnection(ctx, cfg.Database.URI, cfg.Database.Database)
	if err != nil {
		return nil, fmt.Errorf("init mongo client: %w", err)
	}
	st := mongodb.NewStore(db)

	watchCtx, stopWatch := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if cfg.Database.Watch {
				go func() {
					if err := st.WatchRemote(watchCtx); err != nil {
						log.Errorw(watchCtx, "remote change watch stopped", "error", err)
					}
				}()
			}
			return db.Client.Ping(ctx, nil)
		},
		OnStop: func(ctx context.Context) error {
			stopWatch()
			return db.Close(ctx)
		},
	})

	return st, nil
}
