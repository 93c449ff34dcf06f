package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// WatchRemote feeds the change hub from a database-level change stream so
// that writes from other processes also invalidate live queries. Writes
// through this Store notify the hub directly; the stream only adds what we
// cannot see locally. Requires a replica set, so it is opt-in via config.
func (s *Store) WatchRemote(ctx context.Context) error {
	opts := options.ChangeStream().SetFullDocument(options.Default)
	stream, err := s.db.Database.Watch(ctx, mongo.Pipeline{}, opts)
	if err != nil {
		return fmt.Errorf("open change stream: %w", err)
	}
	defer stream.Close(ctx)

	log.Infow(ctx, "watching remote changes", "database", s.db.Database.Name())

	for stream.Next(ctx) {
		var event struct {
			NS struct {
				Coll string `bson:"coll"`
			} `bson:"ns"`
		}
		if err := stream.Decode(&event); err != nil {
			log.Errorw(ctx, "decode change event", "error", err)
			continue
		}
		if event.NS.Coll == "" {
			continue
		}
		s.hub.Notify(strings.ReplaceAll(event.NS.Coll, ".", "/"))
	}

	if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("change stream: %w", err)
	}
	return nil
}
