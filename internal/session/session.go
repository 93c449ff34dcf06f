// Package session carries the authenticated identity through a request
// context. The session is attached once by the auth middleware and read
// explicitly wherever an operation needs the acting identity; there is no
// module-level current-user singleton.
package session

import (
	"context"

	"github.com/slacklinehq/slackline/internal/models"
)

type ctxKey struct{}

// With returns a context carrying the session.
func With(ctx context.Context, s models.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// From extracts the session, reporting whether one is attached.
func From(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(models.Session)
	return s, ok
}
