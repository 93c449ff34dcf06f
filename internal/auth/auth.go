// Package auth is the session provider: email/password and anonymous entry,
// stateless JWT session tokens, and the capability probe the sign-in form
// uses to decide which methods to offer.
package auth

import (
	"context"

	"github.com/slacklinehq/slackline/internal/models"
)

const (
	MethodPassword  = "password"
	MethodAnonymous = "anonymous"
)

// Credential is a live session plus the token that proves it.
type Credential struct {
	Session models.Session `json:"session"`
	Token   string         `json:"token"`
}

type Provider interface {
	SignUp(ctx context.Context, email, password, displayName string) (*Credential, error)
	SignIn(ctx context.Context, email, password string) (*Credential, error)
	SignInAnonymous(ctx context.Context) (*Credential, error)
	// SignOut marks the session's presence offline. The token itself is
	// stateless and simply expires.
	SignOut(ctx context.Context, session models.Session) error
	// Verify resolves a token back to its session.
	Verify(ctx context.Context, token string) (models.Session, error)
	// ProbeMethods returns the sign-in methods to offer. It degrades to
	// {password} when the probe itself fails.
	ProbeMethods(ctx context.Context, email string) []string
}
