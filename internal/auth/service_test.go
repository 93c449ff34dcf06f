package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slacklinehq/slackline/internal/auth"
	"github.com/slacklinehq/slackline/internal/config"
	"github.com/slacklinehq/slackline/internal/models"
	"github.com/slacklinehq/slackline/internal/store"
	"github.com/slacklinehq/slackline/internal/store/memory"
)

func newProvider(st store.Store) auth.Provider {
	conf := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret: "test-secret",
			TokenTTL:  time.Hour,
		},
	}
	return auth.NewProvider(conf, st)
}

// brokenStore fails every write, to drive the degraded auth paths.
type brokenStore struct {
	store.Store
}

func (b brokenStore) UpsertMerge(ctx context.Context, container, id string, fields store.Fields) error {
	return errors.New("store unavailable")
}

func authCode(t *testing.T, err error) models.AuthErrorCode {
	t.Helper()
	var ae *models.AuthError
	require.ErrorAs(t, err, &ae)
	return ae.Code
}

func TestSignUp(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("creates account and user profile", func(t *testing.T) {
		st := memory.New()
		p := newProvider(st)

		cred, err := p.SignUp(ctx, "alice@example.com", "hunter22", "Alice")
		require.NoError(t, err)
		require.NotEmpty(t, cred.Token)
		assert.Equal(t, "Alice", cred.Session.DisplayName)
		assert.Equal(t, "alice@example.com", cred.Session.Email)

		profile, err := st.GetOnce(ctx, models.ContainerUsers, cred.Session.UID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", profile["name"])
		assert.Equal(t, true, profile["online"])
	})

	t.Run("display name falls back to email", func(t *testing.T) {
		p := newProvider(memory.New())
		cred, err := p.SignUp(ctx, "bob@example.com", "hunter22", "")
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", cred.Session.DisplayName)
	})

	t.Run("invalid email", func(t *testing.T) {
		p := newProvider(memory.New())
		_, err := p.SignUp(ctx, "not-an-email", "hunter22", "X")
		assert.Equal(t, models.AuthCodeInvalidEmail, authCode(t, err))
	})

	t.Run("duplicate email", func(t *testing.T) {
		p := newProvider(memory.New())
		_, err := p.SignUp(ctx, "alice@example.com", "hunter22", "Alice")
		require.NoError(t, err)
		_, err = p.SignUp(ctx, "alice@example.com", "other", "Alice2")
		assert.Equal(t, models.AuthCodeEmailInUse, authCode(t, err))
	})
}

func TestSignIn(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	signUp := func(t *testing.T, p auth.Provider) *auth.Credential {
		t.Helper()
		cred, err := p.SignUp(ctx, "alice@example.com", "hunter22", "Alice")
		require.NoError(t, err)
		return cred
	}

	t.Run("round trip", func(t *testing.T) {
		p := newProvider(memory.New())
		created := signUp(t, p)

		cred, err := p.SignIn(ctx, "alice@example.com", "hunter22")
		require.NoError(t, err)
		assert.Equal(t, created.Session.UID, cred.Session.UID)

		sess, err := p.Verify(ctx, cred.Token)
		require.NoError(t, err)
		assert.Equal(t, created.Session.UID, sess.UID)
		assert.Equal(t, "Alice", sess.DisplayName)
		assert.False(t, sess.Anonymous)
	})

	t.Run("unknown email", func(t *testing.T) {
		p := newProvider(memory.New())
		_, err := p.SignIn(ctx, "ghost@example.com", "hunter22")
		assert.Equal(t, models.AuthCodeUserNotFound, authCode(t, err))
	})

	t.Run("wrong password", func(t *testing.T) {
		p := newProvider(memory.New())
		signUp(t, p)
		_, err := p.SignIn(ctx, "alice@example.com", "wrong")
		assert.Equal(t, models.AuthCodeWrongPassword, authCode(t, err))
	})

	t.Run("disabled account", func(t *testing.T) {
		st := memory.New()
		p := newProvider(st)
		signUp(t, p)

		docs, err := st.Query(ctx, models.ContainerAccounts,
			store.Query{}.Where("email", store.OpEqual, "alice@example.com"))
		require.NoError(t, err)
		require.Len(t, docs, 1)
		id := docs[0]["id"].(string)
		require.NoError(t, st.UpsertMerge(ctx, models.ContainerAccounts, id, store.Fields{"disabled": true}))

		_, err = p.SignIn(ctx, "alice@example.com", "hunter22")
		assert.Equal(t, models.AuthCodeUserDisabled, authCode(t, err))
	})
}

func TestSignInAnonymous(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("issues an anonymous session", func(t *testing.T) {
		p := newProvider(memory.New())
		cred, err := p.SignInAnonymous(ctx)
		require.NoError(t, err)
		assert.True(t, cred.Session.Anonymous)
		assert.Equal(t, "Anonymous User", cred.Session.DisplayName)

		sess, err := p.Verify(ctx, cred.Token)
		require.NoError(t, err)
		assert.True(t, sess.Anonymous)
	})

	t.Run("self-disables after one failure", func(t *testing.T) {
		p := newProvider(brokenStore{memory.New()})

		_, err := p.SignInAnonymous(ctx)
		require.Error(t, err)

		_, err = p.SignInAnonymous(ctx)
		assert.Equal(t, models.AuthCodeRestrictedOperation, authCode(t, err))

		methods := p.ProbeMethods(ctx, "")
		assert.Equal(t, []string{auth.MethodPassword}, methods)
	})
}

func TestProbeMethods(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("default offering", func(t *testing.T) {
		p := newProvider(memory.New())
		methods := p.ProbeMethods(ctx, "")
		assert.Equal(t, []string{auth.MethodPassword, auth.MethodAnonymous}, methods)
	})

	t.Run("known account reports its methods", func(t *testing.T) {
		p := newProvider(memory.New())
		_, err := p.SignUp(ctx, "alice@example.com", "hunter22", "Alice")
		require.NoError(t, err)

		methods := p.ProbeMethods(ctx, "alice@example.com")
		assert.Equal(t, []string{auth.MethodPassword}, methods)
	})
}

func TestSignOut(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("marks presence offline", func(t *testing.T) {
		st := memory.New()
		p := newProvider(st)
		cred, err := p.SignUp(ctx, "alice@example.com", "hunter22", "Alice")
		require.NoError(t, err)

		require.NoError(t, p.SignOut(ctx, cred.Session))

		profile, err := st.GetOnce(ctx, models.ContainerUsers, cred.Session.UID)
		require.NoError(t, err)
		assert.Equal(t, false, profile["online"])
	})

	t.Run("never fails over a presence write", func(t *testing.T) {
		p := newProvider(brokenStore{memory.New()})
		assert.NoError(t, p.SignOut(ctx, models.Session{UID: "u1"}))
	})
}

func TestVerify(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	p := newProvider(memory.New())

	t.Run("garbage token", func(t *testing.T) {
		_, err := p.Verify(ctx, "not-a-token")
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := auth.NewProvider(&config.Config{
			Auth: config.AuthConfig{JWTSecret: "other-secret", TokenTTL: time.Hour},
		}, memory.New())
		cred, err := other.SignInAnonymous(ctx)
		require.NoError(t, err)

		_, err = p.Verify(ctx, cred.Token)
		assert.Error(t, err)
	})
}
