package usecase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slacklinehq/slackline/internal/livequery"
	"github.com/slacklinehq/slackline/internal/models"
	"github.com/slacklinehq/slackline/internal/store"
	"github.com/slacklinehq/slackline/internal/store/memory"
	"github.com/slacklinehq/slackline/internal/usecase"
)

func newSidebarFixture() (usecase.SidebarUsecase, *memory.Store) {
	st := memory.New()
	return usecase.NewSidebarUsecase(st, livequery.NewManager(st)), st
}

func TestCreateChannel(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("name is trimmed", func(t *testing.T) {
		uc, _ := newSidebarFixture()
		id, err := uc.CreateChannel(ctx, testSession, "  random  ")
		require.NoError(t, err)
		require.NotEmpty(t, id)

		channels, err := uc.ListChannels(ctx)
		require.NoError(t, err)
		require.Len(t, channels, 1)
		assert.Equal(t, "random", channels[0].Name)
		assert.Equal(t, "u1", channels[0].CreatedBy)
		assert.False(t, channels[0].CreatedAt.IsZero())
	})

	t.Run("whitespace-only name is a silent no-op", func(t *testing.T) {
		uc, _ := newSidebarFixture()
		id, err := uc.CreateChannel(ctx, testSession, "   ")
		require.NoError(t, err)
		assert.Empty(t, id)

		channels, err := uc.ListChannels(ctx)
		require.NoError(t, err)
		assert.Empty(t, channels)
	})
}

func TestListUsers(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	uc, st := newSidebarFixture()

	require.NoError(t, st.UpsertMerge(ctx, models.ContainerUsers, "u1", store.Fields{"name": "Alice"}))
	require.NoError(t, st.UpsertMerge(ctx, models.ContainerUsers, "u2", store.Fields{"name": "Bob"}))

	t.Run("excludes the caller", func(t *testing.T) {
		users, err := uc.ListUsers(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "Bob", users[0].Name)
	})

	t.Run("anonymous caller sees everyone", func(t *testing.T) {
		users, err := uc.ListUsers(ctx, "")
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})
}

func TestPresence(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	uc, st := newSidebarFixture()

	require.NoError(t, st.UpsertMerge(ctx, models.ContainerUsers, "u1", store.Fields{"name": "Alice"}))
	require.NoError(t, uc.Online(ctx, "u1"))

	doc, err := st.GetOnce(ctx, models.ContainerUsers, "u1")
	require.NoError(t, err)
	assert.Equal(t, true, doc["online"])
	assert.Equal(t, "Alice", doc["name"], "presence write must not clobber the profile")

	uc.Offline(ctx, "u1")
	doc, err = st.GetOnce(ctx, models.ContainerUsers, "u1")
	require.NoError(t, err)
	assert.Equal(t, false, doc["online"])
}

func TestSidebarSubscriptions(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	uc, _ := newSidebarFixture()

	sub := uc.Channels(ctx)
	defer sub.Close()

	select {
	case snap := <-sub.Snapshots():
		assert.Empty(t, snap.Err)
		assert.Empty(t, snap.Docs)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the initial snapshot")
	}

	_, err := uc.CreateChannel(ctx, testSession, "random")
	require.NoError(t, err)

	select {
	case snap := <-sub.Snapshots():
		require.Len(t, snap.Docs, 1)
		assert.Equal(t, "random", snap.Docs[0]["name"])
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the change snapshot")
	}
}
