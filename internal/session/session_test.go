package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomaskoefod/feeddash/internal/database"
)

func newStore(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoginLogout(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	s, err := New(ctx, store)
	require.NoError(t, err)
	assert.False(t, s.IsAuthenticated())

	require.NoError(t, s.SetToken(ctx, "  abc123 "))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "abc123", s.Token())

	persisted, err := store.APIKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc123", persisted)

	require.NoError(t, s.Clear(ctx))
	assert.False(t, s.IsAuthenticated())
	persisted, err = store.APIKey(ctx)
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestRestoresPersistedToken(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.SetAPIKey(ctx, "from-last-run"))

	s, err := New(ctx, store)
	require.NoError(t, err)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "from-last-run", s.Token())
}

func TestRejectsEmptyToken(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, newStore(t))
	require.NoError(t, err)

	assert.ErrorIs(t, s.SetToken(ctx, "   "), ErrEmptyToken)
	assert.False(t, s.IsAuthenticated())
}

type failingStore struct{}

func (failingStore) APIKey(context.Context) (string, error)  { return "stale", nil }
func (failingStore) SetAPIKey(context.Context, string) error { return errors.New("disk full") }
func (failingStore) ClearAPIKey(context.Context) error       { return errors.New("disk full") }

func TestStoreFailures(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, failingStore{})
	require.NoError(t, err)

	assert.Error(t, s.SetToken(ctx, "new"))
	assert.Equal(t, "stale", s.Token(), "failed save keeps the previous token")

	assert.Error(t, s.Clear(ctx))
	assert.False(t, s.IsAuthenticated(), "logout wins even if the store fails")
}
