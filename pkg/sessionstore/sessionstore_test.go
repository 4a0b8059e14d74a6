package sessionstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vetraconnect/vetra/pkg/auth"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAndLoad(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	session := auth.Session{
		AccessToken:  "access-token-1",
		RefreshToken: "refresh-token-1",
		IDToken:      "id-token-1",
	}
	require.NoError(t, store.Save(ctx, "driver@example.com", session))

	got, err := store.Load(ctx, "driver@example.com")
	require.NoError(t, err)
	require.Equal(t, session, got)
}

func TestSaveReplacesThePreviousSession(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	first := auth.Session{AccessToken: "access-token-1", RefreshToken: "refresh-token-1"}
	second := auth.Session{AccessToken: "access-token-2", RefreshToken: "refresh-token-2"}

	require.NoError(t, store.Save(ctx, "driver@example.com", first))
	require.NoError(t, store.Save(ctx, "driver@example.com", second))

	got, err := store.Load(ctx, "driver@example.com")
	require.NoError(t, err)
	require.Equal(t, second, got)
}

func TestLoadUnknownAccount(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.Load(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSessionsAreKeyedByEmail(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "one@example.com", auth.Session{AccessToken: "access-one"}))
	require.NoError(t, store.Save(ctx, "two@example.com", auth.Session{AccessToken: "access-two"}))

	got, err := store.Load(ctx, "two@example.com")
	require.NoError(t, err)
	require.Equal(t, "access-two", got.AccessToken)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "driver@example.com", auth.Session{AccessToken: "access-token-1"}))
	require.NoError(t, store.Delete(ctx, "driver@example.com"))

	_, err := store.Load(ctx, "driver@example.com")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, "driver@example.com"), "deleting a missing session is fine")
}

func TestOpenPrunesStaleSessions(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sessions.db")

	store, err := Open(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "stale@example.com", auth.Session{AccessToken: "access-stale"}))
	require.NoError(t, store.Save(ctx, "fresh@example.com", auth.Session{AccessToken: "access-fresh"}))

	_, err = store.db.ExecContext(ctx,
		`UPDATE sessions SET updated_at = ? WHERE email = ?`,
		time.Now().UTC().Add(-staleAge-time.Hour), "stale@example.com")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.Load(ctx, "stale@example.com")
	require.ErrorIs(t, err, ErrNotFound)

	got, err := store.Load(ctx, "fresh@example.com")
	require.NoError(t, err)
	require.Equal(t, "access-fresh", got.AccessToken)
}

func TestOpenCreatesTheDatabaseFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sessions.db")

	store, err := Open(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "driver@example.com", auth.Session{AccessToken: "access-token-1"}))
	require.NoError(t, store.Close())

	// A second open sees the persisted session.
	store, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	got, err := store.Load(ctx, "driver@example.com")
	require.NoError(t, err)
	require.Equal(t, "access-token-1", got.AccessToken)
}
