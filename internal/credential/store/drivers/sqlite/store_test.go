package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/credkit/internal/credential/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "cache.db")
	s, err := NewStore(dsn)
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())

	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_GetSetDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Set(ctx, "k", []byte("v1"), 0))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), got)

	// Upsert replaces the value.
	require.NoError(t, s.Set(ctx, "k", []byte("v2"), 0))
	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), got)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_TTLExpiry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "short", []byte("v"), 50*time.Millisecond))
	require.NoError(t, s.Set(ctx, "long", []byte("v"), time.Hour))

	time.Sleep(80 * time.Millisecond)

	_, err := s.Get(ctx, "short")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Get(ctx, "long")
	require.NoError(t, err)
}

func TestStore_Increment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		n, err := s.Increment(ctx, "bucket", time.Hour)
		require.NoError(t, err)
		require.Equal(t, want, n)
	}
}

func TestStore_IncrementWindowReset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.Increment(ctx, "bucket", 50*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	time.Sleep(80 * time.Millisecond)

	n, err = s.Increment(ctx, "bucket", 50*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, int64(1), n, "lapsed window must reset the counter")
}

func TestStore_PurgeExpired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "short", []byte("v"), 50*time.Millisecond))
	require.NoError(t, s.Set(ctx, "long", []byte("v"), time.Hour))
	require.NoError(t, s.Set(ctx, "forever", []byte("v"), 0))

	time.Sleep(80 * time.Millisecond)

	deleted, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	_, err = s.Get(ctx, "long")
	require.NoError(t, err)
	_, err = s.Get(ctx, "forever")
	require.NoError(t, err)
}

func TestStore_Ping(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Ping(context.Background()))
}
