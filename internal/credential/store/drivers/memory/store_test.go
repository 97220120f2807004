package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/credkit/internal/credential/store"
)

func TestStore_GetSetDelete(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, store.ErrNotFound)

	// Deleting a missing key is not an error.
	require.NoError(t, s.Delete(ctx, "k"))
}

func TestStore_TTLExpiry(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	s := NewStoreWithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 10*time.Second))

	now = now.Add(9 * time.Second)
	_, err := s.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_Increment(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	s := NewStoreWithClock(func() time.Time { return now })
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		n, err := s.Increment(ctx, "bucket", time.Minute)
		require.NoError(t, err)
		require.Equal(t, want, n)
	}

	// Window lapses, counter resets and a fresh TTL clock starts.
	now = now.Add(2 * time.Minute)
	n, err := s.Increment(ctx, "bucket", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestStore_IncrementDoesNotExtendWindow(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	s := NewStoreWithClock(func() time.Time { return now })
	ctx := context.Background()

	_, err := s.Increment(ctx, "bucket", time.Minute)
	require.NoError(t, err)

	// Increments at 30s and 59s must not push the expiry past t+60s.
	now = now.Add(30 * time.Second)
	_, err = s.Increment(ctx, "bucket", time.Minute)
	require.NoError(t, err)

	now = now.Add(29 * time.Second)
	_, err = s.Increment(ctx, "bucket", time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Second) // t+61s
	n, err := s.Increment(ctx, "bucket", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), n, "window must expire relative to its first increment")
}

func TestStore_PurgeExpired(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	s := NewStoreWithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "short", []byte("v"), time.Second))
	require.NoError(t, s.Set(ctx, "long", []byte("v"), time.Hour))
	require.NoError(t, s.Set(ctx, "forever", []byte("v"), 0))

	now = now.Add(time.Minute)

	deleted, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	_, err = s.Get(ctx, "long")
	require.NoError(t, err)
	_, err = s.Get(ctx, "forever")
	require.NoError(t, err)
}
