package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/credkit/internal/credential/store/drivers/memory"
)

func TestHousekeeping_StartSweepsAndStops(t *testing.T) {
	cache := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", []byte("v"), 10*time.Millisecond))
	require.NoError(t, cache.Set(ctx, "long", []byte("v"), time.Hour))

	time.Sleep(30 * time.Millisecond)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewHousekeepingService(cache, logger, time.Hour)
	svc.Start()
	svc.Stop()

	// The startup sweep ran before Stop returned.
	deleted, err := cache.PurgeExpired(ctx)
	require.NoError(t, err)
	require.Zero(t, deleted, "startup sweep should have purged the lapsed entry")

	_, err = cache.Get(ctx, "long")
	require.NoError(t, err)
}

func TestHousekeeping_DefaultInterval(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewHousekeepingService(memory.NewStore(), logger, 0)
	require.Equal(t, time.Hour, svc.Interval)
}
