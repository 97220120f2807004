package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/credkit/internal/credential/domain"
	"github.com/aussiebroadwan/credkit/internal/credential/store/drivers/memory"
)

func TestRateGuard_AllowsUpToLimit(t *testing.T) {
	guard := &RateGuardService{Cache: memory.NewStore()}
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		d, err := guard.Check(ctx, "login:alice", 3, time.Minute)
		require.NoError(t, err)
		require.False(t, d.Throttled, "attempt %d should pass", i)
		require.Equal(t, i, d.Count)
	}

	d, err := guard.Check(ctx, "login:alice", 3, time.Minute)
	require.NoError(t, err)
	require.True(t, d.Throttled, "attempt 4 of 3 must throttle")
	require.Equal(t, int64(4), d.Count)
}

func TestRateGuard_IdempotentRejection(t *testing.T) {
	guard := &RateGuardService{Cache: memory.NewStore()}
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := guard.Check(ctx, "login:bob", 3, time.Minute)
		require.NoError(t, err)
	}

	// Hammering a throttled bucket keeps rejecting without bumping the
	// counter further.
	for i := 0; i < 5; i++ {
		d, err := guard.Check(ctx, "login:bob", 3, time.Minute)
		require.NoError(t, err)
		require.True(t, d.Throttled)
		require.Equal(t, int64(4), d.Count)
	}
}

func TestRateGuard_BucketsAreIndependent(t *testing.T) {
	guard := &RateGuardService{Cache: memory.NewStore()}
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := guard.Check(ctx, "login:carol", 3, time.Minute)
		require.NoError(t, err)
	}

	d, err := guard.Check(ctx, "login:dave", 3, time.Minute)
	require.NoError(t, err)
	require.False(t, d.Throttled)
	require.Equal(t, int64(1), d.Count)
}

func TestRateGuard_WindowReset(t *testing.T) {
	clock := newTestClock()
	guard := &RateGuardService{Cache: memory.NewStoreWithClock(clock.Now)}
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := guard.Check(ctx, "login:erin", 3, time.Minute)
		require.NoError(t, err)
	}

	clock.Advance(61 * time.Second)

	d, err := guard.Check(ctx, "login:erin", 3, time.Minute)
	require.NoError(t, err)
	require.False(t, d.Throttled, "a lapsed window starts counting from scratch")
	require.Equal(t, int64(1), d.Count)
}

func TestRateGuard_PeekAndReset(t *testing.T) {
	guard := &RateGuardService{Cache: memory.NewStore()}
	ctx := context.Background()

	d, err := guard.Peek(ctx, "2fa:alice", 2)
	require.NoError(t, err)
	require.False(t, d.Throttled)
	require.Zero(t, d.Count)

	for i := 0; i < 2; i++ {
		_, err := guard.Check(ctx, "2fa:alice", 2, time.Minute)
		require.NoError(t, err)
	}

	d, err = guard.Peek(ctx, "2fa:alice", 2)
	require.NoError(t, err)
	require.True(t, d.Throttled)
	require.Equal(t, int64(2), d.Count)

	require.NoError(t, guard.Reset(ctx, "2fa:alice"))

	d, err = guard.Peek(ctx, "2fa:alice", 2)
	require.NoError(t, err)
	require.False(t, d.Throttled)
}

func TestRateGuard_FailsClosedOnOutage(t *testing.T) {
	guard := &RateGuardService{Cache: unavailableCache{}}
	ctx := context.Background()

	_, err := guard.Check(ctx, "login:alice", 3, time.Minute)
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)

	_, err = guard.Peek(ctx, "login:alice", 3)
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
