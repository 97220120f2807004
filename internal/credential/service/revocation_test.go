package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/credkit/internal/credential/domain"
	"github.com/aussiebroadwan/credkit/internal/credential/store/drivers/memory"
)

func TestRevocationLedger_RevokeAndLookup(t *testing.T) {
	ledger := &RevocationLedger{Cache: memory.NewStore()}
	ctx := context.Background()

	revoked, err := ledger.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, ledger.Revoke(ctx, "jti-1", "access", time.Hour))

	revoked, err = ledger.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	// Other jtis are untouched.
	revoked, err = ledger.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestRevocationLedger_ExpiredTokenIsNoOp(t *testing.T) {
	ledger := &RevocationLedger{Cache: memory.NewStore()}
	ctx := context.Background()

	require.NoError(t, ledger.Revoke(ctx, "jti-lapsed", "access", 0))
	require.NoError(t, ledger.Revoke(ctx, "jti-lapsed", "access", -time.Minute))

	revoked, err := ledger.IsRevoked(ctx, "jti-lapsed")
	require.NoError(t, err)
	require.False(t, revoked, "revoking an expired token must not create an entry")
}

// A token minted at t=0 with a 900s lifetime and revoked at t=800 stays
// rejected up to expiry, then the ledger entry lapses along with the token.
func TestRevocationLedger_EntryExpiresWithToken(t *testing.T) {
	clock := newTestClock()
	ledger := &RevocationLedger{Cache: memory.NewStoreWithClock(clock.Now)}
	ctx := context.Background()

	clock.Advance(800 * time.Second)
	require.NoError(t, ledger.Revoke(ctx, "jti-x", "access", 100*time.Second))

	for _, offset := range []time.Duration{50 * time.Second, 10 * time.Second} {
		clock.Advance(offset)
		revoked, err := ledger.IsRevoked(ctx, "jti-x")
		require.NoError(t, err)
		require.True(t, revoked)
	}

	// Past t=900 the token is expired anyway; the entry is gone.
	clock.Advance(141 * time.Second)
	revoked, err := ledger.IsRevoked(ctx, "jti-x")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestRevocationLedger_FailsClosedOnOutage(t *testing.T) {
	ledger := &RevocationLedger{Cache: unavailableCache{}}
	ctx := context.Background()

	_, err := ledger.IsRevoked(ctx, "jti-1")
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)

	err = ledger.Revoke(ctx, "jti-1", "access", time.Hour)
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
