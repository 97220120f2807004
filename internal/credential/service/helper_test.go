package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/credkit/internal/credential/store"
	"github.com/aussiebroadwan/credkit/internal/credential/store/drivers/memory"
	"github.com/aussiebroadwan/credkit/pkg/cryptox"
	"github.com/aussiebroadwan/credkit/pkg/jwtx"
)

const testIssuer = "credkit-test"

// testClock is a manually advanced clock for driving TTL expiry in tests
// without sleeping.
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Unix(1_700_000_000, 0).UTC()}
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// newTokenFixture wires a TokenService over a fresh Ed25519 key and an
// in-memory cache.
func newTokenFixture(t *testing.T, accessTTL, refreshTTL time.Duration) (*TokenService, *memory.Store) {
	t.Helper()

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	signer, err := jwtx.NewSignerEdDSA("test-key", pemKey)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	cache := memory.NewStore()
	return &TokenService{
		Signer:     signer,
		Verifier:   jwtx.NewCommonEdDSA(keys, testIssuer),
		Ledger:     &RevocationLedger{Cache: cache},
		Issuer:     testIssuer,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}, cache
}

// unavailableCache fails every operation, standing in for a cache outage.
type unavailableCache struct{}

func (unavailableCache) Get(context.Context, string) ([]byte, error) {
	return nil, store.ErrUnavailable
}

func (unavailableCache) Set(context.Context, string, []byte, time.Duration) error {
	return store.ErrUnavailable
}

func (unavailableCache) Increment(context.Context, string, time.Duration) (int64, error) {
	return 0, store.ErrUnavailable
}

func (unavailableCache) Delete(context.Context, string) error {
	return store.ErrUnavailable
}

func (unavailableCache) Ping(context.Context) error { return store.ErrUnavailable }
func (unavailableCache) Close() error               { return nil }
