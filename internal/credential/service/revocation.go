package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aussiebroadwan/credkit/internal/credential/domain"
	"github.com/aussiebroadwan/credkit/internal/credential/store"
)

const revocationKeyPrefix = "revoked:"

// RevocationLedger early-invalidates specific tokens by jti. Entries carry a
// TTL equal to the token's remaining lifetime, so the ledger self-expires
// and never remembers a token past its natural expiry.
type RevocationLedger struct {
	Cache store.Cache
}

// Revoke writes a revocation entry for jti. A non-positive remaining TTL is
// a no-op: the token already expired and there is nothing to revoke.
func (l *RevocationLedger) Revoke(ctx context.Context, jti, tokenType string, remaining time.Duration) error {
	if remaining <= 0 {
		return nil
	}

	entry := domain.RevocationEntry{
		JTI:       jti,
		TokenType: tokenType,
		RevokedAt: time.Now().UTC(),
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	if err := l.Cache.Set(ctx, revocationKeyPrefix+jti, b, remaining); err != nil {
		return storeUnavailable(err)
	}
	return nil
}

// IsRevoked reports whether jti is present in the ledger. Store failures
// surface as ErrStoreUnavailable rather than a silent "not revoked".
func (l *RevocationLedger) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, err := l.Cache.Get(ctx, revocationKeyPrefix+jti)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, storeUnavailable(err)
	}
}
