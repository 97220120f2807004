package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/credkit/internal/credential/domain"
	"github.com/aussiebroadwan/credkit/internal/credential/store"
	"github.com/aussiebroadwan/credkit/pkg/cryptox"
)

const csrfKeyPrefix = "csrf:"

// DefaultCSRFTokenTTL bounds how long an issued anti-forgery token stays
// usable.
const DefaultCSRFTokenTTL = time.Hour

// CSRFService issues per-session anti-forgery tokens and validates them on
// state-changing requests. Tokens are random values stored against their
// session id; validation is a lookup plus a constant-time session compare.
type CSRFService struct {
	Cache store.Cache
	TTL   time.Duration
}

// Issue mints an anti-forgery token bound to sessionID.
func (s *CSRFService) Issue(ctx context.Context, sessionID string) (*domain.CSRFToken, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("csrf: empty session id")
	}

	value, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return nil, fmt.Errorf("generate csrf token: %w", err)
	}

	now := time.Now().UTC()
	tok := &domain.CSRFToken{
		Value:     value,
		SessionID: sessionID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl()),
	}

	if err := s.Cache.Set(ctx, csrfKeyPrefix+value, []byte(sessionID), s.ttl()); err != nil {
		return nil, storeUnavailable(err)
	}
	return tok, nil
}

// Validate checks that value was issued for sessionID and has not expired.
// Missing, expired, and wrong-session tokens all fail the same way; callers
// learn nothing about which.
func (s *CSRFService) Validate(ctx context.Context, value, sessionID string) error {
	if value == "" || sessionID == "" {
		return domain.ErrCSRFMismatch
	}

	b, err := s.Cache.Get(ctx, csrfKeyPrefix+value)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.ErrCSRFMismatch
	case err != nil:
		return storeUnavailable(err)
	}

	if !cryptox.ConstantTimeEquals(string(b), sessionID) {
		return domain.ErrCSRFMismatch
	}
	return nil
}

func (s *CSRFService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultCSRFTokenTTL
}
