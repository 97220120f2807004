package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/credkit/internal/credential/domain"
	"github.com/aussiebroadwan/credkit/internal/credential/store"
	"github.com/aussiebroadwan/credkit/pkg/cryptox"
	"github.com/aussiebroadwan/credkit/pkg/slogx"
)

const apiKeyPrefix = "apikey:"

// APIKeyService manages long-lived machine credentials. Only a fingerprint
// of each key secret is stored; the plaintext exists exactly once, in the
// Generate response. With a pepper configured the fingerprint is an HMAC, so
// a leaked store dump cannot be brute-forced offline without the pepper.
type APIKeyService struct {
	Cache  store.Cache
	Pepper []byte
}

// Generate mints a new API key for owner. The returned secret is shown to
// the caller once and never persisted.
func (s *APIKeyService) Generate(ctx context.Context, owner string, permissions []string) (string, *domain.APIKey, error) {
	l := slogx.FromContext(ctx)

	secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", nil, fmt.Errorf("generate api key: %w", err)
	}

	meta := &domain.APIKey{
		Owner:       owner,
		Permissions: permissions,
		CreatedAt:   time.Now().UTC(),
	}

	b, err := json.Marshal(meta)
	if err != nil {
		return "", nil, err
	}

	if err := s.Cache.Set(ctx, apiKeyPrefix+s.fingerprint(secret), b, 0); err != nil {
		return "", nil, storeUnavailable(err)
	}

	l.Info("api key generated", slog.String("owner", owner))
	return secret, meta, nil
}

// Validate looks up the presented secret by fingerprint and returns its
// metadata. A near-miss secret hashes to a different fingerprint and fails
// exactly like a key that never existed.
func (s *APIKeyService) Validate(ctx context.Context, presented string) (*domain.APIKey, error) {
	key := apiKeyPrefix + s.fingerprint(presented)

	b, err := s.Cache.Get(ctx, key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, domain.ErrUnknownAPIKey
	case err != nil:
		return nil, storeUnavailable(err)
	}

	var meta domain.APIKey
	if err := json.Unmarshal(b, &meta); err != nil {
		return nil, fmt.Errorf("decode api key record: %w", err)
	}

	// Last-used is best effort bookkeeping; a failed write must not fail
	// the validation.
	now := time.Now().UTC()
	meta.LastUsedAt = &now
	if nb, merr := json.Marshal(&meta); merr == nil {
		_ = s.Cache.Set(ctx, key, nb, 0)
	}

	return &meta, nil
}

// Revoke deletes a key given either its plaintext secret or its stored
// fingerprint. Deleting a missing entry is a no-op, so both interpretations
// are tried.
func (s *APIKeyService) Revoke(ctx context.Context, presented string) error {
	if err := s.Cache.Delete(ctx, apiKeyPrefix+s.fingerprint(presented)); err != nil {
		return storeUnavailable(err)
	}
	if err := s.Cache.Delete(ctx, apiKeyPrefix+presented); err != nil {
		return storeUnavailable(err)
	}
	return nil
}

func (s *APIKeyService) fingerprint(secret string) string {
	if len(s.Pepper) > 0 {
		return cryptox.PepperedFingerprint(s.Pepper, secret)
	}
	return cryptox.FingerprintToken(secret)
}
