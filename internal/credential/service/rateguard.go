package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/aussiebroadwan/credkit/internal/credential/domain"
	"github.com/aussiebroadwan/credkit/internal/credential/store"
)

const rateKeyPrefix = "rate:"

// RateGuardService is a fixed-window attempt counter over the cache store.
// Buckets are caller-chosen strings, typically "login:"+subject or
// "2fa:"+subject, and reset when their window TTL lapses.
type RateGuardService struct {
	Cache store.Cache
}

// Check records one attempt against bucket and reports whether the bucket is
// over its limit. Rejection is idempotent: once a bucket is throttled,
// further calls within the window do not bump the counter, so hammering a
// throttled bucket cannot stretch the penalty.
func (s *RateGuardService) Check(ctx context.Context, bucket string, limit int64, window time.Duration) (*domain.RateDecision, error) {
	key := rateKeyPrefix + bucket

	if b, err := s.Cache.Get(ctx, key); err == nil {
		if n, perr := strconv.ParseInt(string(b), 10, 64); perr == nil && n > limit {
			return &domain.RateDecision{Throttled: true, Count: n, Limit: limit}, nil
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, storeUnavailable(err)
	}

	n, err := s.Cache.Increment(ctx, key, window)
	if err != nil {
		return nil, storeUnavailable(err)
	}

	return &domain.RateDecision{Throttled: n > limit, Count: n, Limit: limit}, nil
}

// Peek reports whether bucket has already consumed its limit, without
// recording a new attempt. Used by callers that only want to count failures.
func (s *RateGuardService) Peek(ctx context.Context, bucket string, limit int64) (*domain.RateDecision, error) {
	b, err := s.Cache.Get(ctx, rateKeyPrefix+bucket)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return &domain.RateDecision{Limit: limit}, nil
	case err != nil:
		return nil, storeUnavailable(err)
	}

	n, perr := strconv.ParseInt(string(b), 10, 64)
	if perr != nil {
		// Unreadable counter: treat as empty rather than locking the
		// bucket out forever.
		return &domain.RateDecision{Limit: limit}, nil
	}

	return &domain.RateDecision{Throttled: n >= limit, Count: n, Limit: limit}, nil
}

// Reset clears a bucket, typically after a successful verification.
func (s *RateGuardService) Reset(ctx context.Context, bucket string) error {
	if err := s.Cache.Delete(ctx, rateKeyPrefix+bucket); err != nil {
		return storeUnavailable(err)
	}
	return nil
}
