package jwtx

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/credkit/pkg/idx"
)

// Default token TTL constants. These provide sensible security defaults but
// can be overridden per-deployment through configuration.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	// Short-lived for security - typical range is 15m to 1h.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	// Longer-lived for user convenience - typical range is 7d to 30d.
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// Token type tags carried in the "typ" claim. Access and refresh tokens share
// the signing scheme but must never be interchangeable, so every token states
// what it is and verification checks the tag.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims are the signed token claims used across the credential core. We keep
// changes additive to preserve compatibility with already-issued tokens.
type Claims struct {
	jwt.RegisteredClaims

	// Typ distinguishes access from refresh tokens.
	Typ string `json:"typ,omitempty"`

	// SID ties the token back to the login session that created it.
	// Survives refresh rotation so a whole session can be traced.
	SID string `json:"sid,omitempty"`

	// Scopes are permission strings like "jobs:read payments:write".
	Scopes []string `json:"scopes,omitempty"`
}

// NewClaims builds minimally-correct claims for a token of the given type.
// The jti is a fresh monotonic ULID, so it is unique even for tokens minted
// for the same subject within the same millisecond.
func NewClaims(
	subject, typ, sid string,
	scopes []string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        idx.New().String(),
		},
		Typ:    typ,
		SID:    sid,
		Scopes: scopes,
	}
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateType checks the "typ" claim against an expected token type.
func (c *Claims) ValidateType(expected string) error {
	if c.Typ != expected {
		return ErrTypeMismatch
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf). Strict comparison, no grace window.
func (c *Claims) ValidateExpiry(now time.Time) error {
	now = now.UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}

// RemainingTTL reports how long until the token expires naturally. Zero or
// negative means already expired. Revocation entries use this as their TTL so
// they never outlive the token they refer to.
func (c *Claims) RemainingTTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

// HasScope reports whether the claims carry the given scope.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}
