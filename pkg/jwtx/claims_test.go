package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewClaims(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	c := NewClaims("user-1", TypeAccess, "sess-1", []string{"jobs:read"}, 15*time.Minute, "credkit", now)

	require.Equal(t, "user-1", c.Subject)
	require.Equal(t, TypeAccess, c.Typ)
	require.Equal(t, "sess-1", c.SID)
	require.Equal(t, "credkit", c.Issuer)
	require.NotEmpty(t, c.ID, "jti must be set")
	require.Equal(t, now, c.IssuedAt.Time)
	require.Equal(t, now.Add(15*time.Minute), c.ExpiresAt.Time)
}

func TestNewClaims_UniqueJTI(t *testing.T) {
	now := time.Now().UTC()
	seen := make(map[string]bool, 100)

	for range 100 {
		c := NewClaims("user-1", TypeAccess, "sess-1", nil, time.Minute, "credkit", now)
		require.NotContains(t, seen, c.ID, "jti reuse within validity window")
		seen[c.ID] = true
	}
}

func TestClaims_ValidateIssuer(t *testing.T) {
	c := NewClaims("u", TypeAccess, "", nil, time.Minute, "credkit", time.Now())

	require.NoError(t, c.ValidateIssuer("credkit"))
	require.NoError(t, c.ValidateIssuer(""), "empty expected issuer enforces nothing")
	require.ErrorIs(t, c.ValidateIssuer("someone-else"), ErrIssuer)
}

func TestClaims_ValidateType(t *testing.T) {
	c := NewClaims("u", TypeRefresh, "", nil, time.Minute, "credkit", time.Now())

	require.NoError(t, c.ValidateType(TypeRefresh))
	require.ErrorIs(t, c.ValidateType(TypeAccess), ErrTypeMismatch)
}

func TestClaims_ValidateExpiry(t *testing.T) {
	issued := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := NewClaims("u", TypeAccess, "", nil, 15*time.Minute, "credkit", issued)

	tests := []struct {
		name string
		at   time.Time
		want error
	}{
		{"fresh", issued.Add(time.Second), nil},
		{"just before expiry", issued.Add(15*time.Minute - time.Second), nil},
		{"just after expiry", issued.Add(15*time.Minute + time.Second), ErrExpired},
		{"well past expiry", issued.Add(time.Hour), ErrExpired},
		{"before nbf", issued.Add(-time.Minute), ErrNotYetValid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.ValidateExpiry(tt.at)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClaims_RemainingTTL(t *testing.T) {
	issued := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := NewClaims("u", TypeAccess, "", nil, 900*time.Second, "credkit", issued)

	require.Equal(t, 100*time.Second, c.RemainingTTL(issued.Add(800*time.Second)))
	require.LessOrEqual(t, c.RemainingTTL(issued.Add(1000*time.Second)), time.Duration(0))
}

func TestClaims_HasScope(t *testing.T) {
	c := NewClaims("u", TypeAccess, "", []string{"jobs:read", "keys:mint"}, time.Minute, "credkit", time.Now())

	require.True(t, c.HasScope("keys:mint"))
	require.False(t, c.HasScope("keys:revoke"))
}
