package domain

import (
	"slices"
	"time"
)

// APIKey is the stored metadata for a long-lived machine credential. The
// plaintext secret is returned exactly once at generation and never
// persisted; the cache store only ever sees the peppered hash as lookup key.
type APIKey struct {
	Owner       string     `json:"owner"`
	Permissions []string   `json:"permissions"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
}

// HasPermission reports whether the key grants the given permission string.
func (k *APIKey) HasPermission(perm string) bool {
	return slices.Contains(k.Permissions, perm)
}
