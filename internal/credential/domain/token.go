package domain

import "time"

// TokenPair is what a login or refresh hands back: a short-lived signed
// access token and a longer-lived signed refresh token. Both are revocable
// independently of each other.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresIn    time.Duration `json:"expires_in"`           // access token lifetime
	AccessJTI    string        `json:"-"`
	RefreshJTI   string        `json:"-"`
	SessionID    string        `json:"-"`
}

// Identity is the verified outcome of credential validation, attached to the
// request context for downstream business routes to consume.
type Identity struct {
	SubjectID string   `json:"subject_id"`
	TokenType string   `json:"token_type"` // "access", "refresh" or "api_key"
	SessionID string   `json:"session_id,omitempty"`
	JTI       string   `json:"jti,omitempty"`
	Scopes    []string `json:"scopes,omitempty"`
}

// RevocationEntry records an early-invalidated token id. Entries live in the
// cache store with TTL equal to the revoked token's remaining lifetime, so
// the ledger never remembers a token past its natural expiry.
type RevocationEntry struct {
	JTI       string    `json:"jti"`
	TokenType string    `json:"token_type"`
	RevokedAt time.Time `json:"revoked_at"`
}
