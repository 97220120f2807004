package credsdk

// MintRequest asks for a fresh token pair for a subject. Callers are
// machine clients authenticated with an API key.
type MintRequest struct {
	SubjectID string   `json:"subject_id"`
	Scopes    []string `json:"scopes,omitempty"`
}

// TokenResponse carries an issued access/refresh pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	SessionID    string `json:"session_id"`
}

// RefreshRequest exchanges a refresh token for a new pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RevokeRequest retires a token ahead of its expiry. Either field may be
// set; both are revoked when both are present.
type RevokeRequest struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// IntrospectRequest asks whether a token is currently valid.
type IntrospectRequest struct {
	Token string `json:"token"`
}

// IntrospectResponse reports a token's state. Inactive tokens carry only
// Active=false and the reason code.
type IntrospectResponse struct {
	Active    bool     `json:"active"`
	Reason    string   `json:"reason,omitempty"`
	SubjectID string   `json:"subject_id,omitempty"`
	SessionID string   `json:"session_id,omitempty"`
	TokenType string   `json:"token_type,omitempty"`
	Scopes    []string `json:"scopes,omitempty"`
}

// APIKeyCreateRequest provisions a new API key.
type APIKeyCreateRequest struct {
	Owner       string   `json:"owner"`
	Permissions []string `json:"permissions,omitempty"`
}

// APIKeyCreateResponse returns the plaintext key exactly once.
type APIKeyCreateResponse struct {
	APIKey      string   `json:"api_key"`
	Owner       string   `json:"owner"`
	Permissions []string `json:"permissions,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

// APIKeyRevokeRequest deletes an API key by its plaintext or fingerprint.
type APIKeyRevokeRequest struct {
	APIKey string `json:"api_key"`
}

// CSRFTokenResponse carries a freshly issued anti-forgery token.
type CSRFTokenResponse struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	ExpiresAt string `json:"expires_at"`
}

// CSRFVerifyRequest checks a token against the caller's session.
type CSRFVerifyRequest struct {
	Token string `json:"token"`
}

// MFAEnrollResponse carries a provisioned TOTP secret. The URL is rendered
// as a QR code by the client; the secret supports manual entry.
type MFAEnrollResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

// MFAVerifyRequest submits a six-digit code for the authenticated subject.
type MFAVerifyRequest struct {
	Code string `json:"code"`
}

// BootstrapResponse returns the first admin API key. Only available once,
// gated by the configured bootstrap token.
type BootstrapResponse struct {
	APIKey      string   `json:"api_key"`
	Owner       string   `json:"owner"`
	Permissions []string `json:"permissions"`
}

// HealthChecks itemises dependency health in readiness responses.
type HealthChecks struct {
	Cache  string `json:"cache,omitempty"`
	Signer string `json:"signer,omitempty"`
}

// HealthResponse is returned by the livez and readyz probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
