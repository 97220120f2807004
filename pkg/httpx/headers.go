package httpx

// Header names used across the credential endpoints.
const (
	HeaderAPIKey    = "X-API-Key"
	HeaderCSRFToken = "X-CSRF-Token"
	HeaderSessionID = "X-Session-ID"
	HeaderRequestID = "X-Request-ID"
)
