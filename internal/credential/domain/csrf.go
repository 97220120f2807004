package domain

import "time"

// CSRFToken is a short-lived anti-forgery token bound to a single session.
// Validation requires presence, session match and non-expiry; a well-formed
// value presented with the wrong session must fail.
type CSRFToken struct {
	Value     string    `json:"csrf_token"`
	SessionID string    `json:"-"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
