package domain

import "errors"

// Credential validation failures are intentionally coarse-grained: a caller
// learns which of these buckets a failure fell into and nothing else, so a
// probing attacker cannot distinguish "close" guesses from random ones.
var (
	// ErrMalformedCredential covers structurally invalid tokens and bad
	// signatures.
	ErrMalformedCredential = errors.New("credential: malformed")

	// ErrExpiredCredential means the token is past its expires_at.
	ErrExpiredCredential = errors.New("credential: expired")

	// ErrRevokedCredential means the token carries a valid signature and is
	// not expired, but its jti is present in the revocation ledger.
	ErrRevokedCredential = errors.New("credential: revoked")

	// ErrUnknownAPIKey means the presented API key's hash was not found.
	ErrUnknownAPIKey = errors.New("credential: unknown api key")

	// ErrCSRFMismatch covers missing, expired or session-mismatched
	// anti-forgery tokens.
	ErrCSRFMismatch = errors.New("credential: csrf mismatch")

	// ErrSecondFactorInvalid means the submitted one-time code is outside
	// the accepted time-step tolerance.
	ErrSecondFactorInvalid = errors.New("credential: second factor invalid")

	// ErrRateLimited means the rate guard throttled the attempt.
	ErrRateLimited = errors.New("credential: rate limited")

	// ErrStoreUnavailable means the backing cache store could not be
	// reached. Policy is fail closed: callers treat this as an
	// authentication failure, never as a passthrough.
	ErrStoreUnavailable = errors.New("credential: store unavailable")
)
