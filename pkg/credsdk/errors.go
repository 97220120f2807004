package credsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/credkit/pkg/httpx"
)

// Error codes shared between the service and its clients.
const (
	ErrorCodeInvalidRequest      = "invalid_request"
	ErrorCodeMalformedCredential = "malformed_credential"
	ErrorCodeExpiredCredential   = "expired_credential"
	ErrorCodeRevokedCredential   = "revoked_credential"
	ErrorCodeUnknownAPIKey       = "unknown_api_key"
	ErrorCodeCSRFMismatch        = "csrf_mismatch"
	ErrorCodeSecondFactorInvalid = "second_factor_invalid"
	ErrorCodeRateLimited         = "rate_limited"
	ErrorCodeStoreUnavailable    = "store_unavailable"
	ErrorCodeUnauthorized        = "unauthorized"
	ErrorCodeInsufficientScope   = "insufficient_scope"
	ErrorCodeNotFound            = "not_found"
	ErrorCodeServerError         = "server_error"
)

// APIError is the wire form of a credential service error. It implements the
// error interface and is used both by the server (to write HTTP responses)
// and by the SDK client (to represent errors).
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code (e.g., "expired_credential")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

// Predefined errors. Handlers map domain errors onto these; descriptions are
// deliberately vague so responses don't leak which check failed internally.
var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	ErrMalformedCredential = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeMalformedCredential,
		Description: "credential could not be parsed or verified",
	}

	ErrExpiredCredential = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeExpiredCredential,
		Description: "credential has expired",
	}

	ErrRevokedCredential = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeRevokedCredential,
		Description: "credential has been revoked",
	}

	ErrUnknownAPIKey = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeUnknownAPIKey,
		Description: "api key is not recognised",
	}

	ErrCSRFMismatch = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeCSRFMismatch,
		Description: "anti-forgery token is missing, expired or bound to another session",
	}

	ErrSecondFactorInvalid = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeSecondFactorInvalid,
		Description: "second factor code is invalid",
	}

	ErrRateLimited = &APIError{
		StatusCode:  http.StatusTooManyRequests,
		Code:        ErrorCodeRateLimited,
		Description: "too many attempts, try again later",
	}

	ErrStoreUnavailable = &APIError{
		StatusCode:  http.StatusServiceUnavailable,
		Code:        ErrorCodeStoreUnavailable,
		Description: "credential store is unavailable",
	}

	ErrUnauthorized = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeUnauthorized,
		Description: "authentication required",
	}

	ErrInsufficientScope = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeInsufficientScope,
		Description: "caller lacks the required permission",
	}

	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "resource not found",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "an internal error occurred",
	}
)

// parseErrorResponse turns a non-2xx response body into a typed *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("unexpected response: %s", resp.Status),
	}
}
