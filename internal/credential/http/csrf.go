package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aussiebroadwan/credkit/internal/credential/service"
	"github.com/aussiebroadwan/credkit/pkg/credsdk"
	"github.com/aussiebroadwan/credkit/pkg/httpx"
)

// CSRFHandler issues and verifies anti-forgery tokens for the caller's
// authenticated session.
type CSRFHandler struct {
	CSRF *service.CSRFService
}

// HandleIssue serves POST /v1/csrf.
func (h *CSRFHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID := httpx.SessionIDFromContext(ctx)
	if sessionID == "" {
		credsdk.ErrUnauthorized.WriteError(w)
		return
	}

	tok, err := h.CSRF.Issue(ctx, sessionID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, credsdk.CSRFTokenResponse{
		Token:     tok.Value,
		SessionID: tok.SessionID,
		ExpiresAt: tok.ExpiresAt.Format(time.RFC3339),
	})
}

// HandleVerify serves POST /v1/csrf/verify for callers that want an explicit
// check outside the middleware path.
func (h *CSRFHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req credsdk.CSRFVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		credsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.CSRF.Validate(ctx, req.Token, httpx.SessionIDFromContext(ctx)); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
