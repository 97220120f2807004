package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/credkit/internal/credential/domain"
	"github.com/aussiebroadwan/credkit/internal/credential/service"
	"github.com/aussiebroadwan/credkit/pkg/credsdk"
	"github.com/aussiebroadwan/credkit/pkg/httpx"
)

// MintHandler serves POST /v1/tokens/mint. Callers are machine clients that
// have already authenticated the end user; they present an API key with the
// credkit:mint permission.
type MintHandler struct {
	Tokens *service.TokenService
}

func (h *MintHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req credsdk.MintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		credsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	subjectID := strings.TrimSpace(req.SubjectID)
	if subjectID == "" {
		credsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.Tokens.IssuePair(r.Context(), subjectID, req.Scopes)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

// RefreshHandler serves POST /v1/tokens/refresh. The presented refresh
// token is rotated: it is retired before the new pair is returned.
type RefreshHandler struct {
	Tokens *service.TokenService
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req credsdk.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		credsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.RefreshToken == "" {
		credsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.Tokens.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

// RevokeHandler serves POST /v1/tokens/revoke. Unparseable or expired
// tokens are treated as already retired, mirroring RFC 7009: the caller
// wanted them dead and they are.
type RevokeHandler struct {
	Tokens *service.TokenService
}

func (h *RevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req credsdk.RevokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		credsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.AccessToken == "" && req.RefreshToken == "" {
		credsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	err := h.Tokens.Logout(r.Context(), req.AccessToken, req.RefreshToken)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, domain.ErrStoreUnavailable):
		// The ledger write did not land; the caller must retry.
		credsdk.ErrStoreUnavailable.WriteError(w)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// IntrospectHandler serves POST /v1/tokens/introspect. Invalid tokens come
// back as active=false with a reason rather than an error status, so
// resource servers can branch on the body alone.
type IntrospectHandler struct {
	Tokens *service.TokenService
}

func (h *IntrospectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req credsdk.IntrospectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		credsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Token == "" {
		credsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	ident, err := h.Tokens.Validate(r.Context(), req.Token)
	if err != nil {
		var reason string
		switch {
		case errors.Is(err, domain.ErrExpiredCredential):
			reason = credsdk.ErrorCodeExpiredCredential
		case errors.Is(err, domain.ErrRevokedCredential):
			reason = credsdk.ErrorCodeRevokedCredential
		case errors.Is(err, domain.ErrMalformedCredential):
			reason = credsdk.ErrorCodeMalformedCredential
		case errors.Is(err, domain.ErrStoreUnavailable):
			credsdk.ErrStoreUnavailable.WriteError(w)
			return
		default:
			credsdk.ErrServerError.WriteError(w)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, credsdk.IntrospectResponse{
			Active: false,
			Reason: reason,
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, credsdk.IntrospectResponse{
		Active:    true,
		SubjectID: ident.SubjectID,
		SessionID: ident.SessionID,
		TokenType: ident.TokenType,
		Scopes:    ident.Scopes,
	})
}

func tokenResponse(pair *domain.TokenPair) credsdk.TokenResponse {
	return credsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
		SessionID:    pair.SessionID,
	}
}
