package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/credkit/internal/credential/service"
	"github.com/aussiebroadwan/credkit/pkg/credsdk"
	"github.com/aussiebroadwan/credkit/pkg/httpx"
)

// APIKeysHandler manages machine credentials. Both operations require an
// API key holding the credkit:admin permission.
type APIKeysHandler struct {
	Keys *service.APIKeyService
}

// HandleCreate serves POST /v1/apikeys. The plaintext key in the response
// is the only copy that will ever exist.
func (h *APIKeysHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req credsdk.APIKeyCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		credsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	owner := strings.TrimSpace(req.Owner)
	if owner == "" {
		credsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	secret, meta, err := h.Keys.Generate(r.Context(), owner, req.Permissions)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, credsdk.APIKeyCreateResponse{
		APIKey:      secret,
		Owner:       meta.Owner,
		Permissions: meta.Permissions,
		CreatedAt:   meta.CreatedAt.Format(time.RFC3339),
	})
}

// HandleRevoke serves DELETE /v1/apikeys. Accepts the plaintext key or its
// stored fingerprint; revoking an unknown key still returns 204.
func (h *APIKeysHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	var req credsdk.APIKeyRevokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		credsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.APIKey == "" {
		credsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.Keys.Revoke(r.Context(), req.APIKey); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
