package http

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/credkit/internal/credential/service"
	"github.com/aussiebroadwan/credkit/pkg/credsdk"
	"github.com/aussiebroadwan/credkit/pkg/httpx"
)

// MFAHandler manages TOTP enrollment and verification for the
// authenticated subject.
type MFAHandler struct {
	SecondFactor *service.SecondFactorService
	Issuer       string
}

// HandleEnroll serves POST /v1/mfa/totp/enroll. The secret and otpauth URL
// are returned once; re-enrolling replaces the previous secret.
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subjectID := httpx.SubjectIDFromContext(ctx)
	if subjectID == "" {
		credsdk.ErrUnauthorized.WriteError(w)
		return
	}

	key, err := h.SecondFactor.EnrollSubject(ctx, h.Issuer, subjectID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, credsdk.MFAEnrollResponse{
		Secret: key.Secret(),
		URL:    key.URL(),
	})
}

// HandleVerify serves POST /v1/mfa/totp/verify. Failed attempts count
// against the subject's brute-force budget.
func (h *MFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subjectID := httpx.SubjectIDFromContext(ctx)
	if subjectID == "" {
		credsdk.ErrUnauthorized.WriteError(w)
		return
	}

	var req credsdk.MFAVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		credsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Code == "" {
		credsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.SecondFactor.VerifySubject(ctx, subjectID, req.Code); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
