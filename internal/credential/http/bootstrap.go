package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/credkit/internal/credential/service"
	"github.com/aussiebroadwan/credkit/internal/credential/store"
	"github.com/aussiebroadwan/credkit/pkg/credsdk"
	"github.com/aussiebroadwan/credkit/pkg/cryptox"
	"github.com/aussiebroadwan/credkit/pkg/httpx"
	"github.com/aussiebroadwan/credkit/pkg/slogx"
)

const bootstrapDoneKey = "bootstrap:done"

// Permissions granted to the bootstrap admin key.
var bootstrapPermissions = []string{"credkit:admin", "credkit:mint"}

// BootstrapHandler serves POST /v1/bootstrap: a one-shot endpoint that
// mints the first admin API key. It only works while a bootstrap token is
// configured and no bootstrap has happened yet.
type BootstrapHandler struct {
	Keys  *service.APIKeyService
	Cache store.Cache
	Token string
}

func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogx.FromContext(ctx)

	// 1. Check if enabled
	if h.Token == "" {
		credsdk.ErrNotFound.WriteError(w)
		return
	}

	// 2. Require and verify the bootstrap token header
	presented := strings.TrimSpace(r.Header.Get("X-Bootstrap-Token"))
	if presented == "" || !cryptox.ConstantTimeEquals(presented, h.Token) {
		l.Warn("bootstrap attempt with missing or invalid token")
		credsdk.ErrUnauthorized.WriteError(w)
		return
	}

	// 3. Refuse if a bootstrap already happened
	_, err := h.Cache.Get(ctx, bootstrapDoneKey)
	switch {
	case err == nil:
		l.Warn("bootstrap attempt on already-bootstrapped deployment")
		credsdk.ErrUnauthorized.WriteError(w)
		return
	case !errors.Is(err, store.ErrNotFound):
		writeDomainError(w, r, err)
		return
	}

	// 4. Mint the admin key
	secret, meta, err := h.Keys.Generate(ctx, "bootstrap-admin", bootstrapPermissions)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := h.Cache.Set(ctx, bootstrapDoneKey, []byte("1"), 0); err != nil {
		// The admin key exists but the latch did not land; surface the
		// failure so the operator investigates rather than retrying blind.
		l.Error("failed to record bootstrap completion", "err", err)
		credsdk.ErrStoreUnavailable.WriteError(w)
		return
	}

	l.Info("deployment bootstrapped", "owner", meta.Owner)

	// 5. Respond with the key (only shown once)
	httpx.WriteJSON(w, http.StatusCreated, credsdk.BootstrapResponse{
		APIKey:      secret,
		Owner:       meta.Owner,
		Permissions: meta.Permissions,
	})
}
