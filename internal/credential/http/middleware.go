package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/credkit/internal/credential/domain"
	"github.com/aussiebroadwan/credkit/internal/credential/service"
	"github.com/aussiebroadwan/credkit/pkg/credsdk"
	"github.com/aussiebroadwan/credkit/pkg/httpx"
	"github.com/aussiebroadwan/credkit/pkg/slogx"
)

// AuthnMiddleware validates the bearer token end to end (signature, expiry,
// type, revocation ledger) and injects the verified identity into the
// request context.
func AuthnMiddleware(tokens *service.TokenService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				httpx.WriteBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			ident, err := tokens.Validate(ctx, raw)
			if err != nil {
				if errors.Is(err, domain.ErrStoreUnavailable) {
					log.Error("bearer validation unavailable", "err", err)
					credsdk.ErrStoreUnavailable.WriteError(w)
					return
				}
				log.Warn("bearer validation failed", "err", err)
				httpx.WriteBearerError(w, "token verification failed")
				return
			}

			ctx = httpx.ContextWithAuth(ctx, ident.SubjectID, ident.SessionID, ident.Scopes)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// APIKeyMiddleware authenticates machine callers via the X-API-Key header.
// A non-empty permission is additionally required on the key's record.
func APIKeyMiddleware(keys *service.APIKeyService, permission string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			presented := strings.TrimSpace(r.Header.Get(httpx.HeaderAPIKey))
			if presented == "" {
				credsdk.ErrUnauthorized.WriteError(w)
				return
			}

			meta, err := keys.Validate(ctx, presented)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrUnknownAPIKey):
					credsdk.ErrUnknownAPIKey.WriteError(w)
				case errors.Is(err, domain.ErrStoreUnavailable):
					log.Error("api key validation unavailable", "err", err)
					credsdk.ErrStoreUnavailable.WriteError(w)
				default:
					log.Error("api key validation failed", "err", err)
					credsdk.ErrServerError.WriteError(w)
				}
				return
			}

			if permission != "" && !meta.HasPermission(permission) {
				log.Warn("api key lacks permission",
					"owner", meta.Owner,
					"permission", permission,
				)
				credsdk.ErrInsufficientScope.WriteError(w)
				return
			}

			// The owner stands in as the subject for downstream rate limiting.
			ctx = httpx.ContextWithAuth(ctx, meta.Owner, "", meta.Permissions)
			ctx = context.WithValue(ctx, httpx.CtxKeyAPIKey, meta)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CSRFMiddleware enforces the anti-forgery token on state-changing requests.
// Must run inside AuthnMiddleware so the session id is already in context.
func CSRFMiddleware(csrf *service.CSRFService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := strings.TrimSpace(r.Header.Get(httpx.HeaderCSRFToken))
			if err := csrf.Validate(ctx, token, httpx.SessionIDFromContext(ctx)); err != nil {
				writeDomainError(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeDomainError maps the credential error taxonomy onto wire errors.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	switch {
	case errors.Is(err, domain.ErrMalformedCredential):
		credsdk.ErrMalformedCredential.WriteError(w)
	case errors.Is(err, domain.ErrExpiredCredential):
		credsdk.ErrExpiredCredential.WriteError(w)
	case errors.Is(err, domain.ErrRevokedCredential):
		credsdk.ErrRevokedCredential.WriteError(w)
	case errors.Is(err, domain.ErrUnknownAPIKey):
		credsdk.ErrUnknownAPIKey.WriteError(w)
	case errors.Is(err, domain.ErrCSRFMismatch):
		credsdk.ErrCSRFMismatch.WriteError(w)
	case errors.Is(err, domain.ErrSecondFactorInvalid):
		credsdk.ErrSecondFactorInvalid.WriteError(w)
	case errors.Is(err, domain.ErrRateLimited):
		credsdk.ErrRateLimited.WriteError(w)
	case errors.Is(err, domain.ErrStoreUnavailable):
		log.Error("credential store unavailable", "err", err)
		credsdk.ErrStoreUnavailable.WriteError(w)
	default:
		log.Error("unexpected handler error", "err", err)
		credsdk.ErrServerError.WriteError(w)
	}
}
