package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/credkit/internal/credential/service"
	"github.com/aussiebroadwan/credkit/internal/credential/store"
	"github.com/aussiebroadwan/credkit/pkg/httpx"
	"github.com/aussiebroadwan/credkit/pkg/jwtx"
	"github.com/aussiebroadwan/credkit/pkg/slogx"
)

// Permission strings checked on API keys.
const (
	PermissionMint  = "credkit:mint"
	PermissionAdmin = "credkit:admin"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	issuer       string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	cache        store.Cache

	TokenService        *service.TokenService
	APIKeyService       *service.APIKeyService
	CSRFService         *service.CSRFService
	SecondFactorService *service.SecondFactorService

	// BootstrapToken enables the one-shot bootstrap endpoint when non-empty.
	BootstrapToken string
}

func NewRouter(
	keys *jwtx.KeySet,
	issuer, buildVersion string,
	cache store.Cache,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		issuer:       issuer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		cache:        cache,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerTokens()
	r.registerAPIKeys()
	r.registerCSRF()
	r.registerMFA()
	r.registerSystem()
	r.registerBootstrap()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerTokens() {
	// POST /v1/tokens/mint - machine callers only, strict rate limit
	mintHandler := &MintHandler{Tokens: r.TokenService}
	r.Mux.Handle("POST /v1/tokens/mint",
		httpx.Chain(mintHandler,
			APIKeyMiddleware(r.APIKeyService, PermissionMint),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /v1/tokens/refresh - strict rate limit by IP (rotation endpoint)
	refreshHandler := &RefreshHandler{Tokens: r.TokenService}
	r.Mux.Handle("POST /v1/tokens/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /v1/tokens/revoke - moderate rate limit
	revokeHandler := &RevokeHandler{Tokens: r.TokenService}
	r.Mux.Handle("POST /v1/tokens/revoke",
		httpx.Chain(revokeHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /v1/tokens/introspect - resource servers authenticate with any
	// valid API key, moderate rate limit
	introspectHandler := &IntrospectHandler{Tokens: r.TokenService}
	r.Mux.Handle("POST /v1/tokens/introspect",
		httpx.Chain(introspectHandler,
			APIKeyMiddleware(r.APIKeyService, ""),
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAPIKeys() {
	h := &APIKeysHandler{Keys: r.APIKeyService}

	securedCreate := httpx.Chain(http.HandlerFunc(h.HandleCreate),
		APIKeyMiddleware(r.APIKeyService, PermissionAdmin),
		httpx.RateLimitBySubject(httpx.ModerateLimit),
	)

	securedRevoke := httpx.Chain(http.HandlerFunc(h.HandleRevoke),
		APIKeyMiddleware(r.APIKeyService, PermissionAdmin),
		httpx.RateLimitBySubject(httpx.ModerateLimit),
	)

	r.Mux.Handle("POST /v1/apikeys", securedCreate)
	r.Mux.Handle("DELETE /v1/apikeys", securedRevoke)
}

func (r *Router) registerCSRF() {
	h := &CSRFHandler{CSRF: r.CSRFService}

	securedIssue := httpx.Chain(http.HandlerFunc(h.HandleIssue),
		AuthnMiddleware(r.TokenService),
		httpx.RateLimitBySubject(httpx.LenientLimit),
	)

	securedVerify := httpx.Chain(http.HandlerFunc(h.HandleVerify),
		AuthnMiddleware(r.TokenService),
		httpx.RateLimitBySubject(httpx.LenientLimit),
	)

	r.Mux.Handle("POST /v1/csrf", securedIssue)
	r.Mux.Handle("POST /v1/csrf/verify", securedVerify)
}

func (r *Router) registerMFA() {
	h := &MFAHandler{SecondFactor: r.SecondFactorService, Issuer: r.issuer}

	// Enrollment changes the account's second-factor state, so it carries
	// the anti-forgery gate on top of bearer auth.
	securedEnroll := httpx.Chain(http.HandlerFunc(h.HandleEnroll),
		AuthnMiddleware(r.TokenService),
		CSRFMiddleware(r.CSRFService),
		httpx.RateLimitBySubject(httpx.ModerateLimit),
	)

	// Strict edge limit on verify; the cache-backed failure counter inside
	// the service is the cross-replica guard.
	securedVerify := httpx.Chain(http.HandlerFunc(h.HandleVerify),
		AuthnMiddleware(r.TokenService),
		httpx.RateLimitBySubject(httpx.StrictLimit),
	)

	r.Mux.Handle("POST /v1/mfa/totp/enroll", securedEnroll)
	r.Mux.Handle("POST /v1/mfa/totp/verify", securedVerify)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.cache, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerBootstrap() {
	// POST /v1/bootstrap - very strict rate limit by IP (one-time setup endpoint)
	bootstrapHandler := &BootstrapHandler{
		Keys:  r.APIKeyService,
		Cache: r.cache,
		Token: r.BootstrapToken,
	}
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(bootstrapHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}
