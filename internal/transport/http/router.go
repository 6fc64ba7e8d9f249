// Package httptransport assembles the portal's HTTP surface: the shared
// middleware chain and the route groups of every domain handler.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/unrolled/secure"

	authhandler "automatik/internal/auth/handler"
	conversionhandler "automatik/internal/conversion/handler"
	"automatik/internal/platform/health"
	"automatik/internal/platform/metrics"
	tenanthandler "automatik/internal/tenant/handler"
	usagehandler "automatik/internal/usage/handler"
	"automatik/pkg/platform/middleware/auth"
	"automatik/pkg/platform/middleware/metadata"
	"automatik/pkg/platform/middleware/request"
	"automatik/pkg/platform/middleware/requesttime"
	"automatik/pkg/platform/middleware/tenantscope"
	"automatik/pkg/requestcontext"
	"automatik/pkg/validation"
)

// Deps carries everything the router mounts. Conversion and Shell are optional.
type Deps struct {
	Auth       *authhandler.Handler
	Tenants    *tenanthandler.Handler
	Usage      *usagehandler.Handler
	Conversion *conversionhandler.Handler
	Health     *health.Handler
	Shell      http.Handler

	Validator      auth.JWTValidator
	TenantResolver tenantscope.TenantResolver
	Metadata       *metadata.Middleware
	Registry       *prometheus.Registry
	RequestMetrics *request.Metrics
	Logger         *slog.Logger

	AllowedOrigins []string
	Production     bool
}

// NewRouter wires the middleware chain and mounts every handler.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(d.Metadata.Handler)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(d.Logger))
	if d.RequestMetrics != nil {
		r.Use(request.LatencyMiddleware(d.RequestMetrics))
	}
	r.Use(securityHeaders(d.Production).Handler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:         300,
	}))

	if d.Registry != nil {
		r.Handle("/metrics", metrics.Handler(d.Registry))
	}
	d.Health.Register(r)

	requireAuth := auth.RequireAuth(d.Validator, d.Logger)

	r.Group(func(r chi.Router) {
		r.Use(request.BodyLimit(validation.MaxBodySize))
		d.Auth.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(d.Validator, d.Logger))
			d.Usage.Register(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			d.Tenants.Register(r)
		})
	})

	if d.Conversion != nil {
		r.Group(func(r chi.Router) {
			r.Use(request.BodyLimit(validation.MaxUploadSize))
			r.Use(requireAuth)
			d.Conversion.Register(r,
				tenantscope.RequireTenantAccess(d.TenantResolver, conversionhandler.TenantParam, d.Logger),
			)
		})
	}

	if d.Shell != nil {
		r.NotFound(d.Shell.ServeHTTP)
	}

	return r
}

// LoginLimiter caps login attempts per client address and minute. The address
// is the one resolved by the metadata middleware, so trusted proxies are honored.
func LoginLimiter(perMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute, httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
		if ip := requestcontext.ClientIP(r.Context()); ip != "" {
			return ip, nil
		}
		return httprate.KeyByIP(r)
	}))
}

func securityHeaders(production bool) *secure.Secure {
	return secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        production,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		STSSeconds:         31536000,
		IsDevelopment:      !production,
	})
}
