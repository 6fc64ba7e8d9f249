package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"automatik/internal/auth/models"
	"automatik/internal/guard"
	"automatik/pkg/platform/httputil"
	"automatik/pkg/requestcontext"
)

// Service defines the interface for session issuance.
type Service interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResult, error)
	CountUsers(ctx context.Context) (int, error)
}

// Handler handles authentication-related HTTP endpoints.
type Handler struct {
	auth   Service
	logger *slog.Logger
	// loginLimiter wraps POST /auth/login; nil leaves the route unlimited.
	loginLimiter func(http.Handler) http.Handler
	// sessionCookies makes login also write the portal session cookies.
	sessionCookies bool
	secureCookies  bool
}

type Option func(*Handler)

// WithLoginLimiter installs a per-client rate limiter on the login route.
func WithLoginLimiter(limiter func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.loginLimiter = limiter
	}
}

// WithSessionCookies writes the token and user summary as portal session
// cookies on every successful login.
func WithSessionCookies(secure bool) Option {
	return func(h *Handler) {
		h.sessionCookies = true
		h.secureCookies = secure
	}
}

// New creates a new auth Handler.
func New(auth Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{auth: auth, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the public auth routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/auth/_ping", h.HandlePing)
	if h.loginLimiter != nil {
		r.With(h.loginLimiter).Post("/auth/login", h.HandleLogin)
	} else {
		r.Post("/auth/login", h.HandleLogin)
	}
	r.Get("/users/count", h.HandleUserCount)
}

// HandleLogin verifies credentials and returns a session assertion with the
// resolved landing path.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.auth.Login(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	if h.sessionCookies {
		session := guard.NewSession(guard.NewCookieStorage(w, r, h.secureCookies))
		if err := session.Set(res.Token, res.User); err != nil {
			h.logger.WarnContext(ctx, "failed to write session cookies", "error", err, "request_id", requestID)
		}
	}

	httputil.WriteJSON(w, http.StatusOK, res)
}

type pingResponse struct {
	OK    bool   `json:"ok"`
	Route string `json:"route"`
}

// HandlePing confirms the auth routes are mounted.
func (h *Handler) HandlePing(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, pingResponse{OK: true, Route: "/auth/_ping"})
}

// HandleUserCount reports the number of provisioned users.
func (h *Handler) HandleUserCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	count, err := h.auth.CountUsers(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "count users failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.UserCountResponse{Count: count})
}
