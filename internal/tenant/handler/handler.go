package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"automatik/internal/tenant/models"
	dErrors "automatik/pkg/domain-errors"
	"automatik/pkg/platform/httputil"
	"automatik/pkg/requestcontext"
)

// Service lists tenants for an authenticated caller.
type Service interface {
	ListTenants(ctx context.Context, ident requestcontext.Identity) ([]*models.Tenant, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the directory. r must already require authentication.
func (h *Handler) Register(r chi.Router) {
	r.Get("/auth/tenants", h.HandleListTenants)
}

// HandleListTenants returns every tenant ordered by name to admins.
func (h *Handler) HandleListTenants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	ident, ok := requestcontext.GetIdentity(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Unauthorized"))
		return
	}

	tenants, err := h.service.ListTenants(ctx, ident)
	if err != nil {
		h.logger.WarnContext(ctx, "list tenants failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.ToListResponse(tenants))
}
