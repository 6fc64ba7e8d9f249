package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"automatik/internal/usage/models"
	id "automatik/pkg/domain"
	dErrors "automatik/pkg/domain-errors"
	"automatik/pkg/platform/httputil"
	"automatik/pkg/requestcontext"
)

type Service interface {
	Record(ctx context.Context, req *models.LogRequest) (*models.Entry, error)
	Recent(ctx context.Context, tenantID id.TenantID, limit int) ([]*models.Entry, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts POST and GET /logs. Identity is optional for POST; r should
// attach it when a valid assertion is sent. GET refuses anonymous callers.
func (h *Handler) Register(r chi.Router) {
	r.Post("/logs", h.HandleLog)
	r.Get("/logs", h.HandleList)
}

func (h *Handler) HandleLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.LogRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	entry, err := h.service.Record(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "record usage failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.ToLogResponse(entry))
}

// HandleList serves GET /logs?tenantId=<id>&limit=<n>.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	var tenantID id.TenantID
	if raw := query.Get("tenantId"); raw != "" {
		parsed, err := id.ParseTenantID(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.Validation("invalid tenantId", map[string]string{"tenantId": "must be a positive integer"}))
			return
		}
		tenantID = parsed
	}

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.WriteError(w, dErrors.Validation("invalid limit", map[string]string{"limit": "must be a non-negative integer"}))
			return
		}
		limit = n
	}

	entries, err := h.service.Recent(ctx, tenantID, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list usage failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToListResponse(entries))
}
