// Package handler exposes the conversion services of each tenant. Replies
// from a service are relayed with its own status; failures use the
// {"status":"error","message":...} envelope the portal pages expect.
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"automatik/internal/conversion/upstream"
	dErrors "automatik/pkg/domain-errors"
	"automatik/pkg/platform/httputil"
	"automatik/pkg/platform/middleware/tenantscope"
	"automatik/pkg/requestcontext"
	"automatik/pkg/validation"
)

const TenantParam = "tenant"

// multipart parts above this size spill to temporary files.
const maxMemory = 32 << 20

type Upstream interface {
	Process(ctx context.Context, operation string, upload upstream.Upload) (*upstream.Response, error)
	Result(ctx context.Context, filename string) (*upstream.Response, error)
	Health(ctx context.Context) (*upstream.Response, error)
}

// Resolver returns the conversion service of a tenant.
type Resolver func(tenant string) (Upstream, bool)

// FromRegistry adapts a Registry to a Resolver.
func FromRegistry(reg *upstream.Registry) Resolver {
	return func(tenant string) (Upstream, bool) {
		c, ok := reg.Lookup(tenant)
		if !ok {
			return nil, false
		}
		return c, true
	}
}

type Handler struct {
	resolve   Resolver
	fileField string
	logger    *slog.Logger
}

func New(resolve Resolver, fileField string, logger *slog.Logger) *Handler {
	if fileField == "" {
		fileField = "excel"
	}
	return &Handler{resolve: resolve, fileField: fileField, logger: logger}
}

// Register mounts the proxy under /convert/{tenant}. r must already require
// authentication; scope restricts each route to the tenant's members.
func (h *Handler) Register(r chi.Router, scope ...func(http.Handler) http.Handler) {
	r.Route("/convert/{"+TenantParam+"}", func(r chi.Router) {
		r.Use(scope...)
		r.Get("/health", h.HandleHealth)
		r.Get("/results/{filename}", h.HandleResult)
		r.Post("/*", h.HandleProcess)
	})
}

// HandleProcess forwards a single uploaded file to <service>/<operation>.
func (h *Handler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	svc, ok := h.upstreamFor(w, r)
	if !ok {
		return
	}

	operation := strings.Trim(chi.URLParam(r, "*"), "/")
	if operation == "" {
		writeStatus(w, http.StatusNotFound, "Unbekannte Operation.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, validation.MaxUploadSize)
	file, header, err := r.FormFile(h.fileField)
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeStatus(w, http.StatusRequestEntityTooLarge, "Datei ist zu groß.")
			return
		}
		writeStatus(w, http.StatusBadRequest, fmt.Sprintf("Excel-Datei fehlt (Feldname: %s).", h.fileField))
		return
	}
	defer file.Close()

	resp, err := svc.Process(ctx, operation, upstream.Upload{
		Field:       h.fileField,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		h.fail(w, r, "process", err)
		return
	}
	h.relay(w, r, resp, "Content-Type")
}

// HandleResult streams a generated file from the service.
func (h *Handler) HandleResult(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.upstreamFor(w, r)
	if !ok {
		return
	}
	resp, err := svc.Result(r.Context(), chi.URLParam(r, "filename"))
	if err != nil {
		h.fail(w, r, "result", err)
		return
	}
	h.relay(w, r, resp, "Content-Type", "Content-Disposition", "Content-Length")
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.upstreamFor(w, r)
	if !ok {
		return
	}
	resp, err := svc.Health(r.Context())
	if err != nil {
		h.fail(w, r, "health", err)
		return
	}
	h.relay(w, r, resp, "Content-Type")
}

func (h *Handler) upstreamFor(w http.ResponseWriter, r *http.Request) (Upstream, bool) {
	tenant := tenantscope.TenantSlug(r.Context())
	if tenant == "" {
		tenant = chi.URLParam(r, TenantParam)
	}
	svc, ok := h.resolve(strings.ToLower(tenant))
	if !ok {
		writeStatus(w, http.StatusNotFound, "Kein Konvertierungsdienst für diesen Mandanten.")
		return nil, false
	}
	return svc, true
}

func (h *Handler) relay(w http.ResponseWriter, r *http.Request, resp *upstream.Response, headers ...string) {
	defer resp.Body.Close()
	for _, name := range headers {
		if v := resp.Header.Get(name); v != "" {
			w.Header().Set(name, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		ctx := r.Context()
		h.logger.WarnContext(ctx, "relay upstream body interrupted",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, operation string, err error) {
	ctx := r.Context()
	h.logger.ErrorContext(ctx, "conversion upstream failed",
		"operation", operation,
		"tenant", chi.URLParam(r, TenantParam),
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)

	status := http.StatusInternalServerError
	message := "Unbekannter Fehler"
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		status = httputil.DomainCodeToHTTPStatus(domainErr.Code)
		if domainErr.Code == dErrors.CodeUpstream && domainErr.Status >= http.StatusBadRequest {
			status = domainErr.Status
		}
		message = domainErr.Message
	}
	writeStatus(w, status, message)
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeStatus(w http.ResponseWriter, status int, message string) {
	httputil.WriteJSON(w, status, statusResponse{Status: "error", Message: message})
}
