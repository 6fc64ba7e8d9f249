package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"automatik/internal/sentinel"
	usagemetrics "automatik/internal/usage/metrics"
	"automatik/internal/usage/models"
	id "automatik/pkg/domain"
	dErrors "automatik/pkg/domain-errors"
	"automatik/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, entry *models.Entry) error
	ListByTenant(ctx context.Context, tenantID id.TenantID, limit int) ([]*models.Entry, error)
}

// Service records and lists menu usage.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *usagemetrics.Metrics
	newID   func() uuid.UUID
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *usagemetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, newID: uuid.New}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record stores a usage entry. The caller's identity, when present, wins over
// the IDs in the request body; each ID falls back to the body independently.
func (s *Service) Record(ctx context.Context, req *models.LogRequest) (*models.Entry, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	userID, tenantID := resolveOwner(ctx, req)
	if userID.IsNil() || tenantID.IsNil() {
		s.increment("unresolved")
		return nil, dErrors.Validation(models.UnresolvedIdentityMsg, map[string]string{
			"userId":   "could not be determined",
			"tenantId": "could not be determined",
		})
	}

	entry := &models.Entry{
		ID:        s.newID(),
		UserID:    userID,
		TenantID:  tenantID,
		Menu:      req.Menu,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, entry); err != nil {
		if errors.Is(err, sentinel.ErrInvalidInput) {
			s.increment("rejected")
			return nil, dErrors.Validation("unknown user or tenant", map[string]string{
				"userId":   "must reference an existing user",
				"tenantId": "must reference an existing tenant",
			})
		}
		s.increment("error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record usage")
	}

	s.increment("recorded")
	if s.logger != nil {
		s.logger.DebugContext(ctx, "usage recorded",
			"menu", entry.Menu,
			"user_id", entry.UserID.String(),
			"tenant_id", entry.TenantID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return entry, nil
}

// Recent lists a tenant's latest entries, newest first. Members may only read
// their own tenant and default to it; admins must name a tenant. limit is
// clamped to [1, MaxListLimit] with zero meaning DefaultListLimit.
func (s *Service) Recent(ctx context.Context, tenantID id.TenantID, limit int) ([]*models.Entry, error) {
	ident, ok := requestcontext.GetIdentity(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header")
	}

	if !ident.IsAdmin() {
		if ident.TenantID == nil {
			return nil, dErrors.New(dErrors.CodeForbidden, "no tenant assigned")
		}
		if tenantID.IsNil() {
			tenantID = *ident.TenantID
		}
		if tenantID != *ident.TenantID {
			return nil, dErrors.New(dErrors.CodeForbidden, "no access to this tenant")
		}
	}
	if tenantID.IsNil() {
		return nil, dErrors.Validation("tenantId is required", map[string]string{"tenantId": "is required"})
	}

	switch {
	case limit <= 0:
		limit = models.DefaultListLimit
	case limit > models.MaxListLimit:
		limit = models.MaxListLimit
	}

	entries, err := s.store.ListByTenant(ctx, tenantID, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list usage")
	}
	return entries, nil
}

func resolveOwner(ctx context.Context, req *models.LogRequest) (id.UserID, id.TenantID) {
	var userID id.UserID
	var tenantID id.TenantID
	if ident, ok := requestcontext.GetIdentity(ctx); ok {
		userID = ident.UserID
		if ident.TenantID != nil {
			tenantID = *ident.TenantID
		}
	}
	if userID.IsNil() && req.UserID != nil && *req.UserID > 0 {
		userID = id.UserID(*req.UserID)
	}
	if tenantID.IsNil() && req.TenantID != nil && *req.TenantID > 0 {
		tenantID = id.TenantID(*req.TenantID)
	}
	return userID, tenantID
}

func (s *Service) increment(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementRecorded(outcome)
	}
}
