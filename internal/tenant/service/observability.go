package service

import (
	"context"

	"automatik/pkg/requestcontext"
)

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if s.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}

func (s *Service) incrementListing(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementListing(outcome)
	}
}

func (s *Service) incrementProvisioned() {
	if s.metrics != nil {
		s.metrics.IncrementProvisioned()
	}
}
