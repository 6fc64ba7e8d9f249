package service

import (
	"context"
	"time"

	authmetrics "automatik/internal/auth/metrics"
	"automatik/pkg/platform/device"
	"automatik/pkg/requestcontext"
)

// Observability helpers for logging and metrics.

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if s.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	if ua := requestcontext.UserAgent(ctx); ua != "" {
		attributes = append(attributes, "device", device.Describe(ua))
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}

// authFailure records a rejected login. The reason is logged but never
// returned to the caller.
func (s *Service) authFailure(ctx context.Context, reason string, attributes ...any) {
	if s.logger != nil {
		args := append(attributes,
			"event", "login_failed",
			"reason", reason,
			"log_type", "audit",
			"request_id", requestcontext.RequestID(ctx),
		)
		if ip := requestcontext.ClientIP(ctx); ip != "" {
			args = append(args, "client_ip", ip)
		}
		if ua := requestcontext.UserAgent(ctx); ua != "" {
			args = append(args, "device", device.Describe(ua))
		}
		s.logger.WarnContext(ctx, "login_failed", args...)
	}
	s.incrementLogin(authmetrics.OutcomeInvalidCredentials)
}

func (s *Service) incrementLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementLogin(outcome)
	}
}

func (s *Service) observeLogin(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveLogin(start)
	}
}
