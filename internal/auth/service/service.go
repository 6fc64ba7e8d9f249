package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	authmetrics "automatik/internal/auth/metrics"
	"automatik/internal/auth/models"
	"automatik/internal/sentinel"
	id "automatik/pkg/domain"
	dErrors "automatik/pkg/domain-errors"
	"automatik/pkg/secrets"
)

// InvalidCredentialsMessage is returned for every credential failure so that
// unknown emails and wrong passwords are indistinguishable.
const InvalidCredentialsMessage = "E-Mail oder Passwort ist falsch"

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) (*models.User, error)
	Count(ctx context.Context) (int, error)
}

type TokenGenerator interface {
	IssueSessionToken(ctx context.Context, userID id.UserID, role string, tenantID *id.TenantID) (string, error)
}

// Service issues sessions against the credential store.
type Service struct {
	users   UserStore
	tokens  TokenGenerator
	logger  *slog.Logger
	metrics *authmetrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *authmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(users UserStore, tokens TokenGenerator, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, errors.New("users store is required")
	}
	if tokens == nil {
		return nil, errors.New("token generator is required")
	}
	s := &Service{users: users, tokens: tokens}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// timingHash is compared against when the email is unknown, so both
// credential failures cost one bcrypt verification.
var timingHash = sync.OnceValue(func() string {
	hash, err := secrets.Hash("automatik-unknown-user")
	if err != nil {
		return ""
	}
	return hash
})

// Login verifies the credentials, mints a session assertion and resolves the
// landing path. Validation failures never reach the store.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResult, error) {
	start := time.Now()
	defer s.observeLogin(start)

	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		s.incrementLogin(authmetrics.OutcomeValidation)
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			_ = secrets.Verify(req.Password, timingHash())
			s.authFailure(ctx, "unknown_email", "email", req.Email)
			return nil, invalidCredentials()
		}
		s.incrementLogin(authmetrics.OutcomeError)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	if err := secrets.Verify(req.Password, user.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidCredentials) {
			s.authFailure(ctx, "password_mismatch", "user_id", user.ID.String())
			return nil, invalidCredentials()
		}
		s.incrementLogin(authmetrics.OutcomeError)
		return nil, err
	}

	token, err := s.tokens.IssueSessionToken(ctx, user.ID, user.Role.String(), user.TenantID())
	if err != nil {
		s.incrementLogin(authmetrics.OutcomeError)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session")
	}

	redirectPath := models.ResolveRedirect(user, req.Path)
	s.logAudit(ctx, "login_succeeded",
		"user_id", user.ID.String(),
		"role", user.Role.String(),
		"tenant_slug", user.TenantSlug(),
		"redirect_path", redirectPath,
	)
	s.incrementLogin(authmetrics.OutcomeSuccess)

	return &models.LoginResult{
		Token:        token,
		User:         models.ToUserSummary(user),
		RedirectPath: redirectPath,
	}, nil
}

func (s *Service) CountUsers(ctx context.Context) (int, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count users")
	}
	return count, nil
}

func invalidCredentials() error {
	return dErrors.New(dErrors.CodeInvalidCredentials, InvalidCredentialsMessage)
}
