package service

import (
	"context"
	"errors"

	"automatik/internal/auth/models"
	"automatik/internal/sentinel"
	tenantmodels "automatik/internal/tenant/models"
	dErrors "automatik/pkg/domain-errors"
	"automatik/pkg/secrets"
)

// ProvisionUserCommand creates or replaces an account keyed by email.
type ProvisionUserCommand struct {
	Email    string
	Password string
	Username string
	Role     string
	HomePath *string
	Tenant   *tenantmodels.Tenant
}

// ProvisionUser hashes the password and upserts the user. An existing account
// with the same email has its password, name, role, home path and tenant replaced.
func (s *Service) ProvisionUser(ctx context.Context, cmd *ProvisionUserCommand) (*models.User, error) {
	if cmd == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "command is required")
	}
	role, ok := models.ParseRole(cmd.Role)
	if !ok {
		return nil, dErrors.Validation("unknown role", map[string]string{"role": "role must be one of [admin tenant-member]"})
	}
	if cmd.Password == "" {
		return nil, dErrors.Validation("password is required", map[string]string{"password": "password is required"})
	}

	hash, err := secrets.HashWithCost(cmd.Password, secrets.DefaultCost)
	if err != nil {
		return nil, err
	}
	user, err := models.NewUser(cmd.Email, hash, cmd.Username, role, models.NormalizePath(cmd.HomePath), cmd.Tenant)
	if err != nil {
		return nil, err
	}

	stored, err := s.users.Upsert(ctx, user)
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidInput) {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, "user tenant does not exist")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to provision user")
	}

	s.logAudit(ctx, "user_provisioned",
		"user_id", stored.ID.String(),
		"role", stored.Role.String(),
		"tenant_slug", stored.TenantSlug(),
	)
	if s.metrics != nil {
		s.metrics.IncrementProvisioned()
	}
	return stored, nil
}
