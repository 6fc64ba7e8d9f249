package service

import (
	"context"
	"fmt"

	"go.uber.org/mock/gomock"

	"automatik/internal/auth/models"
	"automatik/internal/sentinel"
	dErrors "automatik/pkg/domain-errors"
	"automatik/pkg/secrets"
	fixtures "automatik/pkg/testutil"
)

func (s *ServiceSuite) TestProvisionUser() {
	ctx := context.Background()
	oguz := fixtures.NewTenantBuilder().Build()

	s.Run("legacy member role and hashed password", func() {
		s.mockUsers.EXPECT().Upsert(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, u *models.User) (*models.User, error) {
				s.Equal("ougz@test.de", u.Email)
				s.Equal(models.RoleTenantMember, u.Role)
				s.Equal("/oguz", *u.HomePath)
				s.NoError(secrets.Verify("oguz123", u.PasswordHash))
				stored := *u
				stored.ID = 7
				return &stored, nil
			})

		user, err := s.service.ProvisionUser(ctx, &ProvisionUserCommand{
			Email:    "ougz@test.de",
			Password: "oguz123",
			Username: "oguz",
			Role:     "mandant",
			HomePath: ptr("oguz"),
			Tenant:   oguz,
		})
		s.Require().NoError(err)
		s.EqualValues(7, user.ID)
	})

	s.Run("unknown role", func() {
		_, err := s.service.ProvisionUser(ctx, &ProvisionUserCommand{Email: "a@b.de", Password: "x", Username: "a", Role: "root"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("member without tenant", func() {
		_, err := s.service.ProvisionUser(ctx, &ProvisionUserCommand{Email: "a@b.de", Password: "x", Username: "a", Role: "tenant-member"})
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("missing tenant row", func() {
		s.mockUsers.EXPECT().Upsert(ctx, gomock.Any()).Return(nil, fmt.Errorf("fk: %w", sentinel.ErrInvalidInput))
		_, err := s.service.ProvisionUser(ctx, &ProvisionUserCommand{
			Email: "a@b.de", Password: "x", Username: "a", Role: "admin", Tenant: oguz,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
