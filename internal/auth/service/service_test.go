package service

import (
	"context"
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	authmetrics "automatik/internal/auth/metrics"
	"automatik/internal/auth/models"
	"automatik/internal/sentinel"
	id "automatik/pkg/domain"
	dErrors "automatik/pkg/domain-errors"
	fixtures "automatik/pkg/testutil"
)

func ptr(s string) *string { return &s }

func (s *ServiceSuite) TestLoginSuccess() {
	ctx := context.Background()
	oflaz := fixtures.NewTenantBuilder().WithID(2).WithSlug("oflaz").WithName("Oflaz").Build()
	user := fixtures.NewUserBuilder().
		WithEmail("abdul@test.de").
		WithPassword("abdul123").
		WithHomePath("oflaz").
		WithTenant(oflaz).
		Build()
	tenantID := id.TenantID(2)

	s.mockUsers.EXPECT().FindByEmail(ctx, "abdul@test.de").Return(user, nil)
	s.mockJWT.EXPECT().IssueSessionToken(ctx, user.ID, "tenant-member", &tenantID).Return("signed.jwt.token", nil)

	res, err := s.service.Login(ctx, &models.LoginRequest{Email: " Abdul@Test.de ", Password: "abdul123"})
	s.Require().NoError(err)
	s.Equal("signed.jwt.token", res.Token)
	s.Equal("/oflaz", res.RedirectPath)
	s.Equal(user.ID, res.User.ID)
	s.Equal(models.RoleTenantMember, res.User.Role)
	s.Require().NotNil(res.User.Tenant)
	s.Equal("oflaz", res.User.Tenant.Slug)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Logins.WithLabelValues(authmetrics.OutcomeSuccess)))
}

func (s *ServiceSuite) TestLoginRedirectResolution() {
	ctx := context.Background()
	oflaz := fixtures.NewTenantBuilder().WithID(2).WithSlug("oflaz").Build()

	tests := []struct {
		name      string
		role      models.Role
		home      *string
		requested *string
		want      string
	}{
		{"member deep link in home path", models.RoleTenantMember, ptr("/oguz"), ptr("/oguz/reports"), "/oguz/reports"},
		{"admin override", models.RoleAdmin, ptr("/oguz"), ptr("/oguz/reports"), "/oguz/reports"},
		{"member outside home path", models.RoleTenantMember, ptr("/oguz"), ptr("/klees"), "/oguz"},
		{"tenant redirect", models.RoleTenantMember, nil, nil, "/oflaz"},
		{"normalized request", models.RoleAdmin, nil, ptr(`oguz\\reports//x`), "/oguz/reports/x"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			user := fixtures.NewUserBuilder().WithPassword("pw").WithRole(tt.role).WithTenant(oflaz).Build()
			user.HomePath = tt.home

			s.mockUsers.EXPECT().FindByEmail(ctx, user.Email).Return(user, nil)
			s.mockJWT.EXPECT().IssueSessionToken(ctx, user.ID, tt.role.String(), gomock.Any()).Return("t", nil)

			res, err := s.service.Login(ctx, &models.LoginRequest{Email: user.Email, Password: "pw", Path: tt.requested})
			s.Require().NoError(err)
			s.Equal(tt.want, res.RedirectPath)
		})
	}
}

func (s *ServiceSuite) TestLoginAdminWithoutTenant() {
	ctx := context.Background()
	admin := fixtures.NewUserBuilder().WithEmail("test@test.de").WithPassword("test2025").WithoutTenant().Build()

	s.mockUsers.EXPECT().FindByEmail(ctx, "test@test.de").Return(admin, nil)
	s.mockJWT.EXPECT().IssueSessionToken(ctx, admin.ID, "admin", (*id.TenantID)(nil)).Return("t", nil)

	res, err := s.service.Login(ctx, &models.LoginRequest{Email: "test@test.de", Password: "test2025"})
	s.Require().NoError(err)
	s.Nil(res.User.Tenant)
	s.Equal("/", res.RedirectPath)
}

func (s *ServiceSuite) TestLoginCredentialFailuresAreIdentical() {
	ctx := context.Background()
	user := fixtures.NewUserBuilder().WithPassword("right").Build()

	s.mockUsers.EXPECT().FindByEmail(ctx, "nobody@test.de").Return(nil, sentinel.ErrNotFound)
	_, unknownErr := s.service.Login(ctx, &models.LoginRequest{Email: "nobody@test.de", Password: "x"})

	s.mockUsers.EXPECT().FindByEmail(ctx, user.Email).Return(user, nil)
	_, wrongErr := s.service.Login(ctx, &models.LoginRequest{Email: user.Email, Password: "wrong"})

	s.Require().Error(unknownErr)
	s.Require().Error(wrongErr)
	s.True(dErrors.HasCode(unknownErr, dErrors.CodeInvalidCredentials))
	s.True(dErrors.HasCode(wrongErr, dErrors.CodeInvalidCredentials))
	s.Equal(unknownErr.Error(), wrongErr.Error())
	s.Equal(InvalidCredentialsMessage, wrongErr.Error())
	s.Equal(2.0, testutil.ToFloat64(s.metrics.Logins.WithLabelValues(authmetrics.OutcomeInvalidCredentials)))
}

func (s *ServiceSuite) TestLoginLongWrongPasswordIsInvalidCredentials() {
	ctx := context.Background()
	user := fixtures.NewUserBuilder().WithPassword("right").Build()
	s.mockUsers.EXPECT().FindByEmail(ctx, user.Email).Return(user, nil)

	_, err := s.service.Login(ctx, &models.LoginRequest{Email: user.Email, Password: strings.Repeat("x", 100)})

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidCredentials))
	s.Equal(InvalidCredentialsMessage, err.Error())
}

func (s *ServiceSuite) TestLoginValidationSkipsStore() {
	_, err := s.service.Login(context.Background(), &models.LoginRequest{Email: "not-an-email", Password: ""})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	fields := dErrors.FieldsOf(err)
	s.Contains(fields, "email")
	s.Contains(fields, "password")
}

func (s *ServiceSuite) TestLoginStoreFailure() {
	ctx := context.Background()
	s.mockUsers.EXPECT().FindByEmail(ctx, "a@b.de").Return(nil, errors.New("connection refused"))

	_, err := s.service.Login(ctx, &models.LoginRequest{Email: "a@b.de", Password: "x"})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestLoginTokenFailure() {
	ctx := context.Background()
	user := fixtures.NewUserBuilder().WithPassword("pw").Build()
	s.mockUsers.EXPECT().FindByEmail(ctx, user.Email).Return(user, nil)
	s.mockJWT.EXPECT().IssueSessionToken(ctx, user.ID, gomock.Any(), gomock.Any()).Return("", errors.New("boom"))

	_, err := s.service.Login(ctx, &models.LoginRequest{Email: user.Email, Password: "pw"})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestCountUsers() {
	ctx := context.Background()
	s.mockUsers.EXPECT().Count(ctx).Return(4, nil)
	count, err := s.service.CountUsers(ctx)
	s.Require().NoError(err)
	s.Equal(4, count)

	s.mockUsers.EXPECT().Count(ctx).Return(0, errors.New("down"))
	_, err = s.service.CountUsers(ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
