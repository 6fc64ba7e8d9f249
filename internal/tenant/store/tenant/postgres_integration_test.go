//go:build integration

package tenant_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"automatik/internal/sentinel"
	"automatik/internal/tenant/models"
	tenantstore "automatik/internal/tenant/store/tenant"
	"automatik/pkg/testutil"
	"automatik/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *tenantstore.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.SharedPostgres(s.T())
	s.store = tenantstore.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateModuleTables(context.Background()))
}

func (s *PostgresStoreSuite) newTenant(slug, name string) *models.Tenant {
	t, err := models.NewTenant(slug, name, "/"+slug, time.Now())
	s.Require().NoError(err)
	return t
}

func (s *PostgresStoreSuite) TestFindOrCreateIsIdempotent() {
	ctx := context.Background()
	created, err := s.store.FindOrCreateBySlug(ctx, s.newTenant("oguz", "Oguz"))
	s.Require().NoError(err)
	s.NotZero(created.ID)

	again, err := s.store.FindOrCreateBySlug(ctx, s.newTenant("oguz", "Renamed"))
	s.Require().NoError(err)
	s.Equal(created.ID, again.ID)
	s.Equal("Oguz", again.Name)
}

func (s *PostgresStoreSuite) TestConcurrentFindOrCreateYieldsOneRow() {
	ctx := context.Background()
	result := testutil.RunConcurrent(20, func(int) error {
		_, err := s.store.FindOrCreateBySlug(ctx, s.newTenant("klees", "Klees"))
		return err
	})
	s.Equal(int32(20), result.Successes)

	count, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *PostgresStoreSuite) TestListByNameAndLookups() {
	ctx := context.Background()
	for slug, name := range map[string]string{"oguz": "Oguz", "klees": "Klees", "oflaz": "Oflaz"} {
		_, err := s.store.FindOrCreateBySlug(ctx, s.newTenant(slug, name))
		s.Require().NoError(err)
	}

	list, err := s.store.ListByName(ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("Klees", list[0].Name)
	s.Equal("Oflaz", list[1].Name)
	s.Equal("Oguz", list[2].Name)

	bySlug, err := s.store.FindBySlug(ctx, "OFLAZ")
	s.Require().NoError(err)
	byID, err := s.store.FindByID(ctx, bySlug.ID)
	s.Require().NoError(err)
	s.Equal("oflaz", byID.Slug)

	_, err = s.store.FindBySlug(ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
