package main

import (
	"context"
	"fmt"
	"log/slog"

	authservice "automatik/internal/auth/service"
	userstore "automatik/internal/auth/store/user"
	"automatik/internal/platform/config"
	"automatik/internal/platform/database"
	tenantservice "automatik/internal/tenant/service"
	tenantstore "automatik/internal/tenant/store/tenant"
	usageservice "automatik/internal/usage/service"
	usagestore "automatik/internal/usage/store"
	"automatik/migrations"
)

type userStore interface {
	authservice.UserStore
	tenantservice.UserStore
}

// stores bundles the persistence backends chosen from configuration.
type stores struct {
	pool    *database.Pool
	users   userStore
	tenants tenantservice.TenantStore
	usage   usageservice.Store
	seed    bool
}

func (s *stores) Close() {
	_ = s.pool.Close()
}

// openStores connects to PostgreSQL and applies migrations when DATABASE_URL
// is set. Otherwise it returns in-memory stores that are seeded with demo data.
func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (*stores, error) {
	pool, err := database.New(ctx, database.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}

	if pool == nil {
		log.Warn("DATABASE_URL is not set; using in-memory stores with demo accounts")
		return &stores{
			users:   userstore.New(),
			tenants: tenantstore.NewInMemory(),
			usage:   usagestore.NewInMemory(),
			seed:    true,
		}, nil
	}

	applied, err := pool.Migrate(ctx, migrations.FS)
	if err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	log.Info("database ready", "migrations_applied", len(applied))

	return &stores{
		pool:    pool,
		users:   userstore.NewPostgres(pool.DB()),
		tenants: tenantstore.NewPostgres(pool.DB()),
		usage:   usagestore.NewPostgres(pool.DB()),
		seed:    cfg.Database.SeedDemoData,
	}, nil
}
