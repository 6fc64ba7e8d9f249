//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"automatik/internal/platform/database"
	"automatik/migrations"
	id "automatik/pkg/domain"
)

// PostgresContainer wraps a testcontainers Postgres instance.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a new Postgres container with migrations applied.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("automatik_test"),
		postgres.WithUsername("automatik"),
		postgres.WithPassword("automatik_test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to connect to postgres: %v", err)
	}

	if _, err := database.FromDB(db).Migrate(ctx, migrations.FS); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Reused through SharedPostgres; Ryuk removes the container when
	// the test process exits.
	return &PostgresContainer{
		Container: container,
		DSN:       dsn,
		DB:        db,
	}
}

// TruncateTables clears all data from the specified tables.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if _, err := p.DB.ExecContext(ctx, "TRUNCATE TABLE "+table+" RESTART IDENTITY CASCADE"); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}

// TruncateModuleTables truncates every module table for full test isolation.
func (p *PostgresContainer) TruncateModuleTables(ctx context.Context) error {
	return p.TruncateTables(ctx, "usage_logs", "users", "tenants")
}

func (p *PostgresContainer) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return p.DB.ExecContext(ctx, query, args...)
}

// CreateTestTenant inserts a tenant with a random slug and returns its ID.
func (p *PostgresContainer) CreateTestTenant(ctx context.Context, t testing.TB) id.TenantID {
	t.Helper()
	slug := "t-" + uuid.NewString()[:8]
	var tenantID int64
	err := p.DB.QueryRowContext(ctx, `
		INSERT INTO tenants (slug, name, redirect_path) VALUES ($1, $2, $3) RETURNING id
	`, slug, "Tenant "+slug, "/"+slug).Scan(&tenantID)
	if err != nil {
		t.Fatalf("CreateTestTenant: %v", err)
	}
	return id.TenantID(tenantID)
}

// CreateTestUser inserts a member of the given tenant and returns its ID.
func (p *PostgresContainer) CreateTestUser(ctx context.Context, t testing.TB, tenantID id.TenantID) id.UserID {
	t.Helper()
	var userID int64
	err := p.DB.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, username, role, tenant_id)
		VALUES ($1, 'x', 'test', 'tenant-member', $2) RETURNING id
	`, "test-"+uuid.NewString()+"@example.com", int64(tenantID)).Scan(&userID)
	if err != nil {
		t.Fatalf("CreateTestUser: %v", err)
	}
	return id.UserID(userID)
}
