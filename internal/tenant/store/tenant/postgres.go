package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"automatik/internal/sentinel"
	"automatik/internal/tenant/models"
	id "automatik/pkg/domain"
)

// PostgresStore persists tenants in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const tenantColumns = `id, slug, name, redirect_path, created_at, updated_at`

// FindOrCreateBySlug inserts the tenant unless the slug exists, then returns
// the stored row. Existing tenants are not modified.
func (s *PostgresStore) FindOrCreateBySlug(ctx context.Context, t *models.Tenant) (*models.Tenant, error) {
	if t == nil {
		return nil, fmt.Errorf("tenant is required")
	}
	query := `
		WITH inserted AS (
			INSERT INTO tenants (slug, name, redirect_path, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (slug) DO NOTHING
			RETURNING ` + tenantColumns + `
		)
		SELECT ` + tenantColumns + ` FROM inserted
		UNION ALL
		SELECT ` + tenantColumns + ` FROM tenants WHERE slug = $1
		LIMIT 1
	`
	stored, err := scanTenant(s.db.QueryRowContext(ctx, query,
		t.Slug, t.Name, t.RedirectPath, t.CreatedAt, t.UpdatedAt,
	))
	if errors.Is(err, sql.ErrNoRows) {
		// A concurrent insert committed after this statement's snapshot.
		return s.FindBySlug(ctx, t.Slug)
	}
	if err != nil {
		return nil, fmt.Errorf("find or create tenant: %w", err)
	}
	return stored, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	t, err := scanTenant(s.db.QueryRowContext(ctx, query, int64(tenantID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find tenant by id: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) FindBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE slug = lower($1)`
	t, err := scanTenant(s.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find tenant by slug: %w", err)
	}
	return t, nil
}

// ListByName returns every tenant ordered by name ascending, ties broken by ID.
func (s *PostgresStore) ListByName(ctx context.Context) ([]*models.Tenant, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var out []*models.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count tenants: %w", err)
	}
	return count, nil
}

type tenantRow interface {
	Scan(dest ...any) error
}

func scanTenant(row tenantRow) (*models.Tenant, error) {
	var t models.Tenant
	var tenantID int64
	if err := row.Scan(&tenantID, &t.Slug, &t.Name, &t.RedirectPath, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.ID = id.TenantID(tenantID)
	return &t, nil
}
