package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"automatik/internal/sentinel"
	"automatik/internal/usage/models"
	id "automatik/pkg/domain"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts the entry. References to unknown users or tenants yield
// sentinel.ErrInvalidInput.
func (s *PostgresStore) Create(ctx context.Context, entry *models.Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_logs (id, user_id, tenant_id, menu, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, int64(entry.UserID), int64(entry.TenantID), entry.Menu, entry.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("create usage log: %w", sentinel.ErrInvalidInput)
		}
		return fmt.Errorf("create usage log: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByTenant(ctx context.Context, tenantID id.TenantID, limit int) ([]*models.Entry, error) {
	query := `SELECT id, user_id, tenant_id, menu, created_at FROM usage_logs
		WHERE tenant_id = $1 ORDER BY created_at DESC`
	args := []any{int64(tenantID)}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list usage logs: %w", err)
	}
	defer rows.Close()

	var out []*models.Entry
	for rows.Next() {
		var e models.Entry
		var userID, tid int64
		if err := rows.Scan(&e.ID, &userID, &tid, &e.Menu, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan usage log: %w", err)
		}
		e.UserID, e.TenantID = id.UserID(userID), id.TenantID(tid)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list usage logs: %w", err)
	}
	return out, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.ForeignKeyViolation
	}
	return false
}
