package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"automatik/internal/auth/models"
	"automatik/internal/sentinel"
	tenantmodels "automatik/internal/tenant/models"
	id "automatik/pkg/domain"
)

// PostgresStore persists users in PostgreSQL. Reads join the user's tenant.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectUserWithTenant = `
	SELECT u.id, u.email, u.password_hash, u.username, u.role, u.home_path,
	       t.id, t.slug, t.name, t.redirect_path, t.created_at, t.updated_at
	FROM users u
	LEFT JOIN tenants t ON t.id = u.tenant_id
`

// Upsert creates the user or, when the email is already taken, replaces the
// stored credentials, role, home path and tenant. The stored user is returned.
func (s *PostgresStore) Upsert(ctx context.Context, user *models.User) (*models.User, error) {
	if user == nil {
		return nil, fmt.Errorf("user is required")
	}

	var tenantID sql.NullInt64
	if tid := user.TenantID(); tid != nil {
		tenantID = sql.NullInt64{Int64: int64(*tid), Valid: true}
	}
	var homePath sql.NullString
	if user.HomePath != nil {
		homePath = sql.NullString{String: *user.HomePath, Valid: true}
	}

	now := time.Now()
	var userID int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, username, role, home_path, tenant_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT ((LOWER(email))) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			username      = EXCLUDED.username,
			role          = EXCLUDED.role,
			home_path     = EXCLUDED.home_path,
			tenant_id     = EXCLUDED.tenant_id,
			updated_at    = EXCLUDED.updated_at
		RETURNING id
	`, strings.ToLower(user.Email), user.PasswordHash, user.Username, string(user.Role), homePath, tenantID, now).Scan(&userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("user tenant does not exist: %w", sentinel.ErrInvalidInput)
		}
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return s.FindByID(ctx, id.UserID(userID))
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, selectUserWithTenant+` WHERE u.id = $1`, int64(userID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return user, nil
}

// FindByEmail matches case-insensitively through the LOWER(email) index.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, selectUserWithTenant+` WHERE LOWER(u.email) = LOWER($1)`, strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

type userRow interface {
	Scan(dest ...any) error
}

func scanUser(row userRow) (*models.User, error) {
	var (
		userID   int64
		user     models.User
		role     string
		homePath sql.NullString

		tenantID       sql.NullInt64
		tenantSlug     sql.NullString
		tenantName     sql.NullString
		tenantRedirect sql.NullString
		tenantCreated  sql.NullTime
		tenantUpdated  sql.NullTime
	)
	if err := row.Scan(
		&userID, &user.Email, &user.PasswordHash, &user.Username, &role, &homePath,
		&tenantID, &tenantSlug, &tenantName, &tenantRedirect, &tenantCreated, &tenantUpdated,
	); err != nil {
		return nil, err
	}

	user.ID = id.UserID(userID)
	parsed, ok := models.ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("user %d has unknown role %q", userID, role)
	}
	user.Role = parsed
	if homePath.Valid {
		home := homePath.String
		user.HomePath = &home
	}
	if tenantID.Valid {
		user.Tenant = &tenantmodels.Tenant{
			ID:           id.TenantID(tenantID.Int64),
			Slug:         tenantSlug.String,
			Name:         tenantName.String,
			RedirectPath: tenantRedirect.String,
			CreatedAt:    tenantCreated.Time,
			UpdatedAt:    tenantUpdated.Time,
		}
	}
	return &user, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.ForeignKeyViolation
	}
	return false
}
