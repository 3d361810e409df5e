package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sadh911122-sudo/Dark-Triad/internal/database"
	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
)

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(db *database.DB) *AdminRepository {
	return &AdminRepository{pool: db.Pool}
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAdminRow handles nullable fields and populates an Admin model from a database row
func scanAdminRow(scanner rowScanner) (*models.Admin, error) {
	var admin models.Admin
	var lastLoginAt *time.Time

	err := scanner.Scan(
		&admin.ID, &admin.PasswordHash, &admin.Name, &admin.Email,
		&admin.Role, &admin.Status, &admin.CreatedAt,
		&lastLoginAt, &admin.LoginCount,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	admin.LastLoginAt = lastLoginAt

	return &admin, nil
}

func scanAdminRows(rows pgx.Rows) ([]*models.Admin, error) {
	defer rows.Close()

	admins := make([]*models.Admin, 0)

	for rows.Next() {
		admin, err := scanAdminRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, admin)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return admins, nil
}

func (r *AdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	query := `
		SELECT id, password_hash, name, email, role, status, created_at, last_login_at, login_count
		FROM admins WHERE id = $1
	`

	admin, err := scanAdminRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	return admin, nil
}

func (r *AdminRepository) List(ctx context.Context) ([]*models.Admin, error) {
	query := `
		SELECT id, password_hash, name, email, role, status, created_at, last_login_at, login_count
		FROM admins ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query admins: %w", err)
	}

	return scanAdminRows(rows)
}

func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now()
	}

	if admin.Role == "" {
		admin.Role = models.RoleAdmin
	}

	if admin.Status == "" {
		admin.Status = models.StatusActive
	}

	query := `
		INSERT INTO admins (id, password_hash, name, email, role, status, created_at, last_login_at, login_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, password_hash, name, email, role, status, created_at, last_login_at, login_count
	`

	createdAdmin, err := scanAdminRow(r.pool.QueryRow(ctx, query,
		admin.ID, admin.PasswordHash, admin.Name, admin.Email,
		admin.Role, admin.Status, admin.CreatedAt,
		admin.LastLoginAt, admin.LoginCount,
	))
	if err != nil {
		return nil, err
	}

	return createdAdmin, nil
}

// RecordLogin bumps the login counter and stamps the login time.
func (r *AdminRepository) RecordLogin(ctx context.Context, id string, at time.Time) (*models.Admin, error) {
	query := `
		UPDATE admins SET last_login_at = $1, login_count = login_count + 1
		WHERE id = $2
		RETURNING id, password_hash, name, email, role, status, created_at, last_login_at, login_count
	`

	admin, err := scanAdminRow(r.pool.QueryRow(ctx, query, at, id))
	if err != nil {
		return nil, err
	}

	return admin, nil
}

func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	var count int

	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return count, nil
}
