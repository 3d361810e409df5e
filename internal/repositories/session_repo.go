package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sadh911122-sudo/Dark-Triad/internal/database"
	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
)

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{pool: db.Pool}
}

func scanSessionRow(scanner rowScanner) (*models.Session, error) {
	var session models.Session

	err := scanner.Scan(
		&session.Token, &session.AdminID, &session.Name, &session.Email,
		&session.Role, &session.LoginAt, &session.LastActivityAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &session, nil
}

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) (*models.Session, error) {
	query := `
		INSERT INTO sessions (token, admin_id, name, email, role, login_at, last_activity_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING token, admin_id, name, email, role, login_at, last_activity_at
	`

	created, err := scanSessionRow(r.pool.QueryRow(ctx, query,
		session.Token, session.AdminID, session.Name, session.Email,
		session.Role, session.LoginAt, session.LastActivityAt,
	))
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	query := `
		SELECT token, admin_id, name, email, role, login_at, last_activity_at
		FROM sessions WHERE token = $1
	`

	session, err := scanSessionRow(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		return nil, err
	}

	return session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	query := `DELETE FROM sessions WHERE token = $1`

	result, err := r.pool.Exec(ctx, query, token)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// DeleteByAdminID removes every live session for one admin and returns
// their tokens so the caller can disarm the matching timers. Used when
// an auth check finds the account missing or deactivated.
func (r *SessionRepository) DeleteByAdminID(ctx context.Context, adminID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `DELETE FROM sessions WHERE admin_id = $1 RETURNING token`, adminID)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	tokens := make([]string, 0)

	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, database.MapPostgresError(err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tokens, nil
}

// TouchActivity stamps the session's last activity time. Callers
// debounce; the repository writes unconditionally.
func (r *SessionRepository) TouchActivity(ctx context.Context, token string, at time.Time) error {
	query := `UPDATE sessions SET last_activity_at = $1 WHERE token = $2`

	result, err := r.pool.Exec(ctx, query, at, token)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// DeleteIdleBefore removes sessions whose last activity predates the
// cutoff and returns their tokens. The sweep uses this to catch
// sessions orphaned by a process restart, when no in-memory timer is
// left to expire them.
func (r *SessionRepository) DeleteIdleBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	query := `DELETE FROM sessions WHERE last_activity_at < $1 RETURNING token`

	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to delete idle sessions: %w", err)
	}
	defer rows.Close()

	tokens := make([]string, 0)

	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, database.MapPostgresError(err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tokens, nil
}
