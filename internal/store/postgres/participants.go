package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sadh911122-sudo/Dark-Triad/internal/database"
	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
)

// ParticipantStore is the pgx-backed participant backend.
type ParticipantStore struct {
	db *database.DB
}

func NewParticipantStore(db *database.DB) *ParticipantStore {
	return &ParticipantStore{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanParticipantRow(scanner rowScanner) (*models.Participant, error) {
	var p models.Participant
	var completedAt *time.Time

	err := scanner.Scan(
		&p.ID, &p.Name, &p.Email, &p.Organization, &p.Position,
		&p.Code, &p.Status, &p.CreatedAt, &completedAt, &p.AdminID,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	p.CompletedAt = completedAt
	return &p, nil
}

func scanParticipantRows(rows pgx.Rows) ([]*models.Participant, error) {
	defer rows.Close()

	participants := make([]*models.Participant, 0)

	for rows.Next() {
		p, err := scanParticipantRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return participants, nil
}

func (s *ParticipantStore) Save(ctx context.Context, p *models.Participant) (*models.Participant, error) {
	query := `
		INSERT INTO participants (id, name, email, organization, position, code, status, created_at, completed_at, admin_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, name, email, organization, position, code, status, created_at, completed_at, admin_id
	`

	saved, err := scanParticipantRow(s.db.Pool.QueryRow(ctx, query,
		p.ID, p.Name, p.Email, p.Organization, p.Position,
		p.Code, p.Status, p.CreatedAt, p.CompletedAt, p.AdminID,
	))
	if err != nil {
		return nil, err
	}

	return saved, nil
}

func (s *ParticipantStore) List(ctx context.Context) ([]*models.Participant, error) {
	query := `
		SELECT id, name, email, organization, position, code, status, created_at, completed_at, admin_id
		FROM participants ORDER BY created_at DESC
	`

	rows, err := s.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}

	return scanParticipantRows(rows)
}

func (s *ParticipantStore) UpdateStatus(ctx context.Context, code, status string, completedAt *time.Time) error {
	query := `UPDATE participants SET status = $1, completed_at = $2 WHERE code = $3`

	result, err := s.db.Pool.Exec(ctx, query, status, completedAt, code)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
