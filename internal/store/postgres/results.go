package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sadh911122-sudo/Dark-Triad/internal/database"
	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
)

// ResultStore is the pgx-backed diagnosis result backend.
type ResultStore struct {
	db *database.DB
}

func NewResultStore(db *database.DB) *ResultStore {
	return &ResultStore{db: db}
}

func scanResultRow(scanner rowScanner) (*models.DiagnosisResult, error) {
	var r models.DiagnosisResult

	err := scanner.Scan(
		&r.ID, &r.ParticipantCode, &r.ParticipantName, &r.ParticipantEmail,
		&r.Scores.Narcissism, &r.Scores.Machiavellianism, &r.Scores.Psychopathy,
		&r.AvgScore, &r.Answers, &r.Questions, &r.CompletedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &r, nil
}

func scanResultRows(rows pgx.Rows) ([]*models.DiagnosisResult, error) {
	defer rows.Close()

	results := make([]*models.DiagnosisResult, 0)

	for rows.Next() {
		r, err := scanResultRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}

func (s *ResultStore) Save(ctx context.Context, r *models.DiagnosisResult) (*models.DiagnosisResult, error) {
	query := `
		INSERT INTO diagnosis_results (id, participant_code, participant_name, participant_email,
			narcissism, machiavellianism, psychopathy, avg_score, answers, questions, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, participant_code, participant_name, participant_email,
			narcissism, machiavellianism, psychopathy, avg_score, answers, questions, completed_at
	`

	saved, err := scanResultRow(s.db.Pool.QueryRow(ctx, query,
		r.ID, r.ParticipantCode, r.ParticipantName, r.ParticipantEmail,
		r.Scores.Narcissism, r.Scores.Machiavellianism, r.Scores.Psychopathy,
		r.AvgScore, r.Answers, r.Questions, r.CompletedAt,
	))
	if err != nil {
		return nil, err
	}

	return saved, nil
}

func (s *ResultStore) List(ctx context.Context) ([]*models.DiagnosisResult, error) {
	query := `
		SELECT id, participant_code, participant_name, participant_email,
			narcissism, machiavellianism, psychopathy, avg_score, answers, questions, completed_at
		FROM diagnosis_results ORDER BY completed_at DESC
	`

	rows, err := s.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}

	return scanResultRows(rows)
}

// Test pings the database, mirroring the remote backend's
// connectivity test action.
func (s *ResultStore) Test(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}
