package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sadh911122-sudo/Dark-Triad/internal/database"
	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
)

// ResultQueue stores diagnosis results whose primary-backend write
// failed. The whole record is kept as a JSON payload so the queue
// survives schema drift in the primary backend.
type ResultQueue struct {
	db *database.DB
}

func NewResultQueue(db *database.DB) *ResultQueue {
	return &ResultQueue{db: db}
}

func (q *ResultQueue) Enqueue(ctx context.Context, r *models.DiagnosisResult) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode queued result: %w", err)
	}

	query := `INSERT INTO result_queue (id, payload, queued_at) VALUES ($1, $2, $3)`

	if _, err := q.db.Pool.Exec(ctx, query, r.ID, payload, time.Now()); err != nil {
		return database.MapPostgresError(err)
	}

	return nil
}

func (q *ResultQueue) Pending(ctx context.Context, limit int) ([]*models.DiagnosisResult, error) {
	query := `SELECT payload FROM result_queue ORDER BY queued_at ASC LIMIT $1`

	rows, err := q.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query result queue: %w", err)
	}
	defer rows.Close()

	results := make([]*models.DiagnosisResult, 0)

	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, database.MapPostgresError(err)
		}

		var r models.DiagnosisResult
		if err := json.Unmarshal(payload, &r); err != nil {
			return nil, fmt.Errorf("failed to decode queued result: %w", err)
		}
		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}

func (q *ResultQueue) Remove(ctx context.Context, id string) error {
	query := `DELETE FROM result_queue WHERE id = $1`

	result, err := q.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
