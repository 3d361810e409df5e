// Package store defines the backend-neutral persistence contract for
// participants and diagnosis results. Implementations exist for the
// service's own PostgreSQL database and for a remote action-protocol
// web app; which one serves traffic is a configuration choice, not a
// caller choice.
package store

import (
	"context"
	"time"

	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
)

// ParticipantStore persists survey invitees.
type ParticipantStore interface {
	// Save persists a participant and returns the stored record.
	Save(ctx context.Context, p *models.Participant) (*models.Participant, error)
	// List returns all participants known to the backend, including
	// soft-deleted ones; callers filter by status.
	List(ctx context.Context) ([]*models.Participant, error)
	// UpdateStatus updates the status (and completion time) of the
	// participant with the given code. Returns models.ErrNotFound when
	// no participant has that code.
	UpdateStatus(ctx context.Context, code, status string, completedAt *time.Time) error
}

// ResultStore persists completed diagnosis results.
type ResultStore interface {
	Save(ctx context.Context, r *models.DiagnosisResult) (*models.DiagnosisResult, error)
	List(ctx context.Context) ([]*models.DiagnosisResult, error)
}

// ResultQueue is the local fallback holding diagnosis results whose
// primary-backend write failed, so a completed survey submission is
// never lost. Always backed by the service's own database.
type ResultQueue interface {
	Enqueue(ctx context.Context, r *models.DiagnosisResult) error
	Pending(ctx context.Context, limit int) ([]*models.DiagnosisResult, error)
	Remove(ctx context.Context, id string) error
}

// Tester exposes the backend connectivity test action.
type Tester interface {
	Test(ctx context.Context) error
}
