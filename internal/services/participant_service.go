package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
	"github.com/sadh911122-sudo/Dark-Triad/internal/store"
	pkglogger "github.com/sadh911122-sudo/Dark-Triad/pkg/logger"
)

// ParticipantService handles participant registration and lifecycle
type ParticipantService struct {
	store          store.ParticipantStore
	email          EmailService
	defaultAdminID string
	logger         *slog.Logger
	auditLogger    *pkglogger.AuditLogger
}

// NewParticipantService wires the store and mail collaborators.
// defaultAdminID owns participants created without an explicit admin,
// typically the bootstrap account.
func NewParticipantService(participantStore store.ParticipantStore, email EmailService, defaultAdminID string, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *ParticipantService {
	return &ParticipantService{
		store:          participantStore,
		email:          email,
		defaultAdminID: defaultAdminID,
		logger:         logger,
		auditLogger:    auditLogger,
	}
}

// CreateParticipantInput carries the admin-supplied fields for a new
// participant. Everything else is defaulted here.
type CreateParticipantInput struct {
	Name         string
	Email        string
	Organization string
	Position     string
	Code         string
	AdminID      string
}

// Create registers a participant and best-effort sends the
// participation code mail. A mail failure is logged, not returned;
// the registration already happened.
func (s *ParticipantService) Create(ctx context.Context, input CreateParticipantInput) (*models.Participant, error) {
	participant := &models.Participant{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Email:        input.Email,
		Organization: input.Organization,
		Position:     input.Position,
		Code:         input.Code,
		Status:       models.ParticipantPending,
		CreatedAt:    time.Now(),
		AdminID:      input.AdminID,
	}

	if participant.Code == "" {
		code, err := GenerateParticipationCode()
		if err != nil {
			s.logger.Error("failed to generate participation code", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		participant.Code = code
	}

	if participant.AdminID == "" {
		participant.AdminID = s.defaultAdminID
	}

	saved, err := s.store.Save(ctx, participant)
	if err != nil {
		s.logger.Error("failed to save participant", slog.Any("error", err))
		return nil, err
	}

	s.auditLogger.LogAccountAction("participant_created", saved.AdminID, "", map[string]string{
		"participant_code": saved.Code,
	})

	if err := s.email.SendParticipationCode(ctx, saved); err != nil {
		s.logger.Warn("failed to send participation code mail",
			slog.String("code", saved.Code),
			slog.Any("error", err))
	}

	return saved, nil
}

// List returns every participant that is not logically deleted.
// Filtering happens here so both backends can return their raw
// collections.
func (s *ParticipantService) List(ctx context.Context) ([]*models.Participant, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("failed to list participants", slog.Any("error", err))
		return nil, err
	}

	visible := make([]*models.Participant, 0, len(all))
	for _, p := range all {
		if p.Status == models.ParticipantDeleted {
			continue
		}
		visible = append(visible, p)
	}

	return visible, nil
}

// UpdateStatus changes a participant's status by code. An unknown code
// is logged and swallowed; the admin collection may legitimately lag
// behind submissions arriving through the public survey.
func (s *ParticipantService) UpdateStatus(ctx context.Context, code, status string, completedAt *time.Time) error {
	switch status {
	case models.ParticipantPending, models.ParticipantCompleted, models.ParticipantDeleted:
	default:
		return fmt.Errorf("%w: unknown status %q", models.ErrBadRequest, status)
	}

	if status == models.ParticipantCompleted && completedAt == nil {
		now := time.Now()
		completedAt = &now
	}

	err := s.store.UpdateStatus(ctx, code, status, completedAt)
	if errors.Is(err, models.ErrNotFound) {
		s.logger.Warn("status update for unknown participant code",
			slog.String("code", code),
			slog.String("status", status))
		return nil
	}
	if err != nil {
		s.logger.Error("failed to update participant status",
			slog.String("code", code),
			slog.Any("error", err))
		return err
	}

	return nil
}

// Delete soft-deletes a participant. The record stays in the backend
// and is filtered out of List.
func (s *ParticipantService) Delete(ctx context.Context, code, adminID string) error {
	if err := s.UpdateStatus(ctx, code, models.ParticipantDeleted, nil); err != nil {
		return err
	}

	s.auditLogger.LogAccountAction("participant_deleted", adminID, "", map[string]string{
		"participant_code": code,
	})

	return nil
}

// GenerateParticipationCode mints an LDT-XXXX code. Uniqueness is
// probabilistic; the postgres backend's unique index catches the rare
// collision and the admin simply retries.
func GenerateParticipationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("LDT-%04d", n.Int64()), nil
}
