package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
	"github.com/sadh911122-sudo/Dark-Triad/internal/store"
)

// ResultService handles survey submissions and result retrieval. The
// primary store may be remote; a failed primary write lands in the
// local fallback queue so a submission is never dropped.
type ResultService struct {
	store        store.ResultStore
	queue        store.ResultQueue
	participants *ParticipantService
	email        EmailService
	logger       *slog.Logger
}

func NewResultService(resultStore store.ResultStore, queue store.ResultQueue, participants *ParticipantService, email EmailService, logger *slog.Logger) *ResultService {
	return &ResultService{
		store:        resultStore,
		queue:        queue,
		participants: participants,
		email:        email,
		logger:       logger,
	}
}

// SaveResultInput is a raw survey submission.
type SaveResultInput struct {
	ParticipantCode  string
	ParticipantName  string
	ParticipantEmail string
	Scores           models.TraitScores
	AvgScore         float64
	Answers          json.RawMessage
	Questions        json.RawMessage
}

// SaveOutcome reports where the submission ended up. Queued means the
// primary write failed and the record went to the fallback queue
// instead; Err carries the primary failure in that case.
type SaveOutcome struct {
	Result *models.DiagnosisResult
	Queued bool
	Err    error
}

// Save persists a submission. On primary failure the record is
// enqueued locally and the outcome reports both the queueing and the
// original error; only a double failure returns an error directly.
func (s *ResultService) Save(ctx context.Context, input SaveResultInput) (*SaveOutcome, error) {
	result := &models.DiagnosisResult{
		ID:               uuid.New().String(),
		ParticipantCode:  input.ParticipantCode,
		ParticipantName:  input.ParticipantName,
		ParticipantEmail: input.ParticipantEmail,
		Scores:           input.Scores,
		AvgScore:         input.AvgScore,
		Answers:          input.Answers,
		Questions:        input.Questions,
		CompletedAt:      time.Now(),
	}

	if result.AvgScore == 0 {
		result.AvgScore = (result.Scores.Narcissism + result.Scores.Machiavellianism + result.Scores.Psychopathy) / 3
	}

	saved, err := s.store.Save(ctx, result)
	if err != nil {
		s.logger.Error("primary result save failed, queueing locally",
			slog.String("participant_code", result.ParticipantCode),
			slog.Any("error", err))

		if qerr := s.queue.Enqueue(ctx, result); qerr != nil {
			s.logger.Error("fallback queue write failed",
				slog.String("participant_code", result.ParticipantCode),
				slog.Any("error", qerr))
			return nil, err
		}

		return &SaveOutcome{Result: result, Queued: true, Err: err}, nil
	}

	s.finishSubmission(ctx, saved)

	return &SaveOutcome{Result: saved}, nil
}

// finishSubmission runs the after-save steps: mark the participant
// completed and mail the result. Both are best effort.
func (s *ResultService) finishSubmission(ctx context.Context, result *models.DiagnosisResult) {
	completedAt := result.CompletedAt
	if err := s.participants.UpdateStatus(ctx, result.ParticipantCode, models.ParticipantCompleted, &completedAt); err != nil {
		s.logger.Warn("failed to mark participant completed",
			slog.String("code", result.ParticipantCode),
			slog.Any("error", err))
	}

	if err := s.email.SendDiagnosisResult(ctx, result); err != nil {
		s.logger.Warn("failed to send result mail",
			slog.String("result_id", result.ID),
			slog.Any("error", err))
	}
}

func (s *ResultService) List(ctx context.Context) ([]*models.DiagnosisResult, error) {
	results, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("failed to list results", slog.Any("error", err))
		return nil, err
	}

	return results, nil
}

// Reconcile drains the fallback queue into the primary store. Called
// periodically by the background manager; safe to call concurrently
// with submissions since queue entries are removed only after the
// primary write succeeds.
func (s *ResultService) Reconcile(ctx context.Context, batchSize int) (int, error) {
	pending, err := s.queue.Pending(ctx, batchSize)
	if err != nil {
		return 0, err
	}

	drained := 0
	for _, result := range pending {
		if _, err := s.store.Save(ctx, result); err != nil {
			s.logger.Warn("queued result still failing against primary store",
				slog.String("result_id", result.ID),
				slog.Any("error", err))
			continue
		}

		if err := s.queue.Remove(ctx, result.ID); err != nil {
			s.logger.Error("failed to remove reconciled result from queue",
				slog.String("result_id", result.ID),
				slog.Any("error", err))
			continue
		}

		s.finishSubmission(ctx, result)
		drained++
	}

	if drained > 0 {
		s.logger.Info("reconciled queued results", slog.Int("count", drained))
	}

	return drained, nil
}
