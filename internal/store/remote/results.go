package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
)

// ResultStore is the action-protocol diagnosis result backend.
type ResultStore struct {
	client *Client
}

func NewResultStore(client *Client) *ResultStore {
	return &ResultStore{client: client}
}

// wireResult is the remote service's result record. Scores arrive as
// numbers or numeric strings depending on the backing sheet.
type wireResult struct {
	ID               string          `json:"id"`
	ParticipantCode  string          `json:"participantCode"`
	ParticipantName  string          `json:"participantName"`
	ParticipantEmail string          `json:"participantEmail"`
	Narcissism       flexFloat       `json:"narcissism"`
	Machiavellianism flexFloat       `json:"machiavellianism"`
	Psychopathy      flexFloat       `json:"psychopathy"`
	AvgScore         flexFloat       `json:"avgScore"`
	Answers          json.RawMessage `json:"answers,omitempty"`
	Questions        json.RawMessage `json:"questions,omitempty"`
	CompletedAt      string          `json:"completedAt"`
}

func (w *wireResult) toModel() *models.DiagnosisResult {
	r := &models.DiagnosisResult{
		ID:               w.ID,
		ParticipantCode:  w.ParticipantCode,
		ParticipantName:  w.ParticipantName,
		ParticipantEmail: w.ParticipantEmail,
		Scores: models.TraitScores{
			Narcissism:       float64(w.Narcissism),
			Machiavellianism: float64(w.Machiavellianism),
			Psychopathy:      float64(w.Psychopathy),
		},
		AvgScore:  float64(w.AvgScore),
		Answers:   w.Answers,
		Questions: w.Questions,
	}
	if t := parseTime(w.CompletedAt); t != nil {
		r.CompletedAt = *t
	}
	return r
}

func (s *ResultStore) Save(ctx context.Context, r *models.DiagnosisResult) (*models.DiagnosisResult, error) {
	payload := map[string]interface{}{
		"result": map[string]interface{}{
			"id":               r.ID,
			"participantCode":  r.ParticipantCode,
			"participantName":  r.ParticipantName,
			"participantEmail": r.ParticipantEmail,
			"narcissism":       r.Scores.Narcissism,
			"machiavellianism": r.Scores.Machiavellianism,
			"psychopathy":      r.Scores.Psychopathy,
			"avgScore":         r.AvgScore,
			"answers":          r.Answers,
			"questions":        r.Questions,
			"completedAt":      r.CompletedAt.Format(time.RFC3339),
		},
	}

	if _, err := s.client.Call(ctx, "saveDiagnosisResult", payload); err != nil {
		return nil, err
	}

	return r, nil
}

func (s *ResultStore) List(ctx context.Context) ([]*models.DiagnosisResult, error) {
	data, err := s.client.Call(ctx, "getDiagnosisResults", nil)
	if err != nil {
		return nil, err
	}

	var wire []wireResult
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}

	results := make([]*models.DiagnosisResult, 0, len(wire))
	for i := range wire {
		results = append(results, wire[i].toModel())
	}

	return results, nil
}

// Test verifies connectivity to the remote service.
func (s *ResultStore) Test(ctx context.Context) error {
	return s.client.Test(ctx)
}
