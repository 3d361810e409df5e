package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
)

// ParticipantStore is the action-protocol participant backend.
type ParticipantStore struct {
	client *Client
}

func NewParticipantStore(client *Client) *ParticipantStore {
	return &ParticipantStore{client: client}
}

// wireParticipant is the remote service's participant record. Times
// travel as RFC 3339 strings and may be blank.
type wireParticipant struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Organization string `json:"organization"`
	Position     string `json:"position"`
	Code         string `json:"code"`
	Status       string `json:"status"`
	CreatedAt    string `json:"createdAt"`
	CompletedAt  string `json:"completedAt"`
	AdminID      string `json:"adminId"`
}

func (w *wireParticipant) toModel() *models.Participant {
	p := &models.Participant{
		ID:           w.ID,
		Name:         w.Name,
		Email:        w.Email,
		Organization: w.Organization,
		Position:     w.Position,
		Code:         w.Code,
		Status:       w.Status,
		AdminID:      w.AdminID,
		CompletedAt:  parseTime(w.CompletedAt),
	}
	if t := parseTime(w.CreatedAt); t != nil {
		p.CreatedAt = *t
	}
	return p
}

func (s *ParticipantStore) Save(ctx context.Context, p *models.Participant) (*models.Participant, error) {
	payload := map[string]interface{}{
		"participant": map[string]interface{}{
			"id":           p.ID,
			"name":         p.Name,
			"email":        p.Email,
			"organization": p.Organization,
			"position":     p.Position,
			"code":         p.Code,
			"status":       p.Status,
			"createdAt":    p.CreatedAt.Format(time.RFC3339),
			"adminId":      p.AdminID,
		},
	}

	if _, err := s.client.Call(ctx, "addParticipant", payload); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *ParticipantStore) List(ctx context.Context) ([]*models.Participant, error) {
	data, err := s.client.Call(ctx, "getParticipants", nil)
	if err != nil {
		return nil, err
	}

	var wire []wireParticipant
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode participants: %w", err)
	}

	participants := make([]*models.Participant, 0, len(wire))
	for i := range wire {
		participants = append(participants, wire[i].toModel())
	}

	return participants, nil
}

func (s *ParticipantStore) UpdateStatus(ctx context.Context, code, status string, completedAt *time.Time) error {
	payload := map[string]interface{}{
		"code":   code,
		"status": status,
	}
	if completedAt != nil {
		payload["completedAt"] = completedAt.Format(time.RFC3339)
	}

	data, err := s.client.Call(ctx, "updateParticipantStatus", payload)
	if err != nil {
		return err
	}

	// The service reports whether any row matched. A miss is not a
	// protocol failure, so it arrives inside a successful envelope.
	var result struct {
		Updated bool `json:"updated"`
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &result); err != nil {
			return fmt.Errorf("failed to decode update response: %w", err)
		}
	}

	if !result.Updated {
		return models.ErrNotFound
	}

	return nil
}
