package remote

import (
	"context"
	"time"

	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
)

// Mailer asks the remote service to deliver the result email itself.
// In remote mode the service owns the mail template and sender
// address, so the backend only forwards the scored record.
type Mailer struct {
	client *Client
}

func NewMailer(client *Client) *Mailer {
	return &Mailer{client: client}
}

func (m *Mailer) SendResultEmail(ctx context.Context, r *models.DiagnosisResult) error {
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
			"completedAt":      r.CompletedAt.Format(time.RFC3339),
		},
	}

	_, err := m.client.Call(ctx, "sendResultEmail", payload)
	return err
}
