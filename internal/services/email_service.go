package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
)

// EmailService defines the interface for participant-facing mail
type EmailService interface {
	SendParticipationCode(ctx context.Context, participant *models.Participant) error
	SendDiagnosisResult(ctx context.Context, result *models.DiagnosisResult) error
}

// NoopEmailService is used when mail is disabled. Sends are logged and
// dropped.
type NoopEmailService struct {
	logger *slog.Logger
}

func NewNoopEmailService(logger *slog.Logger) *NoopEmailService {
	return &NoopEmailService{logger: logger}
}

func (s *NoopEmailService) SendParticipationCode(ctx context.Context, participant *models.Participant) error {
	s.logger.Debug("email disabled, skipping participation code mail",
		slog.String("code", participant.Code))
	return nil
}

func (s *NoopEmailService) SendDiagnosisResult(ctx context.Context, result *models.DiagnosisResult) error {
	s.logger.Debug("email disabled, skipping result mail",
		slog.String("result_id", result.ID))
	return nil
}

// AWSSESEmailService sends emails using AWS SES
type AWSSESEmailService struct {
	sesClient   *ses.Client
	fromAddress string
	surveyURL   string
	logger      *slog.Logger
}

// NewAWSSESEmailService creates a new AWS SES email service
func NewAWSSESEmailService(region, fromAddress, surveyURL string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		surveyURL:   surveyURL,
		logger:      logger,
	}, nil
}

// SendParticipationCode mails the survey link and participation code
// to a newly registered participant.
func (s *AWSSESEmailService) SendParticipationCode(ctx context.Context, participant *models.Participant) error {
	surveyLink := fmt.Sprintf("%s?code=%s", s.surveyURL, participant.Code)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body>
    <p>Hello %s,</p>
    <p>You have been invited to take the Dark Triad assessment.</p>
    <p>Your participation code is <strong>%s</strong>.</p>
    <p><a href="%s">Start the assessment</a></p>
    <p>This is an automated message. Please do not reply to this email.</p>
</body>
</html>
`, participant.Name, participant.Code, surveyLink)

	textBody := fmt.Sprintf(`Hello %s,

You have been invited to take the Dark Triad assessment.

Your participation code is %s.

Start here: %s

This is an automated message. Please do not reply to this email.
`, participant.Name, participant.Code, surveyLink)

	return s.send(ctx, participant.Email, "Your Dark Triad assessment invitation", htmlBody, textBody)
}

// SendDiagnosisResult mails the scored outcome to the participant.
func (s *AWSSESEmailService) SendDiagnosisResult(ctx context.Context, result *models.DiagnosisResult) error {
	if result.ParticipantEmail == "" {
		return fmt.Errorf("result %s has no participant email", result.ID)
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body>
    <p>Hello %s,</p>
    <p>Your Dark Triad assessment results are ready.</p>
    <table>
        <tr><td>Narcissism</td><td>%.2f</td></tr>
        <tr><td>Machiavellianism</td><td>%.2f</td></tr>
        <tr><td>Psychopathy</td><td>%.2f</td></tr>
        <tr><td><strong>Average</strong></td><td><strong>%.2f</strong></td></tr>
    </table>
    <p>This is an automated message. Please do not reply to this email.</p>
</body>
</html>
`, result.ParticipantName, result.Scores.Narcissism, result.Scores.Machiavellianism,
		result.Scores.Psychopathy, result.AvgScore)

	textBody := fmt.Sprintf(`Hello %s,

Your Dark Triad assessment results are ready.

Narcissism:       %.2f
Machiavellianism: %.2f
Psychopathy:      %.2f
Average:          %.2f

This is an automated message. Please do not reply to this email.
`, result.ParticipantName, result.Scores.Narcissism, result.Scores.Machiavellianism,
		result.Scores.Psychopathy, result.AvgScore)

	return s.send(ctx, result.ParticipantEmail, "Your Dark Triad assessment results", htmlBody, textBody)
}

func (s *AWSSESEmailService) send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send email via SES",
			slog.String("subject", subject),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		slog.String("subject", subject),
		slog.String("message_id", *result.MessageId))

	return nil
}

// ResultEmailSender delivers result mail through the remote service's
// own mail action instead of SES.
type ResultEmailSender interface {
	SendResultEmail(ctx context.Context, result *models.DiagnosisResult) error
}

// RemoteEmailService routes result mail to the remote storage service
// and everything else to the wrapped service. Used in remote store
// mode, where the service owns the result template.
type RemoteEmailService struct {
	sender ResultEmailSender
	inner  EmailService
}

func NewRemoteEmailService(sender ResultEmailSender, inner EmailService) *RemoteEmailService {
	return &RemoteEmailService{sender: sender, inner: inner}
}

func (s *RemoteEmailService) SendParticipationCode(ctx context.Context, participant *models.Participant) error {
	return s.inner.SendParticipationCode(ctx, participant)
}

func (s *RemoteEmailService) SendDiagnosisResult(ctx context.Context, result *models.DiagnosisResult) error {
	return s.sender.SendResultEmail(ctx, result)
}
