package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/engagekit/engage-go-api/internal/models"
	"github.com/engagekit/engage-go-api/internal/observability"
	"github.com/engagekit/engage-go-api/internal/repository"
	"github.com/engagekit/engage-go-api/pkg/mailer"
)

// Delivery is one rendered message addressed to a single recipient.
type Delivery struct {
	Event         string
	ActivityID    *uint
	ParticipantID *uint
	Recipient     string
	Subject       string
	BodyHTML      string
	BodyText      string
}

// SendResult is the structured outcome of one send attempt. Provider errors
// are converted into a failed result, never propagated.
type SendResult struct {
	Success        bool
	StatusCode     int
	Error          string
	NotificationID uint
}

// ChannelSender dispatches one delivery over a single channel and persists
// exactly one audit row per attempt.
type ChannelSender interface {
	Channel() string
	Send(ctx context.Context, delivery Delivery) SendResult
}

type emailSender struct {
	mail   mailer.Client
	audits repository.NotificationRepository
	logger zerolog.Logger
}

// NewEmailSender constructs the email channel sender.
func NewEmailSender(mail mailer.Client, audits repository.NotificationRepository, logger zerolog.Logger) ChannelSender {
	return &emailSender{
		mail:   mail,
		audits: audits,
		logger: logger.With().Str("component", "email_sender").Logger(),
	}
}

func (s *emailSender) Channel() string { return models.ChannelEmail }

func (s *emailSender) Send(ctx context.Context, delivery Delivery) SendResult {
	audit := models.Notification{
		Channel:       models.ChannelEmail,
		Event:         delivery.Event,
		ActivityID:    delivery.ActivityID,
		ParticipantID: delivery.ParticipantID,
		Recipient:     delivery.Recipient,
		Subject:       delivery.Subject,
		Message:       delivery.BodyHTML,
	}

	result, err := s.mail.Send(ctx, delivery.Recipient, delivery.Subject, delivery.BodyHTML, delivery.BodyText)
	if err != nil {
		audit.Status = models.NotificationStatusFailed
		audit.ErrorMessage = err.Error()
		s.persist(ctx, &audit)
		observability.NotificationSends().WithLabelValues(models.ChannelEmail, models.NotificationStatusFailed).Inc()
		s.logger.Warn().Err(err).Str("recipient", maskEmailAddress(delivery.Recipient)).Msg("email send failed")
		return SendResult{Success: false, Error: err.Error(), NotificationID: audit.ID}
	}

	audit.Status = models.NotificationStatusSent
	audit.ProviderStatus = result.StatusCode
	audit.ProviderBody = result.Body
	s.persist(ctx, &audit)
	observability.NotificationSends().WithLabelValues(models.ChannelEmail, models.NotificationStatusSent).Inc()

	return SendResult{Success: true, StatusCode: result.StatusCode, NotificationID: audit.ID}
}

func (s *emailSender) persist(ctx context.Context, audit *models.Notification) {
	if err := s.audits.Create(ctx, audit); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist notification audit row")
	}
}

// smsSender is a deliberate stub: no provider is wired up, so every call
// records a pending audit row and reports failure.
type smsSender struct {
	audits repository.NotificationRepository
	logger zerolog.Logger
}

// NewSMSSender constructs the stubbed SMS channel sender.
func NewSMSSender(audits repository.NotificationRepository, logger zerolog.Logger) ChannelSender {
	return &smsSender{
		audits: audits,
		logger: logger.With().Str("component", "sms_sender").Logger(),
	}
}

func (s *smsSender) Channel() string { return models.ChannelSMS }

func (s *smsSender) Send(ctx context.Context, delivery Delivery) SendResult {
	const message = "sms delivery is not configured"

	audit := models.Notification{
		Channel:       models.ChannelSMS,
		Event:         delivery.Event,
		ActivityID:    delivery.ActivityID,
		ParticipantID: delivery.ParticipantID,
		Recipient:     delivery.Recipient,
		Subject:       delivery.Subject,
		Message:       delivery.BodyText,
		Status:        models.NotificationStatusPending,
		ErrorMessage:  message,
	}
	if err := s.audits.Create(ctx, &audit); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist notification audit row")
	}

	observability.NotificationSends().WithLabelValues(models.ChannelSMS, models.NotificationStatusPending).Inc()

	return SendResult{Success: false, Error: message, NotificationID: audit.ID}
}
