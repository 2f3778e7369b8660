package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to the Resend API.
type Config struct {
	APIKey      string
	FromAddress string
	FromName    string
}

// Result captures the provider outcome for one send.
type Result struct {
	ProviderID string
	StatusCode int
	Body       string
}

// Client sends transactional email through Resend.
type Client interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) (Result, error)
}

type client struct {
	resend *resend.Client
	from   string
	logger zerolog.Logger
}

// New constructs a Resend-backed mail client.
func New(cfg Config, logger zerolog.Logger) (Client, error) {
	if cfg.APIKey == "" || cfg.FromAddress == "" {
		return nil, fmt.Errorf("resend credentials must be provided")
	}

	from := cfg.FromAddress
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress)
	}

	return &client{
		resend: resend.NewClient(cfg.APIKey),
		from:   from,
		logger: logger.With().Str("component", "mailer").Logger(),
	}, nil
}

func (c *client) Send(ctx context.Context, to, subject, htmlBody, textBody string) (Result, error) {
	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
		Text:    textBody,
	}

	sent, err := c.resend.Emails.SendWithContext(ctx, params)
	if err != nil {
		return Result{}, fmt.Errorf("failed to send email: %w", err)
	}

	c.logger.Info().Str("provider_id", sent.Id).Msg("email accepted by provider")

	return Result{
		ProviderID: sent.Id,
		StatusCode: 200,
		Body:       sent.Id,
	}, nil
}
