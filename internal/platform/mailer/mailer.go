package mailer

import (
	"context"

	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
	"github.com/yungbote/safetywatch-backend/internal/platform/resend"
	"github.com/yungbote/safetywatch-backend/internal/platform/smtp"
)

const (
	ProviderResend  = "resend"
	ProviderSMTP    = "smtp"
	ProviderDiscard = "discard"
)

type Message struct {
	From    string
	To      []string
	Subject string
	Text    string
}

// Mailer sends one plain-text message through whichever provider was configured at start.
type Mailer interface {
	Provider() string
	Send(ctx context.Context, msg Message) error
}

func NewResend(c resend.Client) Mailer { return &resendMailer{c: c} }

type resendMailer struct{ c resend.Client }

func (m *resendMailer) Provider() string { return ProviderResend }

func (m *resendMailer) Send(ctx context.Context, msg Message) error {
	_, err := m.c.Send(ctx, resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
	})
	return err
}

func NewSMTP(c smtp.Client) Mailer { return &smtpMailer{c: c} }

type smtpMailer struct{ c smtp.Client }

func (m *smtpMailer) Provider() string { return ProviderSMTP }

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	return m.c.Send(ctx, smtp.Email{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
	})
}

// Discard logs messages instead of sending them; used when no provider is configured.
func Discard(log *logger.Logger) Mailer {
	return &discardMailer{log: log.With("mailer", ProviderDiscard)}
}

type discardMailer struct{ log *logger.Logger }

func (m *discardMailer) Provider() string { return ProviderDiscard }

func (m *discardMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("Email provider not configured; dropping message",
		"subject", msg.Subject,
		"recipient_count", len(msg.To),
	)
	return nil
}
