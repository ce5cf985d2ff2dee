package app

import (
	"fmt"
	"strings"

	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
	"github.com/yungbote/safetywatch-backend/internal/platform/mailer"
	"github.com/yungbote/safetywatch-backend/internal/platform/resend"
	"github.com/yungbote/safetywatch-backend/internal/platform/smtp"
)

var (
	newResendClient = resend.New
	newSMTPClient   = smtp.New
)

// resolveMailer prefers the Resend API, then an SMTP relay, then a mailer that only logs.
func resolveMailer(log *logger.Logger, resendCfg resend.Config, smtpCfg smtp.Config) (mailer.Mailer, error) {
	switch {
	case strings.TrimSpace(resendCfg.APIKey) != "":
		c, err := newResendClient(log, resendCfg)
		if err != nil {
			return nil, fmt.Errorf("init resend mailer: %w", err)
		}
		log.Info("Email provider selected", "provider", mailer.ProviderResend)
		return mailer.NewResend(c), nil
	case strings.TrimSpace(smtpCfg.Host) != "":
		c, err := newSMTPClient(log, smtpCfg)
		if err != nil {
			return nil, fmt.Errorf("init smtp mailer: %w", err)
		}
		log.Info("Email provider selected", "provider", mailer.ProviderSMTP, "host", smtpCfg.Host, "port", smtpCfg.Port)
		return mailer.NewSMTP(c), nil
	default:
		log.Warn("No email provider configured; notifications will only be logged",
			"provider", mailer.ProviderDiscard,
		)
		return mailer.Discard(log), nil
	}
}
