package smtp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/yungbote/safetywatch-backend/internal/platform/envutil"
	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
)

// Client delivers plain-text mail through a relay.
type Client interface {
	Send(ctx context.Context, email Email) error
}

type Email struct {
	From    string
	To      []string
	Subject string
	Text    string
}

type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	TLSPolicy string
	Timeout   time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		Host:      envutil.String("SMTP_HOST", ""),
		Port:      envutil.Int("SMTP_PORT", 587),
		Username:  envutil.String("SMTP_USERNAME", ""),
		Password:  envutil.String("SMTP_PASSWORD", ""),
		FromEmail: envutil.String("SMTP_FROM_EMAIL", ""),
		TLSPolicy: envutil.String("SMTP_TLS", "opportunistic"),
		Timeout:   time.Duration(envutil.Int("SMTP_TIMEOUT_SECONDS", 15)) * time.Second,
	}
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg.Host = strings.TrimSpace(cfg.Host)
	if cfg.Host == "" {
		return nil, fmt.Errorf("missing SMTP_HOST")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		cfg.FromEmail = strings.TrimSpace(cfg.Username)
	}
	policy, err := parseTLSPolicy(cfg.TLSPolicy)
	if err != nil {
		return nil, err
	}

	opts := []mail.Option{
		mail.WithTLSPortPolicy(policy),
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
	}
	if strings.TrimSpace(cfg.Username) != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	mc, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &client{
		log:  log.With("client", "SMTPClient", "host", cfg.Host, "port", cfg.Port),
		cfg:  cfg,
		mail: mc,
	}, nil
}

type client struct {
	log  *logger.Logger
	cfg  Config
	mail *mail.Client
}

func (c *client) Send(ctx context.Context, email Email) error {
	msg, err := buildMessage(c.cfg.FromEmail, email)
	if err != nil {
		return err
	}
	if err := c.mail.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMessage(defaultFrom string, email Email) (*mail.Msg, error) {
	from := strings.TrimSpace(email.From)
	if from == "" {
		from = strings.TrimSpace(defaultFrom)
	}
	if from == "" {
		return nil, fmt.Errorf("smtp: From required (or set SMTP_FROM_EMAIL)")
	}
	to := make([]string, 0, len(email.To))
	for _, addr := range email.To {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	if len(to) == 0 {
		return nil, fmt.Errorf("smtp: To required")
	}
	if strings.TrimSpace(email.Subject) == "" {
		return nil, fmt.Errorf("smtp: Subject required")
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("smtp: invalid From %q: %w", from, err)
	}
	if err := msg.To(to...); err != nil {
		return nil, fmt.Errorf("smtp: invalid To: %w", err)
	}
	msg.Subject(strings.TrimSpace(email.Subject))
	msg.SetBodyString(mail.TypeTextPlain, email.Text)
	return msg, nil
}

func parseTLSPolicy(raw string) (mail.TLSPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "opportunistic":
		return mail.TLSOpportunistic, nil
	case "mandatory", "required":
		return mail.TLSMandatory, nil
	case "none", "off", "false":
		return mail.NoTLS, nil
	default:
		return mail.TLSOpportunistic, fmt.Errorf("invalid SMTP_TLS=%q; expected opportunistic, mandatory or none", raw)
	}
}
