package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/safetywatch-backend/internal/platform/ctxutil"
	"github.com/yungbote/safetywatch-backend/internal/platform/envutil"
	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
)

type Client interface {
	Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error)
}

type Config struct {
	APIKey           string
	BaseURL          string
	DefaultFromEmail string
	Timeout          time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:           envutil.String("RESEND_API_KEY", ""),
		BaseURL:          envutil.String("RESEND_BASE_URL", ""),
		DefaultFromEmail: envutil.String("RESEND_FROM_EMAIL", ""),
		Timeout:          time.Duration(envutil.Int("RESEND_TIMEOUT_SECONDS", 15)) * time.Second,
	}
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing RESEND_API_KEY")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.resend.com"
	}
	if strings.TrimSpace(cfg.DefaultFromEmail) == "" {
		cfg.DefaultFromEmail = "onboarding@resend.dev"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &client{
		log:        log.With("client", "ResendClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

// SendEmailRequest is a plain-text message; an empty From falls back to DefaultFromEmail.
type SendEmailRequest struct {
	From    string
	To      []string
	Subject string
	Text    string
}

type SendEmailResult struct {
	StatusCode int
	ID         string
}

// --- Resend wire types ---
type emailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

type emailResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

func (c *client) Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("resend client unavailable")
	}

	from := strings.TrimSpace(req.From)
	if from == "" {
		from = c.cfg.DefaultFromEmail
	}
	to := make([]string, 0, len(req.To))
	for _, addr := range req.To {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	subject := strings.TrimSpace(req.Subject)

	if len(to) == 0 {
		return nil, fmt.Errorf("resend: To required")
	}
	if subject == "" {
		return nil, fmt.Errorf("resend: Subject required")
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("resend: Text required")
	}

	wire := emailRequest{
		From:    from,
		To:      to,
		Subject: subject,
		Text:    req.Text,
	}

	resp, raw, err := c.do(ctx, http.MethodPost, "/emails", wire)
	if err != nil {
		return nil, err
	}
	var out emailResponse
	_ = json.Unmarshal(raw, &out)
	return &SendEmailResult{StatusCode: resp.StatusCode, ID: out.ID}, nil
}

type HTTPError struct {
	StatusCode int
	Name       string
	Message    string
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "resend: <nil error>"
	}
	if strings.TrimSpace(e.Message) != "" {
		return fmt.Sprintf("resend http %d: %s", e.StatusCode, e.Message)
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 2000 {
		msg = msg[:2000] + "..."
	}
	return fmt.Sprintf("resend http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// do issues exactly one request; failed sends are reported to the caller, never retried.
func (c *client) do(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), method, c.cfg.BaseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		he := &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil {
			he.Name = er.Name
			he.Message = er.Message
		}
		c.log.Warn("Resend request failed", "path", path, "status", resp.StatusCode, "name", he.Name)
		return resp, raw, he
	}
	return resp, raw, nil
}
