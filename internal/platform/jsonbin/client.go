package jsonbin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/yungbote/safetywatch-backend/internal/platform/ctxutil"
	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
)

const maxErrorBody = 2000

// Client reads and overwrites one hosted JSON document. There is no partial update and
// no version token: Put replaces whatever is stored.
type Client interface {
	Latest(ctx context.Context) (json.RawMessage, error)
	Put(ctx context.Context, doc any) error
}

type client struct {
	log    *logger.Logger
	cfg    Config
	http   *http.Client
	binURL string
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg, err := ValidateConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &client{
		log:    log.With("client", "JSONBinClient"),
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		binURL: cfg.BaseURL + "/b/" + cfg.BinID,
	}, nil
}

// Latest fetches the current document body. X-Bin-Meta is disabled so the body is the document itself.
func (c *client) Latest(ctx context.Context) (json.RawMessage, error) {
	raw, err := c.do(ctx, http.MethodGet, c.binURL+"/latest", nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

func (c *client) Put(ctx context.Context, doc any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return &OperationError{Code: OperationErrorEncodeFailed, Verb: http.MethodPut, Cause: err}
	}
	_, err := c.do(ctx, http.MethodPut, c.binURL, &buf)
	return err
}

func (c *client) do(ctx context.Context, verb, url string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), verb, url, body)
	if err != nil {
		return nil, &OperationError{Code: OperationErrorTransportFailed, Verb: verb, Cause: err}
	}
	req.Header.Set("X-Master-Key", c.cfg.MasterKey)
	req.Header.Set("X-Bin-Meta", "false")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &OperationError{Code: OperationErrorTransportFailed, Verb: verb, Cause: err}
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(raw))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody] + "..."
		}
		c.log.Warn("Bin request failed", "verb", verb, "status", resp.StatusCode)
		return nil, &OperationError{
			Code:       OperationErrorStatusFailed,
			Verb:       verb,
			StatusCode: resp.StatusCode,
			Message:    msg,
		}
	}
	if readErr != nil {
		return nil, &OperationError{Code: OperationErrorReadFailed, Verb: verb, StatusCode: resp.StatusCode, Cause: readErr}
	}
	return raw, nil
}
