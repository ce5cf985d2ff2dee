package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
)

func TestSendRequestShape(t *testing.T) {
	var captured emailRequest
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPost || r.URL.String() != "https://resend.test/emails" {
			t.Fatalf("request: got=%s %s", r.Method, r.URL)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer re_test" {
			t.Fatalf("authorization: got=%q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"id":"email-1"}`), nil
	})

	res, err := c.Send(context.Background(), SendEmailRequest{
		To:      []string{" safety@example.com ", ""},
		Subject: "New Safety Observation",
		Text:    "Employee: Ana",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.ID != "email-1" || res.StatusCode != http.StatusOK {
		t.Fatalf("result: %+v", res)
	}
	if captured.From != "alerts@example.com" {
		t.Fatalf("from: want default sender, got=%q", captured.From)
	}
	if len(captured.To) != 1 || captured.To[0] != "safety@example.com" {
		t.Fatalf("to: got=%v", captured.To)
	}
	if captured.Text != "Employee: Ana" {
		t.Fatalf("text: got=%q", captured.Text)
	}
}

func TestSendHTTPErrorIsNotRetried(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusTooManyRequests, `{"statusCode":429,"name":"rate_limit_exceeded","message":"Too many requests"}`), nil
	})

	_, err := c.Send(context.Background(), SendEmailRequest{To: []string{"a@example.com"}, Subject: "s", Text: "t"})
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTPError, got=%T %v", err, err)
	}
	if he.StatusCode != http.StatusTooManyRequests || he.Name != "rate_limit_exceeded" {
		t.Fatalf("error: %+v", he)
	}
	if calls != 1 {
		t.Fatalf("calls: want=1 got=%d", calls)
	}
}

func TestSendValidatesRequest(t *testing.T) {
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		t.Fatalf("no request expected")
		return nil, nil
	})
	cases := map[string]SendEmailRequest{
		"no recipients": {Subject: "s", Text: "t"},
		"no subject":    {To: []string{"a@example.com"}, Text: "t"},
		"no content":    {To: []string{"a@example.com"}, Subject: "s"},
	}
	for name, req := range cases {
		if _, err := c.Send(context.Background(), req); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestSendWireBodyIsPlainText(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"id":"email-2"}`), nil
	})

	if _, err := c.Send(context.Background(), SendEmailRequest{
		From:    "safety@example.com",
		To:      []string{"ops@example.com"},
		Subject: "Observation Closed",
		Text:    "Observation 4 was closed.",
	}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	want := map[string]bool{"from": true, "to": true, "subject": true, "text": true}
	if len(body) != len(want) {
		t.Fatalf("wire keys: got=%v", body)
	}
	for k := range body {
		if !want[k] {
			t.Fatalf("unexpected wire key %q in %v", k, body)
		}
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(logger.Nop(), Config{}); err == nil {
		t.Fatalf("New: expected error without api key")
	}
}

func newTestClient(t *testing.T, roundTrip func(*http.Request) (*http.Response, error)) *client {
	t.Helper()
	return &client{
		log: logger.Nop(),
		cfg: Config{
			APIKey:           "re_test",
			BaseURL:          "https://resend.test",
			DefaultFromEmail: "alerts@example.com",
		},
		httpClient: &http.Client{Transport: roundTripFunc(roundTrip)},
	}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
