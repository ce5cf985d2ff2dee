package app

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	t.Setenv("RESEND_API_KEY", "")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("OTEL_ENABLED", "false")
	return Config{
		Port:                   "0",
		LogMode:                "test",
		ServiceName:            "safetywatch-test",
		SQLitePath:             filepath.Join(t.TempDir(), "safety.db"),
		JSONBinBaseURL:         "https://api.jsonbin.io/v3",
		JSONBinCollectionField: "observations",
		JSONBinTimeoutSeconds:  5,
		NotifyTimeout:          time.Second,
		OverdueEnabled:         true,
		OverdueCron:            "0 8 * * 1",
		OverdueAfterDays:       7,
		StaticDir:              t.TempDir(),
		MetricsEnabled:         true,
		ShutdownTimeout:        2 * time.Second,
	}
}

// binServer is an in-memory stand-in for the hosted JSON bin.
type binServer struct {
	mu  sync.Mutex
	doc json.RawMessage
	srv *httptest.Server
}

func newBinServer(t *testing.T, initial string) *binServer {
	t.Helper()
	b := &binServer{doc: json.RawMessage(initial)}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Master-Key") != "master" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/b/bin-1/latest":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(b.doc)
		case r.Method == http.MethodPut && r.URL.Path == "/b/bin-1":
			body, _ := io.ReadAll(r.Body)
			b.doc = body
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *binServer) document(t *testing.T) map[string]any {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	var out map[string]any
	if err := json.Unmarshal(b.doc, &out); err != nil {
		t.Fatalf("decode bin: %v", err)
	}
	return out
}
