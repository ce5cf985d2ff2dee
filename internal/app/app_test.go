package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/juju/clock/testclock"

	"github.com/yungbote/safetywatch-backend/internal/domain"
	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
	"github.com/yungbote/safetywatch-backend/internal/services"
)

func newTestApp(t *testing.T, cfg Config) *App {
	t.Helper()
	clk := testclock.NewClock(time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC))
	a, err := NewWithConfig(logger.Nop(), cfg, clk)
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func call(t *testing.T, a *App, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []domain.Observation {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	var out []domain.Observation
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func exerciseObservationFlow(t *testing.T, a *App) {
	t.Helper()

	for _, name := range []string{"Ana", "Bo"} {
		rec := call(t, a, http.MethodPost, "/add", `{"name":"`+name+`","department":"Press","description":"Guard missing","fix":"","status":"Open"}`)
		if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
			t.Fatalf("add %s: got=%d %q", name, rec.Code, rec.Body.String())
		}
	}

	all := decodeList(t, call(t, a, http.MethodGet, "/data", ""))
	if len(all) != 2 {
		t.Fatalf("all: want=2 got=%d", len(all))
	}
	var ana domain.Observation
	for _, o := range all {
		if o.Date != "2025-03-14" {
			t.Fatalf("date: want=2025-03-14 got=%q", o.Date)
		}
		if o.Name == "Ana" {
			ana = o
		}
	}
	if ana.ID == 0 {
		t.Fatalf("Ana missing: %+v", all)
	}

	rec := call(t, a, http.MethodPut, "/update/"+jsonNumber(ana.ID), `{"status":"Closed","fix":"Guard refitted"}`)
	if rec.Code != http.StatusOK || rec.Body.String() != "updated" {
		t.Fatalf("update: got=%d %q", rec.Code, rec.Body.String())
	}

	open := decodeList(t, call(t, a, http.MethodGet, "/data/open", ""))
	if len(open) != 1 || open[0].Name != "Bo" {
		t.Fatalf("open: got=%+v", open)
	}

	rec = call(t, a, http.MethodGet, "/export", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != services.ExportContentType {
		t.Fatalf("export: got=%d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func jsonNumber(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestAppObservationFlowSQLite(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	if a.Store.Backend != "sqlite" {
		t.Fatalf("backend: want=sqlite got=%q", a.Store.Backend)
	}
	exerciseObservationFlow(t, a)
}

func TestAppObservationFlowJSONBin(t *testing.T) {
	bin := newBinServer(t, `{"observations":[]}`)
	cfg := testConfig(t)
	cfg.JSONBinMasterKey = "master"
	cfg.JSONBinBinID = "bin-1"
	cfg.JSONBinBaseURL = bin.srv.URL

	a := newTestApp(t, cfg)
	if a.Store.Backend != "jsonbin" {
		t.Fatalf("backend: want=jsonbin got=%q", a.Store.Backend)
	}
	exerciseObservationFlow(t, a)

	doc := bin.document(t)
	items, ok := doc["observations"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("bin document: got=%v", doc)
	}
}

func TestAppStoreFailureIsServerError(t *testing.T) {
	bin := newBinServer(t, `{"observations":[]}`)
	cfg := testConfig(t)
	cfg.JSONBinMasterKey = "wrong"
	cfg.JSONBinBinID = "bin-1"
	cfg.JSONBinBaseURL = bin.srv.URL

	a := newTestApp(t, cfg)
	rec := call(t, a, http.MethodGet, "/data", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: want=500 got=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), services.CodeStoreUnavailable) {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestAppRunStopsOnCancel(t *testing.T) {
	a, err := NewWithConfig(logger.Nop(), testConfig(t), testclock.NewClock(time.Now()))
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
