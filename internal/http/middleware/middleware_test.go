package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/safetywatch-backend/internal/observability"
	"github.com/yungbote/safetywatch-backend/internal/platform/ctxutil"
	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
)

func TestAttachTraceContextPropagatesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())

	var seen *ctxutil.TraceData
	r.GET("/data", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen == nil || seen.RequestID != "req-123" || seen.TraceID == "" {
		t.Fatalf("trace data: got=%+v", seen)
	}
	if got := rec.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("response request id: want=req-123 got=%q", got)
	}
}

func TestMetricsRecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()
	r := gin.New()
	r.Use(RequestLogger(logger.Nop()), Metrics(m))
	r.PUT("/update/:id", func(c *gin.Context) { c.String(http.StatusOK, "updated") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/update/42", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}

	out := httptest.NewRecorder()
	m.Handler().ServeHTTP(out, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	want := `safetywatch_http_requests_total{method="PUT",route="/update/:id",status="200"} 1`
	if !strings.Contains(out.Body.String(), want) {
		t.Fatalf("metrics missing %q", want)
	}
}
