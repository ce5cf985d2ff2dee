package http

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/safetywatch-backend/internal/http/handlers"
	httpMW "github.com/yungbote/safetywatch-backend/internal/http/middleware"
	"github.com/yungbote/safetywatch-backend/internal/observability"
	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	// StaticDir is served for unmatched GET requests; empty disables static files.
	StaticDir string
	// HiddenFiles are never served from StaticDir, even when they live inside it.
	HiddenFiles []string
	// Metrics enables GET /metrics and request instrumentation when non-nil.
	Metrics *observability.Metrics

	ObservationHandler *httpH.ObservationHandler
	ExportHandler      *httpH.ExportHandler
	HealthHandler      *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if name := strings.TrimSpace(cfg.ServiceName); name != "" {
		r.Use(otelgin.Middleware(name))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Observations
	if cfg.ObservationHandler != nil {
		r.POST("/add", cfg.ObservationHandler.Add)
		r.GET("/data", cfg.ObservationHandler.List)
		r.GET("/data/open", cfg.ObservationHandler.ListOpen)
		r.PUT("/update/:id", cfg.ObservationHandler.Update)
	}
	if cfg.ExportHandler != nil {
		r.GET("/export", cfg.ExportHandler.XLSX)
	}

	if dir := strings.TrimSpace(cfg.StaticDir); dir != "" {
		files := http.FileServer(gin.Dir(dir, false))
		root, hidden := hiddenSet(dir, cfg.HiddenFiles)
		r.NoRoute(func(c *gin.Context) {
			if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
				c.Status(http.StatusNotFound)
				return
			}
			name := filepath.Join(root, filepath.FromSlash(path.Clean("/"+c.Request.URL.Path)))
			if _, ok := hidden[name]; ok {
				c.Status(http.StatusNotFound)
				return
			}
			files.ServeHTTP(c.Writer, c.Request)
		})
	}
	return r
}

func hiddenSet(dir string, names []string) (string, map[string]struct{}) {
	root, err := filepath.Abs(dir)
	if err != nil {
		root = filepath.Clean(dir)
	}
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n == "" {
			continue
		}
		abs, err := filepath.Abs(n)
		if err != nil {
			abs = filepath.Clean(n)
		}
		out[abs] = struct{}{}
	}
	return root, out
}
