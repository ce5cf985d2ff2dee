package app

import (
	"strings"

	"github.com/gin-gonic/gin"

	apphttp "github.com/yungbote/safetywatch-backend/internal/http"
	"github.com/yungbote/safetywatch-backend/internal/observability"
	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *gin.Engine {
	return apphttp.NewRouter(apphttp.RouterConfig{
		Log:                log.With("component", "http"),
		ServiceName:        cfg.ServiceName,
		CORSOrigins:        cfg.CORSOrigins,
		StaticDir:          cfg.StaticDir,
		HiddenFiles:        sqliteFiles(cfg.SQLitePath),
		Metrics:            metrics,
		HealthHandler:      handlers.Health,
		ObservationHandler: handlers.Observation,
		ExportHandler:      handlers.Export,
	})
}

// sqliteFiles lists the database file and the sidecars SQLite may create next to it.
func sqliteFiles(dbPath string) []string {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil
	}
	return []string{dbPath, dbPath + "-journal", dbPath + "-wal", dbPath + "-shm"}
}

func wireServer(cfg Config, router *gin.Engine) *apphttp.Server {
	return apphttp.NewServer(apphttp.ServerConfig{Addr: cfg.Addr()}, router)
}
