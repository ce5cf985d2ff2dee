package app

import (
	httpH "github.com/yungbote/safetywatch-backend/internal/http/handlers"
	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
)

type Handlers struct {
	Health      *httpH.HealthHandler
	Observation *httpH.ObservationHandler
	Export      *httpH.ExportHandler
}

func wireHandlers(log *logger.Logger, services Services, backend string) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(backend),
		Observation: httpH.NewObservationHandler(services.Observations),
		Export:      httpH.NewExportHandler(services.Export),
	}
}
