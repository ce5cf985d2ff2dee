package app

import (
	"github.com/juju/clock"

	"github.com/yungbote/safetywatch-backend/internal/observability"
	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
	"github.com/yungbote/safetywatch-backend/internal/platform/mailer"
	"github.com/yungbote/safetywatch-backend/internal/services"
)

type Services struct {
	Observations services.ObservationService
	Notifier     services.Notifier
	Overdue      services.OverdueService
	Export       services.ExportService
}

func wireServices(log *logger.Logger, cfg Config, store *Store, mail mailer.Mailer, metrics *observability.Metrics, clk clock.Clock) Services {
	log.Info("Wiring services...")
	notifier := services.NewNotifier(log, mail, metrics, services.NotifierConfig{
		From:    cfg.NotifyFrom,
		To:      cfg.NotifyTo,
		Timeout: cfg.NotifyTimeout,
	})
	observations := services.NewObservationService(log, store.Repo, notifier, clk)
	return Services{
		Observations: observations,
		Notifier:     notifier,
		Overdue:      services.NewOverdueService(log, observations, notifier, metrics, clk, cfg.OverdueAfterDays),
		Export:       services.NewExportService(log, observations),
	}
}
