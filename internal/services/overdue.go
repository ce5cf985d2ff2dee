package services

import (
	"context"

	"github.com/juju/clock"

	"github.com/yungbote/safetywatch-backend/internal/domain"
	"github.com/yungbote/safetywatch-backend/internal/observability"
	"github.com/yungbote/safetywatch-backend/internal/platform/ctxutil"
	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
)

const DefaultOverdueAfterDays = 7

type OverdueService interface {
	// Overdue returns open observations older than the configured number of days.
	Overdue(ctx context.Context) ([]*domain.Observation, error)
	// Scan sends the overdue digest when there is anything to report.
	Scan(ctx context.Context) (int, error)
}

type overdueService struct {
	log          *logger.Logger
	observations ObservationService
	notifier     Notifier
	metrics      *observability.Metrics
	clock        clock.Clock
	afterDays    int
}

func NewOverdueService(
	log *logger.Logger,
	observations ObservationService,
	notifier Notifier,
	metrics *observability.Metrics,
	clk clock.Clock,
	afterDays int,
) OverdueService {
	serviceLog := log.With("service", "OverdueService")
	if clk == nil {
		clk = clock.WallClock
	}
	if afterDays < 0 {
		afterDays = DefaultOverdueAfterDays
	}
	return &overdueService{
		log:          serviceLog,
		observations: observations,
		notifier:     notifier,
		metrics:      metrics,
		clock:        clk,
		afterDays:    afterDays,
	}
}

func (s *overdueService) Overdue(ctx context.Context) ([]*domain.Observation, error) {
	ctx = ctxutil.Default(ctx)
	open, err := s.observations.GetOpenObservations(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	out := make([]*domain.Observation, 0, len(open))
	for _, o := range open {
		overdue, err := o.OverdueAt(now, s.afterDays)
		if err != nil {
			s.log.Warn("skipping observation with unreadable date", append(ctxutil.LogFields(ctx), "observation_id", o.ID, "error", err)...)
			continue
		}
		if overdue {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *overdueService) Scan(ctx context.Context) (int, error) {
	ctx = ctxutil.Default(ctx)
	overdue, err := s.Overdue(ctx)
	if err != nil {
		s.log.Error("overdue scan failed", append(ctxutil.LogFields(ctx), "error", err)...)
		return 0, err
	}
	s.metrics.SetOverdueCount(len(overdue))
	if len(overdue) == 0 {
		s.log.Info("overdue scan found nothing", ctxutil.LogFields(ctx)...)
		return 0, nil
	}
	s.log.Info("overdue scan found observations", append(ctxutil.LogFields(ctx), "count", len(overdue), "after_days", s.afterDays)...)
	if s.notifier != nil {
		s.notifier.OverdueDigest(ctx, overdue)
	}
	return len(overdue), nil
}
