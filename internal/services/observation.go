package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/juju/clock"

	"github.com/yungbote/safetywatch-backend/internal/data/repos"
	"github.com/yungbote/safetywatch-backend/internal/domain"
	"github.com/yungbote/safetywatch-backend/internal/platform/apierr"
	"github.com/yungbote/safetywatch-backend/internal/platform/ctxutil"
	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
)

const CodeStoreUnavailable = "store_unavailable"

// ObservationInput is what a caller may set on a new observation. The id and date
// always come from the store and the clock.
type ObservationInput struct {
	Name        string `json:"name"`
	Department  string `json:"department"`
	Description string `json:"description"`
	Fix         string `json:"fix"`
	Status      string `json:"status"`
}

type ObservationService interface {
	AddObservation(ctx context.Context, in ObservationInput) error
	GetAllObservations(ctx context.Context) ([]*domain.Observation, error)
	GetOpenObservations(ctx context.Context) ([]*domain.Observation, error)
	UpdateObservation(ctx context.Context, id int64, status, fix string) error
}

type observationService struct {
	log      *logger.Logger
	repo     repos.ObservationRepo
	notifier Notifier
	clock    clock.Clock
}

func NewObservationService(log *logger.Logger, repo repos.ObservationRepo, notifier Notifier, clk clock.Clock) ObservationService {
	serviceLog := log.With("service", "ObservationService", "backend", repo.Backend())
	if clk == nil {
		clk = clock.WallClock
	}
	return &observationService{
		log:      serviceLog,
		repo:     repo,
		notifier: notifier,
		clock:    clk,
	}
}

func (s *observationService) AddObservation(ctx context.Context, in ObservationInput) error {
	ctx = ctxutil.Default(ctx)
	obs := &domain.Observation{
		Name:        in.Name,
		Department:  in.Department,
		Description: in.Description,
		Fix:         in.Fix,
		Status:      in.Status,
		Date:        domain.FormatDate(s.clock.Now()),
	}
	if err := s.repo.Insert(ctx, obs); err != nil {
		s.log.Error("insert observation failed", append(ctxutil.LogFields(ctx), "error", err)...)
		return storeError("insert observation", err)
	}
	s.log.Info("observation added", append(ctxutil.LogFields(ctx), "submitter", obs.Name, "department", obs.Department)...)
	if s.notifier != nil {
		s.notifier.ObservationCreated(ctx, obs)
	}
	return nil
}

func (s *observationService) GetAllObservations(ctx context.Context) ([]*domain.Observation, error) {
	ctx = ctxutil.Default(ctx)
	out, err := s.repo.ListAll(ctx)
	if err != nil {
		s.log.Error("list observations failed", append(ctxutil.LogFields(ctx), "error", err)...)
		return nil, storeError("list observations", err)
	}
	return out, nil
}

func (s *observationService) GetOpenObservations(ctx context.Context) ([]*domain.Observation, error) {
	ctx = ctxutil.Default(ctx)
	out, err := s.repo.ListOpen(ctx)
	if err != nil {
		s.log.Error("list open observations failed", append(ctxutil.LogFields(ctx), "error", err)...)
		return nil, storeError("list open observations", err)
	}
	return out, nil
}

func (s *observationService) UpdateObservation(ctx context.Context, id int64, status, fix string) error {
	ctx = ctxutil.Default(ctx)
	if err := s.repo.Update(ctx, id, status, fix); err != nil {
		s.log.Error("update observation failed", append(ctxutil.LogFields(ctx), "observation_id", id, "error", err)...)
		return storeError("update observation", err)
	}
	s.log.Info("observation updated", append(ctxutil.LogFields(ctx), "observation_id", id, "status", status)...)
	if s.notifier != nil && status == domain.StatusClosed {
		s.notifier.ObservationClosed(ctx, id)
	}
	return nil
}

func storeError(op string, err error) error {
	return apierr.New(http.StatusInternalServerError, CodeStoreUnavailable, fmt.Errorf("%s: %w", op, err))
}
