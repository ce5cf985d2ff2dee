package app

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/safetywatch-backend/internal/data/repos"
	"github.com/yungbote/safetywatch-backend/internal/domain"
	"github.com/yungbote/safetywatch-backend/internal/observability"
)

const storeTracerName = "github.com/yungbote/safetywatch-backend/internal/data/repos"

type instrumentedObservationRepo struct {
	inner   repos.ObservationRepo
	metrics *observability.Metrics
	tracer  trace.Tracer
}

func instrumentObservationRepo(inner repos.ObservationRepo, metrics *observability.Metrics) repos.ObservationRepo {
	if inner == nil {
		return nil
	}
	return &instrumentedObservationRepo{
		inner:   inner,
		metrics: metrics,
		tracer:  otel.Tracer(storeTracerName),
	}
}

func (r *instrumentedObservationRepo) Backend() string { return r.inner.Backend() }

func (r *instrumentedObservationRepo) ListAll(ctx context.Context) ([]*domain.Observation, error) {
	ctx, done := r.begin(ctx, "list_all")
	out, err := r.inner.ListAll(ctx)
	done(err, attribute.Int("observation.count", len(out)))
	return out, err
}

func (r *instrumentedObservationRepo) ListOpen(ctx context.Context) ([]*domain.Observation, error) {
	ctx, done := r.begin(ctx, "list_open")
	out, err := r.inner.ListOpen(ctx)
	done(err, attribute.Int("observation.count", len(out)))
	return out, err
}

func (r *instrumentedObservationRepo) Insert(ctx context.Context, obs *domain.Observation) error {
	ctx, done := r.begin(ctx, "insert")
	err := r.inner.Insert(ctx, obs)
	done(err)
	return err
}

func (r *instrumentedObservationRepo) Update(ctx context.Context, id int64, status, fix string) error {
	ctx, done := r.begin(ctx, "update")
	err := r.inner.Update(ctx, id, status, fix)
	done(err, attribute.Int64("observation.id", id))
	return err
}

func (r *instrumentedObservationRepo) begin(ctx context.Context, operation string) (context.Context, func(error, ...attribute.KeyValue)) {
	start := time.Now()
	backend := r.inner.Backend()
	ctx, span := r.tracer.Start(ctx, "store."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("store.backend", backend)),
	)
	return ctx, func(err error, attrs ...attribute.KeyValue) {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attrs...)
		span.End()
		r.metrics.ObserveStoreOperation(backend, operation, status, time.Since(start))
	}
}
