package decorators

import (
	"context"

	"moodi-backend/application/ports"
	"moodi-backend/domain/core/entities"
	"moodi-backend/pkg/observability"

	"go.opentelemetry.io/otel/attribute"
)

var _ ports.AnalysisRepository = (*TracedRepository)(nil)

// TracedRepository opens one span per repository call
type TracedRepository struct {
	inner   ports.AnalysisRepository
	tracer  *observability.Tracer
	backend string
}

// WithTracing wraps repo so every call is traced
func WithTracing(repo ports.AnalysisRepository, tracer *observability.Tracer, backend string) *TracedRepository {
	return &TracedRepository{inner: repo, tracer: tracer, backend: backend}
}

func (r *TracedRepository) attrs(extra ...attribute.KeyValue) []attribute.KeyValue {
	return append([]attribute.KeyValue{attribute.String("db.system", r.backend)}, extra...)
}

// Get traces the wrapped call
func (r *TracedRepository) Get(ctx context.Context, id string) (*entities.ChainAnalysis, error) {
	ctx, span := r.tracer.StartSpan(ctx, "repository.Get", r.attrs(attribute.String("analysis.id", id))...)
	defer span.End()

	a, err := r.inner.Get(ctx, id)
	observability.RecordError(span, err)
	span.SetAttributes(attribute.Bool("analysis.found", a != nil))
	return a, err
}

// GetAll traces the wrapped call
func (r *TracedRepository) GetAll(ctx context.Context) ([]*entities.ChainAnalysis, error) {
	ctx, span := r.tracer.StartSpan(ctx, "repository.GetAll", r.attrs()...)
	defer span.End()

	list, err := r.inner.GetAll(ctx)
	observability.RecordError(span, err)
	span.SetAttributes(attribute.Int("analysis.count", len(list)))
	return list, err
}

// GetByMonth traces the wrapped call
func (r *TracedRepository) GetByMonth(ctx context.Context, year, month int) ([]*entities.ChainAnalysis, error) {
	ctx, span := r.tracer.StartSpan(ctx, "repository.GetByMonth",
		r.attrs(attribute.Int("analysis.year", year), attribute.Int("analysis.month", month))...)
	defer span.End()

	list, err := r.inner.GetByMonth(ctx, year, month)
	observability.RecordError(span, err)
	span.SetAttributes(attribute.Int("analysis.count", len(list)))
	return list, err
}

// Create traces the wrapped call
func (r *TracedRepository) Create(ctx context.Context, input entities.NewChainAnalysis) (*entities.ChainAnalysis, error) {
	ctx, span := r.tracer.StartSpan(ctx, "repository.Create", r.attrs()...)
	defer span.End()

	a, err := r.inner.Create(ctx, input)
	observability.RecordError(span, err)
	if a != nil {
		span.SetAttributes(attribute.String("analysis.id", a.ID))
	}
	return a, err
}

// Update traces the wrapped call
func (r *TracedRepository) Update(ctx context.Context, id string, patch entities.ChainAnalysisPatch) (*entities.ChainAnalysis, error) {
	ctx, span := r.tracer.StartSpan(ctx, "repository.Update", r.attrs(attribute.String("analysis.id", id))...)
	defer span.End()

	a, err := r.inner.Update(ctx, id, patch)
	observability.RecordError(span, err)
	span.SetAttributes(attribute.Bool("analysis.found", a != nil))
	return a, err
}

// Delete traces the wrapped call
func (r *TracedRepository) Delete(ctx context.Context, id string) (bool, error) {
	ctx, span := r.tracer.StartSpan(ctx, "repository.Delete", r.attrs(attribute.String("analysis.id", id))...)
	defer span.End()

	removed, err := r.inner.Delete(ctx, id)
	observability.RecordError(span, err)
	span.SetAttributes(attribute.Bool("analysis.found", removed))
	return removed, err
}

// Search traces the wrapped call
func (r *TracedRepository) Search(ctx context.Context, query string) ([]*entities.ChainAnalysis, error) {
	ctx, span := r.tracer.StartSpan(ctx, "repository.Search", r.attrs()...)
	defer span.End()

	list, err := r.inner.Search(ctx, query)
	observability.RecordError(span, err)
	span.SetAttributes(attribute.Int("analysis.count", len(list)))
	return list, err
}

// Ping forwards to the wrapped repository when it supports health checks
func (r *TracedRepository) Ping(ctx context.Context) error {
	return ping(ctx, r.inner)
}
