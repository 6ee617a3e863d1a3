package decorators

import (
	"context"
	"time"

	"moodi-backend/application/ports"
	"moodi-backend/domain/core/entities"
	"moodi-backend/pkg/observability"
)

var _ ports.AnalysisRepository = (*InstrumentedRepository)(nil)

// InstrumentedRepository records a Prometheus count and latency per call
type InstrumentedRepository struct {
	inner   ports.AnalysisRepository
	metrics *observability.Collector
	backend string
}

// WithMetrics wraps repo with Prometheus instrumentation
func WithMetrics(repo ports.AnalysisRepository, metrics *observability.Collector, backend string) *InstrumentedRepository {
	return &InstrumentedRepository{inner: repo, metrics: metrics, backend: backend}
}

func (r *InstrumentedRepository) observe(op string, start time.Time, err error) {
	r.metrics.ObserveRepository(r.backend, op, time.Since(start), err)
}

// Get records the wrapped call
func (r *InstrumentedRepository) Get(ctx context.Context, id string) (*entities.ChainAnalysis, error) {
	start := time.Now()
	a, err := r.inner.Get(ctx, id)
	r.observe("Get", start, err)
	return a, err
}

// GetAll records the wrapped call
func (r *InstrumentedRepository) GetAll(ctx context.Context) ([]*entities.ChainAnalysis, error) {
	start := time.Now()
	list, err := r.inner.GetAll(ctx)
	r.observe("GetAll", start, err)
	return list, err
}

// GetByMonth records the wrapped call
func (r *InstrumentedRepository) GetByMonth(ctx context.Context, year, month int) ([]*entities.ChainAnalysis, error) {
	start := time.Now()
	list, err := r.inner.GetByMonth(ctx, year, month)
	r.observe("GetByMonth", start, err)
	return list, err
}

// Create records the wrapped call
func (r *InstrumentedRepository) Create(ctx context.Context, input entities.NewChainAnalysis) (*entities.ChainAnalysis, error) {
	start := time.Now()
	a, err := r.inner.Create(ctx, input)
	r.observe("Create", start, err)
	if err == nil {
		r.metrics.AnalysesCreated.Inc()
	}
	return a, err
}

// Update records the wrapped call
func (r *InstrumentedRepository) Update(ctx context.Context, id string, patch entities.ChainAnalysisPatch) (*entities.ChainAnalysis, error) {
	start := time.Now()
	a, err := r.inner.Update(ctx, id, patch)
	r.observe("Update", start, err)
	return a, err
}

// Delete records the wrapped call
func (r *InstrumentedRepository) Delete(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	removed, err := r.inner.Delete(ctx, id)
	r.observe("Delete", start, err)
	if removed {
		r.metrics.AnalysesDeleted.Inc()
	}
	return removed, err
}

// Search records the wrapped call
func (r *InstrumentedRepository) Search(ctx context.Context, query string) ([]*entities.ChainAnalysis, error) {
	start := time.Now()
	list, err := r.inner.Search(ctx, query)
	r.observe("Search", start, err)
	return list, err
}

// Ping forwards to the wrapped repository when it supports health checks
func (r *InstrumentedRepository) Ping(ctx context.Context) error {
	return ping(ctx, r.inner)
}
