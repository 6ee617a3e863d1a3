// Package decorators wraps an AnalysisRepository with resilience and
// observability concerns without touching the backend implementations.
package decorators

import (
	"context"
	"errors"
	"time"

	"moodi-backend/application/ports"
	"moodi-backend/domain/core/entities"
	appErrors "moodi-backend/pkg/errors"
	"moodi-backend/pkg/observability"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// CircuitBreakerConfig holds configuration for the repository circuit breaker
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultCircuitBreakerConfig returns a default configuration
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

var _ ports.AnalysisRepository = (*CircuitBreakerRepository)(nil)

// CircuitBreakerRepository stops calling a failing backend. While the circuit
// is open every call fails fast with an UNAVAILABLE error.
type CircuitBreakerRepository struct {
	inner   ports.AnalysisRepository
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// WithCircuitBreaker wraps repo with a gobreaker circuit
func WithCircuitBreaker(repo ports.AnalysisRepository, cfg CircuitBreakerConfig, logger *zap.Logger, metrics *observability.Collector) *CircuitBreakerRepository {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if metrics != nil {
				metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
		IsSuccessful: func(err error) bool {
			// Cancelled callers say nothing about backend health
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &CircuitBreakerRepository{
		inner:   repo,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// State reports the current circuit state
func (r *CircuitBreakerRepository) State() gobreaker.State {
	return r.breaker.State()
}

// Unwrap returns the decorated repository
func (r *CircuitBreakerRepository) Unwrap() ports.AnalysisRepository {
	return r.inner
}

func (r *CircuitBreakerRepository) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := r.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, appErrors.NewUnavailableError("analysis store").WithCause(err)
	}
	return result, err
}

func analysisResult(v interface{}, err error) (*entities.ChainAnalysis, error) {
	if err != nil {
		return nil, err
	}
	a, _ := v.(*entities.ChainAnalysis)
	return a, nil
}

func listResult(v interface{}, err error) ([]*entities.ChainAnalysis, error) {
	if err != nil {
		return nil, err
	}
	list, _ := v.([]*entities.ChainAnalysis)
	return list, nil
}

// Get delegates through the circuit
func (r *CircuitBreakerRepository) Get(ctx context.Context, id string) (*entities.ChainAnalysis, error) {
	return analysisResult(r.execute(func() (interface{}, error) {
		return r.inner.Get(ctx, id)
	}))
}

// GetAll delegates through the circuit
func (r *CircuitBreakerRepository) GetAll(ctx context.Context) ([]*entities.ChainAnalysis, error) {
	return listResult(r.execute(func() (interface{}, error) {
		return r.inner.GetAll(ctx)
	}))
}

// GetByMonth delegates through the circuit
func (r *CircuitBreakerRepository) GetByMonth(ctx context.Context, year, month int) ([]*entities.ChainAnalysis, error) {
	return listResult(r.execute(func() (interface{}, error) {
		return r.inner.GetByMonth(ctx, year, month)
	}))
}

// Create delegates through the circuit
func (r *CircuitBreakerRepository) Create(ctx context.Context, input entities.NewChainAnalysis) (*entities.ChainAnalysis, error) {
	return analysisResult(r.execute(func() (interface{}, error) {
		return r.inner.Create(ctx, input)
	}))
}

// Update delegates through the circuit
func (r *CircuitBreakerRepository) Update(ctx context.Context, id string, patch entities.ChainAnalysisPatch) (*entities.ChainAnalysis, error) {
	return analysisResult(r.execute(func() (interface{}, error) {
		return r.inner.Update(ctx, id, patch)
	}))
}

// Delete delegates through the circuit
func (r *CircuitBreakerRepository) Delete(ctx context.Context, id string) (bool, error) {
	v, err := r.execute(func() (interface{}, error) {
		return r.inner.Delete(ctx, id)
	})
	if err != nil {
		return false, err
	}
	removed, _ := v.(bool)
	return removed, nil
}

// Search delegates through the circuit
func (r *CircuitBreakerRepository) Search(ctx context.Context, query string) ([]*entities.ChainAnalysis, error) {
	return listResult(r.execute(func() (interface{}, error) {
		return r.inner.Search(ctx, query)
	}))
}

// Ping forwards to the wrapped repository when it supports health checks
func (r *CircuitBreakerRepository) Ping(ctx context.Context) error {
	return ping(ctx, r.inner)
}

func ping(ctx context.Context, repo ports.AnalysisRepository) error {
	if hc, ok := repo.(ports.HealthChecker); ok {
		return hc.Ping(ctx)
	}
	return nil
}
