package di

import (
	"context"
	"fmt"
	"time"

	"moodi-backend/application/commands/bus"
	commandhandlers "moodi-backend/application/commands/handlers"
	"moodi-backend/application/ports"
	querybus "moodi-backend/application/queries/bus"
	queryhandlers "moodi-backend/application/queries/handlers"
	"moodi-backend/infrastructure/config"
	"moodi-backend/infrastructure/persistence/decorators"
	"moodi-backend/infrastructure/persistence/dynamodb"
	"moodi-backend/infrastructure/persistence/memory"
	"moodi-backend/infrastructure/persistence/sqlstore"
	"moodi-backend/interfaces/http/rest"
	"moodi-backend/pkg/observability"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	serviceName      = "moodi-backend"
	metricsNamespace = "moodi"
	shutdownTimeout  = 5 * time.Second
)

// ProvideLogLevel creates the runtime-adjustable log level
func ProvideLogLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zap.AtomicLevel{}, err
	}
	return zap.NewAtomicLevelAt(level), nil
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", serviceName)), nil
}

// ProvideMetrics creates the Prometheus collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector(metricsNamespace)
}

// ProvideTracing installs the OTLP exporter when tracing is enabled. The
// provider is nil otherwise.
func ProvideTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	if !cfg.EnableTracing {
		return nil, func() {}, nil
	}

	tp, err := observability.InitTracing(ctx, serviceName, cfg.Environment, cfg.OTLPEndpoint)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// BaseRepository is the undecorated store
type BaseRepository ports.AnalysisRepository

// ProvideBaseRepository opens the store selected by STORAGE_DRIVER
func ProvideBaseRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (BaseRepository, func(), error) {
	loc := cfg.Location()

	switch cfg.StorageDriver {
	case config.DriverMemory:
		return memory.NewAnalysisRepository(memory.WithLocation(loc)), func() {}, nil

	case config.DriverSQLite, config.DriverPostgres:
		dialect, _ := sqlstore.DialectFor(cfg.StorageDriver)
		dsn := cfg.SQLitePath
		if cfg.StorageDriver == config.DriverPostgres {
			dsn = cfg.PostgresDSN
		}
		repo, err := sqlstore.Open(ctx, dialect, dsn, sqlstore.WithLocation(loc))
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := repo.Close(); err != nil {
				logger.Warn("Failed to close database", zap.Error(err))
			}
		}
		return repo, cleanup, nil

	case config.DriverDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client := awsdynamodb.NewFromConfig(awsCfg)
		repo := dynamodb.NewAnalysisRepository(client, cfg.DynamoDBTable, cfg.IndexName, logger, dynamodb.WithLocation(loc))
		return repo, func() {}, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// ProvideRepository decorates the base store. The circuit breaker sits
// closest to durable backends so metrics and spans see its fast failures.
func ProvideRepository(
	base BaseRepository,
	cfg *config.Config,
	metrics *observability.Collector,
	tp *observability.TracerProvider,
	logger *zap.Logger,
) ports.AnalysisRepository {
	var repo ports.AnalysisRepository = base

	if cfg.IsDurable() && cfg.CircuitBreaker.Enabled {
		cb := cfg.CircuitBreaker
		repo = decorators.WithCircuitBreaker(repo, decorators.CircuitBreakerConfig{
			Name:             cfg.StorageDriver,
			MaxRequests:      cb.MaxRequests,
			Interval:         cb.Interval,
			Timeout:          cb.Timeout,
			FailureThreshold: cb.FailureThreshold,
			MinRequests:      cb.MinRequests,
		}, logger, metrics)
	}

	repo = decorators.WithMetrics(repo, metrics, cfg.StorageDriver)

	if tp != nil {
		repo = decorators.WithTracing(repo, observability.NewTracer(serviceName), cfg.StorageDriver)
	}

	return repo
}

// ProvideHealthChecker exposes the store's ping for readiness probes
func ProvideHealthChecker(repo ports.AnalysisRepository) ports.HealthChecker {
	if hc, ok := repo.(ports.HealthChecker); ok {
		return hc
	}
	return nil
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(repo ports.AnalysisRepository, metrics *observability.Collector, logger *zap.Logger) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(logger),
		bus.MetricsMiddleware(metrics),
	)
	if err := commandhandlers.RegisterAnalysisHandlers(commandBus, repo, logger); err != nil {
		return nil, err
	}
	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(repo ports.AnalysisRepository, cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(
		querybus.NewMetricsMiddleware(metrics),
		querybus.NewLoggingMiddleware(logger),
	)
	handler := queryhandlers.NewAnalysisQueryHandler(repo, time.Now, cfg.Location())
	if err := queryhandlers.RegisterAnalysisHandlers(queryBus, handler); err != nil {
		return nil, err
	}
	return queryBus, nil
}

// ProvideRouter creates the HTTP router. /metrics is only mounted when
// metrics are enabled.
func ProvideRouter(
	cfg *config.Config,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	health ports.HealthChecker,
	metrics *observability.Collector,
	logger *zap.Logger,
) *rest.Router {
	if !cfg.EnableMetrics {
		metrics = nil
	}
	return rest.NewRouter(commandBus, queryBus, health, metrics, rest.Options{
		EnableCORS:  cfg.EnableCORS,
		CORSOrigins: cfg.CORSOrigins,
		Debug:       cfg.IsDevelopment() && cfg.LogLevel == "debug",
	}, logger)
}
