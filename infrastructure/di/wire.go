//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"moodi-backend/application/commands/bus"
	"moodi-backend/application/ports"
	querybus "moodi-backend/application/queries/bus"
	"moodi-backend/infrastructure/config"
	"moodi-backend/interfaces/http/rest"
	"moodi-backend/pkg/observability"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	LogLevel   zap.AtomicLevel
	Repository ports.AnalysisRepository
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Metrics    *observability.Collector
	Router     *rest.Router
}

// CoreSet builds the store, its decorators and the buses
var CoreSet = wire.NewSet(
	ProvideLogLevel,
	ProvideLogger,
	ProvideMetrics,
	ProvideTracing,
	ProvideBaseRepository,
	ProvideRepository,
	ProvideCommandBus,
	ProvideQueryBus,
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	CoreSet,
	ProvideHealthChecker,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
