package di

import (
	"context"
	"path/filepath"
	"testing"

	"moodi-backend/infrastructure/config"
	"moodi-backend/infrastructure/persistence/decorators"
	"moodi-backend/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitializeContainerWithMemoryStore(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "error"

	container, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, container.CommandBus)
	assert.NotNil(t, container.QueryBus)
	assert.NotNil(t, container.Router.Setup())
	assert.IsType(t, &decorators.InstrumentedRepository{}, container.Repository)
}

func TestInitializeContainerWithSQLiteStore(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "error"
	cfg.StorageDriver = config.DriverSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "moodi.db")

	container, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	hc := ProvideHealthChecker(container.Repository)
	require.NotNil(t, hc)
	assert.NoError(t, hc.Ping(context.Background()))
}

func TestProvideRepositorySkipsBreakerForMemory(t *testing.T) {
	cfg := config.Default()
	base := memory.NewAnalysisRepository()

	repo := ProvideRepository(base, cfg, ProvideMetrics(), nil, zap.NewNop())

	instrumented, ok := repo.(*decorators.InstrumentedRepository)
	require.True(t, ok)
	assert.NotNil(t, instrumented)
}

func TestProvideLogLevelRejectsUnknown(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "chatty"

	_, err := ProvideLogLevel(cfg)

	assert.Error(t, err)
}
