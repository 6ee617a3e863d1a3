package sqlstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"moodi-backend/application/ports"
	"moodi-backend/infrastructure/persistence/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T, opts ...Option) *AnalysisRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "moodi.db")
	repo, err := Open(context.Background(), SQLite(), path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepository_Contract(t *testing.T) {
	repotest.Run(t, func(t *testing.T, clock *repotest.Clock) ports.AnalysisRepository {
		return openSQLite(t, WithClock(clock.Now), WithLocation(time.UTC))
	})
}

func TestSQLiteRepository_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "moodi.db")

	first, err := Open(ctx, SQLite(), path, WithLocation(time.UTC))
	require.NoError(t, err)
	created, err := first.Create(ctx, repotest.Input("Persistente", "calma"))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(ctx, SQLite(), path, WithLocation(time.UTC))
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get(ctx, created.ID)
	require.NoError(t, err)
	repotest.AssertSameRecord(t, created, got)
}

func TestSQLiteRepository_Ping(t *testing.T) {
	repo := openSQLite(t)
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestPostgresRepository_Contract(t *testing.T) {
	dsn := os.Getenv("MOODI_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MOODI_TEST_POSTGRES_DSN not set")
	}

	repotest.Run(t, func(t *testing.T, clock *repotest.Clock) ports.AnalysisRepository {
		repo, err := Open(context.Background(), Postgres(), dsn, WithClock(clock.Now), WithLocation(time.UTC))
		require.NoError(t, err)
		_, err = repo.DB().Exec(`TRUNCATE chain_analyses RESTART IDENTITY`)
		require.NoError(t, err)
		t.Cleanup(func() { _ = repo.Close() })
		return repo
	})
}

func TestDialect_Rebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		query   string
		want    string
	}{
		{"sqlite keeps question marks", SQLite(), "SELECT 1 WHERE a = ? AND b = ?", "SELECT 1 WHERE a = ? AND b = ?"},
		{"postgres numbers placeholders", Postgres(), "SELECT 1 WHERE a = ? AND b = ?", "SELECT 1 WHERE a = $1 AND b = $2"},
		{"no placeholders", Postgres(), "SELECT 1", "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.rebind(tt.query))
		})
	}
}

func TestDialectFor(t *testing.T) {
	d, ok := DialectFor("SQLite")
	assert.True(t, ok)
	assert.Equal(t, "sqlite", d.Driver)

	d, ok = DialectFor("postgres")
	assert.True(t, ok)
	assert.Equal(t, "pgx", d.Driver)

	_, ok = DialectFor("oracle")
	assert.False(t, ok)
}
