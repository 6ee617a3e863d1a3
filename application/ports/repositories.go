package ports

import (
	"context"

	"moodi-backend/domain/core/entities"
)

// AnalysisRepository is the single authority over chain-analysis identity and
// persistence. Implementations: in-memory, SQL (SQLite/Postgres), DynamoDB.
//
// "Not found" is a normal outcome, not an error: Get and Update return a nil
// record, Delete returns false. Listings are ordered newest first by CreatedAt;
// equal timestamps are ordered by insertion, later insertions first.
type AnalysisRepository interface {
	// Get returns the record with the given id, or nil
	Get(ctx context.Context, id string) (*entities.ChainAnalysis, error)

	// GetAll returns every record, newest first
	GetAll(ctx context.Context) ([]*entities.ChainAnalysis, error)

	// GetByMonth returns the records created in the given calendar month of the
	// store's time zone. month is 1-based; an impossible month yields no records.
	GetByMonth(ctx context.Context, year, month int) ([]*entities.ChainAnalysis, error)

	// Create stores a new record with a fresh id and the current time
	Create(ctx context.Context, input entities.NewChainAnalysis) (*entities.ChainAnalysis, error)

	// Update shallow-merges the patch into the stored record and returns the
	// result, or nil when id is unknown. ID and CreatedAt never change.
	Update(ctx context.Context, id string, patch entities.ChainAnalysisPatch) (*entities.ChainAnalysis, error)

	// Delete removes the record and reports whether one was removed
	Delete(ctx context.Context, id string) (bool, error)

	// Search returns records whose title, precipitating event, primary emotion
	// or notes contain query, ignoring case. Newest first.
	Search(ctx context.Context, query string) ([]*entities.ChainAnalysis, error)
}

// HealthChecker is implemented by repositories backed by an external service
type HealthChecker interface {
	Ping(ctx context.Context) error
}
