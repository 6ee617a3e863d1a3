// Package sqlstore persists chain analyses in a relational table. The same
// code serves SQLite and Postgres; Dialect holds what differs.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"moodi-backend/application/ports"
	"moodi-backend/domain/core/entities"
	"moodi-backend/domain/core/valueobjects"
)

var (
	_ ports.AnalysisRepository = (*AnalysisRepository)(nil)
	_ ports.HealthChecker      = (*AnalysisRepository)(nil)
)

const selectColumns = `id, title, event_date, event_time, precipitating_event, primary_emotion,
	emotional_intensity, chain_links, vulnerabilities, interventions, wellness_score, notes, created_at`

const orderNewestFirst = ` ORDER BY created_at DESC, seq DESC`

// AnalysisRepository stores chain analyses in the chain_analyses table.
// Rows carry an auto-incrementing seq so equal timestamps keep insertion order.
type AnalysisRepository struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
	newID   func() valueobjects.AnalysisID
	loc     *time.Location
}

// Option configures an AnalysisRepository
type Option func(*AnalysisRepository)

// WithClock overrides the clock used to stamp CreatedAt
func WithClock(now func() time.Time) Option {
	return func(r *AnalysisRepository) { r.now = now }
}

// WithLocation sets the zone used to decide calendar months and to render CreatedAt
func WithLocation(loc *time.Location) Option {
	return func(r *AnalysisRepository) { r.loc = loc }
}

// Open connects to the database, verifies it and applies the schema
func Open(ctx context.Context, dialect Dialect, dsn string, opts ...Option) (*AnalysisRepository, error) {
	if dialect.Name == "sqlite" && dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
				return nil, fmt.Errorf("create dirs: %w", err)
			}
		}
	}

	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.Name, err)
	}
	if dialect.Name == "sqlite" {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect.Name, err)
	}

	r := NewAnalysisRepository(db, dialect, opts...)
	if err := r.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

// NewAnalysisRepository wraps an already opened database. The schema is not applied.
func NewAnalysisRepository(db *sql.DB, dialect Dialect, opts ...Option) *AnalysisRepository {
	r := &AnalysisRepository{
		db:      db,
		dialect: dialect,
		now:     time.Now,
		newID:   valueobjects.NewAnalysisID,
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *AnalysisRepository) migrate(ctx context.Context) error {
	for _, stmt := range r.dialect.schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// DB exposes the underlying handle
func (r *AnalysisRepository) DB() *sql.DB { return r.db }

// Ping checks the connection
func (r *AnalysisRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close releases the connection pool
func (r *AnalysisRepository) Close() error {
	return r.db.Close()
}

// Get returns the record with the given id, or nil
func (r *AnalysisRepository) Get(ctx context.Context, id string) (*entities.ChainAnalysis, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.rebind(`SELECT `+selectColumns+` FROM chain_analyses WHERE id = ?`), id)
	analysis, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	return analysis, nil
}

// GetAll returns every record, newest first
func (r *AnalysisRepository) GetAll(ctx context.Context) ([]*entities.ChainAnalysis, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM chain_analyses`+orderNewestFirst)
}

// GetByMonth returns the records created in year/month of the repository zone
func (r *AnalysisRepository) GetByMonth(ctx context.Context, year, month int) ([]*entities.ChainAnalysis, error) {
	start, end, ok := entities.MonthWindow(year, month, r.loc)
	if !ok {
		return []*entities.ChainAnalysis{}, nil
	}
	return r.query(ctx,
		`SELECT `+selectColumns+` FROM chain_analyses WHERE created_at >= ? AND created_at < ?`+orderNewestFirst,
		start.UnixNano(), end.UnixNano())
}

// Search returns the records matching query, newest first. Matching happens in
// Go so case folding is Unicode-aware on every engine.
func (r *AnalysisRepository) Search(ctx context.Context, query string) ([]*entities.ChainAnalysis, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]*entities.ChainAnalysis, 0, len(all))
	for _, a := range all {
		if a.Matches(query) {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

// Create inserts a new record
func (r *AnalysisRepository) Create(ctx context.Context, input entities.NewChainAnalysis) (*entities.ChainAnalysis, error) {
	analysis := entities.NewChainAnalysisRecord(r.newID(), input, r.now().Round(0).In(r.loc))

	cols, err := encodeColumns(analysis)
	if err != nil {
		return nil, err
	}
	_, err = r.db.ExecContext(ctx, r.dialect.rebind(`INSERT INTO chain_analyses (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		analysis.ID, analysis.Title, analysis.EventDate, cols.eventTime, analysis.PrecipitatingEvent,
		analysis.PrimaryEmotion, analysis.EmotionalIntensity, cols.chainLinks, cols.vulnerabilities,
		cols.interventions, cols.wellnessScore, cols.notes, analysis.CreatedAt.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("insert analysis: %w", err)
	}
	return analysis, nil
}

// Update merges patch into the stored record inside one transaction
func (r *AnalysisRepository) Update(ctx context.Context, id string, patch entities.ChainAnalysisPatch) (result *entities.ChainAnalysis, retErr error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer func() {
		if retErr != nil || result == nil {
			_ = tx.Rollback()
		}
	}()

	row := tx.QueryRowContext(ctx,
		r.dialect.rebind(`SELECT `+selectColumns+` FROM chain_analyses WHERE id = ?`+r.dialect.lockForEdit), id)
	analysis, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load analysis: %w", err)
	}

	analysis.Apply(patch)
	cols, err := encodeColumns(analysis)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, r.dialect.rebind(`UPDATE chain_analyses SET
		title = ?, event_date = ?, event_time = ?, precipitating_event = ?, primary_emotion = ?,
		emotional_intensity = ?, chain_links = ?, vulnerabilities = ?, interventions = ?,
		wellness_score = ?, notes = ?
		WHERE id = ?`),
		analysis.Title, analysis.EventDate, cols.eventTime, analysis.PrecipitatingEvent, analysis.PrimaryEmotion,
		analysis.EmotionalIntensity, cols.chainLinks, cols.vulnerabilities, cols.interventions,
		cols.wellnessScore, cols.notes, id)
	if err != nil {
		return nil, fmt.Errorf("update analysis: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return analysis, nil
}

// Delete removes the record and reports whether one existed
func (r *AnalysisRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.dialect.rebind(`DELETE FROM chain_analyses WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("delete analysis: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete analysis: %w", err)
	}
	return n > 0, nil
}

func (r *AnalysisRepository) query(ctx context.Context, query string, args ...any) ([]*entities.ChainAnalysis, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]*entities.ChainAnalysis, 0)
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *AnalysisRepository) scan(s scanner) (*entities.ChainAnalysis, error) {
	var (
		a                                     entities.ChainAnalysis
		eventTime, notes                      sql.NullString
		wellness                              sql.NullInt64
		links, vulnerabilities, interventions []byte
		createdAt                             int64
	)
	err := s.Scan(&a.ID, &a.Title, &a.EventDate, &eventTime, &a.PrecipitatingEvent, &a.PrimaryEmotion,
		&a.EmotionalIntensity, &links, &vulnerabilities, &interventions, &wellness, &notes, &createdAt)
	if err != nil {
		return nil, err
	}

	if eventTime.Valid {
		a.EventTime = &eventTime.String
	}
	if notes.Valid {
		a.Notes = &notes.String
	}
	if wellness.Valid {
		score := int(wellness.Int64)
		a.WellnessScore = &score
	}
	a.ChainLinks = []entities.ChainLink{}
	if err := json.Unmarshal(links, &a.ChainLinks); err != nil {
		return nil, fmt.Errorf("decode chain links: %w", err)
	}
	a.Vulnerabilities = []string{}
	if err := json.Unmarshal(vulnerabilities, &a.Vulnerabilities); err != nil {
		return nil, fmt.Errorf("decode vulnerabilities: %w", err)
	}
	a.Interventions = []string{}
	if err := json.Unmarshal(interventions, &a.Interventions); err != nil {
		return nil, fmt.Errorf("decode interventions: %w", err)
	}
	a.CreatedAt = time.Unix(0, createdAt).In(r.loc)
	return &a, nil
}

type encodedColumns struct {
	eventTime, notes                           sql.NullString
	wellnessScore                              sql.NullInt64
	chainLinks, vulnerabilities, interventions string
}

func encodeColumns(a *entities.ChainAnalysis) (encodedColumns, error) {
	var cols encodedColumns
	if a.EventTime != nil {
		cols.eventTime = sql.NullString{String: *a.EventTime, Valid: true}
	}
	if a.Notes != nil {
		cols.notes = sql.NullString{String: *a.Notes, Valid: true}
	}
	if a.WellnessScore != nil {
		cols.wellnessScore = sql.NullInt64{Int64: int64(*a.WellnessScore), Valid: true}
	}

	links, err := json.Marshal(a.ChainLinks)
	if err != nil {
		return cols, fmt.Errorf("encode chain links: %w", err)
	}
	vulnerabilities, err := json.Marshal(a.Vulnerabilities)
	if err != nil {
		return cols, fmt.Errorf("encode vulnerabilities: %w", err)
	}
	interventions, err := json.Marshal(a.Interventions)
	if err != nil {
		return cols, fmt.Errorf("encode interventions: %w", err)
	}
	cols.chainLinks = string(links)
	cols.vulnerabilities = string(vulnerabilities)
	cols.interventions = string(interventions)
	return cols, nil
}
