package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"moodi-backend/application/ports"
	"moodi-backend/domain/core/entities"
	"moodi-backend/domain/core/valueobjects"
)

var _ ports.AnalysisRepository = (*AnalysisRepository)(nil)

// AnalysisRepository keeps chain analyses in a process-local map. Nothing
// survives a restart. Every operation runs under one mutex so each call is
// atomic with respect to the others.
type AnalysisRepository struct {
	mu      sync.RWMutex
	entries map[string]*entry
	nextSeq uint64
	now     func() time.Time
	newID   func() valueobjects.AnalysisID
	loc     *time.Location
}

type entry struct {
	analysis *entities.ChainAnalysis
	seq      uint64
}

// Option configures an AnalysisRepository
type Option func(*AnalysisRepository)

// WithClock overrides the clock used to stamp CreatedAt
func WithClock(now func() time.Time) Option {
	return func(r *AnalysisRepository) { r.now = now }
}

// WithLocation sets the zone used to decide calendar months
func WithLocation(loc *time.Location) Option {
	return func(r *AnalysisRepository) { r.loc = loc }
}

// WithIDGenerator overrides id generation
func WithIDGenerator(gen func() valueobjects.AnalysisID) Option {
	return func(r *AnalysisRepository) { r.newID = gen }
}

// NewAnalysisRepository creates an empty in-memory repository
func NewAnalysisRepository(opts ...Option) *AnalysisRepository {
	r := &AnalysisRepository{
		entries: make(map[string]*entry),
		now:     time.Now,
		newID:   valueobjects.NewAnalysisID,
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns a copy of the stored record, or nil
func (r *AnalysisRepository) Get(ctx context.Context, id string) (*entities.ChainAnalysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, nil
	}
	return e.analysis.Clone(), nil
}

// GetAll returns every record, newest first
func (r *AnalysisRepository) GetAll(ctx context.Context) ([]*entities.ChainAnalysis, error) {
	return r.collect(func(*entities.ChainAnalysis) bool { return true }), nil
}

// GetByMonth returns the records created in year/month of the repository zone
func (r *AnalysisRepository) GetByMonth(ctx context.Context, year, month int) ([]*entities.ChainAnalysis, error) {
	return r.collect(func(a *entities.ChainAnalysis) bool {
		return a.CreatedIn(year, month, r.loc)
	}), nil
}

// Search returns the records matching query, newest first
func (r *AnalysisRepository) Search(ctx context.Context, query string) ([]*entities.ChainAnalysis, error) {
	return r.collect(func(a *entities.ChainAnalysis) bool {
		return a.Matches(query)
	}), nil
}

// Create stores a new record
func (r *AnalysisRepository) Create(ctx context.Context, input entities.NewChainAnalysis) (*entities.ChainAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.newID()
	for {
		if _, taken := r.entries[id.String()]; !taken {
			break
		}
		id = r.newID()
	}

	analysis := entities.NewChainAnalysisRecord(id, input, r.now().Round(0).In(r.loc))
	r.nextSeq++
	r.entries[analysis.ID] = &entry{analysis: analysis, seq: r.nextSeq}
	return analysis.Clone(), nil
}

// Update merges patch into the stored record
func (r *AnalysisRepository) Update(ctx context.Context, id string, patch entities.ChainAnalysisPatch) (*entities.ChainAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, nil
	}
	updated := e.analysis.Clone()
	updated.Apply(patch)
	e.analysis = updated
	return updated.Clone(), nil
}

// Delete removes the record
func (r *AnalysisRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return false, nil
	}
	delete(r.entries, id)
	return true, nil
}

// Len returns the number of stored records
func (r *AnalysisRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *AnalysisRepository) collect(keep func(*entities.ChainAnalysis) bool) []*entities.ChainAnalysis {
	r.mu.RLock()
	matched := make([]entry, 0, len(r.entries))
	for _, e := range r.entries {
		if keep(e.analysis) {
			matched = append(matched, entry{analysis: e.analysis.Clone(), seq: e.seq})
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.analysis.CreatedAt.Equal(b.analysis.CreatedAt) {
			return a.analysis.CreatedAt.After(b.analysis.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]*entities.ChainAnalysis, len(matched))
	for i, e := range matched {
		out[i] = e.analysis
	}
	return out
}
