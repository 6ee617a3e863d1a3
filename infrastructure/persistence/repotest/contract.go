// Package repotest holds the behavioural contract every AnalysisRepository
// implementation must satisfy. Backend packages run it from their own tests.
package repotest

import (
	"context"
	"sync"
	"testing"
	"time"

	"moodi-backend/application/ports"
	"moodi-backend/domain/core/entities"
	"moodi-backend/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Clock is a manually advanced clock
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a clock frozen at start
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current fake time
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Factory builds an empty repository that stamps records with clock and
// evaluates calendar months in UTC.
type Factory func(t *testing.T, clock *Clock) ports.AnalysisRepository

// Input returns a minimal valid create input
func Input(title, emotion string) entities.NewChainAnalysis {
	return entities.NewChainAnalysis{
		Title:              title,
		EventDate:          "2024-05-01",
		PrecipitatingEvent: "Algo pasó",
		PrimaryEmotion:     emotion,
		EmotionalIntensity: 5,
	}
}

// AssertSameRecord compares two records, treating CreatedAt as an instant
func AssertSameRecord(t *testing.T, want, got *entities.ChainAnalysis) {
	t.Helper()
	require.NotNil(t, got)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "createdAt: want %s, got %s", want.CreatedAt, got.CreatedAt)
	w, g := want.Clone(), got.Clone()
	w.CreatedAt, g.CreatedAt = time.Time{}, time.Time{}
	assert.Equal(t, w, g)
}

func ids(analyses []*entities.ChainAnalysis) []string {
	out := make([]string, len(analyses))
	for i, a := range analyses {
		out[i] = a.ID
	}
	return out
}

// Run executes the contract against repositories built by factory
func Run(t *testing.T, factory Factory) {
	ctx := context.Background()
	start := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

	t.Run("get after create returns the created record", func(t *testing.T) {
		repo := factory(t, NewClock(start))
		notes := "nota"
		wellness := 6
		eventTime := "21:15"
		created, err := repo.Create(ctx, entities.NewChainAnalysis{
			Title:              "Discusión",
			EventDate:          "2024-05-09",
			EventTime:          &eventTime,
			PrecipitatingEvent: "Llamada",
			PrimaryEmotion:     "ira",
			EmotionalIntensity: 8,
			ChainLinks: []entities.ChainLink{
				{ID: "a", Type: valueobjects.LinkTypeThought, Content: "No me escucha", Order: 0},
				{ID: "b", Type: valueobjects.LinkTypeBehavior, Content: "Colgué", Order: 1},
			},
			Vulnerabilities: []string{"hambre"},
			Interventions:   []string{"pausa"},
			WellnessScore:   &wellness,
			Notes:           &notes,
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.NotEmpty(t, created.ID)
		assert.True(t, created.CreatedAt.Equal(start))

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		AssertSameRecord(t, created, got)
	})

	t.Run("create applies defaults", func(t *testing.T) {
		repo := factory(t, NewClock(start))
		empty := ""
		in := Input("Sin listas", "miedo")
		in.EventTime = &empty

		created, err := repo.Create(ctx, in)
		require.NoError(t, err)
		assert.Nil(t, created.EventTime)
		assert.Equal(t, []entities.ChainLink{}, created.ChainLinks)
		assert.Equal(t, []string{}, created.Vulnerabilities)
		assert.Equal(t, []string{}, created.Interventions)

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		AssertSameRecord(t, created, got)
	})

	t.Run("ids are unique", func(t *testing.T) {
		repo := factory(t, NewClock(start))
		seen := make(map[string]bool)
		for i := 0; i < 20; i++ {
			a, err := repo.Create(ctx, Input("t", "e"))
			require.NoError(t, err)
			assert.False(t, seen[a.ID], "duplicate id %s", a.ID)
			seen[a.ID] = true
		}
	})

	t.Run("get unknown id returns nil", func(t *testing.T) {
		repo := factory(t, NewClock(start))
		got, err := repo.Get(ctx, "does-not-exist")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("get all is newest first", func(t *testing.T) {
		clock := NewClock(start)
		repo := factory(t, clock)
		var created []string
		for _, offset := range []time.Duration{0, 3 * time.Hour, time.Hour, 2 * time.Hour} {
			clock.Set(start.Add(offset))
			a, err := repo.Create(ctx, Input("t", "e"))
			require.NoError(t, err)
			created = append(created, a.ID)
		}

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{created[1], created[3], created[2], created[0]}, ids(all))
		for i := 1; i < len(all); i++ {
			assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt))
		}
	})

	t.Run("equal timestamps order later insertions first", func(t *testing.T) {
		repo := factory(t, NewClock(start))
		first, err := repo.Create(ctx, Input("first", "e"))
		require.NoError(t, err)
		second, err := repo.Create(ctx, Input("second", "e"))
		require.NoError(t, err)
		third, err := repo.Create(ctx, Input("third", "e"))
		require.NoError(t, err)

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{third.ID, second.ID, first.ID}, ids(all))
	})

	t.Run("get by month", func(t *testing.T) {
		clock := NewClock(time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC))
		repo := factory(t, clock)
		early, err := repo.Create(ctx, Input("early may", "e"))
		require.NoError(t, err)
		clock.Set(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
		_, err = repo.Create(ctx, Input("june", "e"))
		require.NoError(t, err)
		clock.Set(time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC))
		late, err := repo.Create(ctx, Input("late may", "e"))
		require.NoError(t, err)

		may, err := repo.GetByMonth(ctx, 2024, 5)
		require.NoError(t, err)
		assert.Equal(t, []string{late.ID, early.ID}, ids(may))

		none, err := repo.GetByMonth(ctx, 2023, 5)
		require.NoError(t, err)
		assert.Empty(t, none)

		invalid, err := repo.GetByMonth(ctx, 2024, 13)
		require.NoError(t, err)
		assert.Empty(t, invalid)

		zero, err := repo.GetByMonth(ctx, 2024, 0)
		require.NoError(t, err)
		assert.Empty(t, zero)
	})

	t.Run("update with empty patch returns existing record", func(t *testing.T) {
		clock := NewClock(start)
		repo := factory(t, clock)
		created, err := repo.Create(ctx, Input("Sin cambios", "culpa"))
		require.NoError(t, err)

		clock.Advance(time.Hour)
		updated, err := repo.Update(ctx, created.ID, entities.ChainAnalysisPatch{})
		require.NoError(t, err)
		AssertSameRecord(t, created, updated)
	})

	t.Run("update merges provided fields only", func(t *testing.T) {
		clock := NewClock(start)
		repo := factory(t, clock)
		in := Input("Antes", "tristeza")
		notes := "original"
		in.Notes = &notes
		in.Vulnerabilities = []string{"uno"}
		created, err := repo.Create(ctx, in)
		require.NoError(t, err)

		clock.Advance(24 * time.Hour)
		title := "Después"
		intensity := 2
		updated, err := repo.Update(ctx, created.ID, entities.ChainAnalysisPatch{
			Title:              &title,
			EmotionalIntensity: &intensity,
			Notes:              valueobjects.SetNull[string](),
			WellnessScore:      valueobjects.SetTo(7),
			Interventions:      &[]string{"caminar"},
		})
		require.NoError(t, err)
		require.NotNil(t, updated)

		assert.Equal(t, created.ID, updated.ID)
		assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
		assert.Equal(t, "Después", updated.Title)
		assert.Equal(t, 2, updated.EmotionalIntensity)
		assert.Nil(t, updated.Notes)
		require.NotNil(t, updated.WellnessScore)
		assert.Equal(t, 7, *updated.WellnessScore)
		assert.Equal(t, []string{"caminar"}, updated.Interventions)
		assert.Equal(t, []string{"uno"}, updated.Vulnerabilities)
		assert.Equal(t, "tristeza", updated.PrimaryEmotion)

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		AssertSameRecord(t, updated, got)
	})

	t.Run("update unknown id returns nil", func(t *testing.T) {
		repo := factory(t, NewClock(start))
		title := "x"
		got, err := repo.Update(ctx, "nonexistent-id", entities.ChainAnalysisPatch{Title: &title})
		require.NoError(t, err)
		assert.Nil(t, got)

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("delete", func(t *testing.T) {
		repo := factory(t, NewClock(start))
		created, err := repo.Create(ctx, Input("Borrar", "miedo"))
		require.NoError(t, err)

		removed, err := repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, removed)

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		removed, err = repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("search", func(t *testing.T) {
		clock := NewClock(start)
		repo := factory(t, clock)
		a, err := repo.Create(ctx, Input("Trabajo estresante", "ansiedad"))
		require.NoError(t, err)
		clock.Advance(time.Minute)
		withNotes := Input("Cena familiar", "culpa")
		notes := "Me sentí estresada al final"
		withNotes.Notes = &notes
		b, err := repo.Create(ctx, withNotes)
		require.NoError(t, err)
		clock.Advance(time.Minute)
		_, err = repo.Create(ctx, Input("Paseo", "calma"))
		require.NoError(t, err)

		found, err := repo.Search(ctx, "estres")
		require.NoError(t, err)
		assert.Equal(t, []string{b.ID, a.ID}, ids(found))

		found, err = repo.Search(ctx, "ANSIEDAD")
		require.NoError(t, err)
		assert.Equal(t, []string{a.ID}, ids(found))

		found, err = repo.Search(ctx, "ALEGRIA")
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}
