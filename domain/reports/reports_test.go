package reports

import (
	"testing"
	"time"

	"moodi-backend/domain/core/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(emotion string, wellness *int, vulns int, createdAt time.Time) *entities.ChainAnalysis {
	v := make([]string, vulns)
	for i := range v {
		v[i] = "v"
	}
	return &entities.ChainAnalysis{
		ID:              emotion + createdAt.String(),
		PrimaryEmotion:  emotion,
		WellnessScore:   wellness,
		Vulnerabilities: v,
		CreatedAt:       createdAt,
	}
}

func score(i int) *int { return &i }

func TestBuildMonthlySummary(t *testing.T) {
	may := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	analyses := []*entities.ChainAnalysis{
		record("ansiedad", score(4), 2, may),
		record("Ansiedad", score(7), 1, may),
		record("tristeza", nil, 0, may),
		record("ira", score(6), 3, may),
	}

	s := BuildMonthlySummary(2024, 5, analyses)

	assert.Equal(t, 2024, s.Year)
	assert.Equal(t, 5, s.Month)
	assert.Equal(t, 4, s.TotalAnalyses)
	assert.Equal(t, 5.7, s.AverageWellness)
	assert.Equal(t, 6, s.VulnerabilityCount)
	assert.Equal(t, "ansiedad", s.DominantEmotion)
	require.Len(t, s.EmotionBreakdown, 3)
	assert.Equal(t, EmotionStat{Emotion: "ansiedad", Count: 2, Percentage: 50}, s.EmotionBreakdown[0])
	assert.Equal(t, EmotionStat{Emotion: "ira", Count: 1, Percentage: 25}, s.EmotionBreakdown[1])
	assert.Equal(t, EmotionStat{Emotion: "tristeza", Count: 1, Percentage: 25}, s.EmotionBreakdown[2])
}

func TestBuildMonthlySummary_Empty(t *testing.T) {
	s := BuildMonthlySummary(2024, 2, nil)

	assert.Zero(t, s.TotalAnalyses)
	assert.Zero(t, s.AverageWellness)
	assert.Empty(t, s.EmotionBreakdown)
	assert.NotNil(t, s.EmotionBreakdown)
	assert.Empty(t, s.DominantEmotion)
}

func TestBuildDashboardStats(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	analyses := []*entities.ChainAnalysis{
		record("miedo", score(8), 1, now.Add(-time.Hour)),
		record("culpa", score(3), 0, now.Add(-48*time.Hour)),
		record("ira", nil, 2, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)),
		record("ira", nil, 1, time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)),
	}

	stats := BuildDashboardStats(analyses, now, time.UTC)

	assert.Equal(t, 4, stats.TotalAnalyses)
	assert.Equal(t, 2, stats.ThisMonthAnalyses)
	assert.Equal(t, 4, stats.TotalVulnerabilities)
	assert.Equal(t, 5.5, stats.AverageWellness)
	require.Len(t, stats.Recent, RecentLimit)
	assert.Same(t, analyses[0], stats.Recent[0])
	assert.Same(t, analyses[2], stats.Recent[2])
}

func TestAverageWellness_Rounding(t *testing.T) {
	analyses := []*entities.ChainAnalysis{
		record("a", score(1), 0, time.Now()),
		record("a", score(2), 0, time.Now()),
		record("a", score(2), 0, time.Now()),
	}
	assert.Equal(t, 1.7, AverageWellness(analyses))
}
