// Package reports aggregates chain analyses into the monthly and dashboard
// statistics shown to the user. Everything here is pure: the records are
// fetched by the caller with a single store call.
package reports

import (
	"math"
	"sort"
	"strings"
	"time"

	"moodi-backend/domain/core/entities"
)

// RecentLimit is how many records the dashboard shows
const RecentLimit = 3

// EmotionStat is the share of one primary emotion within a set of records
type EmotionStat struct {
	Emotion    string `json:"emotion" yaml:"emotion"`
	Count      int    `json:"count" yaml:"count"`
	Percentage int    `json:"percentage" yaml:"percentage"`
}

// MonthlySummary is the report for one calendar month
type MonthlySummary struct {
	Year               int           `json:"year" yaml:"year"`
	Month              int           `json:"month" yaml:"month"`
	TotalAnalyses      int           `json:"totalAnalyses" yaml:"totalAnalyses"`
	AverageWellness    float64       `json:"averageWellness" yaml:"averageWellness"`
	VulnerabilityCount int           `json:"vulnerabilityCount" yaml:"vulnerabilityCount"`
	EmotionBreakdown   []EmotionStat `json:"emotionBreakdown" yaml:"emotionBreakdown"`
	DominantEmotion    string        `json:"dominantEmotion" yaml:"dominantEmotion"`
}

// DashboardStats is the overview across every record
type DashboardStats struct {
	TotalAnalyses        int                       `json:"totalAnalyses"`
	ThisMonthAnalyses    int                       `json:"thisMonthAnalyses"`
	TotalVulnerabilities int                       `json:"totalVulnerabilities"`
	AverageWellness      float64                   `json:"averageWellness"`
	Recent               []*entities.ChainAnalysis `json:"recent"`
}

// BuildMonthlySummary aggregates the records of one month
func BuildMonthlySummary(year, month int, analyses []*entities.ChainAnalysis) MonthlySummary {
	breakdown := EmotionBreakdown(analyses)
	s := MonthlySummary{
		Year:               year,
		Month:              month,
		TotalAnalyses:      len(analyses),
		AverageWellness:    AverageWellness(analyses),
		VulnerabilityCount: CountVulnerabilities(analyses),
		EmotionBreakdown:   breakdown,
	}
	if len(breakdown) > 0 {
		s.DominantEmotion = breakdown[0].Emotion
	}
	return s
}

// BuildDashboardStats aggregates the full newest-first listing. now decides
// which month counts as "this month"; it is evaluated in loc.
func BuildDashboardStats(analyses []*entities.ChainAnalysis, now time.Time, loc *time.Location) DashboardStats {
	local := now.In(loc)
	stats := DashboardStats{
		TotalAnalyses:        len(analyses),
		TotalVulnerabilities: CountVulnerabilities(analyses),
		AverageWellness:      AverageWellness(analyses),
		Recent:               make([]*entities.ChainAnalysis, 0, RecentLimit),
	}
	for _, a := range analyses {
		if a.CreatedIn(local.Year(), int(local.Month()), loc) {
			stats.ThisMonthAnalyses++
		}
	}
	for i := 0; i < len(analyses) && i < RecentLimit; i++ {
		stats.Recent = append(stats.Recent, analyses[i])
	}
	return stats
}

// AverageWellness is the mean wellness score, rounded to one decimal, over the
// records that carry one. Zero when none do.
func AverageWellness(analyses []*entities.ChainAnalysis) float64 {
	sum, n := 0, 0
	for _, a := range analyses {
		if a.WellnessScore != nil {
			sum += *a.WellnessScore
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(n)*10) / 10
}

// CountVulnerabilities sums the vulnerability lists
func CountVulnerabilities(analyses []*entities.ChainAnalysis) int {
	total := 0
	for _, a := range analyses {
		total += len(a.Vulnerabilities)
	}
	return total
}

// EmotionBreakdown counts primary emotions, case-folded, ordered by count
// descending and then by name.
func EmotionBreakdown(analyses []*entities.ChainAnalysis) []EmotionStat {
	counts := make(map[string]int)
	for _, a := range analyses {
		counts[strings.ToLower(strings.TrimSpace(a.PrimaryEmotion))]++
	}

	stats := make([]EmotionStat, 0, len(counts))
	for emotion, count := range counts {
		stats = append(stats, EmotionStat{
			Emotion:    emotion,
			Count:      count,
			Percentage: int(math.Round(float64(count) / float64(len(analyses)) * 100)),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Emotion < stats[j].Emotion
	})
	return stats
}
