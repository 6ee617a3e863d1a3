package queries

import (
	"moodi-backend/pkg/utils"
)

// GetAnalysisQuery fetches one chain analysis
type GetAnalysisQuery struct {
	ID string `json:"id" validate:"required"`
}

// Validate validates the GetAnalysisQuery
func (q GetAnalysisQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// ListAnalysesQuery lists every chain analysis, newest first
type ListAnalysesQuery struct{}

// Validate validates the ListAnalysesQuery
func (ListAnalysesQuery) Validate() error { return nil }

// AnalysesByMonthQuery lists the analyses created in one calendar month
type AnalysesByMonthQuery struct {
	Year  int `json:"year"`
	Month int `json:"month" validate:"min=1,max=12"`
}

// Validate validates the AnalysesByMonthQuery
func (q AnalysesByMonthQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// SearchAnalysesQuery finds analyses containing a text fragment
type SearchAnalysesQuery struct {
	Query string `json:"q" validate:"required"`
}

// Validate validates the SearchAnalysesQuery
func (q SearchAnalysesQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// MonthlySummaryQuery aggregates one calendar month
type MonthlySummaryQuery struct {
	Year  int `json:"year"`
	Month int `json:"month" validate:"min=1,max=12"`
}

// Validate validates the MonthlySummaryQuery
func (q MonthlySummaryQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// DashboardStatsQuery aggregates every analysis for the dashboard
type DashboardStatsQuery struct{}

// Validate validates the DashboardStatsQuery
func (DashboardStatsQuery) Validate() error { return nil }
