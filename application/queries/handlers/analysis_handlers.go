package handlers

import (
	"context"
	"fmt"
	"time"

	"moodi-backend/application/ports"
	"moodi-backend/application/queries"
	"moodi-backend/application/queries/bus"
	"moodi-backend/domain/reports"
	appErrors "moodi-backend/pkg/errors"
)

// AnalysisQueryHandler answers every read-only analysis query. Each query
// costs exactly one repository call.
type AnalysisQueryHandler struct {
	repo ports.AnalysisRepository
	now  func() time.Time
	loc  *time.Location
}

// NewAnalysisQueryHandler creates a new analysis query handler. loc decides
// which calendar month "now" falls in for dashboard stats.
func NewAnalysisQueryHandler(repo ports.AnalysisRepository, now func() time.Time, loc *time.Location) *AnalysisQueryHandler {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &AnalysisQueryHandler{repo: repo, now: now, loc: loc}
}

// Handle dispatches on the concrete query type
func (h *AnalysisQueryHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	switch q := query.(type) {
	case queries.GetAnalysisQuery:
		return h.get(ctx, q)
	case queries.ListAnalysesQuery:
		list, err := h.repo.GetAll(ctx)
		return list, appErrors.Wrap(err, "failed to list analyses")
	case queries.AnalysesByMonthQuery:
		list, err := h.repo.GetByMonth(ctx, q.Year, q.Month)
		return list, appErrors.Wrap(err, "failed to list analyses by month")
	case queries.SearchAnalysesQuery:
		list, err := h.repo.Search(ctx, q.Query)
		return list, appErrors.Wrap(err, "failed to search analyses")
	case queries.MonthlySummaryQuery:
		return h.monthlySummary(ctx, q)
	case queries.DashboardStatsQuery:
		return h.dashboardStats(ctx)
	default:
		return nil, fmt.Errorf("unexpected query type %T", query)
	}
}

func (h *AnalysisQueryHandler) get(ctx context.Context, q queries.GetAnalysisQuery) (interface{}, error) {
	analysis, err := h.repo.Get(ctx, q.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to get analysis")
	}
	if analysis == nil {
		return nil, appErrors.NewNotFoundError("Analysis")
	}
	return analysis, nil
}

func (h *AnalysisQueryHandler) monthlySummary(ctx context.Context, q queries.MonthlySummaryQuery) (interface{}, error) {
	list, err := h.repo.GetByMonth(ctx, q.Year, q.Month)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to build monthly summary")
	}
	summary := reports.BuildMonthlySummary(q.Year, q.Month, list)
	return &summary, nil
}

func (h *AnalysisQueryHandler) dashboardStats(ctx context.Context) (interface{}, error) {
	list, err := h.repo.GetAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to build dashboard stats")
	}
	stats := reports.BuildDashboardStats(list, h.now(), h.loc)
	return &stats, nil
}

// RegisterAnalysisHandlers wires every analysis query into b
func RegisterAnalysisHandlers(b *bus.QueryBus, h *AnalysisQueryHandler) error {
	for _, q := range []bus.Query{
		queries.GetAnalysisQuery{},
		queries.ListAnalysesQuery{},
		queries.AnalysesByMonthQuery{},
		queries.SearchAnalysesQuery{},
		queries.MonthlySummaryQuery{},
		queries.DashboardStatsQuery{},
	} {
		if err := b.Register(q, h); err != nil {
			return err
		}
	}
	return nil
}
