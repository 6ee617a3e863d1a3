package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"moodi-backend/application/commands"
	"moodi-backend/application/commands/bus"
	"moodi-backend/application/queries"
	querybus "moodi-backend/application/queries/bus"
	appErrors "moodi-backend/pkg/errors"
	"moodi-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// AnalysisHandler handles chain-analysis HTTP requests. Every request maps to
// one command or query.
type AnalysisHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errHandler *appErrors.ErrorHandler
	logger     *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *appErrors.ErrorHandler,
	logger *zap.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errHandler: errorHandler,
		logger:     logger,
	}
}

// ListAnalyses handles GET /analyses
func (h *AnalysisHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.ListAnalysesQuery{})
}

// SearchAnalyses handles GET /analyses/search?q=
func (h *AnalysisHandler) SearchAnalyses(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.SearchAnalysesQuery{Query: r.URL.Query().Get("q")})
}

// AnalysesByMonth handles GET /analyses/month/{year}/{month}
func (h *AnalysisHandler) AnalysesByMonth(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	h.ask(w, r, queries.AnalysesByMonthQuery{Year: year, Month: month})
}

// MonthlySummary handles GET /analyses/month/{year}/{month}/summary
func (h *AnalysisHandler) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	h.ask(w, r, queries.MonthlySummaryQuery{Year: year, Month: month})
}

// DashboardStats handles GET /analyses/stats
func (h *AnalysisHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.DashboardStatsQuery{})
}

// GetAnalysis handles GET /analyses/{id}
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetAnalysisQuery{ID: chi.URLParam(r, "id")})
}

// CreateAnalysis handles POST /analyses
func (h *AnalysisHandler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var cmd commands.CreateAnalysisCommand
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&cmd); err != nil {
		h.errHandler.Handle(w, r, bodyError(err))
		return
	}

	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, result)
}

// UpdateAnalysis handles PATCH /analyses/{id}
func (h *AnalysisHandler) UpdateAnalysis(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.errHandler.Handle(w, r, bodyError(err))
		return
	}

	cmd, err := decodeUpdate(chi.URLParam(r, "id"), body)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result)
}

// DeleteAnalysis handles DELETE /analyses/{id}
func (h *AnalysisHandler) DeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	if _, err := h.commandBus.Send(r.Context(), commands.DeleteAnalysisCommand{ID: chi.URLParam(r, "id")}); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, MessageResponse{Message: "Analysis deleted successfully"})
}

func (h *AnalysisHandler) ask(w http.ResponseWriter, r *http.Request, query querybus.Query) {
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result)
}

// yearMonth parses the path's year and month. The month range itself is
// checked by the query.
func yearMonth(r *http.Request) (int, int, error) {
	var errs []error
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		errs = append(errs, utils.FieldError("year", "year must be a number"))
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		errs = append(errs, utils.FieldError("month", "month must be a number"))
	}
	if err := utils.MergeValidation(errs...); err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return appErrors.NewValidationError(fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit))
	}
	return appErrors.NewValidationError("Invalid request body: " + err.Error())
}
