package rest

import (
	"context"
	"net/http"
	"time"

	"moodi-backend/application/commands/bus"
	"moodi-backend/application/ports"
	querybus "moodi-backend/application/queries/bus"
	"moodi-backend/interfaces/http/rest/handlers"
	"moodi-backend/interfaces/http/rest/middleware"
	appErrors "moodi-backend/pkg/errors"
	"moodi-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const readinessTimeout = 2 * time.Second

// Options tunes the router's optional surfaces
type Options struct {
	EnableCORS  bool
	CORSOrigins []string
	// Debug exposes internal error messages in responses
	Debug bool
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	health     ports.HealthChecker
	metrics    *observability.Collector
	opts       Options
	logger     *zap.Logger
}

// NewRouter creates a new router instance. health and metrics may be nil.
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	health ports.HealthChecker,
	metrics *observability.Collector,
	opts Options,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		health:     health,
		metrics:    metrics,
		opts:       opts,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()
	errorHandler := appErrors.NewErrorHandler(rt.logger, rt.opts.Debug)

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}
	router.Use(errorHandler.Recoverer)

	if rt.opts.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorHandler.HandleStatus(w, r, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errorHandler.HandleStatus(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metrics != nil {
		router.Handle("/metrics", rt.metrics.Handler())
	}

	router.Route("/api/analyses", func(r chi.Router) {
		h := handlers.NewAnalysisHandler(rt.commandBus, rt.queryBus, errorHandler, rt.logger)
		r.Get("/", h.ListAnalyses)
		r.Post("/", h.CreateAnalysis)
		r.Get("/search", h.SearchAnalyses)
		r.Get("/stats", h.DashboardStats)
		r.Get("/month/{year}/{month}", h.AnalysesByMonth)
		r.Get("/month/{year}/{month}/summary", h.MonthlySummary)
		r.Get("/{id}", h.GetAnalysis)
		r.Patch("/{id}", h.UpdateAnalysis)
		r.Delete("/{id}", h.DeleteAnalysis)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck pings the store when it is backed by an external service
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if rt.health != nil {
		ctx, cancel := context.WithTimeout(req.Context(), readinessTimeout)
		defer cancel()
		if err := rt.health.Ping(ctx); err != nil {
			rt.logger.Warn("Readiness check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
