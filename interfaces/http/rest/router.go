package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/mediator"
	"github.com/pranavrajput12/PRSNL-sub011/infrastructure/observability"
	"github.com/pranavrajput12/PRSNL-sub011/interfaces/http/rest/handlers"
	"github.com/pranavrajput12/PRSNL-sub011/interfaces/http/rest/middleware"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

// ReadinessCheck is one dependency checked by /ready
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// RouterConfig holds the HTTP surface settings
type RouterConfig struct {
	ServiceName    string
	EnableCORS     bool
	AllowedOrigins []string
	Debug          bool
	RequestTimeout time.Duration
}

// Router creates and configures the HTTP router
type Router struct {
	mediator mediator.IMediator
	metrics  *observability.Collector
	checks   []ReadinessCheck
	config   RouterConfig
	logger   *zap.Logger
}

// NewRouter creates a new router instance. metrics may be nil, in which
// case /metrics is not mounted.
func NewRouter(
	m mediator.IMediator,
	metrics *observability.Collector,
	checks []ReadinessCheck,
	config RouterConfig,
	logger *zap.Logger,
) *Router {
	return &Router{
		mediator: m,
		metrics:  metrics,
		checks:   checks,
		config:   config,
		logger:   logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()
	errs := apperrors.NewErrorHandler(rt.logger, rt.config.Debug)

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Logger(rt.logger))
	router.Use(errs.Middleware)
	router.Use(middleware.Tracing(rt.config.ServiceName))
	if rt.metrics != nil {
		router.Use(rt.metrics.HTTPMiddleware)
	}
	if rt.config.RequestTimeout > 0 {
		router.Use(chimiddleware.Timeout(rt.config.RequestTimeout))
	}

	if rt.config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "X-Trace-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metrics != nil {
		router.Handle("/metrics", rt.metrics.Handler())
	}

	router.Route("/api/v1/graph", func(r chi.Router) {
		graphHandler := handlers.NewGraphHandler(rt.mediator, errs, rt.logger)
		r.Get("/full", graphHandler.GetFullGraph)
		r.Get("/stats", graphHandler.GetStats)
		r.Route("/entities/{entityID}", func(r chi.Router) {
			r.Get("/", graphHandler.GetEntity)
			r.Put("/", graphHandler.UpsertEntity)
			r.Delete("/", graphHandler.DeleteEntity)
			r.Get("/subgraph", graphHandler.GetSubgraph)
		})

		relHandler := handlers.NewRelationshipHandler(rt.mediator, errs, rt.logger)
		r.Route("/relationships", func(r chi.Router) {
			r.Post("/", relHandler.CreateRelationship)
			r.Delete("/", relHandler.DeleteRelationship)
			r.Post("/suggest", relHandler.SuggestRelationships)
			r.Post("/suggest/apply", relHandler.ApplySuggestion)
		})

		analyticsHandler := handlers.NewAnalyticsHandler(rt.mediator, errs, rt.logger)
		r.Post("/paths/discover", analyticsHandler.DiscoverPaths)
		r.Post("/clustering", analyticsHandler.ClusterEntities)
		r.Post("/analysis/gaps", analyticsHandler.AnalyzeGaps)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errs.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errs.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	return router
}
