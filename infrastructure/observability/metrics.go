package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pranavrajput12/PRSNL-sub011/application/ports"
)

// Collector holds all Prometheus metrics for the service. Each collector
// owns a private registry, so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Mediator metrics
	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	Queries         *prometheus.CounterVec
	QueryDuration   *prometheus.HistogramVec
	Truncations     *prometheus.CounterVec

	// Store metrics
	StoreOperations *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec
	GraphEntities   prometheus.Gauge
}

// NewCollector creates a collector with the given namespace
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Dispatched commands by outcome",
		}, []string{"command", "status"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Command handling duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Dispatched queries by outcome",
		}, []string{"query", "status"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Query and analytics duration in seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"query"}),
		Truncations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_truncations_total",
			Help:      "Analytics results cut short by a configured cap",
		}, []string{"operation"}),
		StoreOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Graph store operations by outcome",
		}, []string{"operation", "status"}),
		StoreDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Graph store operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		GraphEntities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_entities",
			Help:      "Entities in the latest snapshot",
		}),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Commands,
		c.CommandDuration,
		c.Queries,
		c.QueryDuration,
		c.Truncations,
		c.StoreOperations,
		c.StoreDuration,
		c.GraphEntities,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

var _ ports.MetricsRecorder = (*Collector)(nil)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordCommand records one dispatched command
func (c *Collector) RecordCommand(name string, duration time.Duration, err error) {
	c.Commands.WithLabelValues(name, status(err)).Inc()
	c.CommandDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// RecordQuery records one dispatched query
func (c *Collector) RecordQuery(name string, duration time.Duration, err error) {
	c.Queries.WithLabelValues(name, status(err)).Inc()
	c.QueryDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// RecordTruncation counts a capped analytics result
func (c *Collector) RecordTruncation(operation string) {
	c.Truncations.WithLabelValues(operation).Inc()
}

// RecordStoreOperation records one graph store call
func (c *Collector) RecordStoreOperation(operation string, duration time.Duration, err error) {
	c.StoreOperations.WithLabelValues(operation, status(err)).Inc()
	c.StoreDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// HTTPMiddleware records request counts and latencies by route pattern
func (c *Collector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(code)).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
