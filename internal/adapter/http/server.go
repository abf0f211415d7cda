// Package http serves the dashboard pages and the operational endpoints on a
// gin engine.
package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/noise-dashboard/internal/observability"
	"github.com/couchcryptid/noise-dashboard/internal/pipeline"
)

// Dashboard runs the render pass behind each page.
type Dashboard interface {
	sharedobs.ReadinessChecker
	Heatmap(ctx context.Context, up *pipeline.Upload) pipeline.HeatmapResult
	Map(ctx context.Context, in pipeline.MapInput) pipeline.MapResult
	Dataset(ctx context.Context, up *pipeline.Upload) pipeline.DatasetResult
	City(ctx context.Context, name string) pipeline.CityResult
	Charts(ctx context.Context) pipeline.ChartsResult
	ChartWidgets(w io.Writer) error
}

// Options configures the page routes.
type Options struct {
	// AssetsDir is served under /assets; empty disables the route.
	AssetsDir      string
	MaxUploadBytes int64
}

// Server exposes the dashboard pages plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	dashboard  Dashboard
	pages      *pageTemplates
	logger     *slog.Logger
	metrics    *observability.Metrics
	opts       Options
}

// NewServer creates an HTTP server with the page routes, /charts/widgets,
// /assets, /healthz, /readyz, and /metrics.
func NewServer(addr string, dashboard Dashboard, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Server {
	registerValidations()

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger), requestMetrics(metrics))
	engine.MaxMultipartMemory = multipartMemory

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		dashboard: dashboard,
		pages:     mustParsePages(),
		logger:    logger,
		metrics:   metrics,
		opts:      opts,
	}

	engine.GET("/healthz", gin.WrapF(sharedobs.LivenessHandler()))
	engine.GET("/readyz", gin.WrapF(sharedobs.ReadinessHandler(dashboard)))
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.routes(engine)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
