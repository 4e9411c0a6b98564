// Package server provides the main HTTP server for DriftScope.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/driftscope/driftscope/internal/version"
	"github.com/driftscope/driftscope/pkg/plugin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// PluginSource is the slice of the registry the server needs: metadata
// for the inventory endpoint and routes to mount. Declaring it here keeps
// the dependency pointing from registry to server, not both ways.
type PluginSource interface {
	AllRoutes() map[string][]plugin.Route
	All() []plugin.Plugin
}

// ReadinessChecker backs GET /readyz. A nil return means ready; any
// error is surfaced in the 503 body.
type ReadinessChecker func(ctx context.Context) error

// RouteRegistrar lets a sibling package contribute routes plus a
// middleware wrapper, again declared on the consumer side to avoid an
// import cycle.
type RouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
	Middleware() func(http.Handler) http.Handler
}

// SimpleRouteRegistrar can register routes without middleware.
type SimpleRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
}

// Option customizes server construction.
type Option func(*options)

type options struct {
	devMode     bool
	demoMode    bool
	extraRoutes []SimpleRouteRegistrar
}

// WithDevMode enables the Swagger UI at /swagger/.
func WithDevMode() Option {
	return func(o *options) { o.devMode = true }
}

// WithDemoMode makes the API read-only: only GET, HEAD, and OPTIONS pass.
func WithDemoMode() Option {
	return func(o *options) { o.demoMode = true }
}

// WithRoutes registers an additional route registrar (websocket hub, etc).
func WithRoutes(r SimpleRouteRegistrar) Option {
	return func(o *options) { o.extraRoutes = append(o.extraRoutes, r) }
}

// opsPaths are high-frequency operational endpoints kept out of the request
// log and the rate limiter.
var opsPaths = []string{"/healthz", "/readyz", "/metrics"}

// Server is the main DriftScope HTTP server.
type Server struct {
	httpServer *http.Server
	plugins    PluginSource
	logger     *zap.Logger
	mux        *http.ServeMux
	ready      ReadinessChecker
}

// New assembles the full HTTP surface: core endpoints, plugin routes,
// and the middleware chain. A nil auth registrar leaves the API open.
func New(addr string, plugins PluginSource, logger *zap.Logger, ready ReadinessChecker, auth RouteRegistrar, opts ...Option) *Server {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		plugins: plugins,
		logger:  logger,
		mux:     http.NewServeMux(),
		ready:   ready,
	}
	s.mountRoutes(auth, o)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.buildChain(auth, o),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// mountRoutes registers core endpoints, auth and extra registrars, and every
// plugin route under /api/v1/{plugin}/.
func (s *Server) mountRoutes(auth RouteRegistrar, o options) {
	// Probes and metrics sit outside the versioned prefix.
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("GET /readyz", s.handleReadyz)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	// Everything client-facing is versioned.
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/plugins", s.handlePlugins)

	if auth != nil {
		auth.RegisterRoutes(s.mux)
	}
	for _, r := range o.extraRoutes {
		r.RegisterRoutes(s.mux)
	}

	for name, routes := range s.plugins.AllRoutes() {
		for _, rt := range routes {
			pattern := fmt.Sprintf("%s /api/v1/%s%s", rt.Method, name, rt.Path)
			s.mux.HandleFunc(pattern, rt.Handler)
			s.logger.Debug("mounted route",
				zap.String("plugin", name),
				zap.String("pattern", pattern),
			)
		}
	}

	if o.devMode {
		s.mux.Handle("GET /swagger/", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
		s.logger.Info("swagger UI enabled (dev_mode)", zap.String("path", "/swagger/"))
	}
}

// buildChain wraps the mux in the middleware stack, outermost first.
func (s *Server) buildChain(auth RouteRegistrar, o options) http.Handler {
	middlewares := []Middleware{
		RecoveryMiddleware(s.logger),
		RequestIDMiddleware,
		LoggingMiddleware(s.logger, opsPaths),
		SecurityHeadersMiddleware,
		VersionHeaderMiddleware,
		RateLimitMiddleware(100, 200, opsPaths),
	}
	if auth != nil {
		middlewares = append(middlewares, auth.Middleware())
	}
	if o.demoMode {
		middlewares = append(middlewares, DemoMiddleware)
		s.logger.Info("demo mode enabled: API is read-only")
	}
	return Chain(s.mux, middlewares...)
}

// Start blocks on ListenAndServe until shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// statusJSON writes v as a JSON response with the given status code.
func statusJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// handleHealthz is the liveness probe: 200 whenever the process is up.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	statusJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleReadyz is the readiness probe: 503 until the checker passes.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			statusJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
	}
	statusJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// HealthResponse is the GET /api/v1/health body.
type HealthResponse struct {
	Status  string            `json:"status" example:"ok"`
	Service string            `json:"service" example:"driftscope"`
	Version map[string]string `json:"version"`
}

// PluginResponse is one row of the plugin inventory.
type PluginResponse struct {
	Name        string `json:"name" example:"drift"`
	Version     string `json:"version" example:"0.1.0"`
	Description string `json:"description" example:"Baseline tracking and drift detection"`
}

// handleHealth is the versioned health endpoint, including build info.
//
//	@Summary		Health check
//	@Description	Returns service health status with version information.
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	statusJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: "driftscope",
		Version: version.Map(),
	})
}

// handlePlugins lists what the registry loaded at startup.
//
//	@Summary		List plugins
//	@Description	Returns all registered plugins with their metadata.
//	@Tags			system
//	@Produce		json
//	@Success		200	{array}	PluginResponse
//	@Router			/plugins [get]
func (s *Server) handlePlugins(w http.ResponseWriter, _ *http.Request) {
	plugins := s.plugins.All()
	info := make([]PluginResponse, 0, len(plugins))
	for _, p := range plugins {
		pi := p.Info()
		info = append(info, PluginResponse{
			Name:        pi.Name,
			Version:     pi.Version,
			Description: pi.Description,
		})
	}
	statusJSON(w, http.StatusOK, info)
}
