package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/pushdeploy/pkg/domain/interfaces"
	"github.com/m-mizutani/pushdeploy/pkg/metrics"
)

// DefaultMaxBodyBytes matches the payload cap GitHub applies to webhooks
const DefaultMaxBodyBytes = 25 << 20

// config holds internal HTTP server configuration
type config struct {
	addr         string
	maxBodyBytes int64
	deployUC     interfaces.DeployUseCase
	dashboardUC  interfaces.DashboardUseCase
	metrics      *metrics.Registry
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithMaxBodyBytes limits request bodies
func WithMaxBodyBytes(n int64) Option {
	return func(c *config) {
		c.maxBodyBytes = n
	}
}

// WithDeployUseCase enables the manual trigger endpoint
func WithDeployUseCase(uc interfaces.DeployUseCase) Option {
	return func(c *config) {
		c.deployUC = uc
	}
}

// WithDashboardUseCase enables the dashboard API
func WithDashboardUseCase(uc interfaces.DashboardUseCase) Option {
	return func(c *config) {
		c.dashboardUC = uc
	}
}

// WithMetrics exposes the registry on /metrics
func WithMetrics(m *metrics.Registry) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	webhookUC interfaces.WebhookUseCase,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr:         "localhost:8800",
		maxBodyBytes: DefaultMaxBodyBytes,
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)
	if cfg.maxBodyBytes > 0 {
		router.Use(middleware.RequestSize(cfg.maxBodyBytes))
	}

	// Health check
	router.Get("/health", handleHealth)

	// Webhook endpoint
	webhookHandler := NewWebhookHandler(webhookUC)
	router.Post("/webhook", webhookHandler.Handle)

	if cfg.deployUC != nil {
		manualHandler := NewManualHandler(cfg.deployUC)
		router.Post("/test", manualHandler.Handle)
	}

	if cfg.dashboardUC != nil {
		dashboardHandler := NewDashboardHandler(cfg.dashboardUC)
		router.Route("/api", func(r chi.Router) {
			r.Get("/dashboard", dashboardHandler.Summary)
			r.Get("/logs", dashboardHandler.Logs)
		})
	}

	if cfg.metrics != nil {
		router.Handle("/metrics", cfg.metrics.Handler())
	}

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
