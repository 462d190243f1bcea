package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/gakoci/pkg/domain/interfaces"
)

// config holds internal HTTP server configuration
type config struct {
	addr          string
	webhookSecret string
	adminToken    string
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithWebhookSecret enables signature verification with the given secret
func WithWebhookSecret(secret string) Option {
	return func(c *config) {
		c.webhookSecret = secret
	}
}

// WithAdminToken enables the shutdown endpoint, guarded by the given bearer token
func WithAdminToken(token string) Option {
	return func(c *config) {
		c.adminToken = token
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	deliveryUC interfaces.DeliveryUseCase,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr: "localhost:8080",
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

	// Health check
	router.Get("/health", handleHealth(deliveryUC))

	// Webhook endpoint
	webhookHandler := NewWebhookHandler(cfg.webhookSecret, deliveryUC)
	router.Post("/hooks/github", webhookHandler.Handle)

	admin := NewAdminHandler(cfg.adminToken, deliveryUC)
	router.Get("/deliveries", admin.HandleDeliveries)
	if cfg.adminToken != "" {
		router.Post("/admin/shutdown", admin.HandleShutdown)
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
