package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/capitalize-ai/trip-concierge/internal/middleware"
	"github.com/capitalize-ai/trip-concierge/pkg/logger"
)

// RouterConfig holds the handlers and limits the router is built from.
type RouterConfig struct {
	Chat      *ChatHandler
	WebSocket *WebSocketHandler
	Health    *HealthHandler

	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	MaxBodyBytes      int64
}

// NewRouter wires middleware and routes.
func NewRouter(cfg RouterConfig, log *logger.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/health", cfg.Health.Health)
	r.Get("/ready", cfg.Health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	if cfg.WebSocket != nil {
		r.Get("/ws", cfg.WebSocket.Serve)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitRequests > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
		}
		if cfg.MaxBodyBytes > 0 {
			r.Use(middleware.LimitBody(cfg.MaxBodyBytes))
		}
		r.Use(middleware.RequireJSON)

		r.Get("/languages", cfg.Chat.Languages)

		r.Post("/chat", cfg.Chat.Chat)
		r.Post("/chat/stream", cfg.Chat.ChatStream)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", cfg.Chat.Session)
			r.Post("/reset", cfg.Chat.Reset)
			r.Get("/journal", cfg.Chat.Journal)
		})
	})

	return r
}
