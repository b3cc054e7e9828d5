package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"arena/internal/config"
	"arena/internal/game"

	"github.com/go-chi/chi/v5"
)

// Server is the HTTP API server with WebSocket support.
// It combines the HTTP router with the session hub for real-time play.
type Server struct {
	engine      *game.Engine
	router      *chi.Mux
	hub         *Hub
	rateLimiter *IPRateLimiter
	httpServer  *http.Server
}

// NewServer wires a hub to engine and builds the router. No listener is
// opened until Start is called.
//
// For testing HTTP endpoints without WebSocket support, use NewRouter() directly.
func NewServer(engine *game.Engine, cfg config.ServerConfig, limits config.ResourceLimits) *Server {
	origins := NewOriginPolicy(cfg.AllowedOrigins)
	hub := NewHub(engine, HubConfig{
		MaxConnections:      cfg.MaxConnections,
		MaxConnectionsPerIP: cfg.MaxConnectionsPerIP,
		MessagesPerSecond:   limits.MaxMessagesPerSecond,
		MessageBurst:        limits.MessageBurst,
		Origins:             origins,
	})
	engine.SetBroadcaster(hub)
	engine.SetMetrics(PromMetrics{})

	s := &Server{
		engine:      engine,
		hub:         hub,
		rateLimiter: NewIPRateLimiter(DefaultRateLimitConfig),
	}

	s.router = NewRouter(RouterConfig{
		Engine:      engine,
		Connections: hub,
		RateLimiter: s.rateLimiter,
		CORSOrigins: cfg.AllowedOrigins,
	})

	// The hub needs the session slot checks of its own, not the
	// per-request HTTP limiter, so /ws sits beside the API routes.
	s.router.Get("/ws", hub.HandleWebSocket)

	return s
}

// Start listens on addr and blocks until the server stops. It returns nil
// after a clean Shutdown.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("🌐 API server starting on %s", addr)
	log.Printf("🎮 WebSocket endpoint: ws://localhost%s/ws", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router returns the HTTP handler for use with httptest.
// Use this in integration tests instead of calling Start().
//
//	server := api.NewServer(engine, cfg.Server, cfg.Limits)
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub returns the session hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Shutdown disconnects every session and stops accepting requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	s.rateLimiter.Stop()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
