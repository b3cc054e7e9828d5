package api

import (
	"arena/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// EngineInterface defines the read-only engine methods the HTTP API uses.
// Keep it minimal so tests can fake it without running a game loop.
type EngineInterface interface {
	// Snapshot returns the latest published world state
	Snapshot() *game.Snapshot
	Stats() game.Stats
	Leaderboard(n int) []game.LeaderboardEntry
	Walls() []game.Wall
	EventLogStats() game.EventLogStats
}

// ConnectionCounter reports live WebSocket sessions.
type ConnectionCounter interface {
	ClientCount() int
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
//
//	router := api.NewRouter(api.RouterConfig{
//	    Engine:          fakeEngine,
//	    RateLimitConfig: &api.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
//	})
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is the game engine (required)
	Engine EngineInterface

	// Connections reports live sessions for /api/stats. Optional.
	Connections ConnectionCounter

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one is created from RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is used only when RateLimiter is nil. If both are
	// nil, DefaultRateLimitConfig applies.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins lists allowed CORS origins. Nil allows localhost only.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware.
	DisableLogging bool
}

type routerHandlers struct {
	engine      EngineInterface
	connections ConnectionCounter
	rateLimiter *IPRateLimiter
}

// NewRouter constructs the HTTP router with all middleware and routes.
// Apart from the rate limiter's cleanup goroutine it has no side effects,
// so it is safe to wrap in httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting before CORS to reject early
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	h := &routerHandlers{
		engine:      cfg.Engine,
		connections: cfg.Connections,
		rateLimiter: rateLimiter,
	}

	r.Get("/health", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)
		r.Get("/leaderboard", h.handleGetLeaderboard)
		r.Get("/walls", h.handleGetWalls)
	})

	return r
}
