package api

import (
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"arena/internal/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality (no per-player labels)
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "game_tick_duration_seconds",
		Help:    "Time spent in game tick",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.0167, 0.033},
	})

	tickOverruns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_tick_overruns_total",
		Help: "Ticks that finished after the next deadline",
	})

	playerCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_player_count",
		Help: "Current number of joined players",
	})

	bulletCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_bullet_count",
		Help: "Bullets currently in flight",
	})

	actionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "game_actions_rejected_total",
		Help: "Client actions refused by game rules",
	}, []string{"action"}) // Bounded: "join", "shoot", "dash", "reload", "slash"

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // Bounded: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit"

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_sent_total",
		Help: "Frames queued to WebSocket clients",
	})

	wsMessagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_received_total",
		Help: "Frames read from WebSocket clients",
	})

	wsMessagesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "websocket_messages_dropped_total",
		Help: "Frames discarded before reaching the game or the client",
	}, []string{"reason"}) // Bounded: "rate_limit", "malformed", "slow_client"
)

// PromMetrics feeds engine measurements into the Prometheus collectors.
type PromMetrics struct{}

func (PromMetrics) ObserveTick(d time.Duration) {
	tickDuration.Observe(d.Seconds())
}

func (PromMetrics) TickOverrun() {
	tickOverruns.Inc()
}

func (PromMetrics) SetPopulation(players, bullets int) {
	playerCount.Set(float64(players))
	bulletCount.Set(float64(bullets))
}

func (PromMetrics) ActionRejected(action string) {
	actionsRejected.WithLabelValues(action).Inc()
}

// StartDebugServer starts the pprof and metrics server in the background
// and returns it so the caller can shut it down. It returns nil when
// disabled. Non-loopback addresses are rewritten to 127.0.0.1 unless
// ALLOW_DEBUG_EXTERNAL=true.
func StartDebugServer(cfg config.ObservabilityConfig) *http.Server {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}

	addr := cfg.ListenAddr
	if !isLoopback(addr) && os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
		_, port, err := net.SplitHostPort(addr)
		if err != nil {
			port = "6060"
		}
		addr = net.JoinHostPort("127.0.0.1", port)
		log.Println("⚠️ Debug server forced to localhost for security")
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("📊 Debug server starting on %s", addr)
		log.Printf("   - pprof:   http://%s/debug/pprof/", addr)
		log.Printf("   - metrics: http://%s/metrics", addr)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("⚠️ Debug server error: %v", err)
		}
	}()

	return srv
}

func isLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// RecordConnectionRejected increments the rejection counter.
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// UpdateWSConnections updates WebSocket connection count
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

func recordWSSent()                 { wsMessagesSent.Inc() }
func recordWSReceived()             { wsMessagesReceived.Inc() }
func recordWSDropped(reason string) { wsMessagesDropped.WithLabelValues(reason).Inc() }
