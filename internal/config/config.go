// Package config provides centralized configuration management.
// Every section has a DefaultX constructor and an XFromEnv variant that
// applies environment overrides on top of the defaults.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP and WebSocket listener settings.
type ServerConfig struct {
	Port                int
	MaxConnections      int      // total concurrent WebSocket sessions
	MaxConnectionsPerIP int      // concurrent WebSocket sessions per client IP
	AllowedOrigins      []string // browser origins accepted for CORS and upgrades
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:                3000,
		MaxConnections:      500,
		MaxConnectionsPerIP: 10,
		AllowedOrigins: []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		},
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
// ALLOWED_ORIGINS is a comma separated list.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if n := getEnvInt("MAX_CONNECTIONS", 0); n > 0 {
		cfg.MaxConnections = n
	}
	if n := getEnvInt("MAX_CONNECTIONS_PER_IP", 0); n > 0 {
		cfg.MaxConnectionsPerIP = n
	}
	if origins := getEnvList("ALLOWED_ORIGINS"); len(origins) > 0 {
		cfg.AllowedOrigins = origins
	}

	return cfg
}

// =============================================================================
// GAME CONFIGURATION
// =============================================================================

// GameConfig holds simulation timing.
type GameConfig struct {
	TickRate     int // ticks per second
	ManualReload time.Duration
	AutoReload   time.Duration
	RespawnDelay time.Duration
	Seed         int64 // 0 picks a random seed at startup
}

// DefaultGame returns the default game configuration.
func DefaultGame() GameConfig {
	return GameConfig{
		TickRate:     60,
		ManualReload: 2000 * time.Millisecond,
		AutoReload:   3000 * time.Millisecond,
		RespawnDelay: 3000 * time.Millisecond,
	}
}

// GameFromEnv returns game configuration with environment variable overrides.
func GameFromEnv() GameConfig {
	cfg := DefaultGame()

	if tps := getEnvInt("TICK_RATE", 0); tps > 0 {
		cfg.TickRate = tps
	}
	if ms := getEnvInt("MANUAL_RELOAD_MS", 0); ms > 0 {
		cfg.ManualReload = time.Duration(ms) * time.Millisecond
	}
	if ms := getEnvInt("AUTO_RELOAD_MS", 0); ms > 0 {
		cfg.AutoReload = time.Duration(ms) * time.Millisecond
	}
	if ms := getEnvInt("RESPAWN_DELAY_MS", 0); ms > 0 {
		cfg.RespawnDelay = time.Duration(ms) * time.Millisecond
	}
	if v := os.Getenv("GAME_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = seed
		}
	}

	return cfg
}

// =============================================================================
// RESOURCE LIMITS
// =============================================================================

// ResourceLimits controls DoS protection and performance limits.
type ResourceLimits struct {
	MaxPlayers           int     // joined players
	MaxBullets           int     // bullets in flight
	MaxMessagesPerSecond float64 // inbound messages per session
	MessageBurst         int
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() ResourceLimits {
	return ResourceLimits{
		MaxPlayers:           256,
		MaxBullets:           2048,
		MaxMessagesPerSecond: 120, // two input updates per tick at 60 TPS
		MessageBurst:         240,
	}
}

// LimitsFromEnv returns resource limits with environment variable overrides.
func LimitsFromEnv() ResourceLimits {
	cfg := DefaultLimits()

	if n := getEnvInt("MAX_PLAYERS", 0); n > 0 {
		cfg.MaxPlayers = n
	}
	if n := getEnvInt("MAX_BULLETS", 0); n > 0 {
		cfg.MaxBullets = n
	}
	if r := getEnvFloat("MAX_MESSAGES_PER_SECOND", 0); r > 0 {
		cfg.MaxMessagesPerSecond = r
	}
	if n := getEnvInt("MESSAGE_BURST", 0); n > 0 {
		cfg.MessageBurst = n
	}

	return cfg
}

// =============================================================================
// OBSERVABILITY
// =============================================================================

// ObservabilityConfig configures the pprof and metrics debug server.
type ObservabilityConfig struct {
	Enabled    bool
	ListenAddr string // keep on loopback in production
}

// DefaultObservability returns safe defaults.
func DefaultObservability() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// ObservabilityFromEnv applies DISABLE_DEBUG_SERVER and DEBUG_ADDR.
func ObservabilityFromEnv() ObservabilityConfig {
	cfg := DefaultObservability()

	if os.Getenv("DISABLE_DEBUG_SERVER") == "true" {
		cfg.Enabled = false
	}
	if addr := os.Getenv("DEBUG_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}

	return cfg
}

// =============================================================================
// EVENT LOG
// =============================================================================

// EventLogConfig controls the JSONL audit trail.
type EventLogConfig struct {
	Path string // empty disables the log
}

// DefaultEventLog returns the default event log configuration.
func DefaultEventLog() EventLogConfig {
	return EventLogConfig{Path: "events.jsonl"}
}

// EventLogFromEnv applies EVENT_LOG_PATH. Setting it to "off" disables
// the log.
func EventLogFromEnv() EventLogConfig {
	cfg := DefaultEventLog()

	if v, ok := os.LookupEnv("EVENT_LOG_PATH"); ok {
		cfg.Path = v
	}
	if cfg.Path == "off" {
		cfg.Path = ""
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Server        ServerConfig
	Game          GameConfig
	Limits        ResourceLimits
	Observability ObservabilityConfig
	EventLog      EventLogConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Server:        ServerFromEnv(),
		Game:          GameFromEnv(),
		Limits:        LimitsFromEnv(),
		Observability: ObservabilityFromEnv(),
		EventLog:      EventLogFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
