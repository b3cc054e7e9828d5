package config

import (
	"reflect"
	"testing"
	"time"
)

func TestDefaultsMatchGameRules(t *testing.T) {
	g := DefaultGame()
	if g.TickRate != 60 {
		t.Errorf("TickRate = %d, want 60", g.TickRate)
	}
	if g.ManualReload != 2*time.Second || g.AutoReload != 3*time.Second {
		t.Errorf("reload durations = %v/%v, want 2s/3s", g.ManualReload, g.AutoReload)
	}
	if g.RespawnDelay != 3*time.Second {
		t.Errorf("RespawnDelay = %v, want 3s", g.RespawnDelay)
	}

	if o := DefaultObservability(); o.ListenAddr != "127.0.0.1:6060" || !o.Enabled {
		t.Errorf("unexpected observability defaults: %+v", o)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("MAX_CONNECTIONS_PER_IP", "3")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("TICK_RATE", "30")
	t.Setenv("AUTO_RELOAD_MS", "2500")
	t.Setenv("GAME_SEED", "-7")
	t.Setenv("MAX_BULLETS", "10")
	t.Setenv("DISABLE_DEBUG_SERVER", "true")
	t.Setenv("EVENT_LOG_PATH", "off")

	cfg := Load()

	if cfg.Server.Port != 8080 || cfg.Server.MaxConnectionsPerIP != 3 {
		t.Errorf("server overrides not applied: %+v", cfg.Server)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.Server.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.Server.AllowedOrigins, want)
	}
	if cfg.Game.TickRate != 30 || cfg.Game.AutoReload != 2500*time.Millisecond || cfg.Game.Seed != -7 {
		t.Errorf("game overrides not applied: %+v", cfg.Game)
	}
	if cfg.Game.ManualReload != 2*time.Second {
		t.Errorf("ManualReload changed without override: %v", cfg.Game.ManualReload)
	}
	if cfg.Limits.MaxBullets != 10 || cfg.Limits.MaxPlayers != 256 {
		t.Errorf("limit overrides not applied: %+v", cfg.Limits)
	}
	if cfg.Observability.Enabled {
		t.Error("debug server should be disabled")
	}
	if cfg.EventLog.Path != "" {
		t.Errorf("EventLog.Path = %q, want empty", cfg.EventLog.Path)
	}
}

func TestInvalidEnvFallsBack(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"non numeric", "TICK_RATE", "fast"},
		{"negative", "TICK_RATE", "-5"},
		{"zero", "TICK_RATE", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if got := GameFromEnv().TickRate; got != 60 {
				t.Errorf("TickRate = %d, want default 60", got)
			}
		})
	}
}
