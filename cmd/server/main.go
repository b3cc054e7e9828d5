package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"arena/internal/api"
	"arena/internal/config"
	"arena/internal/game"

	"github.com/joho/godotenv"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("🎮 ================================")
	log.Println("🎮  ARENA - GO ENGINE")
	log.Println("🎮 ================================")

	appConfig := config.Load()
	gameCfg := appConfig.Game
	limits := appConfig.Limits

	engine := game.NewEngine(game.EngineConfig{
		TickRate:     gameCfg.TickRate,
		ManualReload: gameCfg.ManualReload,
		AutoReload:   gameCfg.AutoReload,
		RespawnDelay: gameCfg.RespawnDelay,
		Seed:         gameCfg.Seed,
		Limits:       limits,
	})
	log.Printf("🎮 Config: %d TPS, reload %v/%v, respawn %v",
		gameCfg.TickRate, gameCfg.ManualReload, gameCfg.AutoReload, gameCfg.RespawnDelay)
	log.Printf("🛡️ Resource limits: %d players, %d bullets, %.0f msg/s per client",
		limits.MaxPlayers, limits.MaxBullets, limits.MaxMessagesPerSecond)

	if path := appConfig.EventLog.Path; path != "" {
		if err := engine.StartEventLog(path); err != nil {
			log.Printf("⚠️ Event log disabled: %v", err)
		} else {
			log.Printf("📝 Event log: %s", path)
		}
	}

	debugServer := api.StartDebugServer(appConfig.Observability)

	server := api.NewServer(engine, appConfig.Server, limits)

	engine.Start()
	log.Println("✅ Game Engine started")

	go func() {
		addr := ":" + strconv.Itoa(appConfig.Server.Port)
		if err := server.Start(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️ API server shutdown: %v", err)
	}
	engine.Stop()
	engine.StopEventLog()
	if debugServer != nil {
		if err := debugServer.Shutdown(ctx); err != nil {
			log.Printf("⚠️ Debug server shutdown: %v", err)
		}
	}
	log.Println("👋 Goodbye!")
}
