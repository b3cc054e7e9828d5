package game

import (
	"fmt"
	"testing"
	"time"

	"arena/internal/config"
)

// =============================================================================
// BENCHMARK SUITE: CRITICAL PATH PERFORMANCE TESTS
// Run with: go test -bench=. -benchmem ./internal/game/...
// =============================================================================

// -----------------------------------------------------------------------------
// ENGINE TICK BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkEngineTick_10Players(b *testing.B)  { benchmarkEngineTick(b, 10) }
func BenchmarkEngineTick_50Players(b *testing.B)  { benchmarkEngineTick(b, 50) }
func BenchmarkEngineTick_100Players(b *testing.B) { benchmarkEngineTick(b, 100) }
func BenchmarkEngineTick_200Players(b *testing.B) { benchmarkEngineTick(b, 200) }

func benchmarkEngineTick(b *testing.B, playerCount int) {
	clock := &manualClock{now: time.Unix(0, 0)}
	engine := NewEngine(EngineConfig{
		Seed:   1,
		Limits: config.DefaultLimits(),
		Clock:  clock,
	})

	inputs := []Input{{Up: true}, {Down: true}, {Left: true}, {Right: true}, {Up: true, Right: true}}
	for i := 0; i < playerCount; i++ {
		id := fmt.Sprintf("Player%d", i)
		engine.Join(id, id)
		engine.SetInput(id, inputs[i%len(inputs)], float64(i))
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if i%10 == 0 {
			engine.Shoot(fmt.Sprintf("Player%d", i%playerCount))
		}
		clock.Advance(time.Second / DefaultTickRate)
		engine.tick()
	}
}

// -----------------------------------------------------------------------------
// SNAPSHOT GENERATION BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkSnapshot_10Players(b *testing.B)  { benchmarkSnapshot(b, 10) }
func BenchmarkSnapshot_100Players(b *testing.B) { benchmarkSnapshot(b, 100) }

func benchmarkSnapshot(b *testing.B, playerCount int) {
	w := NewWorld(nil, nil)
	for i := 0; i < playerCount; i++ {
		p, _ := w.CreatePlayer(fmt.Sprintf("Player%d", i), "")
		w.spawnBullet(p)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = w.Snapshot(uint64(i))
	}
}

// -----------------------------------------------------------------------------
// COLLISION BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkMovePlayers_200(b *testing.B) {
	w := NewWorld(nil, nil)
	for i := 0; i < 200; i++ {
		p, _ := w.CreatePlayer(fmt.Sprintf("Player%d", i), "")
		p.Input = Input{Right: i%2 == 0, Down: i%3 == 0}
	}
	grid := newGrid()
	var origins []Vec2

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		origins = movePlayers(w.Players(), w.Walls(), grid, origins)
	}
}
