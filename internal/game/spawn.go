package game

import "math/rand"

// SafeSpawn picks a spawn point for a new or respawning player.
func (w *World) SafeSpawn() Vec2 {
	return SafeSpawn(w.walls, w.rng)
}

// SafeSpawn samples points uniformly inside the map, inset by SpawnMargin,
// until one is found whose player box overlaps no wall. After
// MaxSpawnAttempts misses it returns DefaultSpawn.
func SafeSpawn(walls []Wall, rng *rand.Rand) Vec2 {
	spanX := MapWidth - 2*SpawnMargin
	spanY := MapHeight - 2*SpawnMargin
	for range MaxSpawnAttempts {
		x := SpawnMargin + rng.Float64()*spanX
		y := SpawnMargin + rng.Float64()*spanY
		if !BlockedByWalls(walls, x, y) {
			return Vec2{X: x, Y: y}
		}
	}
	return DefaultSpawn
}
