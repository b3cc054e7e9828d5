package game

import (
	"math/rand"
	"testing"

	"pgregory.net/rapid"
)

func TestCreatePlayerIsIdempotent(t *testing.T) {
	w := NewWorld(nil, rand.New(rand.NewSource(7)))

	p, created := w.CreatePlayer("a", "alice")
	if !created {
		t.Fatal("first create reported existing")
	}
	p.Kills = 3

	again, created := w.CreatePlayer("a", "other")
	if created || again != p {
		t.Fatal("second create replaced the player")
	}
	if again.Name != "alice" || again.Kills != 3 {
		t.Errorf("existing player modified: %+v", again.ToSnapshot())
	}
	if w.PlayerCount() != 1 {
		t.Errorf("PlayerCount = %d", w.PlayerCount())
	}
}

func TestRemovePlayerKeepsOrderAndBullets(t *testing.T) {
	w := NewWorld([]Wall{}, rand.New(rand.NewSource(7)))
	a, _ := w.CreatePlayer("a", "a")
	w.CreatePlayer("b", "b")
	w.CreatePlayer("c", "c")
	w.spawnBullet(a)

	if !w.RemovePlayer("a") {
		t.Fatal("RemovePlayer returned false")
	}
	if w.RemovePlayer("a") {
		t.Error("removing twice returned true")
	}

	players := w.Players()
	if len(players) != 2 || players[0].ID != "b" || players[1].ID != "c" {
		t.Errorf("order after removal = %v", players)
	}
	if w.BulletCount() != 1 || w.Bullets()[0].OwnerID != "a" {
		t.Error("bullets of a departed player should stay in flight")
	}
}

func TestBulletIDsIncrease(t *testing.T) {
	w := NewWorld([]Wall{}, nil)
	p, _ := w.CreatePlayer("a", "a")
	for want := range uint64(3) {
		if b := w.spawnBullet(p); b.ID != want {
			t.Errorf("bullet id = %d, want %d", b.ID, want)
		}
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	w := NewWorld(nil, rand.New(rand.NewSource(7)))
	p, _ := w.CreatePlayer("a", "a")
	w.spawnBullet(p)

	snap := w.Snapshot(9)
	p.Health = 1
	p.X += 100
	w.bullets[0].X += 100

	got, ok := snap.Player("a")
	if !ok {
		t.Fatal("player missing from snapshot")
	}
	if got.Health != MaxHealth || got.X == p.X {
		t.Errorf("snapshot aliased live player: %+v", got)
	}
	if snap.Bullets[0].X == w.bullets[0].X {
		t.Error("snapshot aliased live bullet")
	}
	if snap.Tick != 9 || len(snap.Walls) != len(DefaultWalls()) {
		t.Errorf("tick=%d walls=%d", snap.Tick, len(snap.Walls))
	}
}

func TestSafeSpawnAvoidsWalls(t *testing.T) {
	walls := DefaultWalls()
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		pos := SafeSpawn(walls, rand.New(rand.NewSource(seed)))

		if BlockedByWalls(walls, pos.X, pos.Y) {
			t.Fatalf("spawn %+v overlaps a wall", pos)
		}
		if pos != DefaultSpawn {
			if pos.X < SpawnMargin || pos.X > MapWidth-SpawnMargin ||
				pos.Y < SpawnMargin || pos.Y > MapHeight-SpawnMargin {
				t.Fatalf("spawn %+v outside the margin", pos)
			}
		}
	})
}

func TestSafeSpawnFallsBack(t *testing.T) {
	cover := []Wall{{X: 0, Y: 0, Width: MapWidth, Height: MapHeight}}
	if got := SafeSpawn(cover, rand.New(rand.NewSource(1))); got != DefaultSpawn {
		t.Errorf("SafeSpawn = %+v, want %+v", got, DefaultSpawn)
	}
}

func TestDefaultSpawnIsClear(t *testing.T) {
	if BlockedByWalls(DefaultWalls(), DefaultSpawn.X, DefaultSpawn.Y) {
		t.Error("DefaultSpawn overlaps the default layout")
	}
}

func TestWallEdgesDoNotCount(t *testing.T) {
	w := Wall{X: 100, Y: 100, Width: 50, Height: 50}

	tests := []struct {
		name        string
		x, y        float64
		point, body bool
	}{
		{"inside", 125, 125, true, true},
		{"on the edge", 100, 125, false, true},
		{"box touching", 80, 125, false, false},
		{"box overlapping", 81, 125, false, true},
		{"far away", 500, 500, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.ContainsPoint(tt.x, tt.y); got != tt.point {
				t.Errorf("ContainsPoint = %v, want %v", got, tt.point)
			}
			if got := w.OverlapsBox(tt.x, tt.y, PlayerRadius); got != tt.body {
				t.Errorf("OverlapsBox = %v, want %v", got, tt.body)
			}
		})
	}
}
