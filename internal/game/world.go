package game

import (
	"math/rand"
)

// World owns every player, bullet and wall. It is not safe for concurrent
// use; the Engine serializes all access behind its lock.
type World struct {
	walls   []Wall
	players map[string]*Player
	order   []*Player // registration order, drives every per-tick loop

	bullets      []*Bullet
	nextBulletID uint64

	rng *rand.Rand
}

// NewWorld creates an empty world with the given layout. A nil layout
// selects DefaultWalls.
func NewWorld(walls []Wall, rng *rand.Rand) *World {
	if walls == nil {
		walls = DefaultWalls()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &World{
		walls:   walls,
		players: make(map[string]*Player),
		rng:     rng,
	}
}

// CreatePlayer registers a player at a safe spawn point. If id is already
// present the existing player is returned unchanged with created=false.
func (w *World) CreatePlayer(id, name string) (p *Player, created bool) {
	if existing, ok := w.players[id]; ok {
		return existing, false
	}
	p = newPlayer(id, name, w.SafeSpawn())
	w.players[id] = p
	w.order = append(w.order, p)
	return p, true
}

// RemovePlayer drops a player. Bullets the player fired stay in flight.
func (w *World) RemovePlayer(id string) bool {
	p, ok := w.players[id]
	if !ok {
		return false
	}
	delete(w.players, id)
	n := 0
	for _, q := range w.order {
		if q != p {
			w.order[n] = q
			n++
		}
	}
	w.order[n] = nil
	w.order = w.order[:n]
	return true
}

// Player returns the player with the given id.
func (w *World) Player(id string) (*Player, bool) {
	p, ok := w.players[id]
	return p, ok
}

// Players returns players in registration order. The slice is owned by the
// world and must not be retained across calls that add or remove players.
func (w *World) Players() []*Player {
	return w.order
}

// Bullets returns live bullets in creation order.
func (w *World) Bullets() []*Bullet {
	return w.bullets
}

// Walls returns the read-only wall layout.
func (w *World) Walls() []Wall {
	return w.walls
}

func (w *World) PlayerCount() int { return len(w.order) }
func (w *World) BulletCount() int { return len(w.bullets) }

// spawnBullet appends a bullet at the shooter's position and heading.
func (w *World) spawnBullet(owner *Player) *Bullet {
	b := &Bullet{
		ID:      w.nextBulletID,
		X:       owner.X,
		Y:       owner.Y,
		Angle:   owner.Angle,
		OwnerID: owner.ID,
	}
	w.nextBulletID++
	w.bullets = append(w.bullets, b)
	return b
}

// Snapshot deep-copies the world for publication outside the lock.
func (w *World) Snapshot(tick uint64) *Snapshot {
	s := &Snapshot{
		Tick:    tick,
		Players: make([]PlayerSnapshot, len(w.order)),
		Bullets: make([]BulletSnapshot, len(w.bullets)),
		Walls:   w.walls,
	}
	for i, p := range w.order {
		s.Players[i] = p.ToSnapshot()
	}
	for i, b := range w.bullets {
		s.Bullets[i] = b.ToSnapshot()
	}
	return s
}
