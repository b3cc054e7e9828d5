package game

import (
	"math"

	"arena/internal/game/spatial"
)

// separatePlayers pushes apart every pair of live players closer than
// MinPlayerDistance, each moving half the overlap along the line between
// them. Pairs are visited once, in registration order, so later pairs see
// earlier adjustments. Coincident players have no normal and are skipped.
// It returns the number of pairs adjusted.
func separatePlayers(players []*Player) int {
	adjusted := 0
	for i, a := range players {
		if a.Dead {
			continue
		}
		for _, b := range players[i+1:] {
			if b.Dead {
				continue
			}
			dx := b.X - a.X
			dy := b.Y - a.Y
			d := math.Hypot(dx, dy)
			if d <= 0 || d >= MinPlayerDistance {
				continue
			}
			push := (MinPlayerDistance - d) / 2
			nx, ny := dx/d, dy/d
			a.X -= nx * push
			a.Y -= ny * push
			b.X += nx * push
			b.Y += ny * push
			adjusted++
		}
	}
	return adjusted
}

// movePlayers applies one tick of input-driven movement. A candidate
// position is rejected outright if it overlaps a wall or comes within
// MinPlayerDistance of another live player as positioned when the step
// began. Rejection never slides along the obstacle.
//
// grid is rebuilt here; origins is scratch space for the start-of-step
// positions and is returned for reuse.
func movePlayers(players []*Player, walls []Wall, grid *spatial.SpatialGrid, origins []Vec2) []Vec2 {
	grid.Clear()
	origins = origins[:0]
	for i, p := range players {
		origins = append(origins, Vec2{X: p.X, Y: p.Y})
		if !p.Dead {
			grid.Insert(uint32(i), p.X, p.Y)
		}
	}

	for i, p := range players {
		if p.Dead {
			continue
		}
		dx, dy, ok := p.moveDirection()
		if !ok {
			continue
		}
		s := p.speed()
		nx, ny := p.X+dx*s, p.Y+dy*s
		if BlockedByWalls(walls, nx, ny) {
			continue
		}
		if crowded(i, nx, ny, origins, grid) {
			continue
		}
		p.X, p.Y = nx, ny
	}
	return origins
}

func crowded(self int, x, y float64, origins []Vec2, grid *spatial.SpatialGrid) bool {
	for _, idx := range grid.QueryRadius(x, y, MinPlayerDistance) {
		if int(idx) == self {
			continue
		}
		o := origins[idx]
		if distance(x, y, o.X, o.Y) < MinPlayerDistance {
			return true
		}
	}
	return false
}

// stepBullets advances every bullet one tick and filters the slice in
// place. A bullet whose next position is inside a wall disappears without
// moving. Otherwise it moves, and the first live non-owner player in
// registration order within BulletHitRadius is passed to hit and the
// bullet is consumed. Bullets that leave the map are dropped.
func stepBullets(bullets []*Bullet, players []*Player, walls []Wall, hit func(b *Bullet, victim *Player)) []*Bullet {
	n := 0
	for _, b := range bullets {
		nx, ny := b.next()
		if PointInWalls(walls, nx, ny) {
			continue
		}
		b.X, b.Y = nx, ny
		if !insideMap(nx, ny) {
			continue
		}
		if victim := bulletVictim(b, players); victim != nil {
			hit(b, victim)
			continue
		}
		bullets[n] = b
		n++
	}
	clear(bullets[n:])
	return bullets[:n]
}

func bulletVictim(b *Bullet, players []*Player) *Player {
	for _, p := range players {
		if p.Dead || p.ID == b.OwnerID {
			continue
		}
		if distance(b.X, b.Y, p.X, p.Y) < BulletHitRadius {
			return p
		}
	}
	return nil
}
