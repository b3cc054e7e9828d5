package game

import "math"

// Bullet is a straight-line projectile. It lives until it enters a wall,
// hits a live player other than its owner, or leaves the map.
type Bullet struct {
	ID      uint64
	X, Y    float64
	Angle   float64
	OwnerID string
}

// next returns where the bullet will be after one tick.
func (b *Bullet) next() (float64, float64) {
	return b.X + math.Cos(b.Angle)*BulletSpeed, b.Y + math.Sin(b.Angle)*BulletSpeed
}

// ToSnapshot copies the client-visible fields.
func (b *Bullet) ToSnapshot() BulletSnapshot {
	return BulletSnapshot{
		ID:    b.ID,
		X:     b.X,
		Y:     b.Y,
		Angle: b.Angle,
		Owner: b.OwnerID,
	}
}
