package game

import (
	"math"
	"time"
)

// Input is the set of movement keys a client reports as held.
type Input struct {
	Up    bool `json:"up"`
	Down  bool `json:"down"`
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// Player is one connected participant. All fields are owned by the World
// and only touched while the engine lock is held.
type Player struct {
	ID    string
	Name  string
	X, Y  float64
	Angle float64 // radians, client supplied

	Health int
	Ammo   int

	Reloading  bool
	Dead       bool
	Respawning bool
	Dashing    bool

	Input Input

	Kills  int
	Deaths int

	// Zero means "never"; compared against the engine clock.
	lastDash  time.Time
	lastSlash time.Time
	respawnAt time.Time

	dashGen   uint64
	reloadGen uint64
}

func newPlayer(id, name string, pos Vec2) *Player {
	return &Player{
		ID:     id,
		Name:   name,
		X:      pos.X,
		Y:      pos.Y,
		Health: MaxHealth,
		Ammo:   MaxAmmo,
	}
}

// Alive reports whether the player takes part in movement and combat.
func (p *Player) Alive() bool {
	return !p.Dead
}

// TakeDamage subtracts amount from health, clamping at zero. It returns true
// only on the hit that kills the player; hits on a dead player are ignored.
func (p *Player) TakeDamage(amount int) bool {
	if p.Dead {
		return false
	}
	p.Health -= amount
	if p.Health > 0 {
		return false
	}
	p.Health = 0
	p.Dead = true
	p.Deaths++
	return true
}

func (p *Player) setAmmo(n int) {
	p.Ammo = max(0, min(n, MaxAmmo))
}

// respawn restores a dead player at pos. Input and counters survive.
func (p *Player) respawn(pos Vec2) {
	p.X = pos.X
	p.Y = pos.Y
	p.Health = MaxHealth
	p.Ammo = MaxAmmo
	p.Reloading = false
	p.Dead = false
	p.Respawning = false
	p.respawnAt = time.Time{}
}

// moveDirection returns the normalized input vector, or ok=false when the
// held keys cancel out.
func (p *Player) moveDirection() (dx, dy float64, ok bool) {
	if p.Input.Up {
		dy--
	}
	if p.Input.Down {
		dy++
	}
	if p.Input.Left {
		dx--
	}
	if p.Input.Right {
		dx++
	}
	if dx == 0 && dy == 0 {
		return 0, 0, false
	}
	l := math.Hypot(dx, dy)
	return dx / l, dy / l, true
}

func (p *Player) speed() float64 {
	if p.Dashing {
		return DashSpeed
	}
	return BaseSpeed
}

// ToSnapshot copies the client-visible fields.
func (p *Player) ToSnapshot() PlayerSnapshot {
	return PlayerSnapshot{
		ID:         p.ID,
		Name:       p.Name,
		X:          p.X,
		Y:          p.Y,
		Angle:      p.Angle,
		Health:     p.Health,
		Ammo:       p.Ammo,
		Reloading:  p.Reloading,
		Dead:       p.Dead,
		Respawning: p.Respawning,
		Dashing:    p.Dashing,
		Kills:      p.Kills,
		Deaths:     p.Deaths,
		Input:      p.Input,
	}
}
