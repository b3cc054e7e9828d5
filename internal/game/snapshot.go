package game

// PlayerSnapshot is an immutable copy of player state for serialization.
// Value types only, so a snapshot stays valid after the world moves on.
type PlayerSnapshot struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Angle      float64 `json:"angle"`
	Health     int     `json:"health"`
	Ammo       int     `json:"ammo"`
	Reloading  bool    `json:"reloading"`
	Dead       bool    `json:"dead"`
	Respawning bool    `json:"respawning"`
	Dashing    bool    `json:"dashing"`
	Kills      int     `json:"kills"`
	Deaths     int     `json:"deaths"`
	Input      Input   `json:"input"`
}

// BulletSnapshot is an immutable copy of a bullet.
type BulletSnapshot struct {
	ID    uint64  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
	Owner string  `json:"owner"`
}

// Snapshot is the full world state at the end of a tick. Players are in
// registration order. Walls shares the world's read-only slice.
type Snapshot struct {
	Tick    uint64
	Players []PlayerSnapshot
	Bullets []BulletSnapshot
	Walls   []Wall
}

// Player looks up a player by id.
func (s *Snapshot) Player(id string) (PlayerSnapshot, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerSnapshot{}, false
}
