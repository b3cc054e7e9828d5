package game

import "time"

// Arena geometry. Units are world pixels.
const (
	MapWidth  = 2000.0
	MapHeight = 1200.0

	// BorderThickness is the depth of the four walls enclosing the map.
	BorderThickness = 30.0
)

// Movement and collision.
const (
	PlayerRadius = 20.0

	// MinPlayerDistance is the center distance two live players settle at.
	MinPlayerDistance = PlayerRadius * 2

	BaseSpeed = 4.0 // per tick
	DashSpeed = 8.0 // per tick while dashing
)

// Combat.
const (
	MaxHealth = 100
	MaxAmmo   = 15

	BulletSpeed     = 10.0 // per tick
	BulletDamage    = 10
	BulletHitRadius = 20.0

	SlashRange  = 50.0
	SlashDamage = 50
)

// Cooldowns, measured on the engine clock.
const (
	DashDuration  = 400 * time.Millisecond
	DashCooldown  = 1000 * time.Millisecond
	SlashCooldown = 1500 * time.Millisecond

	DefaultManualReload = 2000 * time.Millisecond
	DefaultAutoReload   = 3000 * time.Millisecond
	DefaultRespawnDelay = 3000 * time.Millisecond
)

// Spawning.
const (
	SpawnMargin      = 100.0
	MaxSpawnAttempts = 1000
)

// DefaultSpawn is used when rejection sampling gives up. It sits in the
// top-left pocket of the default layout, clear of every wall.
var DefaultSpawn = Vec2{X: 100, Y: 100}

// Scheduler and resource defaults.
const (
	DefaultTickRate   = 60
	DefaultMaxPlayers = 256
	DefaultMaxBullets = 2048

	// DefaultPlayerName is given to players who join without a usable name.
	DefaultPlayerName = "Anonymous"
)
