package game

import (
	"log"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"arena/internal/config"
	"arena/internal/game/spatial"
)

// Clock supplies the monotonic time used for cooldowns and timers.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Metrics receives engine measurements. The api package provides the
// Prometheus implementation.
type Metrics interface {
	ObserveTick(d time.Duration)
	TickOverrun()
	SetPopulation(players, bullets int)
	ActionRejected(action string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveTick(time.Duration) {}
func (noopMetrics) TickOverrun()              {}
func (noopMetrics) SetPopulation(int, int)    {}
func (noopMetrics) ActionRejected(string)     {}

// EngineConfig tunes a new engine. Zero values select the defaults.
type EngineConfig struct {
	TickRate     int
	ManualReload time.Duration
	AutoReload   time.Duration
	RespawnDelay time.Duration
	Seed         int64 // 0 seeds from the wall clock
	Limits       config.ResourceLimits
	Walls        []Wall // nil selects DefaultWalls
	Clock        Clock
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.TickRate <= 0 {
		c.TickRate = DefaultTickRate
	}
	if c.ManualReload <= 0 {
		c.ManualReload = DefaultManualReload
	}
	if c.AutoReload <= 0 {
		c.AutoReload = DefaultAutoReload
	}
	if c.RespawnDelay <= 0 {
		c.RespawnDelay = DefaultRespawnDelay
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	if c.Limits.MaxPlayers <= 0 {
		c.Limits.MaxPlayers = DefaultMaxPlayers
	}
	if c.Limits.MaxBullets <= 0 {
		c.Limits.MaxBullets = DefaultMaxBullets
	}
	if c.Clock == nil {
		c.Clock = systemClock{}
	}
	return c
}

// Engine runs the authoritative simulation. One mutex serializes the tick,
// every client action and every timer, so no action is ever seen half
// applied. Messages produced while the lock is held are delivered after it
// is released.
type Engine struct {
	mu        sync.Mutex
	cfg       EngineConfig
	world     *World
	cooldowns CooldownManager

	grid    *spatial.SpatialGrid
	origins []Vec2
	due     []timer

	tickCount  uint64
	totalKills int

	outbox      []Message
	outMu       sync.Mutex
	broadcaster Broadcaster
	metrics     Metrics

	latest      atomic.Pointer[Snapshot]
	leaderboard *Leaderboard
	eventLog    *EventLog

	running  bool
	stopChan chan struct{}
	done     chan struct{}
}

// Stats is a summary for the HTTP API.
type Stats struct {
	Tick          uint64 `json:"tick"`
	TickRate      int    `json:"tickRate"`
	Players       int    `json:"players"`
	Alive         int    `json:"alive"`
	Bullets       int    `json:"bullets"`
	TotalKills    int    `json:"totalKills"`
	PendingTimers int    `json:"pendingTimers"`
}

// NewEngine creates a stopped engine with an empty world.
func NewEngine(cfg EngineConfig) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:         cfg,
		world:       NewWorld(cfg.Walls, rand.New(rand.NewSource(cfg.Seed))),
		grid:        spatial.NewSpatialGrid(MapWidth, MapHeight, SlashRange, cfg.Limits.MaxPlayers),
		metrics:     noopMetrics{},
		leaderboard: NewLeaderboard(),
		eventLog:    NewEventLog(),
	}
}

// SetBroadcaster installs the message sink. Call before Start.
func (e *Engine) SetBroadcaster(b Broadcaster) {
	e.mu.Lock()
	e.broadcaster = b
	e.mu.Unlock()
}

// SetMetrics installs a metrics sink. Call before Start.
func (e *Engine) SetMetrics(m Metrics) {
	if m == nil {
		m = noopMetrics{}
	}
	e.mu.Lock()
	e.metrics = m
	e.mu.Unlock()
}

// Start launches the tick loop.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.stopChan = make(chan struct{})
	e.done = make(chan struct{})
	stop, done := e.stopChan, e.done
	e.mu.Unlock()

	go e.run(stop, done)

	log.Printf("🎮 Game engine started at %d TPS", e.cfg.TickRate)
}

// Stop halts the tick loop and waits for it to exit.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.stopChan)
	done := e.done
	e.mu.Unlock()

	<-done
	log.Println("🛑 Game engine stopped")
}

// run ticks at a fixed period. A late tick resets the schedule to now
// instead of queuing the ticks that were missed.
func (e *Engine) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	period := time.Second / time.Duration(e.cfg.TickRate)
	next := time.Now().Add(period)
	t := time.NewTimer(period)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C:
		}

		start := time.Now()
		e.tick()
		e.metrics.ObserveTick(time.Since(start))

		next = next.Add(period)
		now := time.Now()
		wait := next.Sub(now)
		if wait < 0 {
			e.metrics.TickOverrun()
			next = now
			wait = 0
		}
		t.Reset(wait)
	}
}

// tick advances the world one step: due timers, separation, movement,
// bullets, then snapshot publication.
func (e *Engine) tick() {
	e.mu.Lock()
	defer e.unlock()

	now := e.cfg.Clock.Now()
	e.tickCount++

	e.fireTimers(now)

	players := e.world.Players()
	separatePlayers(players)
	e.origins = movePlayers(players, e.world.walls, e.grid, e.origins)
	e.world.bullets = stepBullets(e.world.bullets, players, e.world.walls, func(b *Bullet, victim *Player) {
		e.applyDamage(b.OwnerID, victim, BulletDamage, causeBullet, now)
	})

	snap := e.world.Snapshot(e.tickCount)
	e.latest.Store(snap)
	e.emit(Message{Kind: MessageState, Data: snap})

	e.metrics.SetPopulation(len(players), len(e.world.bullets))
}

// Join creates the player for a session and announces it. A session that
// already joined is renamed instead. ok is false when the arena is full.
func (e *Engine) Join(id, name string) (player PlayerSnapshot, ok bool) {
	if name == "" {
		name = DefaultPlayerName
	}

	e.mu.Lock()
	defer e.unlock()

	if p, exists := e.world.Player(id); exists {
		if p.Name != name {
			p.Name = name
			e.leaderboard.Update(p)
		}
		return p.ToSnapshot(), true
	}

	if e.world.PlayerCount() >= e.cfg.Limits.MaxPlayers {
		e.metrics.ActionRejected("join")
		return PlayerSnapshot{}, false
	}

	p, _ := e.world.CreatePlayer(id, name)
	e.leaderboard.Update(p)
	snap := p.ToSnapshot()

	e.emit(Message{
		Kind: MessageInit,
		To:   id,
		Data: InitData{ID: id, Snapshot: e.world.Snapshot(e.tickCount)},
	})
	e.emit(Message{Kind: MessageNewPlayer, Exclude: id, Data: snap})

	e.eventLog.EmitSimple(EventTypePlayerJoin, e.tickCount, id, PlayerJoinPayload{
		PlayerID:   id,
		PlayerName: name,
		SpawnX:     p.X,
		SpawnY:     p.Y,
	})
	log.Printf("👤 %s joined (%d players)", name, e.world.PlayerCount())
	return snap, true
}

// Leave removes the session's player, if it ever joined.
func (e *Engine) Leave(id string) bool {
	e.mu.Lock()
	defer e.unlock()

	p, ok := e.world.Player(id)
	if !ok {
		return false
	}
	e.world.RemovePlayer(id)
	e.leaderboard.Remove(id)
	e.emit(Message{Kind: MessageRemovePlayer, Data: id})

	e.eventLog.EmitSimple(EventTypePlayerLeave, e.tickCount, id, PlayerLeavePayload{
		PlayerID: id,
		Kills:    p.Kills,
		Deaths:   p.Deaths,
	})
	log.Printf("👋 %s left (%d players)", p.Name, e.world.PlayerCount())
	return true
}

// SetInput records held keys and aim. Ignored while the player is dead; a
// non-finite angle keeps the previous aim.
func (e *Engine) SetInput(id string, in Input, angle float64) bool {
	e.mu.Lock()
	defer e.unlock()

	p, ok := e.world.Player(id)
	if !ok || p.Dead {
		return false
	}
	p.Input = in
	if !math.IsNaN(angle) && !math.IsInf(angle, 0) {
		p.Angle = angle
	}
	return true
}

// Shoot fires a bullet. It returns false when the action was refused.
func (e *Engine) Shoot(id string) bool { return e.act("shoot", id, e.shoot) }

// Dash starts a dash.
func (e *Engine) Dash(id string) bool { return e.act("dash", id, e.dash) }

// Reload starts a manual reload.
func (e *Engine) Reload(id string) bool { return e.act("reload", id, e.reload) }

// Slash performs a melee attack.
func (e *Engine) Slash(id string) bool { return e.act("slash", id, e.slash) }

func (e *Engine) act(action, id string, fn func(*Player, time.Time) bool) bool {
	e.mu.Lock()
	defer e.unlock()

	p, ok := e.world.Player(id)
	if !ok {
		return false
	}
	if !fn(p, e.cfg.Clock.Now()) {
		e.metrics.ActionRejected(action)
		return false
	}
	return true
}

// Snapshot returns the most recently published world state. Before the
// first tick it builds one on demand.
func (e *Engine) Snapshot() *Snapshot {
	if s := e.latest.Load(); s != nil {
		return s
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world.Snapshot(e.tickCount)
}

// Stats summarizes the live world.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	alive := 0
	for _, p := range e.world.Players() {
		if !p.Dead {
			alive++
		}
	}
	return Stats{
		Tick:          e.tickCount,
		TickRate:      e.cfg.TickRate,
		Players:       e.world.PlayerCount(),
		Alive:         alive,
		Bullets:       e.world.BulletCount(),
		TotalKills:    e.totalKills,
		PendingTimers: e.cooldowns.Len(),
	}
}

// Leaderboard returns the top n connected players.
func (e *Engine) Leaderboard(n int) []LeaderboardEntry {
	return e.leaderboard.Top(n)
}

// Walls returns the fixed wall layout.
func (e *Engine) Walls() []Wall {
	return e.world.Walls()
}

// StartEventLog begins writing the audit log to path.
func (e *Engine) StartEventLog(path string) error {
	return e.eventLog.Start(path)
}

// StopEventLog flushes and closes the audit log.
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// EventLogStats reports audit log counters.
func (e *Engine) EventLogStats() EventLogStats {
	return e.eventLog.Stats()
}
