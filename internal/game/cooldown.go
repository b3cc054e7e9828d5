package game

import (
	"container/heap"
	"time"
)

type timerKind uint8

const (
	timerDashEnd timerKind = iota
	timerReloadDone
	timerRespawn
)

func (k timerKind) String() string {
	switch k {
	case timerDashEnd:
		return "dash_end"
	case timerReloadDone:
		return "reload_done"
	case timerRespawn:
		return "respawn"
	default:
		return "unknown"
	}
}

// timer is a fire-once deadline for one player. gen pins the timer to the
// dash or reload that scheduled it so a stale timer cannot end a later one.
type timer struct {
	due      time.Time
	seq      uint64
	playerID string
	kind     timerKind
	gen      uint64
}

// timerHeap orders by due time, then by scheduling order.
type timerHeap []timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}
func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any)   { *h = append(*h, x.(timer)) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	*h = old[:n-1]
	return t
}

// CooldownManager holds every pending dash, reload and respawn deadline.
// The engine drains it once per tick, so timers fire on the simulation
// thread under the world lock. Timers cannot be cancelled; a timer whose
// player is gone or whose state moved on does nothing.
type CooldownManager struct {
	timers timerHeap
	seq    uint64
}

func (c *CooldownManager) schedule(due time.Time, playerID string, kind timerKind, gen uint64) {
	c.seq++
	heap.Push(&c.timers, timer{due: due, seq: c.seq, playerID: playerID, kind: kind, gen: gen})
}

// popDue appends every timer due at or before now to buf in firing order.
func (c *CooldownManager) popDue(now time.Time, buf []timer) []timer {
	for len(c.timers) > 0 && !c.timers[0].due.After(now) {
		buf = append(buf, heap.Pop(&c.timers).(timer))
	}
	return buf
}

// Len returns the number of pending timers.
func (c *CooldownManager) Len() int {
	return len(c.timers)
}

// fireTimers runs every due timer. Caller holds e.mu.
func (e *Engine) fireTimers(now time.Time) {
	e.due = e.cooldowns.popDue(now, e.due[:0])
	for _, t := range e.due {
		p, ok := e.world.Player(t.playerID)
		if !ok {
			continue
		}
		switch t.kind {
		case timerDashEnd:
			if t.gen == p.dashGen {
				p.Dashing = false
			}
		case timerReloadDone:
			if p.Reloading && t.gen == p.reloadGen {
				p.setAmmo(MaxAmmo)
				p.Reloading = false
			}
		case timerRespawn:
			if p.Dead && p.Respawning {
				e.respawn(p)
			}
		}
	}
	clear(e.due)
}

// dash starts a dash if the player is alive and off cooldown. The first
// dash is always allowed.
func (e *Engine) dash(p *Player, now time.Time) bool {
	if p.Dead {
		return false
	}
	if !p.lastDash.IsZero() && now.Sub(p.lastDash) < DashCooldown {
		return false
	}
	p.Dashing = true
	p.lastDash = now
	p.dashGen++
	e.cooldowns.schedule(now.Add(DashDuration), p.ID, timerDashEnd, p.dashGen)
	return true
}

// reload starts a manual reload. Refused while already reloading or with
// a full magazine.
func (e *Engine) reload(p *Player, now time.Time) bool {
	if p.Reloading || p.Ammo >= MaxAmmo {
		return false
	}
	e.startReload(p, now, e.cfg.ManualReload)
	return true
}

func (e *Engine) startReload(p *Player, now time.Time, d time.Duration) {
	p.Reloading = true
	p.reloadGen++
	e.cooldowns.schedule(now.Add(d), p.ID, timerReloadDone, p.reloadGen)
}

// scheduleRespawn arms the single respawn timer for a fresh death.
func (e *Engine) scheduleRespawn(p *Player, now time.Time) {
	if p.Respawning {
		return
	}
	p.Respawning = true
	p.respawnAt = now.Add(e.cfg.RespawnDelay)
	e.cooldowns.schedule(p.respawnAt, p.ID, timerRespawn, 0)
}

func (e *Engine) respawn(p *Player) {
	pos := e.world.SafeSpawn()
	p.respawn(pos)
	e.emit(Message{
		Kind: MessagePlayerRespawn,
		Data: PlayerRespawn{ID: p.ID, X: pos.X, Y: pos.Y},
	})
	e.eventLog.EmitSimple(EventTypeRespawn, e.tickCount, p.ID, RespawnPayload{
		PlayerID: p.ID,
		SpawnX:   pos.X,
		SpawnY:   pos.Y,
	})
}
