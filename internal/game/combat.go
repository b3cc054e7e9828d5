package game

import (
	"log"
	"time"
)

const (
	causeBullet = "bullet"
	causeSlash  = "slash"
)

// shoot fires one bullet along the player's aim. Firing the last round
// starts the automatic reload.
func (e *Engine) shoot(p *Player, now time.Time) bool {
	if p.Dead || p.Reloading || p.Ammo <= 0 {
		return false
	}
	if e.world.BulletCount() >= e.cfg.Limits.MaxBullets {
		return false
	}

	b := e.world.spawnBullet(p)
	p.setAmmo(p.Ammo - 1)
	if p.Ammo == 0 {
		e.startReload(p, now, e.cfg.AutoReload)
	}

	e.eventLog.EmitSimple(EventTypeShoot, e.tickCount, p.ID, ShootPayload{
		BulletID: b.ID,
		X:        b.X,
		Y:        b.Y,
		Angle:    b.Angle,
		AmmoLeft: p.Ammo,
	})
	return true
}

// slash hits every other live player within SlashRange of the attacker.
// Walls do not block it.
func (e *Engine) slash(p *Player, now time.Time) bool {
	if p.Dead {
		return false
	}
	if !p.lastSlash.IsZero() && now.Sub(p.lastSlash) < SlashCooldown {
		return false
	}
	p.lastSlash = now

	e.emit(Message{
		Kind: MessageSlashEffect,
		Data: SlashEffect{PlayerID: p.ID, X: p.X, Y: p.Y, Angle: p.Angle},
	})

	targets := 0
	for _, q := range e.world.Players() {
		if q == p || q.Dead {
			continue
		}
		if distance(p.X, p.Y, q.X, q.Y) < SlashRange {
			e.applyDamage(p.ID, q, SlashDamage, causeSlash, now)
			targets++
		}
	}

	e.eventLog.EmitSimple(EventTypeSlash, e.tickCount, p.ID, SlashPayload{
		X:       p.X,
		Y:       p.Y,
		Angle:   p.Angle,
		Targets: targets,
	})
	return true
}

// applyDamage hurts victim and settles a kill. The kill is credited to
// attackerID only while that player is still connected.
func (e *Engine) applyDamage(attackerID string, victim *Player, amount int, cause string, now time.Time) {
	killed := victim.TakeDamage(amount)
	e.eventLog.EmitSimple(EventTypeDamage, e.tickCount, attackerID, DamagePayload{
		AttackerID: attackerID,
		VictimID:   victim.ID,
		Damage:     amount,
		VictimHP:   victim.Health,
		Cause:      cause,
	})
	if !killed {
		return
	}

	kill := KillPayload{VictimID: victim.ID, VictimDeaths: victim.Deaths, Cause: cause}
	if killer, ok := e.world.Player(attackerID); ok && killer != victim {
		killer.Kills++
		e.totalKills++
		e.leaderboard.Update(killer)
		kill.KillerID = killer.ID
		kill.KillerKills = killer.Kills
		log.Printf("💀 %s eliminated %s (%s)", killer.Name, victim.Name, cause)
	} else {
		log.Printf("💀 %s was eliminated (%s)", victim.Name, cause)
	}
	e.leaderboard.Update(victim)
	e.eventLog.EmitSimple(EventTypeKill, e.tickCount, "", kill)

	e.scheduleRespawn(victim, now)
}
