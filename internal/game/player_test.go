package game

import (
	"math"
	"testing"
)

func TestTakeDamage(t *testing.T) {
	p := newPlayer("a", "a", Vec2{})

	if p.TakeDamage(60) {
		t.Fatal("non-lethal hit reported a kill")
	}
	if p.Health != 40 {
		t.Errorf("Health = %d, want 40", p.Health)
	}

	if !p.TakeDamage(60) {
		t.Fatal("lethal hit not reported")
	}
	if p.Health != 0 || !p.Dead || p.Deaths != 1 {
		t.Errorf("after kill: health=%d dead=%v deaths=%d", p.Health, p.Dead, p.Deaths)
	}

	if p.TakeDamage(10) {
		t.Error("hit on a dead player reported a kill")
	}
	if p.Deaths != 1 {
		t.Errorf("Deaths = %d, want 1", p.Deaths)
	}
}

func TestRespawnKeepsCounters(t *testing.T) {
	p := newPlayer("a", "a", Vec2{})
	p.Kills = 2
	p.Input = Input{Up: true}
	p.Ammo = 3
	p.Reloading = true
	p.TakeDamage(MaxHealth)
	p.Respawning = true

	p.respawn(Vec2{X: 10, Y: 20})

	if p.Dead || p.Respawning || p.Reloading {
		t.Errorf("flags not cleared: %+v", p.ToSnapshot())
	}
	if p.Health != MaxHealth || p.Ammo != MaxAmmo {
		t.Errorf("health=%d ammo=%d", p.Health, p.Ammo)
	}
	if p.X != 10 || p.Y != 20 {
		t.Errorf("position = (%v, %v)", p.X, p.Y)
	}
	if p.Kills != 2 || p.Deaths != 1 || !p.Input.Up {
		t.Errorf("counters or input lost: %+v", p.ToSnapshot())
	}
}

func TestMoveDirection(t *testing.T) {
	tests := []struct {
		name   string
		in     Input
		dx, dy float64
		ok     bool
	}{
		{"none", Input{}, 0, 0, false},
		{"up", Input{Up: true}, 0, -1, true},
		{"right", Input{Right: true}, 1, 0, true},
		{"opposed", Input{Left: true, Right: true}, 0, 0, false},
		{"diagonal", Input{Down: true, Right: true}, math.Sqrt2 / 2, math.Sqrt2 / 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Player{Input: tt.in}
			dx, dy, ok := p.moveDirection()
			if ok != tt.ok || math.Abs(dx-tt.dx) > 1e-9 || math.Abs(dy-tt.dy) > 1e-9 {
				t.Errorf("moveDirection = (%v, %v, %v), want (%v, %v, %v)", dx, dy, ok, tt.dx, tt.dy, tt.ok)
			}
		})
	}
}

func TestSetAmmoClamps(t *testing.T) {
	p := newPlayer("a", "a", Vec2{})
	p.setAmmo(-3)
	if p.Ammo != 0 {
		t.Errorf("Ammo = %d, want 0", p.Ammo)
	}
	p.setAmmo(99)
	if p.Ammo != MaxAmmo {
		t.Errorf("Ammo = %d, want %d", p.Ammo, MaxAmmo)
	}
}
