package game

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"arena/internal/config"

	"golang.org/x/time/rate"
)

func TestEventLogWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	el := NewEventLog()
	el.StartWriter(&buf)

	el.EmitSimple(EventTypePlayerJoin, 1, "a", PlayerJoinPayload{PlayerID: "a", PlayerName: "alice"})
	el.EmitSimple(EventTypeShoot, 2, "a", ShootPayload{BulletID: 7, AmmoLeft: 14})
	el.EmitSimple(EventTypeKill, 3, "", KillPayload{KillerID: "a", VictimID: "b", Cause: causeBullet})
	el.Stop()

	var lines []map[string]any
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("line %q: %v", sc.Text(), err)
		}
		lines = append(lines, m)
	}
	if len(lines) != 3 {
		t.Fatalf("wrote %d lines, want 3", len(lines))
	}

	wantTypes := []string{"player_join", "shoot", "kill"}
	for i, l := range lines {
		if l["type"] != wantTypes[i] {
			t.Errorf("line %d type = %v, want %s", i, l["type"], wantTypes[i])
		}
		if l["sequence"] != float64(i+1) {
			t.Errorf("line %d sequence = %v", i, l["sequence"])
		}
	}
	if p := lines[2]["payload"].(map[string]any); p["victimId"] != "b" {
		t.Errorf("kill payload = %v", p)
	}

	s := el.Stats()
	if s.Total != 3 || s.Written != 3 || s.Pending != 0 || s.Running {
		t.Errorf("stats = %+v", s)
	}
}

func TestEventLogStoppedDropsEvents(t *testing.T) {
	el := NewEventLog()
	if el.EmitSimple(EventTypeShoot, 1, "a", nil) {
		t.Error("emit accepted before start")
	}
	el.Stop() // stopping a log that never started is harmless
}

func TestEventLogRingDropsOldest(t *testing.T) {
	el := NewEventLog()
	el.globalLimiter = rate.NewLimiter(rate.Inf, 0)
	el.running.Store(true) // fill the ring without a writer draining it

	for i := range EventBufferSize + 5 {
		el.Emit(Event{Type: EventTypeDamage, TickNum: uint64(i)})
	}

	s := el.Stats()
	if s.Pending != EventBufferSize || s.Dropped != 5 {
		t.Errorf("stats = %+v", s)
	}
	batch := el.collectBatch(nil)
	if batch[0].TickNum != 5 {
		t.Errorf("oldest pending tick = %d, want 5", batch[0].TickNum)
	}
}

func TestEngineEmitsAuditTrail(t *testing.T) {
	e, _, _ := newTestEngine(t, config.ResourceLimits{})
	var buf bytes.Buffer
	e.eventLog.StartWriter(&buf)

	join(t, e, "a", 500, 500)
	join(t, e, "b", 530, 500)
	e.Slash("a")
	e.Leave("b")
	e.StopEventLog()

	var types []string
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var ev struct {
			Type string `json:"type"`
		}
		json.Unmarshal(sc.Bytes(), &ev)
		types = append(types, ev.Type)
	}
	want := []string{"player_join", "player_join", "damage", "slash", "player_leave"}
	if len(types) != len(want) {
		t.Fatalf("events = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, types[i], want[i])
		}
	}
	if s := e.EventLogStats(); s.Written != uint64(len(want)) {
		t.Errorf("EventLogStats = %+v", s)
	}
}
