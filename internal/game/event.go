package game

import (
	"encoding/json"
	"time"
)

// EventType classifies audit log entries.
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypePlayerJoin
	EventTypePlayerLeave
	EventTypeShoot
	EventTypeSlash
	EventTypeDamage
	EventTypeKill
	EventTypeRespawn
)

// EventVersion is bumped when a payload changes shape.
const EventVersion uint8 = 1

// Event is one line of the audit log.
type Event struct {
	Version   uint8           `json:"version"`
	Type      EventType       `json:"type"`
	Timestamp int64           `json:"timestamp"` // unix nanoseconds
	Sequence  uint64          `json:"sequence"`
	TickNum   uint64          `json:"tickNum"`
	PlayerID  string          `json:"playerId"` // rate limiting key
	Payload   json.RawMessage `json:"payload"`
}

func (t EventType) String() string {
	switch t {
	case EventTypePlayerJoin:
		return "player_join"
	case EventTypePlayerLeave:
		return "player_leave"
	case EventTypeShoot:
		return "shoot"
	case EventTypeSlash:
		return "slash"
	case EventTypeDamage:
		return "damage"
	case EventTypeKill:
		return "kill"
	case EventTypeRespawn:
		return "respawn"
	default:
		return "unknown"
	}
}

// MarshalText writes the type by name so the log is greppable.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Typed payloads

type PlayerJoinPayload struct {
	PlayerID   string  `json:"playerId"`
	PlayerName string  `json:"playerName"`
	SpawnX     float64 `json:"spawnX"`
	SpawnY     float64 `json:"spawnY"`
}

type PlayerLeavePayload struct {
	PlayerID string `json:"playerId"`
	Kills    int    `json:"kills"`
	Deaths   int    `json:"deaths"`
}

type ShootPayload struct {
	BulletID uint64  `json:"bulletId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Angle    float64 `json:"angle"`
	AmmoLeft int     `json:"ammoLeft"`
}

type SlashPayload struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Angle   float64 `json:"angle"`
	Targets int     `json:"targets"`
}

// DamagePayload records a hit. AttackerID may name a player who has since
// disconnected.
type DamagePayload struct {
	AttackerID string `json:"attackerId"`
	VictimID   string `json:"victimId"`
	Damage     int    `json:"damage"`
	VictimHP   int    `json:"victimHp"`
	Cause      string `json:"cause"` // "bullet" or "slash"
}

type KillPayload struct {
	KillerID     string `json:"killerId,omitempty"`
	VictimID     string `json:"victimId"`
	KillerKills  int    `json:"killerKills"`
	VictimDeaths int    `json:"victimDeaths"`
	Cause        string `json:"cause"`
}

type RespawnPayload struct {
	PlayerID string  `json:"playerId"`
	SpawnX   float64 `json:"spawnX"`
	SpawnY   float64 `json:"spawnY"`
}

// EncodePayload marshals a payload, returning nil on failure.
func EncodePayload(payload any) json.RawMessage {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent stamps an event with the wall clock.
func NewEvent(eventType EventType, tickNum uint64, playerID string, payload any) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		PlayerID:  playerID,
		Payload:   EncodePayload(payload),
	}
}
