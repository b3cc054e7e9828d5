package protocol

import (
	"fmt"

	"arena/internal/game"
)

// State is the per-tick world broadcast. Players are keyed by id.
type State struct {
	Players map[string]game.PlayerSnapshot `json:"players"`
	Bullets []game.BulletSnapshot          `json:"bullets"`
	Walls   []game.Wall                    `json:"walls"`
}

// Init is sent privately to a session that just joined.
type Init struct {
	ID string `json:"id"`
	State
}

// RemovePlayer announces a disconnect.
type RemovePlayer struct {
	ID string `json:"id"`
}

// NewState converts a snapshot to its wire form.
func NewState(s *game.Snapshot) State {
	st := State{
		Players: make(map[string]game.PlayerSnapshot, len(s.Players)),
		Bullets: s.Bullets,
		Walls:   s.Walls,
	}
	for _, p := range s.Players {
		st.Players[p.ID] = p
	}
	if st.Bullets == nil {
		st.Bullets = []game.BulletSnapshot{}
	}
	if st.Walls == nil {
		st.Walls = []game.Wall{}
	}
	return st
}

// EncodeMessage serializes an engine message into a frame.
func EncodeMessage(m game.Message) ([]byte, error) {
	switch m.Kind {
	case game.MessageInit:
		d, ok := m.Data.(game.InitData)
		if !ok {
			break
		}
		return Encode(EventInit, Init{ID: d.ID, State: NewState(d.Snapshot)})

	case game.MessageNewPlayer:
		if p, ok := m.Data.(game.PlayerSnapshot); ok {
			return Encode(EventNewPlayer, p)
		}

	case game.MessageRemovePlayer:
		if id, ok := m.Data.(string); ok {
			return Encode(EventRemovePlayer, RemovePlayer{ID: id})
		}

	case game.MessageState:
		if s, ok := m.Data.(*game.Snapshot); ok {
			return Encode(EventState, NewState(s))
		}

	case game.MessageSlashEffect:
		if e, ok := m.Data.(game.SlashEffect); ok {
			return Encode(EventSlashEffect, e)
		}

	case game.MessagePlayerRespawn:
		if r, ok := m.Data.(game.PlayerRespawn); ok {
			return Encode(EventPlayerRespawn, r)
		}
	}
	return nil, fmt.Errorf("%w: %s carries %T", ErrInvalidPayload, m.Kind, m.Data)
}
