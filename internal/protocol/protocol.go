// Package protocol defines the JSON messages exchanged with game clients.
// Every frame is an envelope {"event": name, "data": payload}.
package protocol

import (
	"encoding/json"
	"errors"
)

// Client to server events.
const (
	EventSetName = "setName"
	EventInput   = "input"
	EventShoot   = "shoot"
	EventDash    = "dash"
	EventReload  = "reload"
	EventSlash   = "slash"
)

// Server to client events.
const (
	EventInit          = "init"
	EventNewPlayer     = "newPlayer"
	EventRemovePlayer  = "removePlayer"
	EventState         = "state"
	EventSlashEffect   = "slashEffect"
	EventPlayerRespawn = "playerRespawn"
)

// MaxNameLength caps display names, in runes.
const MaxNameLength = 20

var (
	ErrMalformedEnvelope = errors.New("protocol: malformed envelope")
	ErrUnknownEvent      = errors.New("protocol: unknown event")
	ErrInvalidPayload    = errors.New("protocol: invalid payload")
)

// Envelope is the outer frame of every message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}
