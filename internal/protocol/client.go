package protocol

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode"

	"arena/internal/game"
)

// ClientMessage is a decoded, validated client event. The concrete type
// is one of SetName, Input, Shoot, Dash, Reload or Slash.
type ClientMessage interface {
	EventName() string
}

// SetName joins the arena, or renames an already joined player.
type SetName struct {
	Name string
}

// Input reports held keys and aim. Angle is NaN when the client omitted
// it, which leaves the previous aim in place.
type Input struct {
	Input game.Input
	Angle float64
}

type (
	Shoot  struct{}
	Dash   struct{}
	Reload struct{}
	Slash  struct{}
)

func (SetName) EventName() string { return EventSetName }
func (Input) EventName() string   { return EventInput }
func (Shoot) EventName() string   { return EventShoot }
func (Dash) EventName() string    { return EventDash }
func (Reload) EventName() string  { return EventReload }
func (Slash) EventName() string   { return EventSlash }

type inputPayload struct {
	Input *game.Input `json:"input"`
	Angle *float64    `json:"angle"`
}

// DecodeClient parses and validates one client frame. Errors wrap
// ErrMalformedEnvelope, ErrUnknownEvent or ErrInvalidPayload.
func DecodeClient(b []byte) (ClientMessage, error) {
	env, err := DecodeEnvelope(b)
	if err != nil {
		return nil, err
	}

	switch env.Event {
	case EventSetName:
		name, err := decodeName(env)
		if err != nil {
			return nil, err
		}
		return SetName{Name: name}, nil

	case EventInput:
		p, err := DecodePayload[inputPayload](env)
		if err != nil {
			return nil, err
		}
		if p.Input == nil {
			return nil, fmt.Errorf("%w: input missing key state", ErrInvalidPayload)
		}
		msg := Input{Input: *p.Input, Angle: math.NaN()}
		if p.Angle != nil {
			if math.IsNaN(*p.Angle) || math.IsInf(*p.Angle, 0) {
				return nil, fmt.Errorf("%w: non-finite angle", ErrInvalidPayload)
			}
			msg.Angle = *p.Angle
		}
		return msg, nil

	case EventShoot:
		return Shoot{}, nil
	case EventDash:
		return Dash{}, nil
	case EventReload:
		return Reload{}, nil
	case EventSlash:
		return Slash{}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
}

// decodeName accepts either a bare JSON string or {"name": "..."}.
func decodeName(env Envelope) (string, error) {
	if len(env.Data) == 0 {
		return SanitizeName(""), nil
	}
	var raw string
	if err := json.Unmarshal(env.Data, &raw); err == nil {
		return SanitizeName(raw), nil
	}
	p, err := DecodePayload[struct {
		Name string `json:"name"`
	}](env)
	if err != nil {
		return "", err
	}
	return SanitizeName(p.Name), nil
}

// SanitizeName strips control characters, trims whitespace and caps the
// length. An empty result becomes the default player name.
func SanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if r := []rune(name); len(r) > MaxNameLength {
		name = strings.TrimSpace(string(r[:MaxNameLength]))
	}
	if name == "" {
		return game.DefaultPlayerName
	}
	return name
}
