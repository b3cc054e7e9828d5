package game

// MessageKind identifies an outbound notification.
type MessageKind uint8

const (
	MessageInit          MessageKind = iota + 1 // Data: InitData
	MessageNewPlayer                            // Data: PlayerSnapshot
	MessageRemovePlayer                         // Data: string (player id)
	MessageState                                // Data: *Snapshot
	MessageSlashEffect                          // Data: SlashEffect
	MessagePlayerRespawn                        // Data: PlayerRespawn
)

func (k MessageKind) String() string {
	switch k {
	case MessageInit:
		return "init"
	case MessageNewPlayer:
		return "newPlayer"
	case MessageRemovePlayer:
		return "removePlayer"
	case MessageState:
		return "state"
	case MessageSlashEffect:
		return "slashEffect"
	case MessagePlayerRespawn:
		return "playerRespawn"
	default:
		return "unknown"
	}
}

// Message is produced inside the engine lock and delivered after it is
// released. An empty To broadcasts to every session except Exclude.
type Message struct {
	Kind    MessageKind
	To      string
	Exclude string
	Data    any
}

// InitData is sent privately to a session that just joined.
type InitData struct {
	ID       string
	Snapshot *Snapshot
}

// SlashEffect tells clients to draw a slash.
type SlashEffect struct {
	PlayerID string  `json:"playerId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Angle    float64 `json:"angle"`
}

// PlayerRespawn announces where a player came back.
type PlayerRespawn struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Broadcaster delivers engine output to connected sessions. Deliver is
// called outside the world lock but under the engine's output lock, one
// batch at a time in generation order, so it must not block.
type Broadcaster interface {
	Deliver(msgs []Message)
}

// emit queues a message for delivery when the current locked section ends.
// Caller holds e.mu.
func (e *Engine) emit(m Message) {
	e.outbox = append(e.outbox, m)
}

// unlock releases the world lock and hands queued messages to the
// broadcaster. The output lock is taken before the world lock is dropped
// so batches leave in the order they were produced.
func (e *Engine) unlock() {
	msgs := e.outbox
	e.outbox = nil
	if len(msgs) == 0 || e.broadcaster == nil {
		e.mu.Unlock()
		return
	}
	e.outMu.Lock()
	e.mu.Unlock()
	e.broadcaster.Deliver(msgs)
	e.outMu.Unlock()
}
