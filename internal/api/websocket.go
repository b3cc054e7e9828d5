package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"arena/internal/game"
	"arena/internal/protocol"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 256
)

var (
	errSessionClosed = errors.New("session closed")
	errSlowClient    = errors.New("client send buffer full")
	errHubClosed     = errors.New("server shutting down")
)

// SessionEngine is the part of the engine driven by client sessions.
type SessionEngine interface {
	Join(id, name string) (game.PlayerSnapshot, bool)
	Leave(id string) bool
	SetInput(id string, in game.Input, angle float64) bool
	Shoot(id string) bool
	Dash(id string) bool
	Reload(id string) bool
	Slash(id string) bool
}

// HubConfig bounds the sessions a hub accepts.
type HubConfig struct {
	MaxConnections      int
	MaxConnectionsPerIP int
	MessagesPerSecond   float64 // inbound frames per session
	MessageBurst        int
	Origins             *OriginPolicy
}

// session is one WebSocket connection. Its id doubles as the player id.
type session struct {
	id      string
	ip      string
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter

	kicked   chan struct{}
	kickErr  error
	kickOnce sync.Once
}

// kick asks the write pump to close the connection with reason.
func (s *session) kick(reason error) {
	s.kickOnce.Do(func() {
		s.kickErr = reason
		close(s.kicked)
	})
}

// Hub owns every client session. It implements game.Broadcaster: engine
// output is encoded once per message and queued on each recipient's send
// channel without blocking. A client that cannot keep up is disconnected.
type Hub struct {
	engine    SessionEngine
	cfg       HubConfig
	upgrader  websocket.Upgrader
	wsLimiter *WebSocketRateLimiter

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewHub creates a hub driving engine.
func NewHub(engine SessionEngine, cfg HubConfig) *Hub {
	if cfg.Origins == nil {
		cfg.Origins = NewOriginPolicy(nil)
	}
	return &Hub{
		engine: engine,
		cfg:    cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     cfg.Origins.CheckOrigin,
		},
		wsLimiter: NewWebSocketRateLimiter(cfg.MaxConnectionsPerIP),
		sessions:  make(map[string]*session),
	}
}

// Deliver implements game.Broadcaster.
func (h *Hub) Deliver(msgs []game.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, m := range msgs {
		frame, err := protocol.EncodeMessage(m)
		if err != nil {
			log.Printf("⚠️ Dropping %s message: %v", m.Kind, err)
			continue
		}
		if m.To != "" {
			if s, ok := h.sessions[m.To]; ok {
				h.enqueue(s, frame)
			}
			continue
		}
		for id, s := range h.sessions {
			if id != m.Exclude {
				h.enqueue(s, frame)
			}
		}
	}
}

func (h *Hub) enqueue(s *session, frame []byte) {
	select {
	case s.send <- frame:
		recordWSSent()
	default:
		recordWSDropped("slow_client")
		s.kick(errSlowClient)
	}
}

// ClientCount returns the number of connected sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Close disconnects every session. Hijacked connections are not tracked by
// http.Server, so shutdown has to end them here.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.sessions {
		s.kick(errHubClosed)
	}
}

// HandleWebSocket upgrades the request and serves the session until the
// connection ends.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if n := h.ClientCount(); n >= h.cfg.MaxConnections {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached (%d)", n)
		RecordConnectionRejected("ws_total_limit")
		writeError(w, "too many connections", http.StatusServiceUnavailable)
		return
	}
	if !h.wsLimiter.Allow(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		writeError(w, "too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.wsLimiter.Release(ip)
		return
	}

	s := &session{
		id:      uuid.NewString(),
		ip:      ip,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		limiter: rate.NewLimiter(rate.Limit(h.cfg.MessagesPerSecond), h.cfg.MessageBurst),
		kicked:  make(chan struct{}),
	}
	h.register(s)
	defer h.unregister(s)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error { return h.readPump(ctx, s) })
	g.Go(func() error { return h.writePump(ctx, s) })
	if err := g.Wait(); err != nil && !errors.Is(err, errSessionClosed) {
		log.Printf("📱 Session %s ended: %v", s.id, err)
	}
}

func (h *Hub) register(s *session) {
	h.mu.Lock()
	h.sessions[s.id] = s
	n := len(h.sessions)
	h.mu.Unlock()

	UpdateWSConnections(n)
	log.Printf("📱 Client connected from %s (%d total)", s.ip, n)
}

// unregister drops the session and removes its player. The hub lock is
// released before calling the engine, whose output comes back through
// Deliver.
func (h *Hub) unregister(s *session) {
	h.mu.Lock()
	delete(h.sessions, s.id)
	n := len(h.sessions)
	h.mu.Unlock()

	h.wsLimiter.Release(s.ip)
	h.engine.Leave(s.id)

	UpdateWSConnections(n)
	log.Printf("📱 Client disconnected (%d remaining)", n)
}

// readPump decodes client frames and applies them to the engine. Frames
// over the session's rate or that fail validation are dropped. It always
// returns an error so the group cancels the write pump.
func (h *Hub) readPump(ctx context.Context, s *session) error {
	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return errSessionClosed
			}
			return err
		}
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		recordWSReceived()

		if !s.limiter.Allow() {
			recordWSDropped("rate_limit")
			continue
		}
		msg, err := protocol.DecodeClient(frame)
		if err != nil {
			recordWSDropped("malformed")
			log.Printf("⚠️ Dropped frame from %s: %v", s.id, err)
			continue
		}
		h.dispatch(s, msg)
	}
}

func (h *Hub) dispatch(s *session, msg protocol.ClientMessage) {
	switch m := msg.(type) {
	case protocol.SetName:
		if _, ok := h.engine.Join(s.id, m.Name); !ok {
			log.Printf("⚠️ Arena full, %s was not admitted", m.Name)
		}
	case protocol.Input:
		h.engine.SetInput(s.id, m.Input, m.Angle)
	case protocol.Shoot:
		h.engine.Shoot(s.id)
	case protocol.Dash:
		h.engine.Dash(s.id)
	case protocol.Reload:
		h.engine.Reload(s.id)
	case protocol.Slash:
		h.engine.Slash(s.id)
	}
}

// writePump is the only writer on the connection. It closes the
// connection on exit, which also unblocks readPump.
func (h *Hub) writePump(ctx context.Context, s *session) error {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-s.kicked:
			s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, s.kickErr.Error()),
				time.Now().Add(writeWait))
			return s.kickErr

		case frame := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return err
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}
