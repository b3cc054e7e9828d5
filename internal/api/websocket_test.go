package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"arena/internal/config"
	"arena/internal/game"
	"arena/internal/protocol"

	"github.com/gorilla/websocket"
)

// recordingEngine implements SessionEngine and remembers each call.
type recordingEngine struct {
	calls []string
}

func (r *recordingEngine) record(call string) bool {
	r.calls = append(r.calls, call)
	return true
}

func (r *recordingEngine) Join(id, name string) (game.PlayerSnapshot, bool) {
	r.record("join:" + name)
	return game.PlayerSnapshot{ID: id, Name: name}, true
}

func (r *recordingEngine) SetInput(id string, in game.Input, angle float64) bool {
	return r.record("input")
}

func (r *recordingEngine) Leave(id string) bool  { return r.record("leave") }
func (r *recordingEngine) Shoot(id string) bool  { return r.record("shoot") }
func (r *recordingEngine) Dash(id string) bool   { return r.record("dash") }
func (r *recordingEngine) Reload(id string) bool { return r.record("reload") }
func (r *recordingEngine) Slash(id string) bool  { return r.record("slash") }

func testSession(id string, buffer int) *session {
	return &session{
		id:     id,
		send:   make(chan []byte, buffer),
		kicked: make(chan struct{}),
	}
}

func TestHubDeliverRouting(t *testing.T) {
	h := NewHub(&recordingEngine{}, HubConfig{MaxConnectionsPerIP: 1})
	a, b := testSession("a", 4), testSession("b", 4)
	h.sessions["a"], h.sessions["b"] = a, b

	h.Deliver([]game.Message{
		{Kind: game.MessageInit, To: "a", Data: game.InitData{ID: "a", Snapshot: &game.Snapshot{}}},
		{Kind: game.MessageNewPlayer, Exclude: "a", Data: game.PlayerSnapshot{ID: "a"}},
		{Kind: game.MessageRemovePlayer, Data: "z"},
		{Kind: game.MessageState, Data: "not a snapshot"},
	})

	if len(a.send) != 2 || len(b.send) != 2 {
		t.Fatalf("queued a=%d b=%d, want 2 each", len(a.send), len(b.send))
	}
	if first := string(<-a.send); !strings.Contains(first, `"event":"init"`) {
		t.Errorf("a first frame = %s", first)
	}
	if first := string(<-b.send); !strings.Contains(first, `"event":"newPlayer"`) {
		t.Errorf("b first frame = %s", first)
	}
}

func TestHubKicksSlowClient(t *testing.T) {
	h := NewHub(&recordingEngine{}, HubConfig{MaxConnectionsPerIP: 1})
	s := testSession("slow", 1)
	h.sessions["slow"] = s

	msg := game.Message{Kind: game.MessageRemovePlayer, Data: "z"}
	h.Deliver([]game.Message{msg, msg})

	select {
	case <-s.kicked:
	default:
		t.Fatal("slow client was not kicked")
	}
	if !errors.Is(s.kickErr, errSlowClient) {
		t.Errorf("kick reason = %v", s.kickErr)
	}

	h.Close() // a second kick keeps the first reason
	if !errors.Is(s.kickErr, errSlowClient) {
		t.Errorf("kick reason replaced by %v", s.kickErr)
	}
}

func TestHubDispatch(t *testing.T) {
	eng := &recordingEngine{}
	h := NewHub(eng, HubConfig{})
	s := testSession("a", 1)

	for _, msg := range []protocol.ClientMessage{
		protocol.SetName{Name: "neo"},
		protocol.Input{Input: game.Input{Up: true}, Angle: 1},
		protocol.Shoot{},
		protocol.Dash{},
		protocol.Reload{},
		protocol.Slash{},
	} {
		h.dispatch(s, msg)
	}

	want := []string{"join:neo", "input", "shoot", "dash", "reload", "slash"}
	if strings.Join(eng.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", eng.calls, want)
	}
}

// --- end-to-end over a real socket ---

type arena struct {
	engine *game.Engine
	server *Server
	ts     *httptest.Server
	wsURL  string
}

func startArena(t *testing.T, cfg config.ServerConfig) *arena {
	t.Helper()
	engine := game.NewEngine(game.EngineConfig{TickRate: 50, Seed: 3})
	server := NewServer(engine, cfg, config.DefaultLimits())
	ts := httptest.NewServer(server.Router())
	engine.Start()

	t.Cleanup(func() {
		server.Hub().Close()
		ts.Close()
		engine.Stop()
		server.rateLimiter.Stop()
	})
	return &arena{
		engine: engine,
		server: server,
		ts:     ts,
		wsURL:  "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws",
	}
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v (resp %v)", err, resp)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// readUntil reads frames until one carries event, skipping the rest.
func readUntil(t *testing.T, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	defer conn.SetReadDeadline(time.Time{})
	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q: %v", event, err)
		}
		env, err := protocol.DecodeEnvelope(b)
		if err != nil {
			t.Fatalf("bad frame %s: %v", b, err)
		}
		if env.Event == event {
			return env.Data
		}
	}
}

func TestWebSocketSession(t *testing.T) {
	a := startArena(t, config.DefaultServer())

	alice := dial(t, a.wsURL)
	send(t, alice, `{"event":"setName","data":"alice"}`)
	var aliceInit protocol.Init
	json.Unmarshal(readUntil(t, alice, protocol.EventInit), &aliceInit)
	if aliceInit.ID == "" || aliceInit.Players[aliceInit.ID].Name != "alice" {
		t.Fatalf("alice init = %+v", aliceInit)
	}

	bob := dial(t, a.wsURL)
	send(t, bob, `{"event":"setName","data":{"name":"bob"}}`)
	var bobInit protocol.Init
	json.Unmarshal(readUntil(t, bob, protocol.EventInit), &bobInit)
	if len(bobInit.Players) != 2 {
		t.Errorf("bob sees %d players, want 2", len(bobInit.Players))
	}

	var joined game.PlayerSnapshot
	json.Unmarshal(readUntil(t, alice, protocol.EventNewPlayer), &joined)
	if joined.ID != bobInit.ID || joined.Name != "bob" {
		t.Errorf("newPlayer = %+v", joined)
	}

	// A bad frame is dropped and the session keeps going.
	send(t, alice, `not json`)
	send(t, alice, `{"event":"teleport"}`)
	var state protocol.State
	json.Unmarshal(readUntil(t, alice, protocol.EventState), &state)
	if len(state.Players) != 2 {
		t.Errorf("state has %d players", len(state.Players))
	}

	bob.Close()
	var gone protocol.RemovePlayer
	json.Unmarshal(readUntil(t, alice, protocol.EventRemovePlayer), &gone)
	if gone.ID != bobInit.ID {
		t.Errorf("removePlayer id = %q, want %q", gone.ID, bobInit.ID)
	}
}

func TestWebSocketPerIPLimit(t *testing.T) {
	cfg := config.DefaultServer()
	cfg.MaxConnectionsPerIP = 1
	a := startArena(t, cfg)

	dial(t, a.wsURL)
	_, resp, err := websocket.DefaultDialer.Dial(a.wsURL, nil)
	if err == nil {
		t.Fatal("second connection from the same IP accepted")
	}
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("response = %v, want 429", resp)
	}
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	a := startArena(t, config.DefaultServer())

	header := http.Header{"Origin": {"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(a.wsURL, header)
	if err == nil {
		t.Fatal("foreign origin accepted")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v, want 403", resp)
	}

	header = http.Header{"Origin": {"http://localhost:5173"}}
	conn, _, err := websocket.DefaultDialer.Dial(a.wsURL, header)
	if err != nil {
		t.Fatalf("allowed origin refused: %v", err)
	}
	conn.Close()
}
