package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"arena/internal/game"
	"arena/internal/protocol"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

type stateResponse struct {
	Tick uint64 `json:"tick"`
	protocol.State
}

type statsResponse struct {
	game.Stats
	Connections int                `json:"connections"`
	EventLog    game.EventLogStats `json:"eventLog"`
	RateLimit   RateLimitStats     `json:"rateLimit"`
}

func (h *routerHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	writeJSON(w, stateResponse{Tick: snap.Tick, State: protocol.NewState(snap)})
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{
		Stats:     h.engine.Stats(),
		EventLog:  h.engine.EventLogStats(),
		RateLimit: h.rateLimiter.Stats(),
	}
	if h.connections != nil {
		resp.Connections = h.connections.ClientCount()
	}
	writeJSON(w, resp)
}

func (h *routerHandlers) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}
	writeJSON(w, h.engine.Leaderboard(limit))
}

func (h *routerHandlers) handleGetWalls(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Walls())
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
