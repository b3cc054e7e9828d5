package game

import (
	"sync"

	"arena/internal/game/spatial"
)

// Leaderboard ranks connected players by kills*100 - deaths*10. It is
// updated by the engine under its lock and read by HTTP handlers, so it
// carries its own synchronization.
type Leaderboard struct {
	skipList *spatial.SkipList

	mu    sync.RWMutex
	stats map[string]leaderStats
}

type leaderStats struct {
	name   string
	kills  int
	deaths int
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"id"`
	Name     string  `json:"name"`
	Kills    int     `json:"kills"`
	Deaths   int     `json:"deaths"`
	Score    float64 `json:"score"`
}

// NewLeaderboard creates an empty leaderboard.
func NewLeaderboard() *Leaderboard {
	return &Leaderboard{
		skipList: spatial.NewSkipList(),
		stats:    make(map[string]leaderStats),
	}
}

// Score computes the ranking score.
func Score(kills, deaths int) float64 {
	return float64(kills)*100.0 - float64(deaths)*10.0
}

// Update records the player's current name and tallies.
func (lb *Leaderboard) Update(p *Player) {
	lb.mu.Lock()
	lb.stats[p.ID] = leaderStats{name: p.Name, kills: p.Kills, deaths: p.Deaths}
	lb.mu.Unlock()
	lb.skipList.Insert(p.ID, Score(p.Kills, p.Deaths))
}

// Remove drops a player.
func (lb *Leaderboard) Remove(id string) {
	lb.mu.Lock()
	delete(lb.stats, id)
	lb.mu.Unlock()
	lb.skipList.Remove(id)
}

// Rank returns the 1-indexed rank of a player, or 0 if unknown.
func (lb *Leaderboard) Rank(id string) int {
	return lb.skipList.GetRank(id)
}

// Top returns the n best players.
func (lb *Leaderboard) Top(n int) []LeaderboardEntry {
	entries := lb.skipList.GetRange(1, n)

	lb.mu.RLock()
	defer lb.mu.RUnlock()

	out := make([]LeaderboardEntry, 0, len(entries))
	for i, e := range entries {
		st := lb.stats[e.Key]
		out = append(out, LeaderboardEntry{
			Rank:     i + 1,
			PlayerID: e.Key,
			Name:     st.name,
			Kills:    st.kills,
			Deaths:   st.deaths,
			Score:    e.Score,
		})
	}
	return out
}

// Len returns the number of ranked players.
func (lb *Leaderboard) Len() int {
	return lb.skipList.Length()
}
