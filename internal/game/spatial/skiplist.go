package spatial

import (
	"math/rand"
	"sync"
)

const (
	maxLevel    = 16
	probability = 0.25
)

// SkipListEntry is a key with its score.
type SkipListEntry struct {
	Key   string
	Score float64
}

// precedes orders entries by descending score, then ascending key, so
// equal scores have a stable rank.
func (e SkipListEntry) precedes(score float64, key string) bool {
	return e.Score > score || (e.Score == score && e.Key < key)
}

type skipNode struct {
	entry SkipListEntry
	next  []*skipNode
}

// SkipList keeps entries sorted by score, highest first. Safe for
// concurrent use.
type SkipList struct {
	mu     sync.RWMutex
	head   *skipNode
	level  int
	scores map[string]float64
	rng    *rand.Rand
}

// NewSkipList creates an empty skip list.
func NewSkipList() *SkipList {
	return &SkipList{
		head:   &skipNode{next: make([]*skipNode, maxLevel)},
		level:  1,
		scores: make(map[string]float64),
		rng:    rand.New(rand.NewSource(rand.Int63())),
	}
}

func (sl *SkipList) randomLevel() int {
	lvl := 1
	for lvl < maxLevel && sl.rng.Float64() < probability {
		lvl++
	}
	return lvl
}

// Insert adds key or moves it to its new score.
func (sl *SkipList) Insert(key string, score float64) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if old, ok := sl.scores[key]; ok {
		if old == score {
			return
		}
		sl.unlink(key, old)
	}

	var update [maxLevel]*skipNode
	x := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		for x.next[i] != nil && x.next[i].entry.precedes(score, key) {
			x = x.next[i]
		}
		update[i] = x
	}

	lvl := sl.randomLevel()
	if lvl > sl.level {
		for i := sl.level; i < lvl; i++ {
			update[i] = sl.head
		}
		sl.level = lvl
	}

	node := &skipNode{
		entry: SkipListEntry{Key: key, Score: score},
		next:  make([]*skipNode, lvl),
	}
	for i := 0; i < lvl; i++ {
		node.next[i] = update[i].next[i]
		update[i].next[i] = node
	}
	sl.scores[key] = score
}

// Remove deletes key. It returns false if key was absent.
func (sl *SkipList) Remove(key string) bool {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	score, ok := sl.scores[key]
	if !ok {
		return false
	}
	sl.unlink(key, score)
	return true
}

// unlink removes the node for (key, score). Caller holds the write lock.
func (sl *SkipList) unlink(key string, score float64) {
	var update [maxLevel]*skipNode
	x := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		for x.next[i] != nil && x.next[i].entry.precedes(score, key) {
			x = x.next[i]
		}
		update[i] = x
	}

	target := x.next[0]
	if target == nil || target.entry.Key != key {
		return
	}
	for i := 0; i < sl.level; i++ {
		if update[i].next[i] != target {
			break
		}
		update[i].next[i] = target.next[i]
	}
	for sl.level > 1 && sl.head.next[sl.level-1] == nil {
		sl.level--
	}
	delete(sl.scores, key)
}

// GetRange returns entries with ranks in [start, end], 1-indexed and
// inclusive.
func (sl *SkipList) GetRange(start, end int) []SkipListEntry {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	start = max(start, 1)
	end = min(end, len(sl.scores))
	if start > end {
		return nil
	}

	out := make([]SkipListEntry, 0, end-start+1)
	rank := 0
	for x := sl.head.next[0]; x != nil && rank < end; x = x.next[0] {
		rank++
		if rank >= start {
			out = append(out, x.entry)
		}
	}
	return out
}

// GetRank returns the 1-indexed rank of key, or 0 if absent.
func (sl *SkipList) GetRank(key string) int {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	if _, ok := sl.scores[key]; !ok {
		return 0
	}
	rank := 0
	for x := sl.head.next[0]; x != nil; x = x.next[0] {
		rank++
		if x.entry.Key == key {
			return rank
		}
	}
	return 0
}

// GetScore returns the score for key.
func (sl *SkipList) GetScore(key string) (float64, bool) {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	s, ok := sl.scores[key]
	return s, ok
}

// Length returns the number of entries.
func (sl *SkipList) Length() int {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return len(sl.scores)
}
