package game

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	EventBufferSize      = 1024                   // ring capacity
	MaxEventsPerSec      = 10000                  // global rate limit
	MaxEventsPerPlayer   = 100                    // per-player events per second
	BatchFlushSize       = 64                     // events per write batch
	BatchFlushInterval   = 100 * time.Millisecond // writer wake-up period
	PlayerLimiterCleanup = 5 * time.Minute
)

// EventLog is a bounded, rate-limited audit trail written as JSON lines by
// a background goroutine. Emit never blocks on I/O; when the ring is full
// the oldest pending event is dropped.
type EventLog struct {
	mu    sync.Mutex
	ring  [EventBufferSize]Event
	start int
	count int
	seq   uint64

	globalLimiter  *rate.Limiter
	playerLimiters sync.Map // map[string]*playerLimiterEntry

	writerWg sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	out    *bufio.Writer
	closer io.Closer

	droppedCount atomic.Uint64
	totalCount   atomic.Uint64
	writtenCount atomic.Uint64
}

type playerLimiterEntry struct {
	limiter  *rate.Limiter
	lastUsed atomic.Int64 // unix nanoseconds
}

// EventLogStats is a point-in-time view of the log counters.
type EventLogStats struct {
	Total   uint64 `json:"total"`
	Dropped uint64 `json:"dropped"`
	Written uint64 `json:"written"`
	Pending int    `json:"pending"`
	Running bool   `json:"running"`
}

// NewEventLog creates a stopped event log.
func NewEventLog() *EventLog {
	return &EventLog{
		globalLimiter: rate.NewLimiter(MaxEventsPerSec, MaxEventsPerSec/10),
		stopChan:      make(chan struct{}),
	}
}

// Start opens filePath for append and begins writing.
func (el *EventLog) Start(filePath string) error {
	if el.running.Load() {
		return nil
	}
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	el.StartWriter(file)
	return nil
}

// StartWriter begins writing to w. If w is an io.Closer it is closed by
// Stop. An EventLog can be started once.
func (el *EventLog) StartWriter(w io.Writer) {
	if !el.running.CompareAndSwap(false, true) {
		return
	}
	el.out = bufio.NewWriter(w)
	if c, ok := w.(io.Closer); ok {
		el.closer = c
	}
	el.writerWg.Add(2)
	go el.writerLoop()
	go el.cleanupLoop()
}

// Stop flushes everything pending and closes the output.
func (el *EventLog) Stop() {
	el.stopOnce.Do(func() {
		if !el.running.Swap(false) {
			return
		}
		close(el.stopChan)
		el.writerWg.Wait()
		if el.closer != nil {
			el.closer.Close()
		}
	})
}

// Emit queues an event. It returns false if the log is stopped or the
// event was rate limited.
func (el *EventLog) Emit(event Event) bool {
	if !el.running.Load() {
		return false
	}
	if !el.globalLimiter.Allow() {
		el.droppedCount.Add(1)
		return false
	}
	if event.PlayerID != "" && !el.playerLimiter(event.PlayerID).Allow() {
		el.droppedCount.Add(1)
		return false
	}

	el.mu.Lock()
	if el.count == EventBufferSize {
		el.start = (el.start + 1) % EventBufferSize
		el.count--
		el.droppedCount.Add(1)
	}
	el.seq++
	event.Sequence = el.seq
	el.ring[(el.start+el.count)%EventBufferSize] = event
	el.count++
	el.mu.Unlock()

	el.totalCount.Add(1)
	return true
}

// EmitSimple builds and queues an event.
func (el *EventLog) EmitSimple(eventType EventType, tickNum uint64, playerID string, payload any) bool {
	if !el.running.Load() {
		return false
	}
	return el.Emit(NewEvent(eventType, tickNum, playerID, payload))
}

func (el *EventLog) playerLimiter(playerID string) *rate.Limiter {
	now := time.Now().UnixNano()
	if v, ok := el.playerLimiters.Load(playerID); ok {
		e := v.(*playerLimiterEntry)
		e.lastUsed.Store(now)
		return e.limiter
	}
	e := &playerLimiterEntry{limiter: rate.NewLimiter(MaxEventsPerPlayer, MaxEventsPerPlayer/10)}
	e.lastUsed.Store(now)
	actual, _ := el.playerLimiters.LoadOrStore(playerID, e)
	return actual.(*playerLimiterEntry).limiter
}

func (el *EventLog) writerLoop() {
	defer el.writerWg.Done()

	ticker := time.NewTicker(BatchFlushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, BatchFlushSize)
	for {
		select {
		case <-el.stopChan:
			for {
				batch = el.collectBatch(batch[:0])
				if len(batch) == 0 {
					return
				}
				el.flushBatch(batch)
			}
		case <-ticker.C:
			batch = el.collectBatch(batch[:0])
			if len(batch) > 0 {
				el.flushBatch(batch)
			}
		}
	}
}

func (el *EventLog) cleanupLoop() {
	defer el.writerWg.Done()

	ticker := time.NewTicker(PlayerLimiterCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-el.stopChan:
			return
		case <-ticker.C:
			el.cleanupPlayerLimiters()
		}
	}
}

func (el *EventLog) cleanupPlayerLimiters() {
	cutoff := time.Now().Add(-PlayerLimiterCleanup).UnixNano()
	el.playerLimiters.Range(func(key, value any) bool {
		if value.(*playerLimiterEntry).lastUsed.Load() < cutoff {
			el.playerLimiters.Delete(key)
		}
		return true
	})
}

func (el *EventLog) collectBatch(batch []Event) []Event {
	el.mu.Lock()
	defer el.mu.Unlock()
	for el.count > 0 && len(batch) < BatchFlushSize {
		batch = append(batch, el.ring[el.start])
		el.ring[el.start] = Event{}
		el.start = (el.start + 1) % EventBufferSize
		el.count--
	}
	return batch
}

// flushBatch appends events as newline-delimited JSON. Only the writer
// goroutine calls it.
func (el *EventLog) flushBatch(batch []Event) {
	enc := json.NewEncoder(el.out)
	for i := range batch {
		if err := enc.Encode(&batch[i]); err != nil {
			continue
		}
		el.writtenCount.Add(1)
	}
	el.out.Flush()
}

// Stats returns counters for monitoring.
func (el *EventLog) Stats() EventLogStats {
	el.mu.Lock()
	pending := el.count
	el.mu.Unlock()
	return EventLogStats{
		Total:   el.totalCount.Load(),
		Dropped: el.droppedCount.Load(),
		Written: el.writtenCount.Load(),
		Pending: pending,
		Running: el.running.Load(),
	}
}
