package memorystore

import (
	"sync"
	"time"

	"optionflow/internal/flow"
)

// DefaultMaxAge is the retention used when none is configured.
const DefaultMaxAge = 5 * time.Minute

// History is an append-only log of classified batches bounded by age.
// Batches are kept in capture order and never mutated after Append.
// One writer (the poller) and any number of readers may use it concurrently.
type History struct {
	mu      sync.RWMutex
	maxAge  time.Duration
	batches []flow.Batch
}

func NewHistory(maxAge time.Duration) *History {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &History{
		maxAge:  maxAge,
		batches: make([]flow.Batch, 0),
	}
}

// MaxAge reports the retention window.
func (h *History) MaxAge() time.Duration {
	return h.maxAge
}

// Append adds a batch and drops every batch captured at or before now-maxAge.
func (h *History) Append(b flow.Batch, now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.batches = append(h.batches, b)
	h.pruneLocked(now)
}

// Prune drops expired batches without appending.
func (h *History) Prune(now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pruneLocked(now)
}

func (h *History) pruneLocked(now time.Time) {
	cutoff := now.Add(-h.maxAge)

	// capture order is monotonic, so expired batches form a prefix
	n := 0
	for n < len(h.batches) && !h.batches[n].Timestamp.After(cutoff) {
		n++
	}
	if n == 0 {
		return
	}

	// copy so the dropped prefix can be collected
	h.batches = append([]flow.Batch(nil), h.batches[n:]...)
}

// Window returns the batches captured after now-d, oldest first.
func (h *History) Window(d time.Duration, now time.Time) []flow.Batch {
	cutoff := now.Add(-d)

	h.mu.RLock()
	defer h.mu.RUnlock()

	start := len(h.batches)
	for i, b := range h.batches {
		if b.Timestamp.After(cutoff) {
			start = i
			break
		}
	}

	out := make([]flow.Batch, len(h.batches)-start)
	copy(out, h.batches[start:])
	return out
}

// Latest returns the most recently appended batch.
func (h *History) Latest() (flow.Batch, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.batches) == 0 {
		return flow.Batch{}, false
	}
	return h.batches[len(h.batches)-1], true
}

// Len returns the number of retained batches.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.batches)
}

// CountTrades returns the total number of trades across retained batches.
func (h *History) CountTrades() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, b := range h.batches {
		total += len(b.Trades)
	}
	return total
}
