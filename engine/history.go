package engine

import (
	"sync"
	"time"
)

// TickStat summarizes one completed tick for trend display.
type TickStat struct {
	At      time.Time
	InKBs   float64 // sum of group IN rates
	OutKBs  float64 // sum of group OUT rates
	Groups  int
	Skipped int
}

// History is a ring buffer of recent tick summaries.
type History struct {
	buf  []TickStat
	head int
	size int
	cap  int
	mu   sync.RWMutex
}

// NewHistory creates a ring buffer with the given capacity.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		buf: make([]TickStat, capacity),
		cap: capacity,
	}
}

// Push adds a tick summary to the ring buffer.
func (h *History) Push(s TickStat) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf[h.head] = s
	h.head = (h.head + 1) % h.cap
	if h.size < h.cap {
		h.size++
	}
}

// Len returns the number of summaries stored.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// Latest returns a copy of the most recent summary.
func (h *History) Latest() *TickStat {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.size == 0 {
		return nil
	}
	s := h.buf[(h.head-1+h.cap)%h.cap]
	return &s
}

// PeakKBs returns the highest combined IN+OUT rate seen in the buffer.
func (h *History) PeakKBs() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	peak := 0.0
	for i := 0; i < h.size; i++ {
		s := h.buf[(h.head-h.size+i+h.cap)%h.cap]
		if v := s.InKBs + s.OutKBs; v > peak {
			peak = v
		}
	}
	return peak
}
