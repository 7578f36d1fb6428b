package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ImportRun records one completed import.
type ImportRun struct {
	ID         uuid.UUID `json:"id"`
	FileName   string    `json:"filename"`
	Size       int       `json:"size"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Report     *Report   `json:"report"`
}

// history keeps the most recent runs, newest last, up to a fixed capacity.
type history struct {
	mu   sync.RWMutex
	runs []ImportRun
	max  int
}

func newHistory(max int) *history {
	return &history{max: max}
}

func (h *history) add(run ImportRun) {
	if h.max <= 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.runs = append(h.runs, run)
	if over := len(h.runs) - h.max; over > 0 {
		h.runs = append(h.runs[:0:0], h.runs[over:]...)
	}
}

// recent returns the runs newest first.
func (h *history) recent() []ImportRun {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]ImportRun, len(h.runs))
	for i, run := range h.runs {
		out[len(h.runs)-1-i] = run
	}
	return out
}
