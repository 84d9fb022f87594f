package services

import (
	"sync"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// History is a capped ring buffer of chat turns. When full, appending
// evicts the oldest turn. Turns arrive as user/assistant pairs and the
// capacity is even, so the oldest kept turn is always a question.
type History struct {
	mu    sync.RWMutex
	turns []domain.ChatTurn
	start int
	size  int
}

// NewHistory creates a history holding at most capacity turns.
// capacity <= 0 uses domain.DefaultHistoryCapacity; an odd capacity is
// rounded up to the next even number.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = domain.DefaultHistoryCapacity
	}
	capacity += capacity % 2
	return &History{turns: make([]domain.ChatTurn, capacity)}
}

// Append adds turns in order.
func (h *History) Append(turns ...domain.ChatTurn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, t := range turns {
		idx := (h.start + h.size) % len(h.turns)
		h.turns[idx] = t
		if h.size < len(h.turns) {
			h.size++
		} else {
			h.start = (h.start + 1) % len(h.turns)
		}
	}
}

// Turns returns a copy of the turns, oldest first.
func (h *History) Turns() []domain.ChatTurn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]domain.ChatTurn, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.turns[(h.start+i)%len(h.turns)]
	}
	return out
}

// Len returns the number of stored turns.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// Cap returns the capacity.
func (h *History) Cap() int {
	return len(h.turns)
}

// Clear removes all turns.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.turns)
	h.start = 0
	h.size = 0
}
