// Package session keeps caller-side editing state on top of the stateless
// operations: the loaded original, the committed image, an undo stack and a
// background worker for live previews.
package session

import (
	"sync"
	"time"

	"github.com/KickHuynh/XuLyAnhSo/internal/models"
)

// Entry is one snapshot on the undo stack.
type Entry struct {
	Label string
	Image *models.Image
	At    time.Time
}

// History is a last-in-first-out stack of snapshots. When maxSize is
// positive the oldest snapshot is dropped once the stack is full.
type History struct {
	mu      sync.RWMutex
	entries []Entry
	maxSize int
}

func NewHistory(maxSize int) *History {
	return &History{maxSize: maxSize}
}

func (h *History) Push(label string, img *models.Image) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, Entry{Label: label, Image: img, At: time.Now()})
	if h.maxSize > 0 && len(h.entries) > h.maxSize {
		h.entries = h.entries[len(h.entries)-h.maxSize:]
	}
}

// Pop removes and returns the most recent snapshot.
func (h *History) Pop() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == 0 {
		return Entry{}, false
	}
	last := h.entries[len(h.entries)-1]
	h.entries[len(h.entries)-1] = Entry{}
	h.entries = h.entries[:len(h.entries)-1]
	return last, true
}

func (h *History) Peek() (Entry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.entries) == 0 {
		return Entry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Labels lists snapshot labels oldest first.
func (h *History) Labels() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	labels := make([]string, len(h.entries))
	for i, e := range h.entries {
		labels[i] = e.Label
	}
	return labels
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}
