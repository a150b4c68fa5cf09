package timing

import (
	"sync"
	"time"
)

// Tracker accumulates durations per operation across many runs. It is the
// aggregate counterpart of Stopwatch and is safe for concurrent use.
type Tracker struct {
	timings map[string][]time.Duration
	order   []string
	mu      sync.RWMutex
	enabled bool
}

func NewTracker() *Tracker {
	return &Tracker{
		timings: make(map[string][]time.Duration),
		enabled: true,
	}
}

// Observe appends one duration to the operation's series.
func (tt *Tracker) Observe(operation string, d time.Duration) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	if !tt.enabled {
		return
	}
	if _, ok := tt.timings[operation]; !ok {
		tt.order = append(tt.order, operation)
	}
	tt.timings[operation] = append(tt.timings[operation], d)
}

// ObserveRecord feeds every stage of a record into the tracker.
func (tt *Tracker) ObserveRecord(prefix string, r Record) {
	for _, s := range r {
		tt.Observe(prefix+s.Name, s.Elapsed)
	}
}

// Time runs fn and observes how long it took.
func (tt *Tracker) Time(operation string, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	tt.Observe(operation, d)
	return d
}

func (tt *Tracker) GetTimings(operation string) []time.Duration {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	timings := tt.timings[operation]
	if timings == nil {
		return nil
	}

	result := make([]time.Duration, len(timings))
	copy(result, timings)
	return result
}

// Operations lists operation names in first-observed order.
func (tt *Tracker) Operations() []string {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	names := make([]string, len(tt.order))
	copy(names, tt.order)
	return names
}

func (tt *Tracker) GetAverageTime(operation string) time.Duration {
	timings := tt.GetTimings(operation)
	if len(timings) == 0 {
		return 0
	}

	var total time.Duration
	for _, duration := range timings {
		total += duration
	}

	return total / time.Duration(len(timings))
}

func (tt *Tracker) SetEnabled(enabled bool) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.enabled = enabled
}

// Reset drops one operation's series, or everything when operation is empty.
func (tt *Tracker) Reset(operation string) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	if operation == "" {
		tt.timings = make(map[string][]time.Duration)
		tt.order = nil
		return
	}

	delete(tt.timings, operation)
	for i, name := range tt.order {
		if name == operation {
			tt.order = append(tt.order[:i], tt.order[i+1:]...)
			break
		}
	}
}
