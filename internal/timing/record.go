// Package timing measures pipeline stages and aggregates benchmark runs.
package timing

import (
	"fmt"
	"strings"
	"time"
)

// Stage is one named, timed step of a pipeline.
type Stage struct {
	Name    string
	Elapsed time.Duration
}

// Milliseconds returns the elapsed time as fractional milliseconds.
func (s Stage) Milliseconds() float64 {
	return float64(s.Elapsed) / float64(time.Millisecond)
}

// Record is an ordered list of stage timings. It is informational only.
type Record []Stage

// Get returns the elapsed time of the named stage.
func (r Record) Get(name string) (time.Duration, bool) {
	for _, s := range r {
		if s.Name == name {
			return s.Elapsed, true
		}
	}
	return 0, false
}

func (r Record) Names() []string {
	names := make([]string, len(r))
	for i, s := range r {
		names[i] = s.Name
	}
	return names
}

func (r Record) Total() time.Duration {
	var total time.Duration
	for _, s := range r {
		total += s.Elapsed
	}
	return total
}

// Prefixed returns a copy with every stage name prefixed, used when composite
// operations concatenate several pipeline runs.
func (r Record) Prefixed(prefix string) Record {
	out := make(Record, len(r))
	for i, s := range r {
		out[i] = Stage{Name: prefix + s.Name, Elapsed: s.Elapsed}
	}
	return out
}

func (r Record) String() string {
	var b strings.Builder
	for i, s := range r {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%.3fms", s.Name, s.Milliseconds())
	}
	return b.String()
}

// Stopwatch produces a Record by lapping: each Mark closes the stage that
// began at the previous Mark (or at construction).
type Stopwatch struct {
	last   time.Time
	record Record
	now    func() time.Time
}

func NewStopwatch() *Stopwatch {
	return newStopwatchWithClock(time.Now)
}

func newStopwatchWithClock(now func() time.Time) *Stopwatch {
	return &Stopwatch{last: now(), now: now}
}

// Restart moves the lap origin to now without recording anything.
func (sw *Stopwatch) Restart() {
	sw.last = sw.now()
}

// Mark records the time since the previous mark under name.
func (sw *Stopwatch) Mark(name string) time.Duration {
	t := sw.now()
	d := t.Sub(sw.last)
	sw.last = t
	sw.record = append(sw.record, Stage{Name: name, Elapsed: d})
	return d
}

// Record returns a copy of the stages marked so far.
func (sw *Stopwatch) Record() Record {
	out := make(Record, len(sw.record))
	copy(out, sw.record)
	return out
}
