package app

import (
	"sync"
	"time"
)

// Lifecycle is the application's shutdown hook: it reports the timings
// gathered during the run once.
type Lifecycle struct {
	app  *Application
	once sync.Once
}

func NewLifecycle(a *Application) *Lifecycle {
	return &Lifecycle{app: a}
}

func (l *Lifecycle) Shutdown() {
	l.once.Do(func() {
		tracker := l.app.Tracker
		for _, op := range tracker.Operations() {
			l.app.Log.Debug("Lifecycle", "operation timing", map[string]interface{}{
				"operation": op,
				"runs":      len(tracker.GetTimings(op)),
				"avg_ms":    float64(tracker.GetAverageTime(op)) / float64(time.Millisecond),
			})
		}
		l.app.Log.Info("Lifecycle", "shutdown sequence completed", map[string]interface{}{
			"operations": len(tracker.Operations()),
		})
	})
}
