package session

import (
	"context"
	"sync"

	"github.com/KickHuynh/XuLyAnhSo/internal/logger"
	"github.com/KickHuynh/XuLyAnhSo/internal/models"
)

// Job computes a preview. It should return promptly once ctx is cancelled.
type Job func(ctx context.Context) (*models.Image, error)

// Result is delivered for the most recent job only.
type Result struct {
	Seq   uint64
	Image *models.Image
	Err   error
}

// Worker runs one job at a time in the background. Submitting a job cancels
// the one in flight, and results of superseded jobs are discarded, so the
// callback only ever sees the latest request.
type Worker struct {
	mu       sync.Mutex
	seq      uint64
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	deliver  func(Result)
	log      logger.Logger
	isClosed bool
}

func NewWorker(deliver func(Result), log logger.Logger) *Worker {
	if log == nil {
		log = logger.NewNop()
	}
	return &Worker{deliver: deliver, log: log}
}

// Submit starts job and returns its sequence number. It returns 0 once the
// worker is closed.
func (w *Worker) Submit(job Job) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isClosed {
		return 0
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.seq++
	seq := w.seq
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer cancel()

		img, err := job(ctx)

		w.mu.Lock()
		latest := seq == w.seq && ctx.Err() == nil
		w.mu.Unlock()

		if !latest {
			w.log.Debug("PreviewWorker", "stale result dropped", map[string]interface{}{"seq": seq})
			return
		}
		if err != nil {
			w.log.Warning("PreviewWorker", "preview failed", map[string]interface{}{"seq": seq, "error": err.Error()})
		}
		w.deliver(Result{Seq: seq, Image: img, Err: err})
	}()
	return seq
}

// Cancel aborts the job in flight without delivering its result.
func (w *Worker) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

// Wait blocks until every started job has returned.
func (w *Worker) Wait() {
	w.wg.Wait()
}

// Close cancels the job in flight, refuses new ones and waits.
func (w *Worker) Close() {
	w.mu.Lock()
	w.isClosed = true
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.mu.Unlock()
	w.wg.Wait()
}
