package session

import (
	"context"
	"errors"
	"sync"

	"github.com/KickHuynh/XuLyAnhSo/internal/logger"
	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/chain"
)

var ErrNoImage = errors.New("no image loaded")

// Session separates previewing from committing. Previews run against the
// committed image and never change state; Apply commits, pushing the prior
// image onto the undo stack.
type Session struct {
	mu       sync.RWMutex
	original *models.Image
	current  *models.Image
	history  *History
	log      logger.Logger
}

func New(historyDepth int, log logger.Logger) *Session {
	if log == nil {
		log = logger.NewNop()
	}
	return &Session{history: NewHistory(historyDepth), log: log}
}

// Load replaces the original and clears the undo stack.
func (s *Session) Load(img *models.Image) error {
	if err := img.Validate("session load"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.original = img.Clone()
	s.current = img.Clone()
	s.history.Clear()
	s.log.Info("Session", "image loaded", map[string]interface{}{
		"width": img.Width, "height": img.Height, "channels": img.Channels,
	})
	return nil
}

// Current returns the committed image.
func (s *Session) Current() (*models.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoImage
	}
	return s.current, nil
}

func (s *Session) Original() (*models.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.original == nil {
		return nil, ErrNoImage
	}
	return s.original, nil
}

// Preview runs step on the committed image without recording anything.
func (s *Session) Preview(ctx context.Context, step chain.ProcessingStep) (*models.Image, error) {
	cur, err := s.Current()
	if err != nil {
		return nil, err
	}
	return step.Apply(ctx, cur)
}

// Apply runs step on the committed image and commits the result.
func (s *Session) Apply(ctx context.Context, step chain.ProcessingStep) (*models.Image, error) {
	out, err := s.Preview(ctx, step)
	if err != nil {
		return nil, err
	}
	s.Commit(step.Name(), out)
	return out, nil
}

// Commit makes img the current image and pushes the previous one.
func (s *Session) Commit(label string, img *models.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.history.Push(label, s.current)
	}
	s.current = img
	s.log.Debug("Session", "image committed", map[string]interface{}{
		"operation": label, "history": s.history.Len(),
	})
}

// Undo restores the image before the last commit and reports what was undone.
func (s *Session) Undo() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.history.Pop()
	if !ok {
		return "", false
	}
	s.current = e.Image
	return e.Label, true
}

// Reset returns to the original and clears the undo stack.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.original == nil {
		return ErrNoImage
	}
	s.current = s.original.Clone()
	s.history.Clear()
	return nil
}

func (s *Session) History() *History {
	return s.history
}
