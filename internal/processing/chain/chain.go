package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/KickHuynh/XuLyAnhSo/internal/models"
)

// ProcessingStep is one operator in a sequential chain.
type ProcessingStep interface {
	Apply(ctx context.Context, input *models.Image) (*models.Image, error)
	Name() string
}

// ProcessingChain feeds each step's output into the next. Cancellation is
// checked between steps only; a running step always completes.
type ProcessingChain struct {
	steps []ProcessingStep
}

func NewProcessingChain(steps []ProcessingStep) *ProcessingChain {
	return &ProcessingChain{
		steps: steps,
	}
}

// StepResult is the output of one executed step.
type StepResult struct {
	Name  string
	Image *models.Image
}

// Execute runs every step and returns the final image.
func (pc *ProcessingChain) Execute(ctx context.Context, input *models.Image) (*models.Image, error) {
	results, err := pc.ExecuteAll(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return input.Clone(), nil
	}
	return results[len(results)-1].Image, nil
}

// ExecuteAll runs every step and returns each intermediate output in order.
// The input is never modified.
func (pc *ProcessingChain) ExecuteAll(ctx context.Context, input *models.Image) ([]StepResult, error) {
	current := input
	results := make([]StepResult, 0, len(pc.steps))

	for _, step := range pc.steps {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		result, err := step.Apply(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("step %s failed: %w", step.Name(), err)
		}

		results = append(results, StepResult{Name: step.Name(), Image: result})
		current = result
	}

	return results, nil
}

// Apply runs the whole chain, so a chain can stand wherever a single
// ProcessingStep is accepted.
func (pc *ProcessingChain) Apply(ctx context.Context, input *models.Image) (*models.Image, error) {
	return pc.Execute(ctx, input)
}

// Name joins the step names with " > ".
func (pc *ProcessingChain) Name() string {
	return strings.Join(pc.GetStepNames(), " > ")
}

func (pc *ProcessingChain) AddStep(step ProcessingStep) {
	pc.steps = append(pc.steps, step)
}

func (pc *ProcessingChain) InsertStep(index int, step ProcessingStep) error {
	if index < 0 || index > len(pc.steps) {
		return fmt.Errorf("index out of range: %d", index)
	}

	pc.steps = append(pc.steps[:index], append([]ProcessingStep{step}, pc.steps[index:]...)...)
	return nil
}

func (pc *ProcessingChain) RemoveStep(index int) error {
	if index < 0 || index >= len(pc.steps) {
		return fmt.Errorf("index out of range: %d", index)
	}

	pc.steps = append(pc.steps[:index], pc.steps[index+1:]...)
	return nil
}

func (pc *ProcessingChain) StepCount() int {
	return len(pc.steps)
}

func (pc *ProcessingChain) GetStepNames() []string {
	names := make([]string, len(pc.steps))
	for i, step := range pc.steps {
		names[i] = step.Name()
	}
	return names
}
