package operations

import (
	"context"

	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/chain"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
)

type transformStep struct {
	p *Processor
	t Transform
}

func (s transformStep) Name() string { return s.t.String() }

func (s transformStep) Apply(ctx context.Context, img *models.Image) (*models.Image, error) {
	return s.p.Transform(ctx, img, s.t)
}

type filterStep struct {
	p *Processor
	f Filter
}

func (s filterStep) Name() string { return s.f.String() }

func (s filterStep) Apply(ctx context.Context, img *models.Image) (*models.Image, error) {
	return s.p.Filter(ctx, img, s.f)
}

type frequencyStep struct {
	p *Processor
	f FrequencyFilter
}

func (s frequencyStep) Name() string { return s.f.String() }

func (s frequencyStep) Apply(ctx context.Context, img *models.Image) (*models.Image, error) {
	out, _, err := s.p.Frequency(ctx, img, s.f)
	return out, err
}

// morphologyStep forwards only the final image of the operator.
type morphologyStep struct {
	p *Processor
	m Morphology
}

func (s morphologyStep) Name() string { return s.m.String() }

func (s morphologyStep) Apply(ctx context.Context, img *models.Image) (*models.Image, error) {
	steps, err := s.p.Morphology(ctx, img, s.m)
	if err != nil {
		return nil, err
	}
	return steps[len(steps)-1].Image, nil
}

// Step parses one description such as "median:k=5" into a chain step bound
// to the processor.
func (p *Processor) Step(spec string, d Defaults) (chain.ProcessingStep, error) {
	name, a, err := splitSpec(spec)
	if err != nil {
		return nil, err
	}
	category, err := Category(name)
	if err != nil {
		return nil, err
	}

	switch category {
	case "transform":
		t, err := parseTransform(name, a, d)
		if err != nil {
			return nil, err
		}
		return transformStep{p: p, t: t}, nil
	case "filter":
		f, err := parseFilter(name, a, d)
		if err != nil {
			return nil, err
		}
		return filterStep{p: p, f: f}, nil
	case "frequency":
		f, err := parseFrequency(name, a, d)
		if err != nil {
			return nil, err
		}
		return frequencyStep{p: p, f: f}, nil
	case "morphology":
		m, err := parseMorphology(name, a, d)
		if err != nil {
			return nil, err
		}
		return morphologyStep{p: p, m: m}, nil
	}
	return nil, operr.Wrap(operr.ErrUnsupportedOperation, "step %q", spec)
}

// Chain parses every description and assembles them into a processing chain.
func (p *Processor) Chain(specs []string, d Defaults) (*chain.ProcessingChain, error) {
	steps := make([]chain.ProcessingStep, 0, len(specs))
	for _, spec := range specs {
		step, err := p.Step(spec, d)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return chain.NewProcessingChain(steps), nil
}
