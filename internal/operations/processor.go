package operations

import (
	"context"
	"time"

	"github.com/KickHuynh/XuLyAnhSo/internal/logger"
	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/morphology"
	"github.com/KickHuynh/XuLyAnhSo/internal/timing"
)

const component = "operations"

// Processor runs operations with logging and per-operation timing. The Apply
// functions remain usable on their own; Processor is what the CLI and the
// session worker call.
type Processor struct {
	log     logger.Logger
	tracker *timing.Tracker
}

func NewProcessor(log logger.Logger, tracker *timing.Tracker) *Processor {
	if log == nil {
		log = logger.NewNop()
	}
	if tracker == nil {
		tracker = timing.NewTracker()
	}
	return &Processor{log: log, tracker: tracker}
}

func (p *Processor) Tracker() *timing.Tracker {
	return p.tracker
}

func (p *Processor) Transform(ctx context.Context, img *models.Image, t Transform) (*models.Image, error) {
	var out *models.Image
	err := p.run(ctx, "transform", t.String(), img, func() error {
		var err error
		out, err = ApplyTransform(img, t)
		return err
	})
	return out, err
}

func (p *Processor) Filter(ctx context.Context, img *models.Image, f Filter) (*models.Image, error) {
	var out *models.Image
	err := p.run(ctx, "filter", f.String(), img, func() error {
		var err error
		out, err = ApplyFilter(img, f)
		return err
	})
	return out, err
}

// Frequency runs the frequency pipeline and feeds each stage into the tracker
// under "<kind>/<stage>".
func (p *Processor) Frequency(ctx context.Context, img *models.Image, f FrequencyFilter) (*models.Image, timing.Record, error) {
	var (
		out *models.Image
		rec timing.Record
	)
	err := p.run(ctx, "frequency", f.String(), img, func() error {
		var err error
		out, rec, err = ApplyFrequencyFilter(img, f)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	p.tracker.ObserveRecord(f.Kind.String()+"/", rec)
	p.log.Debug(component, "frequency stages", map[string]interface{}{
		"filter": f.String(),
		"stages": rec.String(),
	})
	return out, rec, nil
}

func (p *Processor) Morphology(ctx context.Context, img *models.Image, m Morphology) ([]morphology.Step, error) {
	var steps []morphology.Step
	err := p.run(ctx, "morphology", m.String(), img, func() error {
		var err error
		steps, err = ApplyMorphology(img, m)
		return err
	})
	return steps, err
}

func (p *Processor) run(ctx context.Context, category, name string, img *models.Image, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fields := map[string]interface{}{"category": category, "operation": name}
	if img != nil {
		fields["width"] = img.Width
		fields["height"] = img.Height
		fields["channels"] = img.Channels
	}

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	fields["duration_ms"] = float64(elapsed) / float64(time.Millisecond)

	if err != nil {
		p.log.Error(component, err, fields)
		return err
	}
	p.tracker.Observe(name, elapsed)
	p.log.Debug(component, "operation completed", fields)
	return nil
}
