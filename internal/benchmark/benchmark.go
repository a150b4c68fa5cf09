// Package benchmark times spatial filters against frequency-domain filters
// over a sweep of kernel sizes and runs the iterative high-pass experiment.
package benchmark

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KickHuynh/XuLyAnhSo/internal/logger"
	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/operations"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/frequency"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/spatial"
)

const component = "benchmark"

const (
	DomainSpatial   = "spatial"
	DomainFrequency = "frequency"
)

// Plan selects what to time.
type Plan struct {
	Spatial     []string
	Frequency   []string
	KernelSizes []int
	Runs        int
	Order       int
}

// Measurement is the timing series of one operator at one kernel size.
// Frequency filters use the cutoff D0 = k/6 equivalent to the kernel.
type Measurement struct {
	Operator   string
	Domain     string
	KernelSize int
	D0         float64
	Samples    []time.Duration
	MeanMs     float64
	StdDevMs   float64
	MinMs      float64
	MaxMs      float64
}

// EquivalentCutoff maps a spatial kernel size to a frequency cutoff.
func EquivalentCutoff(k int) float64 {
	return float64(k) / 6
}

type Runner struct {
	processor *operations.Processor
	log       logger.Logger
}

func NewRunner(processor *operations.Processor, log logger.Logger) *Runner {
	if log == nil {
		log = logger.NewNop()
	}
	if processor == nil {
		processor = operations.NewProcessor(log, nil)
	}
	return &Runner{processor: processor, log: log}
}

func (p Plan) validate() error {
	if len(p.Spatial)+len(p.Frequency) == 0 {
		return operr.Wrap(operr.ErrInvalidParameter, "benchmark plan names no filters")
	}
	if len(p.KernelSizes) == 0 {
		return operr.Wrap(operr.ErrInvalidParameter, "benchmark plan names no kernel sizes")
	}
	for _, k := range p.KernelSizes {
		if err := spatial.ValidateKernelSize(k); err != nil {
			return err
		}
	}
	if p.Runs < 1 {
		return operr.Parameter("runs", p.Runs, ">= 1")
	}
	return nil
}

// Compare times every planned filter at every kernel size. Spatial filters
// run on the image as given; frequency filters run on the same image.
func (r *Runner) Compare(ctx context.Context, img *models.Image, plan Plan) ([]Measurement, error) {
	if err := plan.validate(); err != nil {
		return nil, err
	}
	if plan.Order <= 0 {
		plan.Order = frequency.DefaultOrder
	}

	var out []Measurement
	for _, k := range plan.KernelSizes {
		r.log.Info(component, "kernel size started", map[string]interface{}{"kernel_size": k})

		for _, name := range plan.Spatial {
			f, err := operations.NewFilter(name, k)
			if err != nil {
				return nil, err
			}
			// One operator name across sizes, so each filter is one table column.
			op, _, _ := strings.Cut(f.String(), "(")
			m, err := r.measure(ctx, op, DomainSpatial, k, 0, plan.Runs, func() error {
				_, err := r.processor.Filter(ctx, img, f)
				return err
			})
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}

		d0 := EquivalentCutoff(k)
		for _, name := range plan.Frequency {
			kind, err := frequency.ParseKind(name)
			if err != nil {
				return nil, err
			}
			f := operations.FrequencyFilter{Kind: kind, D0: d0, Order: plan.Order}
			m, err := r.measure(ctx, kind.String(), DomainFrequency, k, d0, plan.Runs, func() error {
				_, _, err := r.processor.Frequency(ctx, img, f)
				return err
			})
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *Runner) measure(ctx context.Context, name, domain string, k int, d0 float64, runs int, fn func() error) (Measurement, error) {
	m := Measurement{Operator: name, Domain: domain, KernelSize: k, D0: d0}
	for i := 0; i < runs; i++ {
		if err := ctx.Err(); err != nil {
			return Measurement{}, err
		}
		start := time.Now()
		if err := fn(); err != nil {
			return Measurement{}, fmt.Errorf("%s k=%d: %w", name, k, err)
		}
		m.Samples = append(m.Samples, time.Since(start))
	}
	m.summarize()
	return m, nil
}

func (m *Measurement) summarize() {
	ms := lo.Map(m.Samples, func(d time.Duration, _ int) float64 {
		return float64(d) / float64(time.Millisecond)
	})
	if len(ms) == 0 {
		return
	}
	m.MeanMs = stat.Mean(ms, nil)
	if len(ms) > 1 {
		m.StdDevMs = stat.StdDev(ms, nil)
	}
	m.MinMs = floats.Min(ms)
	m.MaxMs = floats.Max(ms)
}

// Fastest returns the operator with the lowest mean per kernel size.
func Fastest(ms []Measurement) map[int]Measurement {
	groups := lo.GroupBy(ms, func(m Measurement) int { return m.KernelSize })
	return lo.MapValues(groups, func(g []Measurement, _ int) Measurement {
		return lo.MinBy(g, func(a, b Measurement) bool { return a.MeanMs < b.MeanMs })
	})
}

// WriteTable prints one row per kernel size and one column per operator.
func WriteTable(w io.Writer, ms []Measurement) error {
	operators := lo.Uniq(lo.Map(ms, func(m Measurement, _ int) string { return m.Operator }))
	sizes := lo.Uniq(lo.Map(ms, func(m Measurement, _ int) int { return m.KernelSize }))
	slices.Sort(sizes)
	byCell := lo.KeyBy(ms, func(m Measurement) string { return cellKey(m.Operator, m.KernelSize) })

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := append([]string{"k"}, lo.Map(operators, func(op string, _ int) string { return op + " ms" })...)
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
	for _, k := range sizes {
		row := []string{fmt.Sprintf("%dx%d", k, k)}
		for _, op := range operators {
			m, ok := byCell[cellKey(op, k)]
			if !ok {
				row = append(row, "-")
				continue
			}
			row = append(row, fmt.Sprintf("%.3f±%.3f", m.MeanMs, m.StdDevMs))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}
	return tw.Flush()
}

func cellKey(op string, k int) string {
	return fmt.Sprintf("%s/%d", op, k)
}

// IterativeHighPass applies GHPF passes times, capturing checkpoints.
func (r *Runner) IterativeHighPass(ctx context.Context, img *models.Image, d0 float64, passes int, checkpoints []int) ([]frequency.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.log.Info(component, "iterative high-pass started", map[string]interface{}{"d0": d0, "passes": passes})
	cps, err := frequency.IterateHighPass(img, d0, passes, checkpoints)
	if err != nil {
		r.log.Error(component, err, map[string]interface{}{"d0": d0, "passes": passes})
		return nil, err
	}
	for _, cp := range cps {
		r.log.Info(component, "checkpoint", map[string]interface{}{
			"pass": cp.Pass, "elapsed_ms": float64(cp.Elapsed) / float64(time.Millisecond),
		})
	}
	return cps, nil
}
