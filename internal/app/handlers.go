package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/KickHuynh/XuLyAnhSo/internal/benchmark"
	"github.com/KickHuynh/XuLyAnhSo/internal/imageio"
	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/operations"
	"github.com/KickHuynh/XuLyAnhSo/internal/preview"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/frequency"
)

// Output is one image a job produces for an input file. Suffix is appended
// to the input's base name.
type Output struct {
	Suffix string
	Label  string
	Image  *models.Image
}

// Job turns one decoded input into its outputs.
type Job func(ctx context.Context, img *models.Image) ([]Output, error)

// WriteOptions control how outputs are stored.
type WriteOptions struct {
	// Ext selects the encoder, ".png" when empty.
	Ext string
	// Fit scales outputs into the configured preview box.
	Fit bool
	// Sheet writes one contact sheet per input instead of separate files.
	Sheet bool
	// Pair writes every output twice, as JPEG and as PNG, ignoring Ext.
	Pair bool
}

// LoadImage decodes path and, when Config.Input.Resize is set, scales it to
// the configured input size.
func (a *Application) LoadImage(path string) (*models.Image, error) {
	img, err := a.Codec.ReadFile(path)
	if err != nil {
		return nil, err
	}
	in := a.Config.Input
	if !in.Resize {
		return img, nil
	}
	return preview.Resize(img, in.Width, in.Height)
}

// ProcessFiles runs job on every input, at most Config.Jobs at a time, and
// writes the outputs into the output directory. It returns the written
// paths sorted. The first failure cancels the remaining files.
func (a *Application) ProcessFiles(ctx context.Context, inputs []string, job Job, opts WriteOptions) ([]string, error) {
	if err := a.ensureOutputDir(); err != nil {
		return nil, err
	}
	if opts.Ext == "" {
		opts.Ext = ".png"
	}

	var (
		mu      sync.Mutex
		written []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Config.Jobs)

	for _, in := range inputs {
		g.Go(func() error {
			paths, err := a.processFile(gctx, in, job, opts)
			if err != nil {
				a.Log.Error("Handlers", err, map[string]interface{}{"input": in})
				return fmt.Errorf("%s: %w", filepath.Base(in), err)
			}
			mu.Lock()
			written = append(written, paths...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(written)
	a.Log.Info("Handlers", "batch completed", map[string]interface{}{
		"inputs": len(inputs), "outputs": len(written),
	})
	return written, nil
}

func (a *Application) processFile(ctx context.Context, in string, job Job, opts WriteOptions) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := a.LoadImage(in)
	if err != nil {
		return nil, err
	}
	outputs, err := job(ctx, img)
	if err != nil {
		return nil, err
	}

	if opts.Sheet && len(outputs) > 1 {
		sheet, err := a.contactSheet(img, outputs)
		if err != nil {
			return nil, err
		}
		outputs = []Output{{Suffix: outputs[len(outputs)-1].Suffix + "_sheet", Image: sheet}}
	}

	paths := make([]string, 0, len(outputs))
	for _, o := range outputs {
		out := o.Image
		if opts.Fit {
			if out, err = preview.Fit(out, a.Config.Preview.Width, a.Config.Preview.Height); err != nil {
				return nil, err
			}
		}
		exts := []string{opts.Ext}
		if opts.Pair {
			exts = []string{".jpg", ".png"}
		}
		for _, ext := range exts {
			path := imageio.OutputPath(a.Config.Paths.OutputDir, in, o.Suffix, ext)
			if err := a.Codec.WriteFile(path, out); err != nil {
				return nil, err
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func (a *Application) contactSheet(original *models.Image, outputs []Output) (*models.Image, error) {
	tiles := []preview.Tile{{Label: "Original", Image: original}}
	for _, o := range outputs {
		tiles = append(tiles, preview.Tile{Label: o.Label, Image: o.Image})
	}
	cell := min(a.Config.Preview.Width, a.Config.Preview.Height) / 2
	return preview.ContactSheet(tiles, len(tiles), max(cell, 16), 8)
}

// Slug turns an operation name such as "Median(k=5)" into "median_k_5".
func Slug(name string) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			sep = false
			continue
		}
		sep = true
	}
	return b.String()
}

// StepJob runs one parsed step, e.g. "median:k=5".
func (a *Application) StepJob(spec string) (Job, error) {
	step, err := a.Processor.Step(spec, a.Config.Defaults)
	if err != nil {
		return nil, err
	}
	suffix := Slug(step.Name())
	return func(ctx context.Context, img *models.Image) ([]Output, error) {
		out, err := step.Apply(ctx, img)
		if err != nil {
			return nil, err
		}
		return []Output{{Suffix: suffix, Label: step.Name(), Image: out}}, nil
	}, nil
}

// ChainJob runs specs in order. With all set every intermediate result is
// an output, otherwise only the last.
func (a *Application) ChainJob(specs []string, all bool) (Job, error) {
	pc, err := a.Processor.Chain(specs, a.Config.Defaults)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, img *models.Image) ([]Output, error) {
		results, err := pc.ExecuteAll(ctx, img)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return nil, fmt.Errorf("empty chain")
		}
		if !all {
			results = results[len(results)-1:]
		}
		outputs := make([]Output, len(results))
		for i, r := range results {
			outputs[i] = Output{Suffix: fmt.Sprintf("%02d_%s", i+1, Slug(r.Name)), Label: r.Name, Image: r.Image}
		}
		if !all {
			outputs[0].Suffix = "chain"
		}
		return outputs, nil
	}, nil
}

// MorphologyJob emits every labelled step of the operator.
func (a *Application) MorphologyJob(spec string) (Job, error) {
	m, err := operations.ParseMorphology(spec, a.Config.Defaults)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, img *models.Image) ([]Output, error) {
		steps, err := a.Processor.Morphology(ctx, img, m)
		if err != nil {
			return nil, err
		}
		outputs := make([]Output, len(steps))
		for i, s := range steps {
			outputs[i] = Output{Suffix: m.Op.String() + "_" + Slug(s.Label), Label: s.Label, Image: s.Image}
		}
		return outputs, nil
	}, nil
}

// FrequencyJob applies one transfer function and logs its stage timings.
func (a *Application) FrequencyJob(spec string) (Job, error) {
	f, err := operations.ParseFrequencyFilter(spec, a.Config.Defaults)
	if err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return func(ctx context.Context, img *models.Image) ([]Output, error) {
		out, rec, err := a.Processor.Frequency(ctx, img, f)
		if err != nil {
			return nil, err
		}
		a.Log.Info("Handlers", "frequency stages", map[string]interface{}{
			"filter": f.String(), "total_ms": float64(rec.Total().Microseconds()) / 1000, "stages": rec.String(),
		})
		return []Output{{Suffix: Slug(f.String()), Label: f.String(), Image: out}}, nil
	}, nil
}

// CompositeJob applies GLPF and then GHPF at the same cutoff.
func (a *Application) CompositeJob(d0 float64) Job {
	return func(ctx context.Context, img *models.Image) ([]Output, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results, err := frequency.LowThenHigh(img, d0)
		if err != nil {
			return nil, err
		}
		outputs := make([]Output, len(results))
		for i, r := range results {
			outputs[i] = Output{Suffix: Slug(r.Label), Label: r.Label, Image: r.Image}
		}
		// The last result spans both filter runs.
		combined := results[len(results)-1].Timings
		a.Tracker.ObserveRecord("", combined)
		a.Log.Debug("Handlers", "composite finished", map[string]interface{}{
			"d0": d0, "total_ms": float64(combined.Total().Microseconds()) / 1000,
		})
		return outputs, nil
	}
}

// ChannelsJob writes the red, green and blue channels as gray images.
func (a *Application) ChannelsJob() Job {
	return func(ctx context.Context, img *models.Image) ([]Output, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, g, b, err := imageio.SplitRGB(img)
		if err != nil {
			return nil, err
		}
		return []Output{
			{Suffix: "r", Label: "Red", Image: r},
			{Suffix: "g", Label: "Green", Image: g},
			{Suffix: "b", Label: "Blue", Image: b},
		}, nil
	}
}

// WriteBenchmarkChart renders ms to path in the format named by its
// extension, PNG when it has none.
func (a *Application) WriteBenchmarkChart(path string, ms []benchmark.Measurement) (err error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		format = "png"
		path += ".png"
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := benchmark.WriteChart(f, ms, format); err != nil {
		return err
	}
	a.Log.Info("Handlers", "benchmark chart written", map[string]interface{}{"path": path, "measurements": len(ms)})
	return nil
}

// IterateJob repeats GHPF and emits each checkpoint.
func (a *Application) IterateJob(d0 float64, passes int, checkpoints []int) Job {
	return func(ctx context.Context, img *models.Image) ([]Output, error) {
		cps, err := a.Bench.IterativeHighPass(ctx, img, d0, passes, checkpoints)
		if err != nil {
			return nil, err
		}
		outputs := make([]Output, len(cps))
		for i, cp := range cps {
			label := fmt.Sprintf("GHPF x%d", cp.Pass)
			outputs[i] = Output{Suffix: fmt.Sprintf("ghpf_pass%d", cp.Pass), Label: label, Image: cp.Image}
		}
		return outputs, nil
	}
}

// SpectrumJob emits the centred log-magnitude spectrum.
func (a *Application) SpectrumJob() Job {
	return func(ctx context.Context, img *models.Image) ([]Output, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		spec, err := frequency.LogMagnitude(img)
		if err != nil {
			return nil, err
		}
		return []Output{{Suffix: "spectrum", Label: "Spectrum", Image: spec}}, nil
	}
}
