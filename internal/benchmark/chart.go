package benchmark

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
)

// chartFloorMs keeps sub-microsecond means plottable on the log axis.
const chartFloorMs = 1e-3

// ChartSize is the rendered chart size.
var ChartSize = struct{ Width, Height vg.Length }{7 * vg.Inch, 5 * vg.Inch}

// WriteChart renders one line per operator, mean time against kernel size,
// with a logarithmic time axis. format is any gonum/plot image format
// ("png", "svg", "pdf", ...).
func WriteChart(w io.Writer, ms []Measurement, format string) error {
	if len(ms) == 0 {
		return operr.Wrap(operr.ErrInvalidParameter, "chart needs at least one measurement")
	}

	p := plot.New()
	p.Title.Text = "Spatial vs frequency filtering"
	p.X.Label.Text = "kernel size (n x n)"
	p.Y.Label.Text = "mean time (ms)"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	sizes := lo.Uniq(lo.Map(ms, func(m Measurement, _ int) int { return m.KernelSize }))
	slices.Sort(sizes)
	p.X.Tick.Marker = plot.ConstantTicks(lo.Map(sizes, func(k int, _ int) plot.Tick {
		return plot.Tick{Value: float64(k), Label: fmt.Sprintf("%dx%d", k, k)}
	}))

	lowMs, highMs := math.Inf(1), math.Inf(-1)
	operators := lo.Uniq(lo.Map(ms, func(m Measurement, _ int) string { return m.Operator }))
	for i, op := range operators {
		series := lo.Filter(ms, func(m Measurement, _ int) bool { return m.Operator == op })
		slices.SortFunc(series, func(a, b Measurement) int { return a.KernelSize - b.KernelSize })

		pts := make(plotter.XYs, len(series))
		for j, m := range series {
			pts[j].X = float64(m.KernelSize)
			pts[j].Y = math.Max(m.MeanMs, chartFloorMs)
			lowMs, highMs = math.Min(lowMs, pts[j].Y), math.Max(highMs, pts[j].Y)
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return fmt.Errorf("chart series %s: %w", op, err)
		}
		line.Color = plotutil.Color(i)
		if series[0].Domain == DomainFrequency {
			line.Dashes = plotutil.Dashes(1)
		}
		points.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(i)

		p.Add(line, points)
		p.Legend.Add(legendLabel(series[0]), line, points)
	}

	// Whole decades on the time axis; a flat series still spans one.
	p.Y.Min = math.Pow(10, math.Floor(math.Log10(lowMs)))
	p.Y.Max = math.Pow(10, math.Ceil(math.Log10(highMs)))
	if p.Y.Max <= p.Y.Min {
		p.Y.Max = p.Y.Min * 10
	}

	wt, err := p.WriterTo(ChartSize.Width, ChartSize.Height, format)
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

func legendLabel(m Measurement) string {
	if m.Domain == DomainFrequency {
		return m.Operator + " (FFT)"
	}
	return m.Operator + " (conv)"
}
