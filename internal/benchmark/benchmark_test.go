package benchmark

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
)

func testImage(t *testing.T) *models.Image {
	t.Helper()
	img, err := models.NewImage(24, 16, 3)
	require.NoError(t, err)
	for i := range img.Pix {
		img.Pix[i] = uint8(i % 251)
	}
	return img
}

func TestCompareMeasuresEveryCell(t *testing.T) {
	r := NewRunner(nil, nil)
	plan := Plan{
		Spatial:     []string{"mean", "median"},
		Frequency:   []string{"glpf", "blpf"},
		KernelSizes: []int{3, 5},
		Runs:        2,
	}

	ms, err := r.Compare(context.Background(), testImage(t), plan)
	require.NoError(t, err)
	require.Len(t, ms, 8)

	assert.Equal(t, "Mean", ms[0].Operator)
	assert.Equal(t, "Mean", ms[4].Operator)
	assert.Equal(t, DomainSpatial, ms[0].Domain)
	assert.Equal(t, "GLPF", ms[2].Operator)
	assert.Equal(t, DomainFrequency, ms[2].Domain)
	assert.InDelta(t, 0.5, ms[2].D0, 1e-12)
	assert.InDelta(t, 5.0/6, ms[6].D0, 1e-12)
	for _, m := range ms {
		assert.Len(t, m.Samples, 2)
		assert.LessOrEqual(t, m.MinMs, m.MeanMs)
		assert.GreaterOrEqual(t, m.MaxMs, m.MeanMs)
	}
}

func TestCompareValidatesPlan(t *testing.T) {
	r := NewRunner(nil, nil)
	img := testImage(t)

	_, err := r.Compare(context.Background(), img, Plan{Spatial: []string{"mean"}, KernelSizes: []int{4}, Runs: 1})
	assert.ErrorIs(t, err, operr.ErrInvalidKernelSize)

	_, err = r.Compare(context.Background(), img, Plan{KernelSizes: []int{3}, Runs: 1})
	assert.ErrorIs(t, err, operr.ErrInvalidParameter)

	_, err = r.Compare(context.Background(), img, Plan{Frequency: []string{"notch"}, KernelSizes: []int{3}, Runs: 1})
	assert.ErrorIs(t, err, operr.ErrUnsupportedOperation)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Compare(ctx, img, Plan{Spatial: []string{"mean"}, KernelSizes: []int{3}, Runs: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummaryStatistics(t *testing.T) {
	m := Measurement{Samples: []time.Duration{time.Millisecond, 3 * time.Millisecond}}
	m.summarize()

	assert.InDelta(t, 2.0, m.MeanMs, 1e-9)
	assert.InDelta(t, 1.41421356, m.StdDevMs, 1e-6)
	assert.InDelta(t, 1.0, m.MinMs, 1e-9)
	assert.InDelta(t, 3.0, m.MaxMs, 1e-9)
}

func TestFastestAndTable(t *testing.T) {
	ms := []Measurement{
		{Operator: "Mean", KernelSize: 3, MeanMs: 2},
		{Operator: "GLPF", KernelSize: 3, MeanMs: 1},
		{Operator: "Mean", KernelSize: 5, MeanMs: 4},
	}

	fastest := Fastest(ms)
	assert.Equal(t, "GLPF", fastest[3].Operator)
	assert.Equal(t, "Mean", fastest[5].Operator)

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, ms))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Mean ms")
	assert.Contains(t, lines[0], "GLPF ms")
	assert.Contains(t, lines[1], "3x3")
	assert.Contains(t, lines[2], "-")
}

func TestIterativeHighPass(t *testing.T) {
	r := NewRunner(nil, nil)

	cps, err := r.IterativeHighPass(context.Background(), testImage(t), 4, 3, []int{1, 2})
	require.NoError(t, err)
	require.Len(t, cps, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{cps[0].Pass, cps[1].Pass, cps[2].Pass})

	_, err = r.IterativeHighPass(context.Background(), testImage(t), 4, 0, nil)
	assert.ErrorIs(t, err, operr.ErrInvalidIterationCount)
}

func TestWriteChartRendersLogScalePNG(t *testing.T) {
	ms := []Measurement{
		{Operator: "Mean", Domain: DomainSpatial, KernelSize: 9, MeanMs: 40},
		{Operator: "Mean", Domain: DomainSpatial, KernelSize: 3, MeanMs: 0.2},
		{Operator: "GLPF", Domain: DomainFrequency, KernelSize: 9, MeanMs: 3},
		{Operator: "GLPF", Domain: DomainFrequency, KernelSize: 3, MeanMs: 0},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, ms, "png"))
	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Greater(t, cfg.Width, cfg.Height)

	assert.ErrorIs(t, WriteChart(&buf, nil, "png"), operr.ErrInvalidParameter)
	assert.Error(t, WriteChart(&bytes.Buffer{}, ms, "bmp-nope"))
}

func TestWriteChartHandlesSingleMeasurement(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, []Measurement{
		{Operator: "Median", Domain: DomainSpatial, KernelSize: 5, MeanMs: 1},
	}, "svg"))
	assert.Contains(t, buf.String(), "<svg")
}

func TestLegendLabelNamesDomain(t *testing.T) {
	assert.Equal(t, "GLPF (FFT)", legendLabel(Measurement{Operator: "GLPF", Domain: DomainFrequency}))
	assert.Equal(t, "Median (conv)", legendLabel(Measurement{Operator: "Median", Domain: DomainSpatial}))
}
