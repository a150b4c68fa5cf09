package operations

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KickHuynh/XuLyAnhSo/internal/logger"
	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/frequency"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/morphology"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
	"github.com/KickHuynh/XuLyAnhSo/internal/timing"
)

func constant(t *testing.T, w, h, ch int, v uint8) *models.Image {
	t.Helper()
	img, err := models.NewUniform(w, h, ch, v)
	require.NoError(t, err)
	return img
}

func TestNegativeOfConstantImage(t *testing.T) {
	img := constant(t, 100, 100, 1, 100)

	out, err := ApplyTransform(img, Negative{})
	require.NoError(t, err)
	for _, v := range out.Pix {
		require.Equal(t, uint8(155), v)
	}
}

func TestGrayscaleAndCenterCrop(t *testing.T) {
	img := constant(t, 40, 30, 3, 120)

	gray, err := ApplyTransform(img, Grayscale{})
	require.NoError(t, err)
	assert.Equal(t, 1, gray.Channels)
	assert.Equal(t, uint8(120), gray.At(5, 5, 0))

	crop, err := ApplyTransform(img, CenterCrop{})
	require.NoError(t, err)
	assert.Equal(t, []int{20, 15, 3}, []int{crop.Width, crop.Height, crop.Channels})

	_, err = ApplyTransform(nil, CenterCrop{})
	assert.Error(t, err)
}

func TestMeanKeepsConstantInterior(t *testing.T) {
	img := constant(t, 100, 100, 1, 100)

	out, err := ApplyFilter(img, Mean{KernelSize: 3})
	require.NoError(t, err)
	for y := 1; y < 99; y++ {
		for x := 1; x < 99; x++ {
			require.Equal(t, uint8(100), out.At(x, y, 0), "pixel (%d,%d)", x, y)
		}
	}
}

func TestMorphologyOnFullForeground(t *testing.T) {
	img := constant(t, 20, 20, 1, 255)
	elements := []ElementSpec{
		{Shape: morphology.Rect, Size: 3},
		{Shape: morphology.Cross, Size: 5},
		{Shape: morphology.Ellipse, Size: 7},
		{Size: 3, Diagonal: true},
	}

	for _, el := range elements {
		t.Run(el.String(), func(t *testing.T) {
			for _, op := range []morphology.Op{morphology.Erosion, morphology.Dilation} {
				steps, err := ApplyMorphology(img, Morphology{Op: op, Element: el, Threshold: 127, Iterations: 1})
				require.NoError(t, err)
				assert.True(t, img.Equal(steps[len(steps)-1].Image), op.String())
			}

			steps, err := ApplyMorphology(img, Morphology{Op: morphology.Boundary, Element: el, Threshold: 127, Iterations: 1})
			require.NoError(t, err)
			for _, v := range steps[len(steps)-1].Image.Pix {
				require.Zero(t, v)
			}
		})
	}
}

func TestApplyFrequencyFilter(t *testing.T) {
	img := constant(t, 8, 6, 1, 80)
	img.Set(3, 3, 0, 200)

	out, rec, err := ApplyFrequencyFilter(img, FrequencyFilter{Kind: frequency.GLPF, D0: 2})
	require.NoError(t, err)
	assert.True(t, out.SameShape(img))
	assert.Equal(t, []string{"forward_dft", "center_shift", "transfer_function", "inverse_shift", "inverse_dft"}, rec.Names())
}

func TestParseTransform(t *testing.T) {
	d := DefaultParameters()
	cases := []struct {
		spec string
		want Transform
	}{
		{"negative", Negative{}},
		{"LOG:c=20", Log{C: 20}},
		{"log", Log{C: d.LogGain}},
		{"gamma:c=1.5,gamma=0.4", Gamma{C: 1.5, Gamma: 0.4}},
		{"stretch:low=0.2", PiecewiseLinear{Low: 0.2, High: d.StretchHigh}},
		{"equalize", Equalize{}},
		{"clahe:tile=4", CLAHE{Clip: d.ClaheClip, Tile: 4}},
		{"threshold:t=90", Threshold{T: 90}},
		{"threshold:t=OTSU", Threshold{Otsu: true}},
		{"gray", Grayscale{}},
		{"crop", CenterCrop{}},
	}
	for _, c := range cases {
		got, err := ParseTransform(c.spec, d)
		require.NoError(t, err, c.spec)
		assert.Equal(t, c.want, got, c.spec)
	}

	_, err := ParseTransform("sharpen", d)
	assert.ErrorIs(t, err, operr.ErrUnsupportedOperation)
	_, err = ParseTransform("log:c=abc", d)
	assert.ErrorIs(t, err, operr.ErrInvalidParameter)
	_, err = ParseTransform("log:c", d)
	assert.ErrorIs(t, err, operr.ErrInvalidParameter)
}

func TestParseFilterCoercesEvenKernel(t *testing.T) {
	d := DefaultParameters()

	f, err := ParseFilter("median:k=4", d)
	require.NoError(t, err)
	assert.Equal(t, Median{KernelSize: 5}, f)

	f, err = ParseFilter("sobel", d)
	require.NoError(t, err)
	assert.Equal(t, Sobel{KernelSize: d.KernelSize}, f)

	_, err = ParseFilter("bilateral", d)
	assert.ErrorIs(t, err, operr.ErrUnsupportedOperation)
}

func TestParseFrequencyFilter(t *testing.T) {
	d := DefaultParameters()

	f, err := ParseFrequencyFilter("bhpf:d0=20,n=3", d)
	require.NoError(t, err)
	assert.Equal(t, FrequencyFilter{Kind: frequency.BHPF, D0: 20, Order: 3}, f)

	f, err = ParseFrequencyFilter("glpf", d)
	require.NoError(t, err)
	assert.Equal(t, d.D0, f.D0)

	_, err = ParseFrequencyFilter("notch", d)
	assert.ErrorIs(t, err, operr.ErrUnsupportedOperation)
}

func TestParseMorphology(t *testing.T) {
	d := DefaultParameters()

	m, err := ParseMorphology("open:shape=ellipse,size=5,t=100,i=2", d)
	require.NoError(t, err)
	assert.Equal(t, Morphology{
		Op:         morphology.Opening,
		Element:    ElementSpec{Shape: morphology.Ellipse, Size: 5},
		Threshold:  100,
		Iterations: 2,
	}, m)

	m, err = ParseMorphology("boundary:shape=diagonal", d)
	require.NoError(t, err)
	assert.True(t, m.Element.Diagonal)
	el, err := m.Element.Build()
	require.NoError(t, err)
	assert.Equal(t, "100\n010\n001", el.String())

	m, err = ParseMorphology("dilate:t=otsu", d)
	require.NoError(t, err)
	assert.True(t, m.Otsu)
	assert.Equal(t, "dilate(rect(3), T=otsu, i=1)", m.String())

	_, err = ParseMorphology("erode:shape=star", d)
	assert.ErrorIs(t, err, operr.ErrInvalidStructuringElement)
}

func TestCategory(t *testing.T) {
	for name, want := range map[string]string{
		"gamma": "transform", "midpoint": "filter", "GHPF": "frequency", "close": "morphology",
	} {
		got, err := Category(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	for _, name := range Names() {
		_, err := Category(name)
		assert.NoError(t, err, name)
	}
	_, err := Category("warp")
	assert.ErrorIs(t, err, operr.ErrUnsupportedOperation)
}

func TestProcessorChainRunsStepsAndTracksThem(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewZerolog(&buf, zerolog.DebugLevel)
	tracker := timing.NewTracker()
	p := NewProcessor(log, tracker)

	pc, err := p.Chain([]string{"negative", "mean:k=3", "glpf:d0=5", "dilate:size=3"}, DefaultParameters())
	require.NoError(t, err)
	assert.Equal(t, []string{"Negative", "Mean(k=3)", "GLPF(D0=5)", "dilate(rect(3), T=127, i=1)"}, pc.GetStepNames())

	out, err := pc.Execute(context.Background(), constant(t, 16, 16, 3, 40))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Channels, "morphology emits a binary image")

	assert.Contains(t, tracker.Operations(), "Negative")
	assert.Contains(t, tracker.Operations(), "GLPF/forward_dft")
	assert.Contains(t, buf.String(), `"component":"operations"`)
}

func TestProcessorLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	p := NewProcessor(logger.NewZerolog(&buf, zerolog.DebugLevel), nil)

	_, err := p.Filter(context.Background(), constant(t, 4, 4, 1, 0), Mean{KernelSize: 4})
	assert.ErrorIs(t, err, operr.ErrInvalidKernelSize)
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Empty(t, p.Tracker().Operations())
}

func TestProcessorHonoursCancellation(t *testing.T) {
	p := NewProcessor(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Transform(ctx, constant(t, 2, 2, 1, 0), Negative{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStepRejectsUnknownName(t *testing.T) {
	p := NewProcessor(nil, nil)
	_, err := p.Step("emboss:k=3", DefaultParameters())
	assert.ErrorIs(t, err, operr.ErrUnsupportedOperation)

	_, err = p.Chain([]string{"negative", "mean:k"}, DefaultParameters())
	assert.ErrorIs(t, err, operr.ErrInvalidParameter)
}

func TestOtsuThresholdSeparatesModes(t *testing.T) {
	img, err := models.NewImage(8, 2, 1)
	require.NoError(t, err)
	for x := 0; x < 8; x++ {
		img.Set(x, 0, 0, 30)
		img.Set(x, 1, 0, 220)
	}

	out, err := ApplyTransform(img, Threshold{Otsu: true})
	require.NoError(t, err)
	assert.Equal(t, uint8(0), out.At(3, 0, 0))
	assert.Equal(t, uint8(255), out.At(3, 1, 0))

	steps, err := ApplyMorphology(img, Morphology{
		Op: morphology.Erosion, Element: ElementSpec{Shape: morphology.Rect, Size: 3}, Otsu: true, Iterations: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, uint8(255), steps[0].Image.At(3, 1, 0))
}
