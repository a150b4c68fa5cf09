package frequency

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
)

func gradient(t *testing.T, w, h int) *models.Image {
	t.Helper()
	img, err := models.NewImage(w, h, 1)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, 0, uint8(math.Round(255*float64(x+y)/float64(w+h-2))))
		}
	}
	return img
}

func TestIdealFiltersAreExactComplements(t *testing.T) {
	for _, size := range [][2]int{{8, 8}, {7, 10}, {1, 5}} {
		for _, d0 := range []float64{0, 1.5, 3, 100} {
			lp := IdealLowPass(size[0], size[1], d0, 0)
			hp := IdealHighPass(size[0], size[1], d0, 0)
			for i := range lp.Data {
				require.Equal(t, 1.0, lp.Data[i]+hp.Data[i])
			}
		}
	}
}

func TestGaussianFiltersAreComplements(t *testing.T) {
	for _, d0 := range []float64{0.5, 4, 30} {
		lp := GaussianLowPass(9, 12, d0, 0)
		hp := GaussianHighPass(9, 12, d0, 0)
		for i := range lp.Data {
			require.InDelta(t, 1.0, lp.Data[i]+hp.Data[i], 1e-15)
		}
	}
}

func TestTransferFunctionsStayInUnitRange(t *testing.T) {
	for _, k := range Kinds() {
		for _, d0 := range []float64{0, 2, 10} {
			h := k.Transfer()(11, 9, d0, DefaultOrder)
			require.Equal(t, 9, h.Width)
			require.Equal(t, 11, h.Height)
			for _, v := range h.Data {
				require.False(t, math.IsNaN(v), "%s d0=%v", k, d0)
				require.GreaterOrEqual(t, v, 0.0, "%s d0=%v", k, d0)
				require.LessOrEqual(t, v, 1.0, "%s d0=%v", k, d0)
			}
		}
	}
}

func TestTransferFunctionValuesAtCentreAndCutoff(t *testing.T) {
	const rows, cols = 21, 21
	centre := (rows/2)*cols + cols/2
	atCutoff := (rows/2)*cols + cols/2 + 5 // D = 5

	assert.Equal(t, 1.0, IdealLowPass(rows, cols, 5, 0).Data[atCutoff], "D <= D0 passes")
	assert.Equal(t, 1.0, GaussianLowPass(rows, cols, 5, 0).Data[centre])
	assert.InDelta(t, math.Exp(-0.5), GaussianLowPass(rows, cols, 5, 0).Data[atCutoff], 1e-12)
	assert.InDelta(t, 0.5, ButterworthLowPass(rows, cols, 5, 2).Data[atCutoff], 1e-12)
	assert.InDelta(t, 0.5, ButterworthHighPass(rows, cols, 5, 2).Data[atCutoff], 1e-12)
	assert.InDelta(t, 0.0, ButterworthHighPass(rows, cols, 5, 2).Data[centre], 1e-12, "D=0 uses epsilon")
}

func TestDistanceMatrixCentre(t *testing.T) {
	d := DistanceMatrix(4, 6)
	assert.Equal(t, 0.0, d.At(3, 2))
	assert.InDelta(t, math.Sqrt(13), d.At(0, 0), 1e-12)
}

func TestFilterValidate(t *testing.T) {
	assert.NoError(t, Filter{Kind: GLPF, D0: 0}.Validate())
	assert.ErrorIs(t, Filter{Kind: GLPF, D0: -1}.Validate(), operr.ErrInvalidParameter)
	assert.ErrorIs(t, Filter{Kind: BLPF, D0: 10}.Validate(), operr.ErrInvalidOrder)
	assert.ErrorIs(t, Filter{Kind: BHPF, D0: 10, Order: -2}.Validate(), operr.ErrInvalidOrder)
	assert.NoError(t, Filter{Kind: BHPF, D0: 10, Order: 1}.Validate())
	assert.ErrorIs(t, Filter{Kind: Kind(42), D0: 10}.Validate(), operr.ErrUnsupportedOperation)
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	k, err := ParseKind(" bhpf ")
	require.NoError(t, err)
	assert.Equal(t, BHPF, k)

	_, err = ParseKind("notch")
	assert.ErrorIs(t, err, operr.ErrUnsupportedOperation)
}

func TestShiftMovesDCToCentreAndBack(t *testing.T) {
	for _, size := range [][2]int{{4, 6}, {5, 7}} {
		p := models.NewPlane(size[1], size[0])
		for i := range p.Data {
			p.Data[i] = 3
		}
		spec := Forward(p)
		shifted := spec.Shift()

		dc := shifted[size[0]/2][size[1]/2]
		assert.InDelta(t, 3*float64(size[0]*size[1]), real(dc), 1e-9)

		back := shifted.InverseShift()
		for y := range spec {
			for x := range spec[y] {
				require.Equal(t, spec[y][x], back[y][x])
			}
		}
	}
}

func TestForwardInverseRoundTrip(t *testing.T) {
	img := gradient(t, 10, 6)
	p := img.Plane(0)

	back := Inverse(Forward(p))
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			assert.InDelta(t, p.At(x, y), real(back[y][x]), 1e-9)
			assert.InDelta(t, 0, imag(back[y][x]), 1e-9)
		}
	}
	assert.InDelta(t, p.At(4, 3), cmplx.Abs(back[3][4]), 1e-9)
}

func TestIdealLowPassCoveringSpectrumReproducesInput(t *testing.T) {
	img := gradient(t, 24, 18)
	diagonal := math.Hypot(24, 18)

	out, rec, err := Apply(img, Filter{Kind: ILPF, D0: diagonal})
	require.NoError(t, err)
	require.True(t, img.SameShape(out))
	for i := range img.Pix {
		require.InDelta(t, int(img.Pix[i]), int(out.Pix[i]), 2, "sample %d", i)
	}
	assert.Equal(t, []string{
		StageForwardDFT, StageCenterShift, StageTransferFunction, StageInverseShift, StageInverseDFT,
	}, rec.Names())
}

func TestApplyColorRunsAllStagesAndKeepsShape(t *testing.T) {
	img, err := models.NewImage(12, 8, 3)
	require.NoError(t, err)
	for i := 0; i < 12*8; i++ {
		v := uint8(i * 255 / (12*8 - 1))
		img.Pix[i*3], img.Pix[i*3+1], img.Pix[i*3+2] = v, v, v
	}
	before := img.Clone()

	out, rec, err := Apply(img, Filter{Kind: ILPF, D0: 1000})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Channels)
	assert.Equal(t, []string{
		StageColorDecomposition, StageForwardDFT, StageCenterShift, StageTransferFunction,
		StageInverseShift, StageInverseDFT, StageColorRecomposition,
	}, rec.Names())
	for i := range img.Pix {
		require.InDelta(t, int(img.Pix[i]), int(out.Pix[i]), 3, "sample %d", i)
	}
	assert.True(t, before.Equal(img), "input must not be modified")
}

func TestApplyZeroCutoffIsDefined(t *testing.T) {
	img := gradient(t, 8, 8)
	for _, k := range Kinds() {
		out, _, err := Apply(img, Filter{Kind: k, D0: 0, Order: DefaultOrder})
		require.NoError(t, err, k.String())
		require.Len(t, out.Pix, 64)
	}
}

func TestApplyRejectsBadParameters(t *testing.T) {
	img := gradient(t, 8, 8)

	_, _, err := Apply(img, Filter{Kind: GHPF, D0: -3})
	assert.ErrorIs(t, err, operr.ErrInvalidParameter)

	_, _, err = Apply(img, Filter{Kind: BLPF, D0: 3})
	assert.ErrorIs(t, err, operr.ErrInvalidOrder)
}

func TestApplyNormalizesToFullRange(t *testing.T) {
	img, err := models.NewUniform(16, 16, 1, 200)
	require.NoError(t, err)
	for y := 4; y < 12; y++ {
		img.Set(8, y, 0, 0)
	}

	out, _, err := Apply(img, Filter{Kind: GHPF, D0: 4})
	require.NoError(t, err)
	lo, hi := uint8(255), uint8(0)
	for _, v := range out.Pix {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	assert.Equal(t, uint8(0), lo)
	assert.Equal(t, uint8(255), hi)
}

func TestLowThenHigh(t *testing.T) {
	img := gradient(t, 16, 16)

	results, err := LowThenHigh(img, 8)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "GLPF", results[0].Label)
	assert.Equal(t, "GLPF+GHPF", results[1].Label)
	for _, r := range results {
		assert.True(t, img.SameShape(r.Image))
		assert.NotEmpty(t, r.Timings)
	}
	combined := results[1].Timings
	assert.Len(t, combined, 2*len(results[0].Timings))
	_, ok := combined.Get("GLPF/" + StageForwardDFT)
	assert.True(t, ok)
	_, ok = combined.Get("GHPF/" + StageInverseDFT)
	assert.True(t, ok)

	_, err = LowThenHigh(img, -1)
	assert.ErrorIs(t, err, operr.ErrInvalidParameter)
}

func TestIterateHighPassCheckpoints(t *testing.T) {
	img := gradient(t, 8, 8)

	cps, err := IterateHighPass(img, 5, 12, nil)
	require.NoError(t, err)
	require.Len(t, cps, 3)
	assert.Equal(t, []int{1, 10, 12}, []int{cps[0].Pass, cps[1].Pass, cps[2].Pass})
	for i := 1; i < len(cps); i++ {
		assert.GreaterOrEqual(t, cps[i].Elapsed, cps[i-1].Elapsed, "elapsed is cumulative")
	}

	// Each pass feeds the next: one pass applied to checkpoint 1 gives pass 2.
	two, err := IterateHighPass(img, 5, 2, []int{2})
	require.NoError(t, err)
	again, _, err := Apply(cps[0].Image, Filter{Kind: GHPF, D0: 5})
	require.NoError(t, err)
	assert.True(t, two[0].Image.Equal(again))

	_, err = IterateHighPass(img, 5, 0, nil)
	assert.ErrorIs(t, err, operr.ErrInvalidIterationCount)
}

func TestLogMagnitudeOfUniformImagePeaksAtCentre(t *testing.T) {
	img, err := models.NewUniform(9, 9, 3, 50)
	require.NoError(t, err)

	out, err := LogMagnitude(img)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Channels)
	assert.Equal(t, uint8(255), out.At(4, 4, 0))
	assert.Equal(t, uint8(0), out.At(0, 0, 0))
}
