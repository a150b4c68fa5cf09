package morphology

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
)

func square(t *testing.T, w, h, x0, y0, side int) *models.Image {
	t.Helper()
	img, err := models.NewImage(w, h, 1)
	require.NoError(t, err)
	for y := y0; y < y0+side; y++ {
		for x := x0; x < x0+side; x++ {
			img.Set(x, y, 0, on)
		}
	}
	return img
}

func randomBinary(t *testing.T, seed int64) *models.Image {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	img, err := models.NewImage(24, 20, 1)
	require.NoError(t, err)
	for i := range img.Pix {
		if rng.Intn(3) > 0 {
			img.Pix[i] = on
		}
	}
	return img
}

func mustElement(t *testing.T, shape Shape, size int) *Element {
	t.Helper()
	el, err := NewElement(shape, size)
	require.NoError(t, err)
	return el
}

func TestNewElementShapes(t *testing.T) {
	assert.Equal(t, "111\n111\n111", mustElement(t, Rect, 3).String())
	assert.Equal(t, "010\n111\n010", mustElement(t, Cross, 3).String())
	assert.Equal(t, "010\n111\n010", mustElement(t, Ellipse, 3).String())
	assert.Equal(t, "00100\n11111\n11111\n11111\n00100", mustElement(t, Ellipse, 5).String())
	assert.Equal(t, "00100\n00100\n11111\n00100\n00100", mustElement(t, Cross, 5).String())
}

func TestNewElementRoundsEvenSizeUp(t *testing.T) {
	el := mustElement(t, Rect, 4)
	assert.Equal(t, 5, el.Size)
}

func TestNewElementRejectsBadInput(t *testing.T) {
	_, err := NewElement(Rect, 2)
	assert.ErrorIs(t, err, operr.ErrInvalidStructuringElement)
	_, err = NewElement(Shape(9), 3)
	assert.ErrorIs(t, err, operr.ErrInvalidStructuringElement)
	_, err = ParseShape("hexagon")
	assert.ErrorIs(t, err, operr.ErrInvalidStructuringElement)

	_, err = CustomElement([][]uint8{{1, 1}, {1, 1}})
	assert.ErrorIs(t, err, operr.ErrInvalidStructuringElement)
	_, err = CustomElement([][]uint8{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}})
	assert.ErrorIs(t, err, operr.ErrInvalidStructuringElement)
	_, err = CustomElement([][]uint8{{1, 0, 0}, {0, 1}, {0, 0, 1}})
	assert.ErrorIs(t, err, operr.ErrInvalidStructuringElement)
}

func TestParseShapeAndOp(t *testing.T) {
	s, err := ParseShape("Rectangle")
	require.NoError(t, err)
	assert.Equal(t, Rect, s)

	op, err := ParseOp("Opening")
	require.NoError(t, err)
	assert.Equal(t, Opening, op)

	_, err = ParseOp("tophat")
	assert.ErrorIs(t, err, operr.ErrUnsupportedOperation)
}

func TestErodeDilateSquare(t *testing.T) {
	img := square(t, 10, 10, 3, 3, 4)
	el := mustElement(t, Rect, 3)

	eroded, err := Erode(img, el, 1)
	require.NoError(t, err)
	dilated, err := Dilate(img, el, 1)
	require.NoError(t, err)

	assert.True(t, square(t, 10, 10, 4, 4, 2).Equal(eroded))
	assert.True(t, square(t, 10, 10, 2, 2, 6).Equal(dilated))

	twice, err := Erode(img, el, 2)
	require.NoError(t, err)
	for _, v := range twice.Pix {
		require.Equal(t, off, v)
	}
}

func TestOpeningRemovesSpecksAndClosingFillsHoles(t *testing.T) {
	el := mustElement(t, Rect, 3)

	speck := square(t, 12, 12, 2, 2, 6)
	speck.Set(10, 10, 0, on)
	_, opened, err := Open(speck, el, 1)
	require.NoError(t, err)
	assert.Equal(t, off, opened.At(10, 10, 0))
	assert.True(t, square(t, 12, 12, 2, 2, 6).Equal(opened))

	hole := square(t, 12, 12, 2, 2, 6)
	hole.Set(4, 4, 0, off)
	_, closed, err := Close(hole, el, 1)
	require.NoError(t, err)
	assert.True(t, square(t, 12, 12, 2, 2, 6).Equal(closed))
}

func TestOpeningIsSubsetAndClosingIsSuperset(t *testing.T) {
	elements := []*Element{mustElement(t, Rect, 3), mustElement(t, Cross, 5), mustElement(t, Ellipse, 5)}
	diag, err := Diagonal(3)
	require.NoError(t, err)
	elements = append(elements, diag)

	for seed := int64(1); seed <= 5; seed++ {
		img := randomBinary(t, seed)
		for _, el := range elements {
			for _, it := range []int{1, 2} {
				_, opened, err := Open(img, el, it)
				require.NoError(t, err)
				_, closed, err := Close(img, el, it)
				require.NoError(t, err)
				for i := range img.Pix {
					if opened.Pix[i] != off {
						require.Equal(t, on, img.Pix[i], "opening added pixel %d (seed %d)\n%s", i, seed, el)
					}
					if img.Pix[i] != off {
						require.Equal(t, on, closed.Pix[i], "closing removed pixel %d (seed %d)\n%s", i, seed, el)
					}
				}
			}
		}
	}
}

func TestBoundaryOfSquareIsOnePixelFrame(t *testing.T) {
	const side = 8
	img := square(t, 16, 16, 4, 4, side)

	_, boundary, err := ExtractBoundary(img, mustElement(t, Rect, 3), 1)
	require.NoError(t, err)

	count := 0
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			inSquare := x >= 4 && x < 4+side && y >= 4 && y < 4+side
			onRing := inSquare && (x == 4 || y == 4 || x == 3+side || y == 3+side)
			if onRing {
				assert.Equal(t, on, boundary.At(x, y, 0), "(%d,%d)", x, y)
				count++
			} else {
				assert.Equal(t, off, boundary.At(x, y, 0), "(%d,%d)", x, y)
			}
		}
	}
	assert.Equal(t, 4*side-4, count)
}

func TestBoundaryWithDiagonalElement(t *testing.T) {
	img := square(t, 9, 9, 2, 2, 5)
	diag, err := Diagonal(3)
	require.NoError(t, err)

	eroded, boundary, err := ExtractBoundary(img, diag, 1)
	require.NoError(t, err)
	// A pixel whose diagonal neighbour leaves the square ends up on the boundary.
	assert.Equal(t, off, eroded.At(2, 6, 0))
	assert.Equal(t, on, boundary.At(2, 6, 0))
	assert.Equal(t, on, eroded.At(4, 4, 0))
	assert.Equal(t, off, boundary.At(4, 4, 0))
}

func TestUniformForegroundIsFixedPoint(t *testing.T) {
	img, err := models.NewUniform(20, 15, 3, 255)
	require.NoError(t, err)

	for _, shape := range []Shape{Rect, Cross, Ellipse} {
		el := mustElement(t, shape, 5)
		bin, err := Binarize(img, 127)
		require.NoError(t, err)

		for _, op := range []Op{Erosion, Dilation} {
			steps, err := Run(img, op, el, 127, 3)
			require.NoError(t, err)
			require.Len(t, steps, 2)
			assert.True(t, bin.Equal(steps[1].Image), "%s %s", op, shape)
		}

		steps, err := Run(img, Boundary, el, 127, 1)
		require.NoError(t, err)
		require.Len(t, steps, 3)
		for _, v := range steps[2].Image.Pix {
			require.Equal(t, off, v)
		}
	}
}

func TestRunReportsLabelledSteps(t *testing.T) {
	img := square(t, 10, 10, 2, 2, 5)
	el := mustElement(t, Rect, 3)

	cases := map[Op][]string{
		Erosion:  {"Binary", "Erosion"},
		Dilation: {"Binary", "Dilation"},
		Opening:  {"Binary", "Erosion", "Opening"},
		Closing:  {"Binary", "Dilation", "Closing"},
		Boundary: {"Binary", "Erosion", "Boundary"},
	}
	for op, labels := range cases {
		steps, err := Run(img, op, el, 127, 1)
		require.NoError(t, err, op.String())
		got := make([]string, len(steps))
		for i, s := range steps {
			got[i] = s.Label
			assert.Equal(t, 1, s.Image.Channels)
		}
		assert.Equal(t, labels, got, op.String())
	}
}

func TestRunBinarizesColorInput(t *testing.T) {
	img, err := models.NewImage(2, 1, 3)
	require.NoError(t, err)
	img.Pix = []uint8{200, 200, 200, 10, 10, 10}

	steps, err := Run(img, Dilation, mustElement(t, Rect, 3), 100, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint8{255, 0}, steps[0].Image.Pix)
	assert.Equal(t, []uint8{255, 255}, steps[1].Image.Pix)
}

func TestRunValidation(t *testing.T) {
	img := square(t, 6, 6, 1, 1, 3)
	el := mustElement(t, Rect, 3)

	_, err := Run(img, Erosion, el, 127, 0)
	assert.ErrorIs(t, err, operr.ErrInvalidIterationCount)

	_, err = Run(img, Erosion, nil, 127, 1)
	assert.ErrorIs(t, err, operr.ErrInvalidStructuringElement)

	_, err = Run(img, Erosion, el, 300, 1)
	assert.ErrorIs(t, err, operr.ErrInvalidParameter)

	_, err = Run(img, Op(17), el, 127, 1)
	assert.ErrorIs(t, err, operr.ErrUnsupportedOperation)

	color, err := models.NewUniform(3, 3, 3, 255)
	require.NoError(t, err)
	_, err = Erode(color, el, 1)
	assert.Error(t, err)
}

// referenceMorph applies the textbook definition directly: erosion checks
// B translated to each pixel, dilation checks the reflected B. Outside
// positions are skipped.
func referenceMorph(src *models.Image, el *Element, dilate bool) *models.Image {
	w, h, c := src.Width, src.Height, el.Size/2
	out := &models.Image{Width: w, Height: h, Channels: 1, Pix: make([]uint8, len(src.Pix))}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hit := !dilate
			for ey := 0; ey < el.Size; ey++ {
				for ex := 0; ex < el.Size; ex++ {
					if !el.At(ex, ey) {
						continue
					}
					xx, yy := x+ex-c, y+ey-c
					if dilate {
						xx, yy = x-(ex-c), y-(ey-c)
					}
					if xx < 0 || yy < 0 || xx >= w || yy >= h {
						continue
					}
					set := src.Pix[yy*w+xx] != off
					if dilate && set {
						hit = true
					}
					if !dilate && !set {
						hit = false
					}
				}
			}
			if hit {
				out.Pix[y*w+x] = on
			}
		}
	}
	return out
}

func TestErodeDilateMatchDefinition(t *testing.T) {
	asym, err := CustomElement([][]uint8{{1, 1, 0}, {0, 1, 0}, {0, 0, 0}})
	require.NoError(t, err)
	diag, err := Diagonal(5)
	require.NoError(t, err)
	elements := map[string]*Element{
		"ellipse": mustElement(t, Ellipse, 5),
		"cross":   mustElement(t, Cross, 3),
		"asym":    asym,
		"diag":    diag,
	}

	for name, el := range elements {
		img := randomBinary(t, int64(len(name)))
		for _, iterations := range []int{1, 2} {
			wantE, wantD := img, img
			for i := 0; i < iterations; i++ {
				wantE = referenceMorph(wantE, el, false)
				wantD = referenceMorph(wantD, el, true)
			}
			eroded, err := Erode(img, el, iterations)
			require.NoError(t, err)
			dilated, err := Dilate(img, el, iterations)
			require.NoError(t, err)
			assert.True(t, wantE.Equal(eroded), "erode %s x%d", name, iterations)
			assert.True(t, wantD.Equal(dilated), "dilate %s x%d", name, iterations)
		}
	}
}

func TestReflectRotatesMask(t *testing.T) {
	el, err := CustomElement([][]uint8{{1, 1, 0}, {0, 1, 0}, {0, 0, 0}})
	require.NoError(t, err)
	assert.Equal(t, "000\n010\n011", el.Reflect().String())
	assert.Equal(t, "110\n010\n000", el.String())
}
