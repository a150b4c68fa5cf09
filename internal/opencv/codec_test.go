package opencv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/opencv/conversion"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/colorspace"
)

func gradient(t *testing.T, channels int) *models.Image {
	t.Helper()
	img, err := models.NewImage(9, 7, channels)
	require.NoError(t, err)
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7)
	}
	return img
}

func TestMatRoundTripKeepsBGROrder(t *testing.T) {
	for _, ch := range []int{1, 3} {
		img := gradient(t, ch)
		mat, err := conversion.ImageToMat(img)
		require.NoError(t, err)

		assert.Equal(t, img.Height, mat.Rows())
		assert.Equal(t, img.Width, mat.Cols())
		back, err := conversion.MatToImage(mat)
		mat.Close()
		require.NoError(t, err)
		assert.True(t, img.Equal(back))
	}
}

func TestGrayscaleMatchesLuma(t *testing.T) {
	img := gradient(t, 3)
	mat, err := conversion.ImageToMat(img)
	require.NoError(t, err)
	defer mat.Close()

	gray, err := conversion.ToGrayscale(mat)
	require.NoError(t, err)
	defer gray.Close()
	got, err := conversion.MatToImage(gray)
	require.NoError(t, err)

	want, err := colorspace.Gray(img)
	require.NoError(t, err)
	for i := range want.Pix {
		assert.InDelta(t, int(want.Pix[i]), int(got.Pix[i]), 1, "sample %d", i)
	}
}

func TestPNGFileRoundTrip(t *testing.T) {
	c := NewCodec(nil)
	img := gradient(t, 3)
	path := filepath.Join(t.TempDir(), "out.png")

	require.NoError(t, c.WriteFile(path, img))
	back, err := c.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, img.Equal(back))

	data, err := c.Encode(img, ".png")
	require.NoError(t, err)
	decoded, err := c.Decode(data)
	require.NoError(t, err)
	assert.True(t, img.Equal(decoded))
}

func TestReadMissingFile(t *testing.T) {
	_, err := NewCodec(nil).ReadFile(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	_, err = NewCodec(nil).Encode(gradient(t, 1), "gif")
	assert.Error(t, err)
}

func TestCLAHEKeepsShapeAndSpreadsContrast(t *testing.T) {
	img, err := models.NewImage(32, 32, 1)
	require.NoError(t, err)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, 0, uint8(100+(x+y)%8))
		}
	}

	out, err := CLAHE(img, 4, 4)
	require.NoError(t, err)
	assert.True(t, img.SameShape(out))
	lo, hi := out.Plane(0).MinMax()
	assert.Greater(t, hi-lo, 7.0)

	color, err := CLAHE(img.Expand(3), 4, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, color.Channels)

	_, err = CLAHE(img, 0, 4)
	assert.Error(t, err)
	_, err = CLAHE(img, 2, 0)
	assert.Error(t, err)
}
