package colorspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KickHuynh/XuLyAnhSo/internal/models"
)

func colorImage(t *testing.T) *models.Image {
	t.Helper()
	img, err := models.NewImage(4, 4, 3)
	require.NoError(t, err)
	for i := range img.Pix {
		img.Pix[i] = uint8((i * 37) % 256)
	}
	return img
}

func TestSplitMergeRoundTrip(t *testing.T) {
	img := colorImage(t)

	lc, err := Split(img)
	require.NoError(t, err)

	out, err := lc.Merge(lc.Y)
	require.NoError(t, err)
	require.True(t, img.SameShape(out))
	for i := range img.Pix {
		assert.InDelta(t, int(img.Pix[i]), int(out.Pix[i]), 2, "sample %d", i)
	}
}

func TestSplitNeutralGrayHasCentredChroma(t *testing.T) {
	img, err := models.NewUniform(2, 2, 3, 90)
	require.NoError(t, err)

	lc, err := Split(img)
	require.NoError(t, err)
	for i := range lc.Y.Data {
		assert.InDelta(t, 90, lc.Y.Data[i], 1e-9)
		assert.InDelta(t, 128, lc.Cr.Data[i], 1e-9)
		assert.InDelta(t, 128, lc.Cb.Data[i], 1e-9)
	}
}

func TestSplitRejectsGray(t *testing.T) {
	img, err := models.NewUniform(2, 2, 1, 1)
	require.NoError(t, err)
	_, err = Split(img)
	assert.Error(t, err)
}

func TestMergeRejectsMismatchedLuma(t *testing.T) {
	lc, err := Split(colorImage(t))
	require.NoError(t, err)
	_, err = lc.Merge(models.NewPlane(2, 2))
	assert.Error(t, err)
}

func TestGray(t *testing.T) {
	img, err := models.NewImage(1, 1, 3)
	require.NoError(t, err)
	img.Pix = []uint8{0, 0, 255} // pure red in BGR order

	g, err := Gray(img)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Channels)
	assert.Equal(t, uint8(76), g.Pix[0])

	same, err := Gray(g)
	require.NoError(t, err)
	assert.True(t, same.Equal(g))
}
