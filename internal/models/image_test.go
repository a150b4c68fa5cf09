package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageRejectsBadGeometry(t *testing.T) {
	_, err := NewImage(0, 4, 1)
	assert.Error(t, err)
	_, err = NewImage(4, 4, 2)
	assert.Error(t, err)

	img, err := NewImage(4, 3, 3)
	require.NoError(t, err)
	assert.Len(t, img.Pix, 36)
	assert.NoError(t, img.Validate("test"))
}

func TestValidateCatchesShortBuffer(t *testing.T) {
	img := &Image{Width: 2, Height: 2, Channels: 1, Pix: []uint8{1, 2, 3}}
	assert.Error(t, img.Validate("test"))

	var missing *Image
	assert.Error(t, missing.Validate("test"))
}

func TestPlanesRoundTrip(t *testing.T) {
	img, err := NewImage(3, 2, 3)
	require.NoError(t, err)
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7)
	}

	out, err := FromPlanes(img.Planes()...)
	require.NoError(t, err)
	assert.True(t, img.Equal(out))
}

func TestFromPlanesClampsAndRounds(t *testing.T) {
	p := NewPlane(3, 1)
	p.Data = []float64{-4, 127.5, 300}

	img, err := FromPlanes(p)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 128, 255}, img.Pix)

	_, err = FromPlanes(NewPlane(2, 2), NewPlane(3, 2))
	assert.Error(t, err)
}

func TestCloneIsIndependent(t *testing.T) {
	img, err := NewUniform(2, 2, 1, 9)
	require.NoError(t, err)

	c := img.Clone()
	c.Set(0, 0, 0, 1)
	assert.Equal(t, uint8(9), img.At(0, 0, 0))
}

func TestExpandReplicatesGray(t *testing.T) {
	img, err := NewUniform(2, 1, 1, 42)
	require.NoError(t, err)

	color := img.Expand(3)
	assert.Equal(t, 3, color.Channels)
	assert.Equal(t, []uint8{42, 42, 42, 42, 42, 42}, color.Pix)
}

func TestPlaneNormalize(t *testing.T) {
	p := NewPlane(3, 1)
	p.Data = []float64{10, 20, 30}

	n := p.Normalize()
	assert.Equal(t, []float64{0, 127.5, 255}, n.Data)

	flat := NewPlane(2, 2)
	for i := range flat.Data {
		flat.Data[i] = 5
	}
	assert.Equal(t, []float64{0, 0, 0, 0}, flat.Normalize().Data)
}

func TestPlaneRows(t *testing.T) {
	p, err := PlaneFromRows([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, 4.0, p.At(1, 1))
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, p.Rows())

	_, err = PlaneFromRows([][]float64{{1, 2}, {3}})
	assert.Error(t, err)
}

func TestNewKernel(t *testing.T) {
	k, err := NewKernel([][]float64{{0, 1, 0}, {1, 1, 1}, {0, 1, 0}})
	require.NoError(t, err)
	assert.Equal(t, 3, k.Size)
	assert.Equal(t, 5.0, k.Sum())

	_, err = NewKernel([][]float64{{1, 1}, {1, 1}})
	assert.Error(t, err)
}
