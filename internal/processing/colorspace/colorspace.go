// Package colorspace converts between the BGR sample layout and the
// luma/chroma (YCrCb) and intensity representations used by the kernels.
package colorspace

import (
	"fmt"

	"github.com/KickHuynh/XuLyAnhSo/internal/models"
)

// ITU-R BT.601 weights, as used by OpenCV's BGR2YCrCb.
const (
	wR = 0.299
	wG = 0.587
	wB = 0.114

	crScale = 0.713
	cbScale = 0.564
	delta   = 128.0

	crToR = 1.403
	crToG = -0.714
	cbToG = -0.344
	cbToB = 1.773
)

// LumaChroma holds an image split into its Y, Cr and Cb planes. Chroma
// planes are kept unquantized so a round trip does not drift.
type LumaChroma struct {
	Y  *models.Plane
	Cr *models.Plane
	Cb *models.Plane
}

// Split decomposes a three-channel BGR image.
func Split(img *models.Image) (*LumaChroma, error) {
	if err := img.Validate("luma/chroma split"); err != nil {
		return nil, err
	}
	if img.Channels != 3 {
		return nil, fmt.Errorf("luma/chroma split requires 3 channels, got %d", img.Channels)
	}

	n := img.Width * img.Height
	lc := &LumaChroma{
		Y:  models.NewPlane(img.Width, img.Height),
		Cr: models.NewPlane(img.Width, img.Height),
		Cb: models.NewPlane(img.Width, img.Height),
	}
	for i := 0; i < n; i++ {
		b := float64(img.Pix[i*3])
		g := float64(img.Pix[i*3+1])
		r := float64(img.Pix[i*3+2])
		y := wR*r + wG*g + wB*b
		lc.Y.Data[i] = y
		lc.Cr.Data[i] = (r-y)*crScale + delta
		lc.Cb.Data[i] = (b-y)*cbScale + delta
	}
	return lc, nil
}

// Merge recombines a (possibly replaced) luma plane with the stored chroma.
func (lc *LumaChroma) Merge(y *models.Plane) (*models.Image, error) {
	if y.Width != lc.Cr.Width || y.Height != lc.Cr.Height {
		return nil, fmt.Errorf("luma plane %dx%d does not match chroma %dx%d",
			y.Width, y.Height, lc.Cr.Width, lc.Cr.Height)
	}

	b := models.NewPlane(y.Width, y.Height)
	g := models.NewPlane(y.Width, y.Height)
	r := models.NewPlane(y.Width, y.Height)
	for i, yv := range y.Data {
		cr := lc.Cr.Data[i] - delta
		cb := lc.Cb.Data[i] - delta
		r.Data[i] = yv + crToR*cr
		g.Data[i] = yv + crToG*cr + cbToG*cb
		b.Data[i] = yv + cbToB*cb
	}
	return models.FromPlanes(b, g, r)
}

// Gray converts an image to a single intensity channel. Gray input is cloned.
func Gray(img *models.Image) (*models.Image, error) {
	if err := img.Validate("grayscale conversion"); err != nil {
		return nil, err
	}
	if img.Channels == 1 {
		return img.Clone(), nil
	}

	out, err := models.NewImage(img.Width, img.Height, 1)
	if err != nil {
		return nil, err
	}
	for i := range out.Pix {
		b := float64(img.Pix[i*3])
		g := float64(img.Pix[i*3+1])
		r := float64(img.Pix[i*3+2])
		out.Pix[i] = models.ClampByte(wR*r + wG*g + wB*b)
	}
	return out, nil
}

// GrayPlane is Gray widened to float64.
func GrayPlane(img *models.Image) (*models.Plane, error) {
	g, err := Gray(img)
	if err != nil {
		return nil, err
	}
	return g.Plane(0), nil
}
