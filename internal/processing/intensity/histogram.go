package intensity

import (
	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/colorspace"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
)

// Histogram counts occurrences of each 8-bit value in a single-channel buffer.
func Histogram(pix []uint8) [256]int {
	var h [256]int
	for _, v := range pix {
		h[v]++
	}
	return h
}

// EqualizationTable builds the cumulative-distribution mapping
// round((cdf(v)-cdfMin)·255/(n-cdfMin)). A buffer holding a single value
// maps to itself.
func EqualizationTable(pix []uint8) *LUT {
	hist := Histogram(pix)

	var lut LUT
	cdfMin := 0
	for _, count := range hist {
		if count > 0 {
			cdfMin = count
			break
		}
	}
	n := len(pix)
	if n == cdfMin {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return &lut
	}

	cdf := 0
	scale := 255 / float64(n-cdfMin)
	for i, count := range hist {
		cdf += count
		lut[i] = models.ClampByte(float64(cdf-cdfMin) * scale)
	}
	return &lut
}

// Equalize flattens the intensity histogram. Colour images are equalized on
// the luma channel only and chroma is left as it was.
func Equalize(img *models.Image) (*models.Image, error) {
	if err := img.Validate("histogram equalization"); err != nil {
		return nil, err
	}
	if img.Channels == 1 {
		return EqualizationTable(img.Pix).Apply(img), nil
	}

	lc, err := colorspace.Split(img)
	if err != nil {
		return nil, err
	}
	luma, err := models.FromPlanes(lc.Y)
	if err != nil {
		return nil, err
	}
	equalized := EqualizationTable(luma.Pix).Apply(luma)
	return lc.Merge(equalized.Plane(0))
}

// Threshold binarizes the intensity (255 where v > t, else 0) and returns the
// result with the input's channel count.
func Threshold(img *models.Image, t float64) (*models.Image, error) {
	if err := img.Validate("threshold"); err != nil {
		return nil, err
	}
	if !(t >= 0 && t <= 255) {
		return nil, operr.Parameter("threshold", t, "in [0,255]")
	}
	gray, err := colorspace.Gray(img)
	if err != nil {
		return nil, err
	}
	for i, v := range gray.Pix {
		if float64(v) > t {
			gray.Pix[i] = 255
		} else {
			gray.Pix[i] = 0
		}
	}
	return gray.Expand(img.Channels), nil
}
