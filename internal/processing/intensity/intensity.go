// Package intensity implements point operations: every output sample depends
// only on the input sample at the same position.
package intensity

import (
	"math"

	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
)

// LUT maps every 8-bit input value to an output value.
type LUT [256]uint8

// Apply maps every sample of every channel through the table.
func (l *LUT) Apply(img *models.Image) *models.Image {
	out := img.Clone()
	for i, v := range img.Pix {
		out.Pix[i] = l[v]
	}
	return out
}

// Negative returns 255 - v for every sample.
func Negative(img *models.Image) (*models.Image, error) {
	if err := img.Validate("negative"); err != nil {
		return nil, err
	}
	var lut LUT
	for i := range lut {
		lut[i] = uint8(255 - i)
	}
	return lut.Apply(img), nil
}

// Log returns clip(c·ln(1+v)).
func Log(img *models.Image, c float64) (*models.Image, error) {
	if err := img.Validate("log transform"); err != nil {
		return nil, err
	}
	if !(c > 0) || math.IsInf(c, 0) {
		return nil, operr.Parameter("c", c, "> 0")
	}
	var lut LUT
	for i := range lut {
		lut[i] = models.ClampByte(c * math.Log1p(float64(i)))
	}
	return lut.Apply(img), nil
}

// Gamma returns clip(255·c·(v/255)^γ).
func Gamma(img *models.Image, c, gamma float64) (*models.Image, error) {
	if err := img.Validate("gamma transform"); err != nil {
		return nil, err
	}
	if !(c > 0) || math.IsInf(c, 0) {
		return nil, operr.Parameter("c", c, "> 0")
	}
	if !(gamma >= 0) || math.IsInf(gamma, 0) {
		return nil, operr.Parameter("gamma", gamma, ">= 0")
	}
	var lut LUT
	for i := range lut {
		lut[i] = models.ClampByte(255 * c * math.Pow(float64(i)/255, gamma))
	}
	return lut.Apply(img), nil
}

// PiecewiseLinear stretches contrast through the anchors 0→0, 127→low·255 and
// 255→high·255, interpolating linearly between them. The middle anchor stays
// at input 127 whatever low and high are.
func PiecewiseLinear(img *models.Image, low, high float64) (*models.Image, error) {
	if err := img.Validate("piecewise-linear transform"); err != nil {
		return nil, err
	}
	if !(low >= 0 && low <= 1) {
		return nil, operr.Parameter("low", low, "in [0,1]")
	}
	if !(high >= 0 && high <= 1) {
		return nil, operr.Parameter("high", high, "in [0,1]")
	}
	lut := stretchTable(low*255, high*255)
	return lut.Apply(img), nil
}

const pivot = 127

func stretchTable(mid, top float64) *LUT {
	var lut LUT
	for i := range lut {
		x := float64(i)
		var v float64
		if i <= pivot {
			v = mid * x / pivot
		} else {
			v = mid + (top-mid)*(x-pivot)/(255-pivot)
		}
		lut[i] = models.ClampByte(v)
	}
	return &lut
}
