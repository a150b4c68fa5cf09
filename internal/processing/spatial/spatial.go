// Package spatial implements neighborhood filters: linear smoothing through
// the convolution engine, order-statistic filters over edge-replicated
// windows, and the Sobel gradient magnitude.
package spatial

import (
	"math"

	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/colorspace"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/convolution"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
)

// GaussianSigma is fixed; a larger kernel only adds low-weight taps.
const GaussianSigma = 1.0

// OddKernelSize coerces an even size to the next odd value. Callers apply it
// before invoking a filter; the filters themselves reject even sizes.
func OddKernelSize(k int) int {
	if k%2 == 0 {
		return k + 1
	}
	return k
}

// ValidateKernelSize accepts odd sizes of at least 3.
func ValidateKernelSize(k int) error {
	if k < 3 || k%2 == 0 {
		return operr.Wrap(operr.ErrInvalidKernelSize, "kernel size %d must be odd and >= 3", k)
	}
	return nil
}

// Mean averages each channel over a k×k zero-padded window.
func Mean(img *models.Image, k int) (*models.Image, error) {
	if err := ValidateKernelSize(k); err != nil {
		return nil, err
	}
	kernel, err := convolution.Mean(k)
	if err != nil {
		return nil, err
	}
	return convolveChannels(img, kernel, "mean filter")
}

// Gaussian smooths each channel with a normalized k×k Gaussian kernel.
func Gaussian(img *models.Image, k int) (*models.Image, error) {
	if err := ValidateKernelSize(k); err != nil {
		return nil, err
	}
	kernel, err := convolution.Gaussian(k, GaussianSigma)
	if err != nil {
		return nil, err
	}
	return convolveChannels(img, kernel, "gaussian filter")
}

func convolveChannels(img *models.Image, kernel *models.Kernel, operation string) (*models.Image, error) {
	if err := img.Validate(operation); err != nil {
		return nil, err
	}
	planes := img.Planes()
	for c, p := range planes {
		out, err := convolution.Convolve(p, kernel, true)
		if err != nil {
			return nil, err
		}
		planes[c] = out
	}
	return models.FromPlanes(planes...)
}

// Sobel returns the normalized gradient magnitude of the intensity, expanded
// back to the input's channel count. The kernel is always 3×3; k is only
// checked so every spatial filter shares one signature.
func Sobel(img *models.Image, k int) (*models.Image, error) {
	if err := ValidateKernelSize(k); err != nil {
		return nil, err
	}
	gray, err := colorspace.GrayPlane(img)
	if err != nil {
		return nil, err
	}

	gx, err := convolution.Convolve(gray, convolution.SobelX(), true)
	if err != nil {
		return nil, err
	}
	gy, err := convolution.Convolve(gray, convolution.SobelY(), true)
	if err != nil {
		return nil, err
	}

	mag := models.NewPlane(gray.Width, gray.Height)
	peak := 0.0
	for i := range mag.Data {
		m := math.Hypot(gx.Data[i], gy.Data[i])
		mag.Data[i] = m
		peak = math.Max(peak, m)
	}
	if peak > 0 {
		scale := 255 / peak
		for i := range mag.Data {
			mag.Data[i] *= scale
		}
	}

	out, err := models.FromPlanes(mag)
	if err != nil {
		return nil, err
	}
	return out.Expand(img.Channels), nil
}
