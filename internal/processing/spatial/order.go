package spatial

import (
	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/opencv"
)

// Order filters share the k×k window anchored at each sample, per channel.
// Coordinates outside the image are clamped to the nearest edge.

func Median(img *models.Image, k int) (*models.Image, error) {
	if err := ValidateKernelSize(k); err != nil {
		return nil, err
	}
	return opencv.MedianBlur(img, k)
}

// Min is an erosion by a flat k×k square.
func Min(img *models.Image, k int) (*models.Image, error) {
	return rankFilter(img, k, opencv.Erode, "min filter")
}

// Max is a dilation by a flat k×k square.
func Max(img *models.Image, k int) (*models.Image, error) {
	return rankFilter(img, k, opencv.Dilate, "max filter")
}

// Midpoint truncates (min+max)/2 toward zero.
func Midpoint(img *models.Image, k int) (*models.Image, error) {
	lo, err := Min(img, k)
	if err != nil {
		return nil, err
	}
	hi, err := Max(img, k)
	if err != nil {
		return nil, err
	}
	out := &models.Image{Width: img.Width, Height: img.Height, Channels: img.Channels, Pix: make([]uint8, len(img.Pix))}
	for i := range out.Pix {
		out.Pix[i] = uint8((int(lo.Pix[i]) + int(hi.Pix[i])) / 2)
	}
	return out, nil
}

type morphFunc func(img *models.Image, mask []bool, size, iterations int, border opencv.Border) (*models.Image, error)

func rankFilter(img *models.Image, k int, fn morphFunc, operation string) (*models.Image, error) {
	if err := ValidateKernelSize(k); err != nil {
		return nil, err
	}
	if err := img.Validate(operation); err != nil {
		return nil, err
	}
	mask := make([]bool, k*k)
	for i := range mask {
		mask[i] = true
	}
	return fn(img, mask, k, 1, opencv.BorderReplicate)
}
