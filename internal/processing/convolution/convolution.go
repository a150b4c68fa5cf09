// Package convolution implements direct 2D correlation of a plane against a
// kernel, plus the kernel factories used by the spatial filters.
package convolution

import (
	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
)

// Convolve correlates plane with kernel. With pad set the input is
// zero-padded by half the kernel on every side and the output keeps the
// input size; otherwise only fully covered positions are produced and the
// output shrinks by Size-1 in each direction. Weights are used as given.
func Convolve(plane *models.Plane, kernel *models.Kernel, pad bool) (*models.Plane, error) {
	if kernel == nil || kernel.Size < 1 || kernel.Size%2 == 0 || len(kernel.Weights) != kernel.Size*kernel.Size {
		return nil, operr.Wrap(operr.ErrInvalidKernelSize, "kernel must be square with odd side")
	}
	if plane == nil || plane.Width <= 0 || plane.Height <= 0 {
		return nil, operr.Wrap(operr.ErrInvalidParameter, "empty plane")
	}

	k := kernel.Size
	r := k / 2

	src := plane
	if pad {
		src = zeroPad(plane, r)
	}

	outW := src.Width - k + 1
	outH := src.Height - k + 1
	if outW <= 0 || outH <= 0 {
		return nil, operr.Wrap(operr.ErrInvalidKernelSize,
			"%dx%d kernel larger than %dx%d plane", k, k, plane.Width, plane.Height)
	}

	out := models.NewPlane(outW, outH)
	for y := 0; y < outH; y++ {
		for x := 0; x < outW; x++ {
			sum := 0.0
			for ky := 0; ky < k; ky++ {
				row := (y+ky)*src.Width + x
				krow := ky * k
				for kx := 0; kx < k; kx++ {
					sum += src.Data[row+kx] * kernel.Weights[krow+kx]
				}
			}
			out.Data[y*outW+x] = sum
		}
	}

	return out, nil
}

func zeroPad(p *models.Plane, r int) *models.Plane {
	out := models.NewPlane(p.Width+2*r, p.Height+2*r)
	for y := 0; y < p.Height; y++ {
		copy(out.Data[(y+r)*out.Width+r:], p.Data[y*p.Width:(y+1)*p.Width])
	}
	return out
}
