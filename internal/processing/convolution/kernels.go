package convolution

import (
	"math"

	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
)

// Mean returns the uniform k×k averaging kernel with weights 1/k².
func Mean(k int) (*models.Kernel, error) {
	if err := checkSize(k); err != nil {
		return nil, err
	}
	w := 1 / float64(k*k)
	kernel := &models.Kernel{Size: k, Weights: make([]float64, k*k)}
	for i := range kernel.Weights {
		kernel.Weights[i] = w
	}
	return kernel, nil
}

// Gaussian returns a k×k kernel with weights exp(-(x²+y²)/(2σ²)) normalized
// to sum to one.
func Gaussian(k int, sigma float64) (*models.Kernel, error) {
	if err := checkSize(k); err != nil {
		return nil, err
	}
	if sigma <= 0 || math.IsNaN(sigma) {
		return nil, operr.Parameter("sigma", sigma, "> 0")
	}

	r := k / 2
	kernel := &models.Kernel{Size: k, Weights: make([]float64, k*k)}
	sum := 0.0
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			w := math.Exp(-float64(x*x+y*y) / (2 * sigma * sigma))
			kernel.Weights[(y+r)*k+x+r] = w
			sum += w
		}
	}
	for i := range kernel.Weights {
		kernel.Weights[i] /= sum
	}
	return kernel, nil
}

// SobelX responds to horizontal intensity changes.
func SobelX() *models.Kernel {
	return &models.Kernel{Size: 3, Weights: []float64{
		-1, 0, 1,
		-2, 0, 2,
		-1, 0, 1,
	}}
}

// SobelY responds to vertical intensity changes.
func SobelY() *models.Kernel {
	return &models.Kernel{Size: 3, Weights: []float64{
		-1, -2, -1,
		0, 0, 0,
		1, 2, 1,
	}}
}

func checkSize(k int) error {
	if k < 1 || k%2 == 0 {
		return operr.Wrap(operr.ErrInvalidKernelSize, "kernel size %d must be a positive odd number", k)
	}
	return nil
}
