package intensity

import (
	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/colorspace"
)

// OtsuLevel returns the intensity level t that maximizes the between-class
// variance w0·w1·(μ0-μ1)² of the classes v <= t and v > t. Ties keep the
// lowest level; an image with a single value returns that value.
func OtsuLevel(img *models.Image) (float64, error) {
	if err := img.Validate("otsu"); err != nil {
		return 0, err
	}
	gray, err := colorspace.Gray(img)
	if err != nil {
		return 0, err
	}
	return float64(otsuFromHistogram(Histogram(gray.Pix))), nil
}

func otsuFromHistogram(hist [256]int) int {
	total, sum := 0, 0.0
	for v, n := range hist {
		total += n
		sum += float64(v * n)
	}

	best, bestVar := -1, -1.0
	w0, sum0 := 0, 0.0
	for t := 0; t < 255; t++ {
		w0 += hist[t]
		sum0 += float64(t * hist[t])
		w1 := total - w0
		if w0 == 0 || w1 == 0 {
			continue
		}
		mean0 := sum0 / float64(w0)
		mean1 := (sum - sum0) / float64(w1)
		d := mean0 - mean1
		between := float64(w0) * float64(w1) * d * d
		if between > bestVar {
			best, bestVar = t, between
		}
	}
	if best < 0 {
		// single populated bin
		for v, n := range hist {
			if n > 0 {
				return v
			}
		}
		return 0
	}
	return best
}
