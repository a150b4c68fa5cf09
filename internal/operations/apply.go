package operations

import (
	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/opencv"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/frequency"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/intensity"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/morphology"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/spatial"
	"github.com/KickHuynh/XuLyAnhSo/internal/timing"
)

// ApplyTransform runs a point operation and returns a new image.
func ApplyTransform(img *models.Image, t Transform) (*models.Image, error) {
	switch t := t.(type) {
	case Negative:
		return intensity.Negative(img)
	case Log:
		return intensity.Log(img, t.C)
	case Gamma:
		return intensity.Gamma(img, t.C, t.Gamma)
	case PiecewiseLinear:
		return intensity.PiecewiseLinear(img, t.Low, t.High)
	case Equalize:
		return intensity.Equalize(img)
	case CLAHE:
		return opencv.CLAHE(img, t.Clip, t.Tile)
	case Threshold:
		level := t.T
		if t.Otsu {
			var err error
			if level, err = intensity.OtsuLevel(img); err != nil {
				return nil, err
			}
		}
		return intensity.Threshold(img, level)
	case Grayscale:
		return opencv.Grayscale(img)
	case CenterCrop:
		if err := img.Validate("crop"); err != nil {
			return nil, err
		}
		return opencv.Crop(img, opencv.CenterQuarter(img.Width, img.Height))
	default:
		return nil, operr.Wrap(operr.ErrUnsupportedOperation, "transform %T", t)
	}
}

// ApplyFilter runs a spatial filter and returns a new image.
func ApplyFilter(img *models.Image, f Filter) (*models.Image, error) {
	switch f := f.(type) {
	case Mean:
		return spatial.Mean(img, f.KernelSize)
	case Gaussian:
		return spatial.Gaussian(img, f.KernelSize)
	case Median:
		return spatial.Median(img, f.KernelSize)
	case Min:
		return spatial.Min(img, f.KernelSize)
	case Max:
		return spatial.Max(img, f.KernelSize)
	case Midpoint:
		return spatial.Midpoint(img, f.KernelSize)
	case Sobel:
		return spatial.Sobel(img, f.KernelSize)
	default:
		return nil, operr.Wrap(operr.ErrUnsupportedOperation, "filter %T", f)
	}
}

// ApplyFrequencyFilter runs the frequency-domain pipeline and returns the
// filtered image with its per-stage timings.
func ApplyFrequencyFilter(img *models.Image, f FrequencyFilter) (*models.Image, timing.Record, error) {
	return frequency.Apply(img, f)
}

// ApplyMorphology binarizes the image and runs the operator, returning the
// labelled steps for side-by-side display.
func ApplyMorphology(img *models.Image, m Morphology) ([]morphology.Step, error) {
	el, err := m.Element.Build()
	if err != nil {
		return nil, err
	}
	level := m.Threshold
	if m.Otsu {
		if level, err = intensity.OtsuLevel(img); err != nil {
			return nil, err
		}
	}
	return morphology.Run(img, m.Op, el, level, m.Iterations)
}
