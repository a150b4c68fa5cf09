package opencv

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/opencv/conversion"
	"github.com/KickHuynh/XuLyAnhSo/internal/opencv/safe"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
)

// Border selects how samples outside the image are treated by Erode and
// Dilate.
type Border int

const (
	// BorderIgnore leaves outside samples out of the window.
	BorderIgnore Border = iota
	// BorderReplicate repeats the nearest edge sample.
	BorderReplicate
)

// StructuringElement returns the size×size mask OpenCV builds for shape,
// row-major with true for set cells.
func StructuringElement(shape gocv.MorphShape, size int) ([]bool, error) {
	if size < 1 {
		return nil, operr.Parameter("size", size, ">= 1")
	}
	kernel := gocv.GetStructuringElement(shape, image.Pt(size, size))
	defer kernel.Close()
	if kernel.Empty() {
		return nil, fmt.Errorf("structuring element %v of size %d is empty", shape, size)
	}

	data := kernel.ToBytes()
	if len(data) != size*size {
		return nil, fmt.Errorf("structuring element holds %d cells, want %d", len(data), size*size)
	}
	mask := make([]bool, len(data))
	for i, v := range data {
		mask[i] = v != 0
	}
	return mask, nil
}

// Erode takes the minimum under mask, anchored at the centre, iterations
// times.
func Erode(img *models.Image, mask []bool, size, iterations int, border Border) (*models.Image, error) {
	return morph(img, mask, size, iterations, border, "erosion", func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat) error {
		switch border {
		case BorderReplicate:
			return gocv.ErodeWithParams(src, dst, kernel, image.Pt(-1, -1), iterations, int(gocv.BorderReplicate))
		default:
			// The constant border uses OpenCV's morphology default value,
			// which never wins a minimum.
			return gocv.ErodeWithParams(src, dst, kernel, image.Pt(-1, -1), iterations, int(gocv.BorderConstant))
		}
	})
}

// Dilate takes the maximum under mask, anchored at the centre, iterations
// times. The mask is applied as given; callers reflect it first when they
// need A⊕B.
func Dilate(img *models.Image, mask []bool, size, iterations int, border Border) (*models.Image, error) {
	return morph(img, mask, size, iterations, border, "dilation", func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat) error {
		bt := gocv.BorderConstant
		if border == BorderReplicate {
			bt = gocv.BorderReplicate
		}
		// gocv types the iteration count as BorderType. A zero constant
		// never wins a maximum over 8-bit samples.
		return gocv.DilateWithParams(src, dst, kernel, image.Pt(-1, -1), gocv.BorderType(iterations), bt, color.RGBA{})
	})
}

// MedianBlur replaces each sample with the median of its k×k window, per
// channel, replicating edge samples.
func MedianBlur(img *models.Image, k int) (*models.Image, error) {
	if k < 3 || k%2 == 0 {
		return nil, operr.Wrap(operr.ErrInvalidKernelSize, "median kernel %d must be odd and >= 3", k)
	}
	if err := img.Validate("median filter"); err != nil {
		return nil, err
	}
	return run(img, func(src gocv.Mat, dst *gocv.Mat) error {
		return gocv.MedianBlur(src, dst, k)
	})
}

type morphFunc func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat) error

func morph(img *models.Image, mask []bool, size, iterations int, border Border, operation string, fn morphFunc) (*models.Image, error) {
	if size < 1 || len(mask) != size*size {
		return nil, operr.Wrap(operr.ErrInvalidStructuringElement, "mask holds %d cells for size %d", len(mask), size)
	}
	if iterations < 1 {
		return nil, operr.Wrap(operr.ErrInvalidIterationCount, "iterations must be >= 1, got %d", iterations)
	}
	if border != BorderIgnore && border != BorderReplicate {
		return nil, fmt.Errorf("unknown border mode %d", border)
	}
	if err := img.Validate(operation); err != nil {
		return nil, err
	}

	cells := make([]byte, len(mask))
	for i, set := range mask {
		if set {
			cells[i] = 1
		}
	}
	kernel, err := safe.NewMatFromBytes(size, size, 1, cells)
	if err != nil {
		return nil, err
	}
	defer kernel.Close()

	return run(img, func(src gocv.Mat, dst *gocv.Mat) error {
		return fn(src, dst, kernel.GetMat())
	})
}

func run(img *models.Image, fn func(src gocv.Mat, dst *gocv.Mat) error) (*models.Image, error) {
	src, err := conversion.ImageToMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	if err := fn(src.GetMat(), &dst); err != nil {
		dst.Close()
		return nil, err
	}
	out, err := safe.Wrap(dst)
	if err != nil {
		return nil, err
	}
	defer out.Close()
	return conversion.MatToImage(out)
}
