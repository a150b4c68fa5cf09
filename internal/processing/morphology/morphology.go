// Package morphology implements binary erosion, dilation, opening, closing
// and boundary extraction over a structuring element.
//
// Images are single-channel 0/255 buffers produced by Binarize; any non-zero
// sample counts as foreground. Positions outside the image are ignored: they
// neither veto an erosion nor feed a dilation, so a uniform field is left
// unchanged by every operator.
package morphology

import (
	"fmt"
	"strings"

	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/opencv"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/colorspace"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/intensity"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
)

const (
	off uint8 = 0
	on  uint8 = 255
)

// Op enumerates the morphology operators.
type Op int

const (
	Erosion Op = iota
	Dilation
	Opening
	Closing
	Boundary
)

var opNames = [...]string{"erode", "dilate", "open", "close", "boundary"}

func (o Op) String() string {
	if o < 0 || int(o) >= len(opNames) {
		return fmt.Sprintf("Op(%d)", int(o))
	}
	return opNames[o]
}

// ParseOp accepts the short names plus the noun forms ("erosion", ...).
func ParseOp(name string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "erode", "erosion":
		return Erosion, nil
	case "dilate", "dilation":
		return Dilation, nil
	case "open", "opening":
		return Opening, nil
	case "close", "closing":
		return Closing, nil
	case "boundary", "boundary_extraction":
		return Boundary, nil
	}
	return 0, operr.Wrap(operr.ErrUnsupportedOperation, "morphology operator %q", name)
}

// Step is one labelled image of an operator's output sequence.
type Step struct {
	Label string
	Image *models.Image
}

// Binarize converts to intensity and sets samples above t to 255, others to 0.
func Binarize(img *models.Image, t float64) (*models.Image, error) {
	gray, err := colorspace.Gray(img)
	if err != nil {
		return nil, err
	}
	return intensity.Threshold(gray, t)
}

// Erode keeps a pixel only if every in-bounds neighbor under the element is
// set. The primitive is repeated iterations times.
func Erode(bin *models.Image, el *Element, iterations int) (*models.Image, error) {
	if err := apply(bin, el, iterations, "erosion"); err != nil {
		return nil, err
	}
	return opencv.Erode(bin, el.Mask, el.Size, iterations, opencv.BorderIgnore)
}

// Dilate sets a pixel if any in-bounds neighbor under the reflected element is
// set. The primitive is repeated iterations times.
func Dilate(bin *models.Image, el *Element, iterations int) (*models.Image, error) {
	if err := apply(bin, el, iterations, "dilation"); err != nil {
		return nil, err
	}
	r := el.Reflect()
	return opencv.Dilate(bin, r.Mask, r.Size, iterations, opencv.BorderIgnore)
}

// Open is erosion followed by dilation. It returns the erosion as well.
func Open(bin *models.Image, el *Element, iterations int) (eroded, opened *models.Image, err error) {
	if eroded, err = Erode(bin, el, iterations); err != nil {
		return nil, nil, err
	}
	if opened, err = Dilate(eroded, el, iterations); err != nil {
		return nil, nil, err
	}
	return eroded, opened, nil
}

// Close is dilation followed by erosion. It returns the dilation as well.
func Close(bin *models.Image, el *Element, iterations int) (dilated, closed *models.Image, err error) {
	if dilated, err = Dilate(bin, el, iterations); err != nil {
		return nil, nil, err
	}
	if closed, err = Erode(dilated, el, iterations); err != nil {
		return nil, nil, err
	}
	return dilated, closed, nil
}

// ExtractBoundary returns erode(A) and A − erode(A), the latter floored at 0.
func ExtractBoundary(bin *models.Image, el *Element, iterations int) (eroded, boundary *models.Image, err error) {
	if eroded, err = Erode(bin, el, iterations); err != nil {
		return nil, nil, err
	}
	boundary = bin.Clone()
	for i, v := range eroded.Pix {
		if int(boundary.Pix[i])-int(v) <= 0 {
			boundary.Pix[i] = 0
		} else {
			boundary.Pix[i] -= v
		}
	}
	return eroded, boundary, nil
}

// Run binarizes img at threshold and applies op. The returned steps start
// with the binarized input and end with the final result; opening, closing
// and boundary extraction also report their intermediate image.
func Run(img *models.Image, op Op, el *Element, threshold float64, iterations int) ([]Step, error) {
	if err := validate(el, iterations); err != nil {
		return nil, err
	}
	bin, err := Binarize(img, threshold)
	if err != nil {
		return nil, err
	}
	steps := []Step{{Label: "Binary", Image: bin}}

	switch op {
	case Erosion:
		out, err := Erode(bin, el, iterations)
		if err != nil {
			return nil, err
		}
		return append(steps, Step{Label: "Erosion", Image: out}), nil
	case Dilation:
		out, err := Dilate(bin, el, iterations)
		if err != nil {
			return nil, err
		}
		return append(steps, Step{Label: "Dilation", Image: out}), nil
	case Opening:
		eroded, opened, err := Open(bin, el, iterations)
		if err != nil {
			return nil, err
		}
		return append(steps, Step{Label: "Erosion", Image: eroded}, Step{Label: "Opening", Image: opened}), nil
	case Closing:
		dilated, closed, err := Close(bin, el, iterations)
		if err != nil {
			return nil, err
		}
		return append(steps, Step{Label: "Dilation", Image: dilated}, Step{Label: "Closing", Image: closed}), nil
	case Boundary:
		eroded, boundary, err := ExtractBoundary(bin, el, iterations)
		if err != nil {
			return nil, err
		}
		return append(steps, Step{Label: "Erosion", Image: eroded}, Step{Label: "Boundary", Image: boundary}), nil
	default:
		return nil, operr.Wrap(operr.ErrUnsupportedOperation, "morphology operator %s", op)
	}
}

func validate(el *Element, iterations int) error {
	if el == nil || el.Size < 3 || el.Size%2 == 0 || len(el.Mask) != el.Size*el.Size {
		return operr.Wrap(operr.ErrInvalidStructuringElement, "element must be odd-sided and at least 3x3")
	}
	if iterations < 1 {
		return operr.Wrap(operr.ErrInvalidIterationCount, "iterations must be >= 1, got %d", iterations)
	}
	return nil
}

func apply(bin *models.Image, el *Element, iterations int, operation string) error {
	if err := validate(el, iterations); err != nil {
		return err
	}
	if err := bin.Validate(operation); err != nil {
		return err
	}
	if bin.Channels != 1 {
		return fmt.Errorf("%s requires a single-channel binary image, got %d channels", operation, bin.Channels)
	}
	return nil
}
