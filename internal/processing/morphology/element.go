package morphology

import (
	"fmt"
	"slices"
	"strings"

	"gocv.io/x/gocv"

	"github.com/KickHuynh/XuLyAnhSo/internal/opencv"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
)

// Shape is a structuring-element family.
type Shape int

const (
	Rect Shape = iota
	Cross
	Ellipse
)

var shapeNames = [...]string{"rect", "cross", "ellipse"}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return fmt.Sprintf("Shape(%d)", int(s))
	}
	return shapeNames[s]
}

// ParseShape accepts "rect" (or "rectangle"), "cross" and "ellipse".
func ParseShape(name string) (Shape, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "rectangle" {
		n = "rect"
	}
	for i, s := range shapeNames {
		if s == n {
			return Shape(i), nil
		}
	}
	return 0, operr.Wrap(operr.ErrInvalidStructuringElement, "unknown shape %q", name)
}

// Element is a square binary mask anchored at its centre.
type Element struct {
	Size int
	Mask []bool
}

// NewElement builds a rect, cross or ellipse element from OpenCV's
// structuring-element generator. An even size is rounded up to the next odd
// value; sizes below 3 are rejected.
func NewElement(shape Shape, size int) (*Element, error) {
	if size < 3 {
		return nil, operr.Wrap(operr.ErrInvalidStructuringElement, "size %d must be >= 3", size)
	}
	if size%2 == 0 {
		size++
	}

	var ms gocv.MorphShape
	switch shape {
	case Rect:
		ms = gocv.MorphRect
	case Cross:
		ms = gocv.MorphCross
	case Ellipse:
		ms = gocv.MorphEllipse
	default:
		return nil, operr.Wrap(operr.ErrInvalidStructuringElement, "unknown shape %s", shape)
	}
	mask, err := opencv.StructuringElement(ms, size)
	if err != nil {
		return nil, operr.Wrap(operr.ErrInvalidStructuringElement, "%s element: %v", shape, err)
	}
	return &Element{Size: size, Mask: mask}, nil
}

// CustomElement wraps an explicit 0/1 mask. It must be square, odd-sided,
// at least 3×3 and contain at least one set cell.
func CustomElement(rows [][]uint8) (*Element, error) {
	n := len(rows)
	if n < 3 || n%2 == 0 {
		return nil, operr.Wrap(operr.ErrInvalidStructuringElement, "custom element side %d must be odd and >= 3", n)
	}
	el := &Element{Size: n, Mask: make([]bool, n*n)}
	set := false
	for y, row := range rows {
		if len(row) != n {
			return nil, operr.Wrap(operr.ErrInvalidStructuringElement, "row %d has %d cells, want %d", y, len(row), n)
		}
		for x, v := range row {
			el.Mask[y*n+x] = v != 0
			set = set || v != 0
		}
	}
	if !set {
		return nil, operr.Wrap(operr.ErrInvalidStructuringElement, "custom element is empty")
	}
	return el, nil
}

// Diagonal returns the size×size element with only its main diagonal set.
func Diagonal(size int) (*Element, error) {
	if size < 3 {
		return nil, operr.Wrap(operr.ErrInvalidStructuringElement, "size %d must be >= 3", size)
	}
	if size%2 == 0 {
		size++
	}
	el := &Element{Size: size, Mask: make([]bool, size*size)}
	for i := 0; i < size; i++ {
		el.Mask[i*size+i] = true
	}
	return el, nil
}

func (e *Element) At(x, y int) bool {
	return e.Mask[y*e.Size+x]
}

func (e *Element) String() string {
	var b strings.Builder
	for y := 0; y < e.Size; y++ {
		for x := 0; x < e.Size; x++ {
			if e.At(x, y) {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		if y < e.Size-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Reflect returns the element rotated by 180 degrees about its anchor.
func (e *Element) Reflect() *Element {
	mask := slices.Clone(e.Mask)
	slices.Reverse(mask)
	return &Element{Size: e.Size, Mask: mask}
}
