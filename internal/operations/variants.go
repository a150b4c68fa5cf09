// Package operations is the inbound boundary of the processing core. Each
// operator category is a closed set of variant types carrying their own
// parameters; the Apply functions switch over them exhaustively.
package operations

import (
	"fmt"
	"strconv"

	"github.com/KickHuynh/XuLyAnhSo/internal/processing/frequency"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/morphology"
)

// Transform maps one image to another without a neighbourhood window.
// Implemented only by the types below.
type Transform interface {
	fmt.Stringer
	isTransform()
}

type (
	Negative        struct{}
	Log             struct{ C float64 }
	Gamma           struct{ C, Gamma float64 }
	PiecewiseLinear struct{ Low, High float64 }
	Equalize        struct{}
	CLAHE           struct {
		Clip float64
		Tile int
	}
	Threshold       struct {
		T    float64
		Otsu bool // choose T from the image histogram
	}
	Grayscale  struct{}
	CenterCrop struct{} // the centred half-width, half-height region
)

func (Negative) isTransform()        {}
func (Log) isTransform()             {}
func (Gamma) isTransform()           {}
func (PiecewiseLinear) isTransform() {}
func (Equalize) isTransform()        {}
func (CLAHE) isTransform()           {}
func (Threshold) isTransform()       {}
func (Grayscale) isTransform()       {}
func (CenterCrop) isTransform()      {}

func (Negative) String() string          { return "Negative" }
func (t Log) String() string             { return fmt.Sprintf("Log(c=%g)", t.C) }
func (t Gamma) String() string           { return fmt.Sprintf("Gamma(c=%g, gamma=%g)", t.C, t.Gamma) }
func (t PiecewiseLinear) String() string { return fmt.Sprintf("PiecewiseLinear(low=%g, high=%g)", t.Low, t.High) }
func (Equalize) String() string          { return "Equalize" }
func (t CLAHE) String() string           { return fmt.Sprintf("CLAHE(clip=%g, tile=%d)", t.Clip, t.Tile) }
func (t Threshold) String() string       { return "Threshold(T=" + thresholdLabel(t.T, t.Otsu) + ")" }
func (Grayscale) String() string         { return "Grayscale" }
func (CenterCrop) String() string        { return "CenterCrop" }

// Filter is a spatial neighborhood filter. Implemented only by the types below.
type Filter interface {
	fmt.Stringer
	Size() int
	isFilter()
}

type (
	Mean     struct{ KernelSize int }
	Gaussian struct{ KernelSize int }
	Median   struct{ KernelSize int }
	Min      struct{ KernelSize int }
	Max      struct{ KernelSize int }
	Midpoint struct{ KernelSize int }
	// Sobel always uses 3×3 kernels; KernelSize is validated but unused.
	Sobel struct{ KernelSize int }
)

func (Mean) isFilter()     {}
func (Gaussian) isFilter() {}
func (Median) isFilter()   {}
func (Min) isFilter()      {}
func (Max) isFilter()      {}
func (Midpoint) isFilter() {}
func (Sobel) isFilter()    {}

func (f Mean) Size() int     { return f.KernelSize }
func (f Gaussian) Size() int { return f.KernelSize }
func (f Median) Size() int   { return f.KernelSize }
func (f Min) Size() int      { return f.KernelSize }
func (f Max) Size() int      { return f.KernelSize }
func (f Midpoint) Size() int { return f.KernelSize }
func (f Sobel) Size() int    { return f.KernelSize }

func (f Mean) String() string     { return fmt.Sprintf("Mean(k=%d)", f.KernelSize) }
func (f Gaussian) String() string { return fmt.Sprintf("Gaussian(k=%d)", f.KernelSize) }
func (f Median) String() string   { return fmt.Sprintf("Median(k=%d)", f.KernelSize) }
func (f Min) String() string      { return fmt.Sprintf("Min(k=%d)", f.KernelSize) }
func (f Max) String() string      { return fmt.Sprintf("Max(k=%d)", f.KernelSize) }
func (f Midpoint) String() string { return fmt.Sprintf("Midpoint(k=%d)", f.KernelSize) }
func (f Sobel) String() string    { return fmt.Sprintf("Sobel(k=%d)", f.KernelSize) }

// FrequencyFilter selects a transfer function with its cutoff and order.
type FrequencyFilter = frequency.Filter

// ElementSpec describes a structuring element: a shape family and size, the
// main diagonal of a Size×Size square when Diagonal is set, or an explicit
// mask when Custom is set.
type ElementSpec struct {
	Shape    morphology.Shape
	Size     int
	Diagonal bool
	Custom   [][]uint8
}

// Build constructs the element.
func (s ElementSpec) Build() (*morphology.Element, error) {
	switch {
	case s.Custom != nil:
		return morphology.CustomElement(s.Custom)
	case s.Diagonal:
		return morphology.Diagonal(s.Size)
	}
	return morphology.NewElement(s.Shape, s.Size)
}

func (s ElementSpec) String() string {
	switch {
	case s.Custom != nil:
		return fmt.Sprintf("custom(%dx%d)", len(s.Custom), len(s.Custom))
	case s.Diagonal:
		return fmt.Sprintf("diagonal(%d)", s.Size)
	}
	return fmt.Sprintf("%s(%d)", s.Shape, s.Size)
}

// Morphology is a binary morphology request. The image is binarized at
// Threshold before Op runs.
type Morphology struct {
	Op         morphology.Op
	Element    ElementSpec
	Threshold  float64
	Otsu       bool
	Iterations int
}

func (m Morphology) String() string {
	return fmt.Sprintf("%s(%s, T=%s, i=%d)", m.Op, m.Element, thresholdLabel(m.Threshold, m.Otsu), m.Iterations)
}

func thresholdLabel(t float64, otsu bool) string {
	if otsu {
		return "otsu"
	}
	return strconv.FormatFloat(t, 'g', -1, 64)
}
