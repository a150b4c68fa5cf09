package models

import (
	"fmt"
	"math"
)

// Plane is a single-channel grid of float64 samples in row-major order.
type Plane struct {
	Width  int
	Height int
	Data   []float64
}

func NewPlane(width, height int) *Plane {
	return &Plane{Width: width, Height: height, Data: make([]float64, width*height)}
}

// PlaneFromRows copies a [row][col] slice into a plane.
func PlaneFromRows(rows [][]float64) (*Plane, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("empty rows")
	}
	p := NewPlane(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != p.Width {
			return nil, fmt.Errorf("ragged rows: row %d has %d columns, want %d", y, len(row), p.Width)
		}
		copy(p.Data[y*p.Width:], row)
	}
	return p, nil
}

func (p *Plane) At(x, y int) float64 {
	return p.Data[y*p.Width+x]
}

func (p *Plane) Set(x, y int, v float64) {
	p.Data[y*p.Width+x] = v
}

func (p *Plane) Clone() *Plane {
	data := make([]float64, len(p.Data))
	copy(data, p.Data)
	return &Plane{Width: p.Width, Height: p.Height, Data: data}
}

// Rows returns the plane as freshly allocated [row][col] slices.
func (p *Plane) Rows() [][]float64 {
	rows := make([][]float64, p.Height)
	for y := range rows {
		rows[y] = make([]float64, p.Width)
		copy(rows[y], p.Data[y*p.Width:(y+1)*p.Width])
	}
	return rows
}

// MinMax returns the smallest and largest sample.
func (p *Plane) MinMax() (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range p.Data {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// Normalize linearly rescales the plane to [0,255]. A flat plane maps to zero.
func (p *Plane) Normalize() *Plane {
	out := NewPlane(p.Width, p.Height)
	lo, hi := p.MinMax()
	if hi-lo == 0 {
		return out
	}
	scale := 255 / (hi - lo)
	for i, v := range p.Data {
		out.Data[i] = (v - lo) * scale
	}
	return out
}

// Kernel is a square, odd-sized grid of correlation weights.
type Kernel struct {
	Size    int
	Weights []float64
}

// NewKernel wraps weights given row by row. The grid must be square with odd side.
func NewKernel(rows [][]float64) (*Kernel, error) {
	n := len(rows)
	if n == 0 || n%2 == 0 {
		return nil, fmt.Errorf("kernel side must be odd, got %d", n)
	}
	k := &Kernel{Size: n, Weights: make([]float64, 0, n*n)}
	for y, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("kernel row %d has %d weights, want %d", y, len(row), n)
		}
		k.Weights = append(k.Weights, row...)
	}
	return k, nil
}

func (k *Kernel) At(x, y int) float64 {
	return k.Weights[y*k.Size+x]
}

func (k *Kernel) Sum() float64 {
	sum := 0.0
	for _, w := range k.Weights {
		sum += w
	}
	return sum
}
