package frequency

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/colorspace"
)

// Batch jobs already run one image per goroutine, so each transform keeps to
// a single FFT worker.
func init() {
	fft.SetWorkerPoolSize(1)
}

// Spectrum2D is a complex grid indexed [row][col].
type Spectrum2D [][]complex128

// Forward computes the 2D DFT of a plane.
func Forward(p *models.Plane) Spectrum2D {
	return Spectrum2D(fft.FFT2Real(p.Rows()))
}

// Inverse computes the inverse 2D DFT.
func Inverse(s Spectrum2D) Spectrum2D {
	return Spectrum2D(fft.IFFT2(s))
}

func (s Spectrum2D) Rows() int { return len(s) }

func (s Spectrum2D) Cols() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Shift moves the zero-frequency bin to (rows/2, cols/2) by swapping quadrants.
func (s Spectrum2D) Shift() Spectrum2D {
	return s.roll(s.Rows()/2, s.Cols()/2)
}

// InverseShift undoes Shift, including for odd sizes.
func (s Spectrum2D) InverseShift() Spectrum2D {
	return s.roll(s.Rows()-s.Rows()/2, s.Cols()-s.Cols()/2)
}

func (s Spectrum2D) roll(dy, dx int) Spectrum2D {
	rows, cols := s.Rows(), s.Cols()
	out := make(Spectrum2D, rows)
	for y := range out {
		out[y] = make([]complex128, cols)
	}
	for y := 0; y < rows; y++ {
		ty := (y + dy) % rows
		for x := 0; x < cols; x++ {
			out[ty][(x+dx)%cols] = s[y][x]
		}
	}
	return out
}

// Multiply scales every bin in place by the real transfer value at the same
// position.
func (s Spectrum2D) Multiply(h *models.Plane) {
	for y, row := range s {
		for x := range row {
			row[x] *= complex(h.Data[y*h.Width+x], 0)
		}
	}
}

// Magnitude returns |s| as a plane.
func (s Spectrum2D) Magnitude() *models.Plane {
	p := models.NewPlane(s.Cols(), s.Rows())
	for y, row := range s {
		for x, v := range row {
			p.Data[y*p.Width+x] = cmplx.Abs(v)
		}
	}
	return p
}

// LogMagnitude renders the centred spectrum of the image intensity as
// log(1+|F|), normalized to 8 bits.
func LogMagnitude(img *models.Image) (*models.Image, error) {
	if err := img.Validate("spectrum"); err != nil {
		return nil, err
	}
	var plane *models.Plane
	if img.Channels == 3 {
		lc, err := colorspace.Split(img)
		if err != nil {
			return nil, err
		}
		plane = lc.Y
	} else {
		plane = img.Plane(0)
	}

	mag := Forward(plane).Shift().Magnitude()
	for i, v := range mag.Data {
		mag.Data[i] = math.Log1p(v)
	}
	return models.FromPlanes(mag.Normalize())
}
