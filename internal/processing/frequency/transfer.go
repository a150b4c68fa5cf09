package frequency

import (
	"fmt"
	"math"
	"strings"

	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
)

// Epsilon replaces a zero cutoff, and a zero distance in the Butterworth
// high-pass, so every transfer function stays defined.
const Epsilon = 1e-10

// DefaultOrder is the Butterworth order used when a caller does not pick one.
const DefaultOrder = 2

// TransferFunc builds H for a rows×cols centred spectrum. order is ignored by
// the ideal and Gaussian families.
type TransferFunc func(rows, cols int, d0 float64, order int) *models.Plane

// Kind enumerates the supported transfer functions.
type Kind int

const (
	ILPF Kind = iota
	IHPF
	GLPF
	GHPF
	BLPF
	BHPF
)

var kindNames = [...]string{"ILPF", "IHPF", "GLPF", "GHPF", "BLPF", "BHPF"}

// Kinds lists every transfer function in declaration order.
func Kinds() []Kind {
	return []Kind{ILPF, IHPF, GLPF, GHPF, BLPF, BHPF}
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind accepts the short names case-insensitively.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Kind(i), nil
		}
	}
	return 0, operr.Wrap(operr.ErrUnsupportedOperation, "frequency filter %q", name)
}

// Butterworth reports whether the kind takes an order.
func (k Kind) Butterworth() bool {
	return k == BLPF || k == BHPF
}

// Transfer returns the generator for the kind.
func (k Kind) Transfer() TransferFunc {
	switch k {
	case ILPF:
		return IdealLowPass
	case IHPF:
		return IdealHighPass
	case GLPF:
		return GaussianLowPass
	case GHPF:
		return GaussianHighPass
	case BLPF:
		return ButterworthLowPass
	case BHPF:
		return ButterworthHighPass
	default:
		return nil
	}
}

// DistanceMatrix returns D(u,v), the distance of every bin from the centre
// (rows/2, cols/2) where the shifted spectrum keeps its zero frequency.
func DistanceMatrix(rows, cols int) *models.Plane {
	d := models.NewPlane(cols, rows)
	cu, cv := rows/2, cols/2
	for u := 0; u < rows; u++ {
		du := float64(u - cu)
		for v := 0; v < cols; v++ {
			dv := float64(v - cv)
			d.Data[u*cols+v] = math.Sqrt(du*du + dv*dv)
		}
	}
	return d
}

func cutoff(d0 float64) float64 {
	if d0 == 0 {
		return Epsilon
	}
	return d0
}

func generate(rows, cols int, fn func(d float64) float64) *models.Plane {
	h := DistanceMatrix(rows, cols)
	for i, d := range h.Data {
		h.Data[i] = fn(d)
	}
	return h
}

func complement(h *models.Plane) *models.Plane {
	for i, v := range h.Data {
		h.Data[i] = 1 - v
	}
	return h
}

// IdealLowPass passes D ≤ D0 and blocks everything else.
func IdealLowPass(rows, cols int, d0 float64, _ int) *models.Plane {
	d0 = cutoff(d0)
	return generate(rows, cols, func(d float64) float64 {
		if d <= d0 {
			return 1
		}
		return 0
	})
}

func IdealHighPass(rows, cols int, d0 float64, order int) *models.Plane {
	return complement(IdealLowPass(rows, cols, d0, order))
}

// GaussianLowPass is exp(-D²/(2·D0²)).
func GaussianLowPass(rows, cols int, d0 float64, _ int) *models.Plane {
	d0 = cutoff(d0)
	return generate(rows, cols, func(d float64) float64 {
		return math.Exp(-(d * d) / (2 * d0 * d0))
	})
}

func GaussianHighPass(rows, cols int, d0 float64, order int) *models.Plane {
	return complement(GaussianLowPass(rows, cols, d0, order))
}

// ButterworthLowPass is 1/(1+(D/D0)^(2n)).
func ButterworthLowPass(rows, cols int, d0 float64, order int) *models.Plane {
	d0 = cutoff(d0)
	n := float64(2 * order)
	return generate(rows, cols, func(d float64) float64 {
		return 1 / (1 + math.Pow(d/d0, n))
	})
}

// ButterworthHighPass is 1/(1+(D0/D)^(2n)) with D=0 taken as Epsilon.
func ButterworthHighPass(rows, cols int, d0 float64, order int) *models.Plane {
	d0 = cutoff(d0)
	n := float64(2 * order)
	return generate(rows, cols, func(d float64) float64 {
		if d == 0 {
			d = Epsilon
		}
		return 1 / (1 + math.Pow(d0/d, n))
	})
}

// Filter selects a transfer function and its parameters.
type Filter struct {
	Kind  Kind
	D0    float64
	Order int
}

// Validate rejects negative cutoffs and missing Butterworth orders.
func (f Filter) Validate() error {
	if f.Kind.Transfer() == nil {
		return operr.Wrap(operr.ErrUnsupportedOperation, "frequency filter %s", f.Kind)
	}
	if !(f.D0 >= 0) || math.IsInf(f.D0, 0) {
		return operr.Parameter("D0", f.D0, ">= 0")
	}
	if f.Kind.Butterworth() && f.Order <= 0 {
		return operr.Wrap(operr.ErrInvalidOrder, "%s requires order >= 1, got %d", f.Kind, f.Order)
	}
	return nil
}

func (f Filter) String() string {
	if f.Kind.Butterworth() {
		return fmt.Sprintf("%s(D0=%g, n=%d)", f.Kind, f.D0, f.Order)
	}
	return fmt.Sprintf("%s(D0=%g)", f.Kind, f.D0)
}
