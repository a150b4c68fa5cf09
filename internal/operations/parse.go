package operations

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KickHuynh/XuLyAnhSo/internal/processing/frequency"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/morphology"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/spatial"
)

// Defaults supplies parameters a step description leaves out.
type Defaults struct {
	LogGain      float64 `yaml:"log_gain" toml:"log_gain"`
	GammaGain    float64 `yaml:"gamma_gain" toml:"gamma_gain"`
	Gamma        float64 `yaml:"gamma" toml:"gamma"`
	StretchLow   float64 `yaml:"stretch_low" toml:"stretch_low"`
	StretchHigh  float64 `yaml:"stretch_high" toml:"stretch_high"`
	Threshold    float64 `yaml:"threshold" toml:"threshold"`
	ClaheClip    float64 `yaml:"clahe_clip" toml:"clahe_clip"`
	ClaheTile    int     `yaml:"clahe_tile" toml:"clahe_tile"`
	KernelSize   int     `yaml:"kernel_size" toml:"kernel_size"`
	D0           float64 `yaml:"d0" toml:"d0"`
	Order        int     `yaml:"order" toml:"order"`
	ElementShape string  `yaml:"element_shape" toml:"element_shape"`
	ElementSize  int     `yaml:"element_size" toml:"element_size"`
	Iterations   int     `yaml:"iterations" toml:"iterations"`
}

// DefaultParameters mirrors the initial positions of the interactive controls.
func DefaultParameters() Defaults {
	return Defaults{
		LogGain:      45.98, // 255/ln(256) maps 255 to 255
		GammaGain:    1.0,
		Gamma:        1.0,
		StretchLow:   0.5,
		StretchHigh:  1.0,
		Threshold:    127,
		ClaheClip:    2,
		ClaheTile:    8,
		KernelSize:   3,
		D0:           30,
		Order:        frequency.DefaultOrder,
		ElementShape: "rect",
		ElementSize:  3,
		Iterations:   1,
	}
}

// Names lists every operator name ParseStep understands.
func Names() []string {
	return []string{
		"negative", "log", "gamma", "stretch", "equalize", "clahe", "threshold", "gray", "crop",
		"mean", "gaussian", "median", "min", "max", "midpoint", "sobel",
		"ilpf", "ihpf", "glpf", "ghpf", "blpf", "bhpf",
		"erode", "dilate", "open", "close", "boundary",
	}
}

type args map[string]string

func (a args) float(key string, def float64) (float64, error) {
	v, ok := a[key]
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, operr.Parameter(key, v, "a number")
	}
	return f, nil
}

func (a args) int(key string, def int) (int, error) {
	v, ok := a[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, operr.Parameter(key, v, "an integer")
	}
	return n, nil
}

// level reads a threshold that may be the word "otsu".
func (a args) level(key string, def float64) (float64, bool, error) {
	if strings.EqualFold(a[key], "otsu") {
		return 0, true, nil
	}
	f, err := a.float(key, def)
	return f, false, err
}

// splitSpec parses "name[:key=value,...]".
func splitSpec(spec string) (string, args, error) {
	name, rest, _ := strings.Cut(strings.TrimSpace(spec), ":")
	a := args{}
	if rest == "" {
		return strings.ToLower(name), a, nil
	}
	for _, kv := range strings.Split(rest, ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return "", nil, operr.Wrap(operr.ErrInvalidParameter, "malformed argument %q in %q", kv, spec)
		}
		a[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return strings.ToLower(name), a, nil
}

// ParseTransform maps a description such as "gamma:c=1,gamma=0.4" to a variant.
func ParseTransform(spec string, d Defaults) (Transform, error) {
	name, a, err := splitSpec(spec)
	if err != nil {
		return nil, err
	}
	return parseTransform(name, a, d)
}

func parseTransform(name string, a args, d Defaults) (Transform, error) {
	switch name {
	case "negative":
		return Negative{}, nil
	case "log":
		c, err := a.float("c", d.LogGain)
		return Log{C: c}, err
	case "gamma":
		c, err := a.float("c", d.GammaGain)
		if err != nil {
			return nil, err
		}
		g, err := a.float("gamma", d.Gamma)
		return Gamma{C: c, Gamma: g}, err
	case "stretch", "piecewise":
		low, err := a.float("low", d.StretchLow)
		if err != nil {
			return nil, err
		}
		high, err := a.float("high", d.StretchHigh)
		return PiecewiseLinear{Low: low, High: high}, err
	case "equalize":
		return Equalize{}, nil
	case "clahe":
		clip, err := a.float("clip", d.ClaheClip)
		if err != nil {
			return nil, err
		}
		tile, err := a.int("tile", d.ClaheTile)
		return CLAHE{Clip: clip, Tile: tile}, err
	case "threshold":
		t, otsu, err := a.level("t", d.Threshold)
		return Threshold{T: t, Otsu: otsu}, err
	case "gray", "grayscale":
		return Grayscale{}, nil
	case "crop":
		return CenterCrop{}, nil
	}
	return nil, operr.Wrap(operr.ErrUnsupportedOperation, "transform %q", name)
}

// ParseFilter maps a description such as "median:k=5" to a variant. Even
// kernel sizes are coerced to the next odd value.
func ParseFilter(spec string, d Defaults) (Filter, error) {
	name, a, err := splitSpec(spec)
	if err != nil {
		return nil, err
	}
	return parseFilter(name, a, d)
}

func parseFilter(name string, a args, d Defaults) (Filter, error) {
	k, err := a.int("k", d.KernelSize)
	if err != nil {
		return nil, err
	}
	return NewFilter(name, spatial.OddKernelSize(k))
}

// NewFilter builds the named filter variant with kernel size k.
func NewFilter(name string, k int) (Filter, error) {
	switch strings.ToLower(name) {
	case "mean":
		return Mean{KernelSize: k}, nil
	case "gaussian":
		return Gaussian{KernelSize: k}, nil
	case "median":
		return Median{KernelSize: k}, nil
	case "min":
		return Min{KernelSize: k}, nil
	case "max":
		return Max{KernelSize: k}, nil
	case "midpoint":
		return Midpoint{KernelSize: k}, nil
	case "sobel":
		return Sobel{KernelSize: k}, nil
	}
	return nil, operr.Wrap(operr.ErrUnsupportedOperation, "filter %q", name)
}

// ParseFrequencyFilter maps a description such as "bhpf:d0=20,n=3".
func ParseFrequencyFilter(spec string, d Defaults) (FrequencyFilter, error) {
	name, a, err := splitSpec(spec)
	if err != nil {
		return FrequencyFilter{}, err
	}
	return parseFrequency(name, a, d)
}

func parseFrequency(name string, a args, d Defaults) (FrequencyFilter, error) {
	kind, err := frequency.ParseKind(name)
	if err != nil {
		return FrequencyFilter{}, err
	}
	d0, err := a.float("d0", d.D0)
	if err != nil {
		return FrequencyFilter{}, err
	}
	order, err := a.int("n", d.Order)
	if err != nil {
		return FrequencyFilter{}, err
	}
	return FrequencyFilter{Kind: kind, D0: d0, Order: order}, nil
}

// ParseMorphology maps a description such as "open:shape=ellipse,size=5,t=100,i=2".
// shape=diagonal selects the main-diagonal element of the given size.
func ParseMorphology(spec string, d Defaults) (Morphology, error) {
	name, a, err := splitSpec(spec)
	if err != nil {
		return Morphology{}, err
	}
	return parseMorphology(name, a, d)
}

func parseMorphology(name string, a args, d Defaults) (Morphology, error) {
	op, err := morphology.ParseOp(name)
	if err != nil {
		return Morphology{}, err
	}
	size, err := a.int("size", d.ElementSize)
	if err != nil {
		return Morphology{}, err
	}
	t, otsu, err := a.level("t", d.Threshold)
	if err != nil {
		return Morphology{}, err
	}
	it, err := a.int("i", d.Iterations)
	if err != nil {
		return Morphology{}, err
	}

	shapeName := d.ElementShape
	if v, ok := a["shape"]; ok {
		shapeName = v
	}
	var el ElementSpec
	if strings.EqualFold(shapeName, "diagonal") {
		el = ElementSpec{Size: size, Diagonal: true}
	} else {
		shape, err := morphology.ParseShape(shapeName)
		if err != nil {
			return Morphology{}, err
		}
		el = ElementSpec{Shape: shape, Size: size}
	}
	return Morphology{Op: op, Element: el, Threshold: t, Otsu: otsu, Iterations: it}, nil
}

// Category reports which family an operator name belongs to.
func Category(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if _, err := parseTransform(n, args{}, DefaultParameters()); err == nil {
		return "transform", nil
	}
	if _, err := NewFilter(n, 3); err == nil {
		return "filter", nil
	}
	if _, err := frequency.ParseKind(n); err == nil {
		return "frequency", nil
	}
	if _, err := morphology.ParseOp(n); err == nil {
		return "morphology", nil
	}
	return "", fmt.Errorf("%w: %q", operr.ErrUnsupportedOperation, name)
}
