package frequency

import (
	"time"

	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
	"github.com/KickHuynh/XuLyAnhSo/internal/timing"
)

// DefaultCheckpoints are the passes captured by IterateHighPass when the
// caller does not supply any.
var DefaultCheckpoints = []int{1, 10, 100}

// Result is one labelled output of a composite run.
type Result struct {
	Label   string
	Image   *models.Image
	Timings timing.Record
}

// LowThenHigh applies GLPF and then GHPF to the low-passed image, both at d0.
// The second result carries the stages of both runs, prefixed "GLPF/" and
// "GHPF/".
func LowThenHigh(img *models.Image, d0 float64) ([]Result, error) {
	low, lowRec, err := Apply(img, Filter{Kind: GLPF, D0: d0})
	if err != nil {
		return nil, err
	}
	high, highRec, err := Apply(low, Filter{Kind: GHPF, D0: d0})
	if err != nil {
		return nil, err
	}
	return []Result{
		{Label: "GLPF", Image: low, Timings: lowRec},
		{Label: "GLPF+GHPF", Image: high, Timings: append(lowRec.Prefixed("GLPF/"), highRec.Prefixed("GHPF/")...)},
	}, nil
}

// Checkpoint captures the state of an iterated filter after Pass passes.
type Checkpoint struct {
	Pass    int
	Image   *models.Image
	Elapsed time.Duration
	Timings timing.Record
}

// IterateHighPass feeds the image through GHPF passes times, each pass taking
// the previous output, and captures the output and cumulative time at each
// checkpoint. Checkpoints beyond passes are ignored; the final pass is always
// captured.
func IterateHighPass(img *models.Image, d0 float64, passes int, checkpoints []int) ([]Checkpoint, error) {
	return Iterate(img, Filter{Kind: GHPF, D0: d0}, passes, checkpoints)
}

// Iterate is IterateHighPass for an arbitrary filter.
func Iterate(img *models.Image, f Filter, passes int, checkpoints []int) ([]Checkpoint, error) {
	if passes < 1 {
		return nil, operr.Wrap(operr.ErrInvalidIterationCount, "passes must be >= 1, got %d", passes)
	}
	if checkpoints == nil {
		checkpoints = DefaultCheckpoints
	}
	wanted := make(map[int]bool, len(checkpoints)+1)
	for _, c := range checkpoints {
		if c >= 1 && c <= passes {
			wanted[c] = true
		}
	}
	wanted[passes] = true

	var (
		out     []Checkpoint
		current = img
		elapsed time.Duration
	)
	for pass := 1; pass <= passes; pass++ {
		start := time.Now()
		next, rec, err := Apply(current, f)
		if err != nil {
			return nil, err
		}
		elapsed += time.Since(start)
		current = next

		if wanted[pass] {
			out = append(out, Checkpoint{Pass: pass, Image: next, Elapsed: elapsed, Timings: rec})
		}
	}
	return out, nil
}
