// Package frequency implements the frequency-domain filter pipeline and the
// transfer functions it applies.
package frequency

import (
	"fmt"

	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/colorspace"
	"github.com/KickHuynh/XuLyAnhSo/internal/timing"
)

// Stage names, in execution order.
const (
	StageColorDecomposition = "color_decomposition"
	StageForwardDFT         = "forward_dft"
	StageCenterShift        = "center_shift"
	StageTransferFunction   = "transfer_function"
	StageInverseShift       = "inverse_shift"
	StageInverseDFT         = "inverse_dft"
	StageColorRecomposition = "color_recomposition"
)

// Apply filters the image intensity in the frequency domain. Colour images
// are split into luma and chroma; only luma is filtered and the chroma is
// reattached unchanged. The result is min-max normalized to [0,255]. The
// record holds one entry per executed stage; gray input skips the two colour
// stages.
func Apply(img *models.Image, f Filter) (*models.Image, timing.Record, error) {
	if err := img.Validate("frequency filter"); err != nil {
		return nil, nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, nil, err
	}

	sw := timing.NewStopwatch()

	var (
		lc    *colorspace.LumaChroma
		plane *models.Plane
		err   error
	)
	if img.Channels == 3 {
		lc, err = colorspace.Split(img)
		if err != nil {
			return nil, nil, fmt.Errorf("color decomposition failed: %w", err)
		}
		plane = lc.Y
		sw.Mark(StageColorDecomposition)
	} else {
		plane = img.Plane(0)
		sw.Restart()
	}

	spectrum := Forward(plane)
	sw.Mark(StageForwardDFT)

	centred := spectrum.Shift()
	sw.Mark(StageCenterShift)

	h := f.Kind.Transfer()(centred.Rows(), centred.Cols(), f.D0, f.Order)
	centred.Multiply(h)
	sw.Mark(StageTransferFunction)

	restored := centred.InverseShift()
	sw.Mark(StageInverseShift)

	filtered, err := models.FromPlanes(Inverse(restored).Magnitude().Normalize())
	if err != nil {
		return nil, nil, err
	}
	sw.Mark(StageInverseDFT)

	if lc == nil {
		return filtered, sw.Record(), nil
	}

	out, err := lc.Merge(filtered.Plane(0))
	if err != nil {
		return nil, nil, fmt.Errorf("color recomposition failed: %w", err)
	}
	sw.Mark(StageColorRecomposition)

	return out, sw.Record(), nil
}
