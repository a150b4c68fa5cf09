package models

import (
	"fmt"
	"math"
)

// Image is an 8-bit raster with one (intensity) or three (B, G, R) interleaved
// channels. Operators never modify an Image they receive; they return a new one.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewImage allocates a zeroed image.
func NewImage(width, height, channels int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %dx%d", width, height)
	}
	if channels != 1 && channels != 3 {
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}

	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}, nil
}

// NewUniform allocates an image with every sample set to value.
func NewUniform(width, height, channels int, value uint8) (*Image, error) {
	img, err := NewImage(width, height, channels)
	if err != nil {
		return nil, err
	}
	for i := range img.Pix {
		img.Pix[i] = value
	}
	return img, nil
}

// Validate reports whether the buffer is consistent with its geometry.
func (im *Image) Validate(operation string) error {
	if im == nil {
		return fmt.Errorf("image is nil for operation: %s", operation)
	}
	if im.Width <= 0 || im.Height <= 0 {
		return fmt.Errorf("image has invalid dimensions %dx%d for operation: %s", im.Width, im.Height, operation)
	}
	if im.Channels != 1 && im.Channels != 3 {
		return fmt.Errorf("image has unsupported channel count %d for operation: %s", im.Channels, operation)
	}
	if len(im.Pix) != im.Width*im.Height*im.Channels {
		return fmt.Errorf("image buffer length %d does not match %dx%dx%d for operation: %s",
			len(im.Pix), im.Width, im.Height, im.Channels, operation)
	}
	return nil
}

func (im *Image) At(x, y, c int) uint8 {
	return im.Pix[(y*im.Width+x)*im.Channels+c]
}

func (im *Image) Set(x, y, c int, v uint8) {
	im.Pix[(y*im.Width+x)*im.Channels+c] = v
}

// Clone returns a deep copy.
func (im *Image) Clone() *Image {
	pix := make([]uint8, len(im.Pix))
	copy(pix, im.Pix)
	return &Image{Width: im.Width, Height: im.Height, Channels: im.Channels, Pix: pix}
}

// SameShape reports whether two images share width, height and channel count.
func (im *Image) SameShape(other *Image) bool {
	return other != nil && im.Width == other.Width && im.Height == other.Height && im.Channels == other.Channels
}

// Equal reports sample-exact equality.
func (im *Image) Equal(other *Image) bool {
	if !im.SameShape(other) {
		return false
	}
	for i := range im.Pix {
		if im.Pix[i] != other.Pix[i] {
			return false
		}
	}
	return true
}

// Plane extracts channel c widened to float64.
func (im *Image) Plane(c int) *Plane {
	p := NewPlane(im.Width, im.Height)
	for i := 0; i < im.Width*im.Height; i++ {
		p.Data[i] = float64(im.Pix[i*im.Channels+c])
	}
	return p
}

// Planes splits every channel into its own plane.
func (im *Image) Planes() []*Plane {
	planes := make([]*Plane, im.Channels)
	for c := range planes {
		planes[c] = im.Plane(c)
	}
	return planes
}

// FromPlanes merges planes into an image, rounding and clamping each sample
// to [0,255]. All planes must share the same size.
func FromPlanes(planes ...*Plane) (*Image, error) {
	if len(planes) == 0 {
		return nil, fmt.Errorf("no planes to merge")
	}
	w, h := planes[0].Width, planes[0].Height
	for _, p := range planes[1:] {
		if p.Width != w || p.Height != h {
			return nil, fmt.Errorf("plane size mismatch: %dx%d vs %dx%d", p.Width, p.Height, w, h)
		}
	}

	img, err := NewImage(w, h, len(planes))
	if err != nil {
		return nil, err
	}
	for c, p := range planes {
		for i, v := range p.Data {
			img.Pix[i*img.Channels+c] = ClampByte(v)
		}
	}
	return img, nil
}

// Expand replicates a single-channel image to the requested channel count.
func (im *Image) Expand(channels int) *Image {
	if im.Channels == channels || im.Channels != 1 {
		return im.Clone()
	}
	out := &Image{Width: im.Width, Height: im.Height, Channels: channels, Pix: make([]uint8, im.Width*im.Height*channels)}
	for i, v := range im.Pix {
		for c := 0; c < channels; c++ {
			out.Pix[i*channels+c] = v
		}
	}
	return out
}

// ClampByte rounds v to the nearest integer and clamps it to [0,255].
func ClampByte(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}
