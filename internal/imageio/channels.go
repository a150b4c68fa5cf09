package imageio

import (
	"github.com/anthonynsimon/bild/channel"

	"github.com/KickHuynh/XuLyAnhSo/internal/models"
)

// SplitRGB extracts the red, green and blue channels as one-channel images.
// A one-channel input yields three equal copies.
func SplitRGB(img *models.Image) (r, g, b *models.Image, err error) {
	src, err := ToImage(img)
	if err != nil {
		return nil, nil, nil, err
	}
	out := make([]*models.Image, 3)
	for i, c := range []channel.Channel{channel.Red, channel.Green, channel.Blue} {
		if out[i], err = FromImage(channel.Extract(src, c)); err != nil {
			return nil, nil, nil, err
		}
	}
	return out[0], out[1], out[2], nil
}
