// Package preview produces display copies: thumbnails fitted into a bounding
// box and contact sheets that place labelled results side by side.
package preview

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/KickHuynh/XuLyAnhSo/internal/imageio"
	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
)

// Background fills the gaps of a contact sheet.
var Background = color.NRGBA{R: 32, G: 32, B: 32, A: 255}

// Caption is the colour of tile labels.
var Caption = color.NRGBA{R: 235, G: 235, B: 235, A: 255}

var captionFace = basicfont.Face7x13

// captionHeight is the strip reserved under each cell for its label.
const captionHeight = 16

// Tile is one labelled cell of a contact sheet.
type Tile struct {
	Label string
	Image *models.Image
}

// Fit scales img down to fit within width×height keeping its aspect ratio.
// Images that already fit are returned as a copy. The channel count is kept.
func Fit(img *models.Image, width, height int) (*models.Image, error) {
	if err := img.Validate("preview"); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, operr.Parameter("preview size", fmt.Sprintf("%dx%d", width, height), "positive dimensions")
	}
	if img.Width <= width && img.Height <= height {
		return img.Clone(), nil
	}

	src, err := imageio.ToImage(img)
	if err != nil {
		return nil, err
	}
	return fromNRGBA(imaging.Fit(src, width, height, imaging.Lanczos), img.Channels)
}

// Resize scales img to exactly width×height, ignoring aspect ratio. The box
// filter averages source areas when shrinking. The channel count is kept.
func Resize(img *models.Image, width, height int) (*models.Image, error) {
	if err := img.Validate("resize"); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, operr.Parameter("resize", fmt.Sprintf("%dx%d", width, height), "positive dimensions")
	}
	if img.Width == width && img.Height == height {
		return img.Clone(), nil
	}

	src, err := imageio.ToImage(img)
	if err != nil {
		return nil, err
	}
	return fromNRGBA(imaging.Resize(src, width, height, imaging.Box), img.Channels)
}

// ContactSheet lays tiles out row-major, cols per row, each scaled into a
// cell×cell square and centred with gap pixels between cells. Each label is
// drawn centred in a strip under its cell, clipped to the cell width. The
// sheet is always three-channel.
func ContactSheet(tiles []Tile, cols, cell, gap int) (*models.Image, error) {
	if len(tiles) == 0 {
		return nil, operr.Wrap(operr.ErrInvalidParameter, "contact sheet needs at least one tile")
	}
	if cols <= 0 || cell <= 0 || gap < 0 {
		return nil, operr.Wrap(operr.ErrInvalidParameter, "cols=%d cell=%d gap=%d", cols, cell, gap)
	}
	cols = min(cols, len(tiles))
	rows := (len(tiles) + cols - 1) / cols
	pitchX, pitchY := cell+gap, cell+captionHeight+gap

	sheet := imaging.New(cols*cell+(cols+1)*gap, rows*(cell+captionHeight)+(rows+1)*gap, Background)
	for i, t := range tiles {
		src, err := imageio.ToImage(t.Image)
		if err != nil {
			return nil, fmt.Errorf("tile %q: %w", t.Label, err)
		}
		thumb := imaging.Fit(src, cell, cell, imaging.Lanczos)

		cx := gap + (i%cols)*pitchX
		cy := gap + (i/cols)*pitchY
		sheet = imaging.Paste(sheet, thumb, image.Pt(cx+(cell-thumb.Bounds().Dx())/2, cy+(cell-thumb.Bounds().Dy())/2))
		drawCaption(sheet, t.Label, image.Rect(cx, cy+cell, cx+cell, cy+cell+captionHeight))
	}
	return fromNRGBA(sheet, 3)
}

func drawCaption(dst *image.NRGBA, label string, box image.Rectangle) {
	if label == "" {
		return
	}
	// Drop trailing runes until the label fits the box.
	runes := []rune(label)
	for len(runes) > 0 && font.MeasureString(captionFace, string(runes)).Ceil() > box.Dx() {
		runes = runes[:len(runes)-1]
	}
	if len(runes) == 0 {
		return
	}
	text := string(runes)

	m := captionFace.Metrics()
	width := font.MeasureString(captionFace, text).Ceil()
	x := box.Min.X + (box.Dx()-width)/2
	y := box.Min.Y + (box.Dy()-m.Height.Ceil())/2 + m.Ascent.Ceil()
	d := &font.Drawer{
		Dst:  dst.SubImage(box).(*image.NRGBA),
		Src:  image.NewUniform(Caption),
		Face: captionFace,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func fromNRGBA(src *image.NRGBA, channels int) (*models.Image, error) {
	img, err := imageio.FromImage(src)
	if err != nil {
		return nil, err
	}
	if channels == 1 {
		return models.FromPlanes(img.Plane(0))
	}
	return img, nil
}
