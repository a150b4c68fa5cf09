package opencv

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/opencv/conversion"
	"github.com/KickHuynh/XuLyAnhSo/internal/opencv/safe"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/colorspace"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
)

// CLAHE equalizes contrast-limited histograms over a tile x tile grid.
// Colour images are processed on luma, leaving chroma untouched.
func CLAHE(img *models.Image, clipLimit float64, tile int) (*models.Image, error) {
	if err := img.Validate("clahe"); err != nil {
		return nil, err
	}
	if !(clipLimit > 0) {
		return nil, operr.Parameter("clip", clipLimit, "> 0")
	}
	if tile < 1 {
		return nil, operr.Parameter("tile", tile, ">= 1")
	}
	if img.Channels == 1 {
		return claheGray(img, clipLimit, tile)
	}

	lc, err := colorspace.Split(img)
	if err != nil {
		return nil, err
	}
	luma, err := models.FromPlanes(lc.Y)
	if err != nil {
		return nil, err
	}
	eq, err := claheGray(luma, clipLimit, tile)
	if err != nil {
		return nil, err
	}
	return lc.Merge(eq.Plane(0))
}

func claheGray(gray *models.Image, clipLimit float64, tile int) (*models.Image, error) {
	src, err := conversion.ImageToMat(gray)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	clahe := gocv.NewCLAHEWithParams(clipLimit, image.Point{X: tile, Y: tile})
	defer clahe.Close()

	dst := gocv.NewMat()
	clahe.Apply(src.GetMat(), &dst)
	out, err := safe.Wrap(dst)
	if err != nil {
		return nil, err
	}
	defer out.Close()
	return conversion.MatToImage(out)
}
