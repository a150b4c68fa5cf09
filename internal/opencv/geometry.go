package opencv

import (
	"image"

	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/opencv/conversion"
	"github.com/KickHuynh/XuLyAnhSo/internal/opencv/safe"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/operr"
)

// Grayscale converts with OpenCV's BGR2GRAY weights. One-channel input is
// returned as a copy.
func Grayscale(img *models.Image) (*models.Image, error) {
	src, err := conversion.ImageToMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	gray, err := conversion.ToGrayscale(src)
	if err != nil {
		return nil, err
	}
	defer gray.Close()
	return conversion.MatToImage(gray)
}

// Crop copies the part of img inside r. r must lie within the image and be
// non-empty.
func Crop(img *models.Image, r image.Rectangle) (*models.Image, error) {
	if err := img.Validate("crop"); err != nil {
		return nil, err
	}
	if r.Empty() || !r.In(image.Rect(0, 0, img.Width, img.Height)) {
		return nil, operr.Parameter("crop", r.String(), "a non-empty rectangle inside the image")
	}
	src, err := conversion.ImageToMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mat := src.GetMat()
	roi := mat.Region(r)
	defer roi.Close()
	out, err := safe.Wrap(roi.Clone())
	if err != nil {
		return nil, err
	}
	defer out.Close()
	return conversion.MatToImage(out)
}

// CenterQuarter returns the centred (w/2)×(h/2) rectangle of a w×h image.
func CenterQuarter(w, h int) image.Rectangle {
	nw, nh := w/2, h/2
	x, y := w/2-nw/2, h/2-nh/2
	return image.Rect(x, y, x+nw, y+nh)
}
