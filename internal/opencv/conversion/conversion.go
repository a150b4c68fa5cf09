// Package conversion moves pixels between gocv Mats and models.Image. Both
// sides use BGR order, so color buffers are copied without reordering.
package conversion

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/opencv/safe"
)

// MatToImage copies an 8-bit Mat into an image. BGRA input drops its alpha
// channel.
func MatToImage(src *safe.Mat) (*models.Image, error) {
	if err := safe.ValidateMatForOperation(src, "Mat to image conversion"); err != nil {
		return nil, err
	}

	switch src.Channels() {
	case 1, 3:
		return copyOut(src)
	case 4:
		bgr, err := ConvertColor(src, gocv.ColorBGRAToBGR)
		if err != nil {
			return nil, err
		}
		defer bgr.Close()
		return copyOut(bgr)
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", src.Channels())
	}
}

func copyOut(src *safe.Mat) (*models.Image, error) {
	img, err := models.NewImage(src.Cols(), src.Rows(), src.Channels())
	if err != nil {
		return nil, err
	}
	data, err := src.Bytes()
	if err != nil {
		return nil, err
	}
	if len(data) != len(img.Pix) {
		return nil, fmt.Errorf("Mat buffer holds %d bytes, want %d", len(data), len(img.Pix))
	}
	copy(img.Pix, data)
	return img, nil
}

// ImageToMat copies an image into a new Mat owned by the caller.
func ImageToMat(img *models.Image) (*safe.Mat, error) {
	if err := img.Validate("image to Mat conversion"); err != nil {
		return nil, err
	}
	return safe.NewMatFromBytes(img.Height, img.Width, img.Channels, img.Pix)
}

// ConvertColor runs cvtColor into a new Mat.
func ConvertColor(src *safe.Mat, code gocv.ColorConversionCode) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "color conversion"); err != nil {
		return nil, err
	}
	dst := gocv.NewMat()
	gocv.CvtColor(src.GetMat(), &dst, code)
	return safe.Wrap(dst)
}

// ToGrayscale converts a BGR or BGRA Mat to one channel; gray input is
// returned as a copy.
func ToGrayscale(src *safe.Mat) (*safe.Mat, error) {
	switch src.Channels() {
	case 1:
		data, err := src.Bytes()
		if err != nil {
			return nil, err
		}
		return safe.NewMatFromBytes(src.Rows(), src.Cols(), 1, data)
	case 3:
		return ConvertColor(src, gocv.ColorBGRToGray)
	case 4:
		return ConvertColor(src, gocv.ColorBGRAToGray)
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", src.Channels())
	}
}
