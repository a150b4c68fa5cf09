// Package opencv wraps gocv: imgcodecs for reading and writing images, plus the
// imgproc primitives (morphology, median, CLAHE) the processing packages
// delegate to.
package opencv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"

	"github.com/KickHuynh/XuLyAnhSo/internal/logger"
	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/opencv/conversion"
	"github.com/KickHuynh/XuLyAnhSo/internal/opencv/safe"
)

const component = "opencv"

const jpegQuality = 95

// Codec loads gray images as one channel and everything else as BGR.
type Codec struct {
	log logger.Logger
}

func NewCodec(log logger.Logger) *Codec {
	if log == nil {
		log = logger.NewNop()
	}
	return &Codec{log: log}
}

func (c *Codec) Name() string { return "opencv" }

func (c *Codec) ReadFile(path string) (*models.Image, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	mat, err := safe.Wrap(gocv.IMRead(path, gocv.IMReadAnyColor))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	defer mat.Close()

	img, err := conversion.MatToImage(mat)
	if err != nil {
		return nil, err
	}
	c.log.Debug(component, "image loaded", map[string]interface{}{
		"path": path, "width": img.Width, "height": img.Height, "channels": img.Channels,
	})
	return img, nil
}

func (c *Codec) WriteFile(path string, img *models.Image) error {
	mat, err := conversion.ImageToMat(img)
	if err != nil {
		return err
	}
	defer mat.Close()

	var ok bool
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		ok = gocv.IMWriteWithParams(path, mat.GetMat(), []int{int(gocv.IMWriteJpegQuality), jpegQuality})
	default:
		ok = gocv.IMWrite(path, mat.GetMat())
	}
	if !ok {
		return fmt.Errorf("failed to encode %s", path)
	}
	c.log.Debug(component, "image saved", map[string]interface{}{"path": path})
	return nil
}

func (c *Codec) Decode(data []byte) (*models.Image, error) {
	raw, err := gocv.IMDecode(data, gocv.IMReadAnyColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	mat, err := safe.Wrap(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	defer mat.Close()
	return conversion.MatToImage(mat)
}

// Encode renders img in the format named by ext (".png", ".jpg", ...).
func (c *Codec) Encode(img *models.Image, ext string) ([]byte, error) {
	fileExt, err := fileExt(ext)
	if err != nil {
		return nil, err
	}
	mat, err := conversion.ImageToMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	buf, err := gocv.IMEncode(fileExt, mat.GetMat())
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

func fileExt(ext string) (gocv.FileExt, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		return gocv.PNGFileExt, nil
	case "jpg", "jpeg":
		return gocv.JPEGFileExt, nil
	case "bmp":
		return gocv.BMPFileExt, nil
	case "tif", "tiff":
		return gocv.TIFFFileExt, nil
	case "webp":
		return gocv.WEBPFileExt, nil
	}
	return "", fmt.Errorf("unsupported image format: %s", ext)
}
