package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/KickHuynh/XuLyAnhSo/internal/logger"
	"github.com/KickHuynh/XuLyAnhSo/internal/models"
)

const component = "imageio"

const jpegQuality = 95

// NativeCodec decodes PNG, JPEG, GIF, BMP, TIFF and WebP and encodes all of
// them except GIF and WebP.
type NativeCodec struct {
	log logger.Logger
}

func NewNativeCodec(log logger.Logger) *NativeCodec {
	if log == nil {
		log = logger.NewNop()
	}
	return &NativeCodec{log: log}
}

func (c *NativeCodec) Name() string { return "native" }

func (c *NativeCodec) ReadFile(path string) (*models.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer f.Close()

	img, format, err := c.decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	c.log.Debug(component, "image loaded", map[string]interface{}{
		"path": path, "format": format, "width": img.Width, "height": img.Height, "channels": img.Channels,
	})
	return img, nil
}

func (c *NativeCodec) Decode(data []byte) (*models.Image, error) {
	img, _, err := c.decode(bytes.NewReader(data))
	return img, err
}

func (c *NativeCodec) decode(r io.Reader) (*models.Image, string, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, "", err
	}
	img, err := FromImage(src)
	return img, format, err
}

func (c *NativeCodec) WriteFile(path string, img *models.Image) error {
	data, err := c.Encode(img, filepath.Ext(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	c.log.Debug(component, "image saved", map[string]interface{}{"path": path, "bytes": len(data)})
	return nil
}

func (c *NativeCodec) Encode(img *models.Image, ext string) ([]byte, error) {
	dst, err := ToImage(img)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		err = png.Encode(&buf, dst)
	case "jpg", "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	case "bmp":
		err = bmp.Encode(&buf, dst)
	case "tif", "tiff":
		err = tiff.Encode(&buf, dst, &tiff.Options{Compression: tiff.Deflate})
	default:
		return nil, fmt.Errorf("unsupported image format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", ext, err)
	}
	return buf.Bytes(), nil
}

// FromImage converts any decoded image. Gray sources, including paletted
// images with an all-gray palette, become one channel;
// everything else three BGR channels. Alpha is discarded from the
// straight (non-premultiplied) colour, so translucent pixels keep their hue.
func FromImage(src image.Image) (*models.Image, error) {
	b := src.Bounds()
	switch g := src.(type) {
	case *image.Gray:
		img, err := models.NewImage(b.Dx(), b.Dy(), 1)
		if err != nil {
			return nil, err
		}
		for y := 0; y < b.Dy(); y++ {
			copy(img.Pix[y*img.Width:(y+1)*img.Width], g.Pix[y*g.Stride:y*g.Stride+b.Dx()])
		}
		return img, nil
	case *image.Gray16:
		img, err := models.NewImage(b.Dx(), b.Dy(), 1)
		if err != nil {
			return nil, err
		}
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				img.Set(x, y, 0, uint8(g.Gray16At(b.Min.X+x, b.Min.Y+y).Y>>8))
			}
		}
		return img, nil
	case *image.Paletted:
		if grayPalette(g.Palette) {
			img, err := models.NewImage(b.Dx(), b.Dy(), 1)
			if err != nil {
				return nil, err
			}
			for y := 0; y < b.Dy(); y++ {
				for x := 0; x < b.Dx(); x++ {
					img.Set(x, y, 0, color.GrayModel.Convert(g.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y)
				}
			}
			return img, nil
		}
	}

	nrgba := imaging.Clone(src)
	img, err := models.NewImage(b.Dx(), b.Dy(), 3)
	if err != nil {
		return nil, err
	}
	for y := 0; y < b.Dy(); y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < b.Dx(); x++ {
			p := row[x*4 : x*4+4]
			img.Set(x, y, 0, p[2])
			img.Set(x, y, 1, p[1])
			img.Set(x, y, 2, p[0])
		}
	}
	return img, nil
}

func grayPalette(p color.Palette) bool {
	for _, c := range p {
		r, g, b, _ := c.RGBA()
		if r != g || g != b {
			return false
		}
	}
	return len(p) > 0
}

// ToImage converts to *image.Gray for one channel and *image.RGBA for three.
func ToImage(img *models.Image) (image.Image, error) {
	if err := img.Validate("image export"); err != nil {
		return nil, err
	}
	r := image.Rect(0, 0, img.Width, img.Height)
	if img.Channels == 1 {
		g := image.NewGray(r)
		copy(g.Pix, img.Pix)
		return g, nil
	}

	out := image.NewRGBA(r)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			out.SetRGBA(x, y, color.RGBA{R: img.At(x, y, 2), G: img.At(x, y, 1), B: img.At(x, y, 0), A: 255})
		}
	}
	return out, nil
}
