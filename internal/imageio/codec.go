// Package imageio loads and stores models.Image values. Two codecs share one
// interface: the native one built on image/* and x/image, and the OpenCV one.
package imageio

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/KickHuynh/XuLyAnhSo/internal/logger"
	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/opencv"
)

type Codec interface {
	Name() string
	ReadFile(path string) (*models.Image, error)
	WriteFile(path string, img *models.Image) error
	Decode(data []byte) (*models.Image, error)
	Encode(img *models.Image, ext string) ([]byte, error)
}

// New returns the codec registered under name ("native" or "opencv").
func New(name string, log logger.Logger) (Codec, error) {
	switch name {
	case "", "native":
		return NewNativeCodec(log), nil
	case "opencv":
		return opencv.NewCodec(log), nil
	}
	return nil, fmt.Errorf("unsupported codec: %s", name)
}

// ListImages returns the files in dir whose extension is in exts, sorted by
// name. Extensions compare case-insensitively.
func ListImages(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if slices.ContainsFunc(exts, func(want string) bool { return strings.EqualFold(want, ext) }) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// OutputPath places a derived file next to the others in dir:
// "in/cat.jpg" with suffix "median5" becomes "dir/cat_median5.png".
func OutputPath(dir, input, suffix, ext string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if suffix != "" {
		base += "_" + suffix
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return filepath.Join(dir, base+ext)
}
