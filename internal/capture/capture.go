// Package capture wraps screen capture for the primary display and the
// timestamped screenshot archive.
package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/kbinani/screenshot"
	"go.uber.org/zap"
)

// Capturer grabs frames from the primary display and optionally archives
// them as timestamped PNGs.
type Capturer struct {
	dir    string
	logger *zap.Logger
}

// New creates a Capturer. dir is the screenshot archive directory, created
// on first use; pass "" to disable archiving.
func New(dir string, logger *zap.Logger) (*Capturer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create screenshot dir %s: %w", dir, err)
		}
	}
	return &Capturer{dir: dir, logger: logger.Named("capture")}, nil
}

// FullScreen captures the entire primary display.
func (c *Capturer) FullScreen() (*image.RGBA, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return nil, fmt.Errorf("no active displays")
	}
	bounds := screenshot.GetDisplayBounds(0)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	return img, nil
}

// Region captures a specific region of the primary display.
func (c *Capturer) Region(r image.Rectangle) (*image.RGBA, error) {
	img, err := screenshot.CaptureRect(r)
	if err != nil {
		return nil, fmt.Errorf("capture region %v: %w", r, err)
	}
	return img, nil
}

// SaveTimestamped writes img to the archive directory with a timestamped
// filename and returns the path.
func (c *Capturer) SaveTimestamped(img image.Image) (string, error) {
	if c.dir == "" {
		return "", fmt.Errorf("screenshot archive disabled")
	}
	name := fmt.Sprintf("screenshot_%s.png", time.Now().Format("20060102-150405"))
	path := filepath.Join(c.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("save screenshot: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("encode screenshot: %w", err)
	}
	c.logger.Debug("saved screenshot", zap.String("path", path))
	return path, nil
}

// PNGBytes encodes img as PNG for transmission to the vision model.
func PNGBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadPNG reads a PNG or other supported raster from disk.
func LoadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}
