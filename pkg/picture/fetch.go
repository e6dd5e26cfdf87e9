package picture

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultMaxTextureSize bounds decoded pictures when a FileFetcher leaves
// MaxTextureSize zero.
const DefaultMaxTextureSize = 256

// MaxPixels is the largest picture, in pixels, a FileFetcher will decode.
const MaxPixels = 64 << 20

// ErrTooLarge is returned for pictures whose header declares more than
// MaxPixels pixels.
var ErrTooLarge = errors.New("picture too large")

// Fetcher resolves a picture path to a decoded image.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (image.Image, error)
}

// FileFetcher reads pictures from disk. It decodes PNG, JPEG, GIF, BMP and
// WebP, and downscales anything larger than MaxTextureSize on either side.
type FileFetcher struct {
	Dir            string
	MaxTextureSize int
}

// Fetch opens path relative to Dir and decodes it.
func (f FileFetcher) Fetch(ctx context.Context, path string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(f.Dir, path))
	if err != nil {
		return nil, fmt.Errorf("open picture: %w", err)
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return nil, fmt.Errorf("decode picture %s: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("decode picture %s (%dx%d): %w", path, cfg.Width, cfg.Height, ErrTooLarge)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind picture: %w", err)
	}

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode picture %s: %w", path, err)
	}

	limit := f.MaxTextureSize
	if limit <= 0 {
		limit = DefaultMaxTextureSize
	}
	return downscale(img, limit), nil
}

// downscale shrinks img to fit in limit × limit, keeping its aspect ratio.
func downscale(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= limit && h <= limit {
		return img
	}

	scale := float64(limit) / float64(max(w, h))
	dw := max(1, int(float64(w)*scale+0.5))
	dh := max(1, int(float64(h)*scale+0.5))

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
