package viewport

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	uv "github.com/charmbracelet/ultraviolet"
	"golang.org/x/image/bmp"

	"github.com/taigrr/diorama/pkg/render"
)

// ErrFormat is returned when a snapshot path has an unsupported extension.
var ErrFormat = errors.New("unsupported image format")

// Screen is a cell grid that can be flushed to the terminal.
type Screen interface {
	uv.Screen
	Display() error
}

type resizer interface {
	Resize(width, height int) error
}

type eraser interface {
	Erase()
}

// TerminalSurface presents frames as half-block cells, two pixel rows per
// cell row.
type TerminalSurface struct {
	screen     Screen
	cols, rows int
}

// NewTerminalSurface presents onto screen.
func NewTerminalSurface(screen Screen) *TerminalSurface {
	b := screen.Bounds()
	return &TerminalSurface{screen: screen, cols: b.Dx(), rows: b.Dy()}
}

// Present draws the frame and the overlay, then flushes the screen.
func (s *TerminalSurface) Present(fb *render.Framebuffer, overlay Overlay) error {
	cols, rows := fb.Width, fb.Height/2
	if cols != s.cols || rows != s.rows {
		if e, ok := s.screen.(eraser); ok {
			e.Erase()
		}
		if r, ok := s.screen.(resizer); ok {
			if err := r.Resize(cols, rows); err != nil {
				return fmt.Errorf("resize screen: %w", err)
			}
		}
		s.cols, s.rows = cols, rows
	}

	area := uv.Rect(0, 0, cols, rows).Intersect(s.screen.Bounds())
	fb.Draw(s.screen, area)

	if area.Dy() > 0 && !overlay.Empty() {
		if overlay.Top != "" {
			uv.NewStyledString(overlay.Top).Draw(s.screen, uv.Rect(area.Min.X, area.Min.Y, area.Dx(), 1))
		}
		if overlay.Bottom != "" {
			uv.NewStyledString(overlay.Bottom).Draw(s.screen, uv.Rect(area.Min.X, area.Max.Y-1, area.Dx(), 1))
		}
	}
	return s.screen.Display()
}

// ImageSurface keeps the last frame as an image. The overlay is ignored.
type ImageSurface struct {
	img *image.RGBA
}

// NewImageSurface creates an empty image surface.
func NewImageSurface() *ImageSurface {
	return &ImageSurface{}
}

// Present copies the frame.
func (s *ImageSurface) Present(fb *render.Framebuffer, _ Overlay) error {
	if s.img == nil || s.img.Rect.Dx() != fb.Width || s.img.Rect.Dy() != fb.Height {
		s.img = image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	}
	fb.CopyTo(s.img)
	return nil
}

// Image returns the last presented frame, or nil before the first.
func (s *ImageSurface) Image() *image.RGBA {
	return s.img
}

// Save writes the last frame to path, as PNG or BMP by extension.
func (s *ImageSurface) Save(path string) error {
	if s.img == nil {
		return errors.New("save snapshot: no frame presented")
	}

	var encode func(f *os.File) error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		encode = func(f *os.File) error { return png.Encode(f, s.img) }
	case ".bmp":
		encode = func(f *os.File) error { return bmp.Encode(f, s.img) }
	default:
		return fmt.Errorf("save snapshot %s: %w %q", path, ErrFormat, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return f.Close()
}
