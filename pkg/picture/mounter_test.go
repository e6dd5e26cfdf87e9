package picture

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/taigrr/diorama/pkg/assembly"
	"github.com/taigrr/diorama/pkg/gltfio"
	"github.com/taigrr/diorama/pkg/layout"
	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/render"
	"github.com/taigrr/diorama/pkg/scene"
)

// gatedFetcher serves solid images for known paths once its gate opens.
type gatedFetcher struct {
	gate  chan struct{}
	mu    sync.Mutex
	calls []string
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{gate: make(chan struct{})}
}

func (f *gatedFetcher) Fetch(ctx context.Context, path string) (image.Image, error) {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	f.mu.Unlock()

	select {
	case <-f.gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if path == "missing.jpg" {
		return nil, os.ErrNotExist
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	return img, nil
}

func TestMountUnreachablePath(t *testing.T) {
	f := newGatedFetcher()
	close(f.gate)
	m := NewMounter(f, nil)
	root := scene.NewGroup("world")
	root.MustAdd(assembly.Rug())

	if err := m.Mount(context.Background(), Request{Path: "missing.jpg", Width: 1, Height: 1}); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if err := m.Wait(); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Wait error = %v, want ErrNotExist", err)
	}
	if n := m.Drain(root); n != 0 {
		t.Errorf("Drain attached %d nodes", n)
	}
	if root.ChildCount() != 1 {
		t.Errorf("root has %d children, want 1", root.ChildCount())
	}
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d after failure", m.Pending())
	}
}

func TestMountAttachesOnlyOnDrain(t *testing.T) {
	f := newGatedFetcher()
	m := NewMounter(f, nil)
	root := scene.NewGroup("world")

	pose := layout.At(-5, 2.3, 3, math.Pi/2)
	if err := m.Mount(context.Background(), Request{Path: "pictures/pets.jpg", Width: 0.7, Height: 0.5, FrameThickness: 0.04, Pose: pose}); err != nil {
		t.Fatal(err)
	}

	if n := m.Drain(root); n != 0 || root.ChildCount() != 0 {
		t.Fatal("picture attached before its load finished")
	}
	if m.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", m.Pending())
	}

	close(f.gate)
	if err := m.Wait(); err != nil {
		t.Fatal(err)
	}
	if root.ChildCount() != 0 {
		t.Fatal("load goroutine touched the scene")
	}
	if n := m.Drain(root); n != 1 {
		t.Fatalf("Drain attached %d nodes, want 1", n)
	}

	frame := root.Children()[0]
	if frame.Name != "pets.jpg" {
		t.Errorf("frame name = %q", frame.Name)
	}
	if !frame.WorldMatrix().ApproxEqual(pose.Matrix(), 1e-12) {
		t.Error("frame not at its pose")
	}
	pic := frame.Find("picture")
	if pic == nil || pic.Material.Texture == nil || pic.Material.Texture.Width != 4 {
		t.Error("frame does not show the fetched image")
	}
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d after Drain", m.Pending())
	}
}

func TestMountConcurrent(t *testing.T) {
	f := newGatedFetcher()
	m := NewMounter(f, nil)
	root := scene.NewGroup("world")

	paths := []string{"a.jpg", "b.jpg", "missing.jpg", "c.jpg", "d.jpg"}
	for i, p := range paths {
		if err := m.Mount(context.Background(), Request{Path: p, Width: 1, Height: 1, Pose: layout.At(float64(i), 2, -4, 0)}); err != nil {
			t.Fatal(err)
		}
	}
	close(f.gate)
	_ = m.Wait()

	if n := m.Drain(root); n != 4 {
		t.Errorf("Drain attached %d nodes, want 4", n)
	}
	seen := map[float64]bool{}
	for _, c := range root.Children() {
		seen[c.Position.X] = true
	}
	for _, x := range []float64{0, 1, 3, 4} {
		if !seen[x] {
			t.Errorf("no frame at x = %v", x)
		}
	}
}

func TestMountBusy(t *testing.T) {
	f := newGatedFetcher()
	m := NewMounter(f, nil)
	for range MaxPending {
		if err := m.Mount(context.Background(), Request{Path: "a.jpg"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.Mount(context.Background(), Request{Path: "a.jpg"}); !errors.Is(err, ErrBusy) {
		t.Errorf("Mount error = %v, want ErrBusy", err)
	}
	close(f.gate)
	_ = m.Wait()
	if n := m.Drain(scene.NewGroup("world")); n != MaxPending {
		t.Errorf("Drain attached %d, want %d", n, MaxPending)
	}
}

func TestMountCancelled(t *testing.T) {
	f := newGatedFetcher()
	m := NewMounter(f, nil)
	ctx, cancel := context.WithCancel(context.Background())
	_ = m.Mount(ctx, Request{Path: "a.jpg"})
	cancel()

	if err := m.Wait(); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait error = %v, want Canceled", err)
	}
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d", m.Pending())
	}
}

func TestMountModel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cat.glb")
	if err := gltfio.Save(path, assembly.Cat()); err != nil {
		t.Fatal(err)
	}

	m := NewMounter(FileFetcher{Dir: dir}, nil)
	root := scene.NewGroup("world")
	pose := layout.At(1, 0, 1, 0)
	if err := m.MountModel(context.Background(), ModelRequest{Path: path, Color: render.ColorWhite, Pose: pose}); err != nil {
		t.Fatal(err)
	}
	if err := m.Wait(); err != nil {
		t.Fatal(err)
	}
	if m.Drain(root) != 1 {
		t.Fatal("prop not attached")
	}

	_, _, want := assembly.Cat().Counts()
	if _, _, got := root.Counts(); got != want {
		t.Errorf("prop has %d triangles, want %d", got, want)
	}
	if got := root.Children()[0].Position; got != math3d.V3(1, 0, 1) {
		t.Errorf("prop at %v", got)
	}
}

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, w, h int, encode func(*os.File, image.Image) error) {
		t.Helper()
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		for y := range h {
			for x := range w {
				img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
			}
		}
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		if err := encode(f, img); err != nil {
			t.Fatal(err)
		}
	}
	write("small.png", 40, 30, func(f *os.File, img image.Image) error { return png.Encode(f, img) })
	write("wide.bmp", 1000, 10, func(f *os.File, img image.Image) error { return bmp.Encode(f, img) })
	if err := os.WriteFile(filepath.Join(dir, "junk.jpg"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path    string
		w, h    int
		wantErr bool
	}{
		{"small.png", 40, 30, false},
		{"wide.bmp", 256, 3, false},
		{"junk.jpg", 0, 0, true},
		{"nope.png", 0, 0, true},
	}

	ff := FileFetcher{Dir: dir}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			img, err := ff.Fetch(context.Background(), tc.path)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Fetch error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil {
				return
			}
			if b := img.Bounds(); b.Dx() != tc.w || b.Dy() != tc.h {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tc.w, tc.h)
			}
		})
	}
}

func TestFileFetcherRejectsHugeHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	binary.LittleEndian.PutUint32(data[18:], 20000) // width
	binary.LittleEndian.PutUint32(data[22:], 20000) // height

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "huge.bmp"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := FileFetcher{Dir: dir}.Fetch(context.Background(), "huge.bmp")
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("Fetch error = %v, want ErrTooLarge", err)
	}
}

type panicFetcher struct{}

func (panicFetcher) Fetch(context.Context, string) (image.Image, error) {
	panic("index out of range")
}

func TestMountSurvivesLoaderPanic(t *testing.T) {
	m := NewMounter(panicFetcher{}, nil)
	root := scene.NewGroup("world")

	if err := m.Mount(context.Background(), Request{Path: "bad.png", Width: 1, Height: 1}); err != nil {
		t.Fatal(err)
	}
	if err := m.Wait(); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Wait error = %v, want ErrCorrupt", err)
	}
	if n := m.Drain(root); n != 0 || root.ChildCount() != 0 {
		t.Errorf("Drain attached %d nodes", n)
	}
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d", m.Pending())
	}
}
