// Package picture mounts framed pictures and glTF props whose assets load
// asynchronously. Loads run on their own goroutines and hand finished nodes
// to the frame loop, which attaches them with Drain; a failed load is logged
// and the asset never appears.
package picture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/taigrr/diorama/pkg/assembly"
	"github.com/taigrr/diorama/pkg/gltfio"
	"github.com/taigrr/diorama/pkg/layout"
	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/render"
	"github.com/taigrr/diorama/pkg/scene"
)

// MaxPending is how many mounted assets may wait for Drain at once.
const MaxPending = 64

var (
	// ErrBusy is returned by Mount when MaxPending assets are already waiting.
	ErrBusy = errors.New("too many pending mounts")

	// ErrCorrupt wraps a loader that crashed on a malformed asset.
	ErrCorrupt = errors.New("corrupt asset")
)

// Request describes one framed picture.
type Request struct {
	Path           string
	Width, Height  float64
	FrameThickness float64
	Pose           layout.Placement
}

// ModelRequest describes one glTF prop. Color paints primitives that have no
// material of their own.
type ModelRequest struct {
	Path  string
	Color render.Color
	Pose  layout.Placement
}

type ready struct {
	node *scene.Node
	pose layout.Placement
}

// Mounter runs asset loads and queues their results for the frame loop.
type Mounter struct {
	fetcher Fetcher
	logger  *log.Logger

	group   errgroup.Group
	ready   chan ready
	pending atomic.Int32
}

// NewMounter creates a mounter that loads pictures through fetcher.
// A nil logger discards output.
func NewMounter(fetcher Fetcher, logger *log.Logger) *Mounter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Mounter{
		fetcher: fetcher,
		logger:  logger,
		ready:   make(chan ready, MaxPending),
	}
}

// Mount starts loading req.Path. It returns immediately; the framed picture
// reaches the scene on the first Drain after the load succeeds.
func (m *Mounter) Mount(ctx context.Context, req Request) error {
	return m.start(func() (*scene.Node, error) {
		img, err := m.fetcher.Fetch(ctx, req.Path)
		if err != nil {
			return nil, err
		}
		frame := assembly.PictureFrame(req.Width, req.Height, req.FrameThickness, render.TextureFromImage(img))
		frame.Name = filepath.Base(req.Path)
		return frame, nil
	}, req.Path, req.Pose)
}

// MountModel starts loading a glTF prop from req.Path.
func (m *Mounter) MountModel(ctx context.Context, req ModelRequest) error {
	return m.start(func() (*scene.Node, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		node, err := gltfio.Load(req.Path)
		if err != nil {
			return nil, err
		}
		node.Traverse(func(n *scene.Node, _ math3d.Mat4) bool {
			if n.Mesh != nil && n.Material == nil {
				n.Material = &scene.Material{Color: req.Color}
			}
			return true
		})
		return node, nil
	}, req.Path, req.Pose)
}

func (m *Mounter) start(load func() (*scene.Node, error), path string, pose layout.Placement) error {
	if m.pending.Add(1) > MaxPending {
		m.pending.Add(-1)
		return fmt.Errorf("mount %s: %w", path, ErrBusy)
	}

	m.group.Go(func() error {
		node, err := safeLoad(load)
		if err != nil {
			m.pending.Add(-1)
			m.logger.Debug("asset not mounted", "path", path, "err", err)
			return fmt.Errorf("mount %s: %w", path, err)
		}
		m.logger.Debug("asset ready", "path", path)
		m.ready <- ready{node: node, pose: pose}
		return nil
	})
	return nil
}

// safeLoad turns a panic in a decoder into a load error.
func safeLoad(load func() (*scene.Node, error)) (node *scene.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			node, err = nil, fmt.Errorf("%w: %v", ErrCorrupt, r)
		}
	}()
	return load()
}

// Drain attaches every asset that finished loading since the last call and
// returns how many were attached. It must run on the goroutine that owns
// root.
func (m *Mounter) Drain(root *scene.Node) int {
	attached := 0
	for {
		select {
		case r := <-m.ready:
			m.pending.Add(-1)
			if err := layout.Place(root, r.node, r.pose); err != nil {
				m.logger.Warn("attach failed", "node", r.node.Name, "err", err)
				continue
			}
			attached++
		default:
			return attached
		}
	}
}

// Pending reports loads that are in flight or waiting for Drain.
func (m *Mounter) Pending() int {
	return int(m.pending.Load())
}

// Wait blocks until every started load has finished and returns the first
// load error, if any. Finished assets stay queued for Drain.
func (m *Mounter) Wait() error {
	return m.group.Wait()
}
