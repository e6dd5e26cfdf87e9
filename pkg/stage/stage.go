// Package stage holds everything one running diorama shares: the scene
// graph, the camera rig, the light and the asset mounter. A Stage is built
// once at startup and handed to whatever drives it.
package stage

import (
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/taigrr/diorama/pkg/gltfio"
	"github.com/taigrr/diorama/pkg/layout"
	"github.com/taigrr/diorama/pkg/orbit"
	"github.com/taigrr/diorama/pkg/picture"
	"github.com/taigrr/diorama/pkg/render"
	"github.com/taigrr/diorama/pkg/scene"
)

// Options configures a Stage. The zero value of each field falls back to
// DefaultOptions.
type Options struct {
	FPS            int
	AssetsDir      string
	MaxTextureSize int

	// Background overrides the preset's background color.
	Background *render.Color

	// Props are extra glTF models, mounted alongside the pictures. Relative
	// paths resolve against AssetsDir.
	Props []picture.ModelRequest

	// Fetcher replaces the file fetcher for pictures.
	Fetcher picture.Fetcher

	Logger *log.Logger
}

// DefaultOptions returns the options used by the CLI when no flag is given.
func DefaultOptions() Options {
	return Options{
		FPS:            30,
		AssetsDir:      ".",
		MaxTextureSize: picture.DefaultMaxTextureSize,
	}
}

// Stage is the explicit context of one diorama.
type Stage struct {
	Preset     layout.Preset
	Root       *scene.Node
	Camera     *render.Camera
	Controls   *orbit.Controls
	Light      render.Light
	Background render.Color
	Mounter    *picture.Mounter
	Logger     *log.Logger

	opts Options
}

// New builds the preset's room and furniture and frames the camera.
// Pictures are not requested until MountAssets.
func New(preset layout.Preset, opts Options) (*Stage, error) {
	opts = withDefaults(opts)

	root := scene.NewGroup("world")
	if err := layout.Populate(root, preset); err != nil {
		return nil, fmt.Errorf("build stage: %w", err)
	}

	f := preset.Camera
	cam := render.NewCamera()
	cam.SetFOV(f.FOV * math.Pi / 180)
	cam.SetClipPlanes(f.Near, f.Far)
	cam.SetPosition(f.Position)
	cam.LookAt(f.Target)

	controls := orbit.New(opts.FPS, f.Position, f.Target, orbit.Limits{
		MinDistance: f.MinDistance,
		MaxDistance: f.MaxDistance,
		MinPolar:    f.MinPolar,
		MaxPolar:    f.MaxPolar,
	})

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = picture.FileFetcher{Dir: opts.AssetsDir, MaxTextureSize: opts.MaxTextureSize}
	}

	bg := preset.Background
	if opts.Background != nil {
		bg = *opts.Background
	}

	s := &Stage{
		Preset:     preset,
		Root:       root,
		Camera:     cam,
		Controls:   controls,
		Light:      preset.Light,
		Background: bg,
		Mounter:    picture.NewMounter(fetcher, opts.Logger),
		Logger:     opts.Logger,
		opts:       opts,
	}

	nodes, meshes, tris := root.Counts()
	s.Logger.Info("stage built", "preset", preset.Name, "nodes", nodes, "meshes", meshes, "triangles", tris)
	return s, nil
}

// FPS is the frame rate the stage's damping is tuned for.
func (s *Stage) FPS() int {
	return s.opts.FPS
}

// MountAssets requests every picture of the preset and every configured
// prop. It returns how many loads were started; a request that cannot be
// queued is logged and skipped.
func (s *Stage) MountAssets(ctx context.Context) int {
	started := 0
	for _, p := range s.Preset.Pictures {
		err := s.Mounter.Mount(ctx, picture.Request{
			Path:           p.Path,
			Width:          p.Width,
			Height:         p.Height,
			FrameThickness: p.FrameThickness,
			Pose:           p.Pose,
		})
		if err != nil {
			s.Logger.Warn("picture skipped", "path", p.Path, "err", err)
			continue
		}
		started++
	}

	for _, prop := range s.opts.Props {
		if !filepath.IsAbs(prop.Path) {
			prop.Path = filepath.Join(s.opts.AssetsDir, prop.Path)
		}
		if err := s.Mounter.MountModel(ctx, prop); err != nil {
			s.Logger.Warn("prop skipped", "path", prop.Path, "err", err)
			continue
		}
		started++
	}
	return started
}

// Export writes the current scene graph to path as binary glTF.
func (s *Stage) Export(path string) error {
	if err := gltfio.Save(path, s.Root); err != nil {
		return err
	}
	nodes, _, tris := s.Root.Counts()
	s.Logger.Info("exported", "path", path, "nodes", nodes, "triangles", tris)
	return nil
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.FPS <= 0 {
		opts.FPS = def.FPS
	}
	if opts.AssetsDir == "" {
		opts.AssetsDir = def.AssetsDir
	}
	if opts.MaxTextureSize <= 0 {
		opts.MaxTextureSize = def.MaxTextureSize
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return opts
}
