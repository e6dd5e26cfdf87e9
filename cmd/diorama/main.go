// diorama - Terminal 3D Room Viewer
// Walk around a furnished room in your terminal, render it to an image, or
// export it as glTF.
//
// Controls:
//
//	Mouse drag  - Orbit around the room
//	Scroll      - Zoom in/out
//	W/S/A/D     - Orbit up/down/left/right (arrows work too)
//	Shift+Arrow - Pan the orbit target
//	+/-         - Zoom in/out
//	R           - Reset the view
//	F           - Frame the whole room
//	X           - Toggle wireframe mode (x-ray)
//	I           - Toggle static display (render once, re-present)
//	L           - Aim the light (move mouse, click to set, Esc to cancel)
//	?           - Toggle HUD overlay (FPS, preset, counts, mode status)
//	Esc         - Quit
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/taigrr/diorama/pkg/layout"
	"github.com/taigrr/diorama/pkg/stage"
	"github.com/taigrr/diorama/pkg/viewport"
)

var version = "dev"

// sceneFlags are shared by every command that builds a stage.
type sceneFlags struct {
	preset   string
	assets   string
	bg       string
	logLevel string
	logFile  string
}

func (f *sceneFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.preset, "preset", "p", "classic", "room preset ("+strings.Join(layout.Names(), ", ")+")")
	fl.StringVar(&f.assets, "assets", ".", "directory holding pictures/")
	fl.StringVar(&f.bg, "bg", "", "background color as #rrggbb (default: preset)")
	fl.StringVar(&f.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fl.StringVar(&f.logFile, "log-file", "", "write logs to this file")
}

// logger builds the command's logger. Logs go to fallback unless a log file
// was given; the returned closer releases the file.
func (f *sceneFlags) logger(fallback io.Writer) (*log.Logger, func() error, error) {
	level, err := log.ParseLevel(f.logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("parse --log-level: %w", err)
	}

	w, closer := fallback, func() error { return nil }
	if f.logFile != "" {
		file, err := os.OpenFile(f.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = file, file.Close
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "diorama",
		ReportTimestamp: true,
	})
	return logger, closer, nil
}

// build builds the stage for the selected preset.
func (f *sceneFlags) build(opts stage.Options, logger *log.Logger) (*stage.Stage, error) {
	preset, err := layout.Lookup(f.preset)
	if err != nil {
		return nil, err
	}

	opts.AssetsDir = f.assets
	opts.Logger = logger
	if f.bg != "" {
		bg, err := parseBackground(f.bg)
		if err != nil {
			return nil, err
		}
		opts.Background = &bg
	}
	return stage.New(preset, opts)
}

func viewCmd() *cobra.Command {
	var (
		flags sceneFlags
		fps   int
		props []string
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Explore a room in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Stderr is hidden behind the alternate screen.
			logger, closeLog, err := flags.logger(io.Discard)
			if err != nil {
				return err
			}
			defer closeLog()

			opts := stage.DefaultOptions()
			opts.FPS = fps
			for _, p := range props {
				req, err := parseProp(p)
				if err != nil {
					return err
				}
				opts.Props = append(opts.Props, req)
			}

			st, err := flags.build(opts, logger)
			if err != nil {
				return err
			}
			return viewport.RunTerminal(cmd.Context(), st)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&fps, "fps", stage.DefaultOptions().FPS, "target frames per second")
	cmd.Flags().StringArrayVar(&props, "prop", nil, "extra glTF model as path@x,y,z[,yaw°] (repeatable)")
	return cmd
}

func snapshotCmd() *cobra.Command {
	var (
		flags         sceneFlags
		out           string
		width, height int
		wait          bool
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render one frame to a PNG or BMP file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, closeLog, err := flags.logger(os.Stderr)
			if err != nil {
				return err
			}
			defer closeLog()

			st, err := flags.build(stage.DefaultOptions(), logger)
			if err != nil {
				return err
			}
			surface, err := viewport.Snapshot(cmd.Context(), st, width, height, wait)
			if err != nil {
				return err
			}
			if err := surface.Save(out); err != nil {
				return err
			}
			logger.Info("snapshot written", "path", out, "width", width, "height", height)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "diorama.png", "output image (.png or .bmp)")
	cmd.Flags().IntVar(&width, "width", 640, "image width in pixels")
	cmd.Flags().IntVar(&height, "height", 400, "image height in pixels")
	cmd.Flags().BoolVar(&wait, "wait", true, "load pictures before rendering")
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		flags sceneFlags
		out   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the room as binary glTF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, closeLog, err := flags.logger(os.Stderr)
			if err != nil {
				return err
			}
			defer closeLog()

			st, err := flags.build(stage.DefaultOptions(), logger)
			if err != nil {
				return err
			}
			return st.Export(out)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "diorama.glb", "output .glb file")
	return cmd
}

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the room presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range layout.Names() {
				p, err := layout.Lookup(name)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), describePreset(p))
			}
			return nil
		},
	}
}

func describePreset(p layout.Preset) string {
	return fmt.Sprintf("%-8s %gx%gx%g m, %d items, %d pictures  %s",
		p.Name, p.Room.Width, p.Room.Depth, p.Room.Height, len(p.Items), len(p.Pictures), p.Description)
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "diorama",
		Short: "Terminal 3D room viewer",
		Long:  "diorama builds a furnished room from primitive shapes and renders it in your terminal.",
	}
	root.AddCommand(viewCmd(), snapshotCmd(), exportCmd(), presetsCmd())
	return root
}

func main() {
	if err := fang.Execute(
		context.Background(),
		rootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}
