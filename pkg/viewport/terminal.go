package viewport

import (
	"context"
	"fmt"
	"os"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/diorama/pkg/stage"
)

// RunTerminal takes over the terminal and runs st interactively until ctx
// is cancelled or the user quits.
func RunTerminal(ctx context.Context, st *stage.Stage) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mouse mode

	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		if err := term.Shutdown(context.Background()); err != nil {
			st.Logger.Warn("terminal shutdown", "err", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h := New(st, NewTerminalSurface(term), width, height*2)

	go func() {
		var tr Translator
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-term.Events():
				if !ok {
					cancel()
					return
				}
				if in := tr.Translate(ev); in != nil && !h.Send(in) {
					st.Logger.Debug("input dropped", "input", fmt.Sprintf("%T", in))
				}
			}
		}
	}()

	n := st.MountAssets(ctx)
	st.Logger.Debug("assets requested", "count", n)

	return h.Run(ctx)
}
