package viewport

import (
	"context"
	"fmt"

	"github.com/taigrr/diorama/pkg/stage"
)

// Snapshot renders a single frame of st at width × height. With wait set,
// assets are mounted and loaded first; assets that fail to load are
// logged and left out of the frame.
func Snapshot(ctx context.Context, st *stage.Stage, width, height int, wait bool) (*ImageSurface, error) {
	if wait {
		st.MountAssets(ctx)
		if err := st.Mounter.Wait(); err != nil {
			st.Logger.Warn("some assets were not mounted", "err", err)
		}
	}

	surface := NewImageSurface()
	h := New(st, surface, width, height)
	if err := h.Frame(); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return surface, nil
}
