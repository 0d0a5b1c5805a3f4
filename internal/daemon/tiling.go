package daemon

import (
	"sync/atomic"

	"github.com/1broseidon/flickpanel/internal/config"
)

// Tiling holds the tiling-mode flag the target selector consults. It is
// read from the tick and input paths, so it is an atomic.
type Tiling struct {
	active atomic.Bool
	wm     atomic.Value // string
}

// Active reports whether a tiling layout owns the left edge.
func (t *Tiling) Active() bool {
	return t.active.Load()
}

// WM returns the window manager name seen by the last Update.
func (t *Tiling) WM() string {
	name, _ := t.wm.Load().(string)
	return name
}

// Update recomputes the flag. wmName is only consulted in auto mode; a
// failed lookup counts as a floating window manager.
func (t *Tiling) Update(cfg *config.Config, wmName func() (string, error)) bool {
	var active bool
	switch cfg.TilingMode {
	case config.TilingModeOn:
		active = true
	case config.TilingModeOff:
		active = false
	default:
		if wmName != nil {
			if name, err := wmName(); err == nil {
				t.wm.Store(name)
				active = cfg.TilingWM(name)
			}
		}
	}
	t.active.Store(active)
	return active
}
