package hotkeys

import (
	"fmt"
	"log"
	"sync"

	"github.com/1broseidon/flickpanel/internal/config"
	"github.com/1broseidon/flickpanel/internal/panel"
	"github.com/1broseidon/flickpanel/internal/platform"
	"github.com/1broseidon/flickpanel/internal/target"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Panel is the controller surface the hotkeys drive.
type Panel interface {
	Status() panel.Status
	SnapToNearestCorner()
	HideToEdge(edge target.Edge)
	Restore()
}

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu    *xgbutil.XUtil
	root  xproto.Window
	panel Panel
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(backend platform.Backend, p Panel) *Handler {
	var xu *xgbutil.XUtil
	var root xproto.Window
	if accessor, ok := backend.(x11Accessor); ok {
		xu = accessor.XUtil()
		root = accessor.RootWindow()
	}

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:    xu,
		root:  root,
		panel: p,
	}
}

// Register binds the snap and toggle-hide hotkeys, replacing any earlier
// bindings. Empty sequences are skipped.
func (h *Handler) Register(cfg config.HotkeyConfig) error {
	if h.xu == nil {
		return fmt.Errorf("hotkeys need an X11 backend")
	}
	keybind.DetachPress(h.xu, h.root)

	edge, ok := target.ParseEdge(cfg.HideEdge)
	if !ok {
		return fmt.Errorf("invalid hide edge %q", cfg.HideEdge)
	}

	if cfg.Snap != "" {
		if err := h.RegisterFunc(cfg.Snap, func() {
			log.Println("Snap hotkey triggered")
			h.panel.SnapToNearestCorner()
		}); err != nil {
			return fmt.Errorf("failed to register snap hotkey %q: %w", cfg.Snap, err)
		}
	}

	if cfg.ToggleHide != "" {
		if err := h.RegisterFunc(cfg.ToggleHide, func() {
			ToggleHide(h.panel, edge)
		}); err != nil {
			return fmt.Errorf("failed to register toggle-hide hotkey %q: %w", cfg.ToggleHide, err)
		}
	}

	return nil
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// ToggleHide restores a hidden panel, otherwise parks it against edge.
func ToggleHide(p Panel, edge target.Edge) {
	if p.Status().Hidden {
		p.Restore()
		return
	}
	p.HideToEdge(edge)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	if xu == nil {
		return 0
	}
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
