package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// PointerHandlers receive the panel's grabbed pointer activity in root
// coordinates. Press and Scroll report whether they captured the event;
// an uncaptured event is replayed to the panel's own client.
type PointerHandlers struct {
	Press   func(x, y int) bool
	Motion  func(x, y int)
	Release func(x, y int)
	// Scroll receives one wheel notch. Buttons 4/5 are vertical, 6/7
	// horizontal.
	Scroll func(x, y int, button xproto.Button) bool
}

// PointerBindings owns the button grabs on the panel window. Grabs are
// synchronous so each press can either be kept or replayed.
type PointerBindings struct {
	mu       sync.Mutex
	conn     *Connection
	win      xproto.Window
	handlers PointerHandlers

	dragButton     string
	scrollModifier string
	scroll         bool
	plainClick     bool

	dragging bool
}

// NewPointerBindings creates bindings that report to h. Nothing is grabbed
// until SetWindow is called.
func NewPointerBindings(conn *Connection, h PointerHandlers) *PointerBindings {
	return &PointerBindings{conn: conn, handlers: h}
}

// Configure sets the drag button and scroll modifier and re-grabs.
func (b *PointerBindings) Configure(dragButton, scrollModifier string, scroll bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dragButton = dragButton
	b.scrollModifier = scrollModifier
	b.scroll = scroll
	return b.applyLocked()
}

// SetWindow moves the bindings to win, releasing any grabs on the old one.
func (b *PointerBindings) SetWindow(win xproto.Window) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.win == win {
		return nil
	}
	b.detachLocked()
	b.win = win
	return b.applyLocked()
}

// SetPlainClick adds or removes a grab on the bare left button. It is on
// while the panel is parked at an edge so a click on the visible sliver
// brings it back.
func (b *PointerBindings) SetPlainClick(on bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.plainClick == on {
		return nil
	}
	b.plainClick = on
	return b.applyLocked()
}

// Detach releases every grab on the panel window.
func (b *PointerBindings) Detach() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.detachLocked()
	b.win = 0
}

func (b *PointerBindings) detachLocked() {
	if b.win == 0 {
		return
	}
	mousebind.Detach(b.conn.XUtil, b.win)
	xevent.Detach(b.conn.XUtil, b.win)
}

func (b *PointerBindings) applyLocked() error {
	if b.win == 0 || b.dragButton == "" {
		return nil
	}
	b.detachLocked()
	xu := b.conn.XUtil
	win := b.win

	buttons := []string{b.dragButton}
	if b.plainClick && b.dragButton != "1" {
		buttons = append(buttons, "1")
	}
	for _, button := range buttons {
		err := mousebind.ButtonPressFun(b.onPress).Connect(xu, win, button, true, true)
		if err != nil {
			return fmt.Errorf("failed to bind drag button %q: %w", button, err)
		}
	}

	// While a press is kept the passive grab is active, so motion and the
	// release are reported on the panel window.
	xevent.MotionNotifyFun(func(_ *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		if b.isDragging() && b.handlers.Motion != nil {
			b.handlers.Motion(int(ev.RootX), int(ev.RootY))
		}
	}).Connect(xu, win)
	xevent.ButtonReleaseFun(func(_ *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		if !b.endDrag() {
			return
		}
		if b.handlers.Release != nil {
			b.handlers.Release(int(ev.RootX), int(ev.RootY))
		}
	}).Connect(xu, win)

	if !b.scroll || b.handlers.Scroll == nil {
		return nil
	}
	for _, n := range []xproto.Button{4, 5, 6, 7} {
		button := n
		binding := fmt.Sprintf("%d", button)
		if b.scrollModifier != "" {
			binding = b.scrollModifier + "-" + binding
		}
		err := mousebind.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
			kept := b.handlers.Scroll(int(ev.RootX), int(ev.RootY), button)
			allow(xu, kept, ev.Time)
		}).Connect(xu, win, binding, true, true)
		if err != nil {
			return fmt.Errorf("failed to bind scroll %q: %w", binding, err)
		}
	}
	return nil
}

func (b *PointerBindings) onPress(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
	kept := b.handlers.Press != nil && b.handlers.Press(int(ev.RootX), int(ev.RootY))
	b.mu.Lock()
	b.dragging = kept
	b.mu.Unlock()
	allow(xu, kept, ev.Time)
}

func (b *PointerBindings) isDragging() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dragging
}

func (b *PointerBindings) endDrag() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	was := b.dragging
	b.dragging = false
	return was
}

// allow releases the frozen pointer: kept events stay with us, the rest are
// replayed to the window underneath the grab.
func allow(xu *xgbutil.XUtil, kept bool, t xproto.Timestamp) {
	mode := byte(xproto.AllowReplayPointer)
	if kept {
		mode = xproto.AllowAsyncPointer
	}
	xproto.AllowEvents(xu.Conn(), mode, t)
}
