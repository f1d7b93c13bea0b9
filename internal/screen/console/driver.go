// Package console implements screen.Screen without touching any real
// input device: geometry comes from the controlling terminal, and key,
// mouse, and screensaver calls are logged rather than synthesized. It
// exists for headless operation and for exercising the client core in
// tests without a display.
package console

import (
	"os"
	"sync"

	"github.com/pterm/pterm"
	"golang.org/x/term"

	"github.com/synergy-core/synergyc/internal/keystate"
	"github.com/synergy-core/synergyc/internal/screen"
	"github.com/synergy-core/synergyc/internal/wire"
)

var _ screen.Screen = (*Driver)(nil)

// Driver is a headless screen.Screen driven by the process's own
// controlling terminal.
type Driver struct {
	mu        sync.Mutex
	fd        int
	rawState  *term.State
	cursorX   int
	cursorY   int
	clipboard map[wire.ClipboardID]map[wire.FormatID][]byte
	layoutCh  chan *keystate.Map
}

// New creates a Driver reading geometry from fd (typically
// int(os.Stdout.Fd())).
func New(fd int) *Driver {
	return &Driver{
		fd:        fd,
		clipboard: make(map[wire.ClipboardID]map[wire.FormatID][]byte),
		layoutCh:  make(chan *keystate.Map),
	}
}

func (d *Driver) Shape() (screen.Shape, error) {
	w, h, err := term.GetSize(d.fd)
	if err != nil {
		// Not attached to a terminal at all; report a nominal size
		// rather than failing the connection over it.
		return screen.Shape{Width: 80, Height: 24}, nil
	}
	return screen.Shape{Width: w, Height: h}, nil
}

func (d *Driver) CursorPos() (int, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursorX, d.cursorY, nil
}

func (d *Driver) KeyMap() *keystate.Map {
	return keystate.BuildUSASCII()
}

func (d *Driver) Enter(x, y int, seq uint32, mask wire.ModifierMask, forScreensaver bool) error {
	d.mu.Lock()
	d.cursorX, d.cursorY = x, y
	d.mu.Unlock()

	state, err := term.MakeRaw(d.fd)
	if err != nil {
		return nil // not a terminal; nothing to raw-mode
	}
	d.mu.Lock()
	d.rawState = state
	d.mu.Unlock()

	pterm.Debug.Printf("console: enter at (%d, %d) seq=%d forScreensaver=%v\n", x, y, seq, forScreensaver)
	return nil
}

func (d *Driver) Leave() (bool, error) {
	d.mu.Lock()
	state := d.rawState
	d.rawState = nil
	d.mu.Unlock()

	if state == nil {
		return false, nil
	}
	_ = term.Restore(d.fd, state)
	pterm.Debug.Println("console: leave")
	return true, nil
}

func (d *Driver) SyntheticKey(button keystate.KeyButton, down bool) error {
	dir := "up"
	if down {
		dir = "down"
	}
	pterm.Debug.Printf("console: key %d %s\n", button, dir)
	return nil
}

func (d *Driver) MouseButton(button int8, down bool) error {
	dir := "up"
	if down {
		dir = "down"
	}
	pterm.Debug.Printf("console: mouse button %d %s\n", button, dir)
	return nil
}

func (d *Driver) MouseMoveAbs(x, y int) error {
	d.mu.Lock()
	d.cursorX, d.cursorY = x, y
	d.mu.Unlock()
	pterm.Debug.Printf("console: mouse move to (%d, %d)\n", x, y)
	return nil
}

func (d *Driver) MouseMoveRel(dx, dy int) error {
	d.mu.Lock()
	d.cursorX += dx
	d.cursorY += dy
	x, y := d.cursorX, d.cursorY
	d.mu.Unlock()
	pterm.Debug.Printf("console: mouse move by (%d, %d) to (%d, %d)\n", dx, dy, x, y)
	return nil
}

func (d *Driver) MouseWheel(dx, dy int16) error {
	pterm.Debug.Printf("console: mouse wheel (%d, %d)\n", dx, dy)
	return nil
}

func (d *Driver) Clipboard(id wire.ClipboardID) (map[wire.FormatID][]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[wire.FormatID][]byte, len(d.clipboard[id]))
	for k, v := range d.clipboard[id] {
		out[k] = append([]byte(nil), v...)
	}
	return out, nil
}

func (d *Driver) SetClipboard(id wire.ClipboardID, data map[wire.FormatID][]byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clipboard[id] = data
	return nil
}

func (d *Driver) SetScreensaver(enabled bool) error {
	pterm.Debug.Printf("console: screensaver enabled=%v\n", enabled)
	return nil
}

func (d *Driver) LayoutChanges() <-chan *keystate.Map {
	return d.layoutCh
}

func (d *Driver) Close() error {
	_, _ = d.Leave()
	close(d.layoutCh)
	return nil
}

// StdoutFD is a convenience for the common case of driving geometry from
// the process's own stdout.
func StdoutFD() int { return int(os.Stdout.Fd()) }
