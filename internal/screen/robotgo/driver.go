// Package robotgo implements the screen.Screen interface on top of
// go-vgo/robotgo, driving the real local keyboard, mouse, and clipboard.
package robotgo

import (
	"fmt"
	"sync"

	"github.com/go-vgo/robotgo"

	"github.com/synergy-core/synergyc/internal/keystate"
	"github.com/synergy-core/synergyc/internal/screen"
	"github.com/synergy-core/synergyc/internal/wire"
)

var _ screen.Screen = (*Driver)(nil)

// buttonNames maps the KeyButton identifiers produced by keystate.Map
// entries to the key names robotgo.KeyTap/KeyToggle expect. A real
// deployment builds its keystate.Map from the host's actual layout, with
// buttons chosen to match this table; the reference US map in the
// keystate package uses the same scheme for its letter and punctuation
// keys so the two line up out of the box.
var buttonNames = map[keystate.KeyButton]string{}

func init() {
	for i, c := range "abcdefghijklmnopqrstuvwxyz" {
		buttonNames[keystate.KeyButton(121+i)] = string(c)
	}
	punct := []struct {
		button keystate.KeyButton
		name   string
	}{
		{100, "`"}, {101, "1"}, {102, "2"}, {103, "3"}, {104, "4"}, {105, "5"},
		{106, "6"}, {107, "7"}, {108, "8"}, {109, "9"}, {110, "0"},
		{111, "-"}, {112, "="},
		{113, "["}, {114, "]"}, {115, "\\"},
		{116, ";"}, {117, "'"},
		{118, ","}, {119, "."}, {120, "/"},
	}
	for _, p := range punct {
		buttonNames[p.button] = p.name
	}
}

// Driver is a screen.Screen backed by the local desktop session.
type Driver struct {
	mu       sync.Mutex
	entered  bool
	layoutCh chan *keystate.Map
}

// New creates a Driver ready for use.
func New() *Driver {
	return &Driver{
		layoutCh: make(chan *keystate.Map),
	}
}

func (d *Driver) Shape() (screen.Shape, error) {
	w, h := robotgo.GetScreenSize()
	return screen.Shape{Width: w, Height: h}, nil
}

func (d *Driver) CursorPos() (int, int, error) {
	x, y := robotgo.GetMousePos()
	return x, y, nil
}

func (d *Driver) KeyMap() *keystate.Map {
	return keystate.BuildUSASCII()
}

func (d *Driver) Enter(x, y int, seq uint32, mask wire.ModifierMask, forScreensaver bool) error {
	d.mu.Lock()
	d.entered = true
	d.mu.Unlock()
	robotgo.Move(x, y)
	return nil
}

func (d *Driver) Leave() (bool, error) {
	d.mu.Lock()
	wasEntered := d.entered
	d.entered = false
	d.mu.Unlock()
	return wasEntered, nil
}

func (d *Driver) SyntheticKey(button keystate.KeyButton, down bool) error {
	name, ok := buttonNames[button]
	if !ok {
		return fmt.Errorf("robotgo: no key name registered for button %d", button)
	}
	if down {
		return robotgo.KeyToggle(name, "down")
	}
	return robotgo.KeyToggle(name, "up")
}

func (d *Driver) MouseButton(button int8, down bool) error {
	name := mouseButtonName(button)
	if down {
		return robotgo.Toggle(name, "down")
	}
	return robotgo.Toggle(name, "up")
}

func mouseButtonName(button int8) string {
	switch button {
	case 2:
		return "center"
	case 3:
		return "right"
	default:
		return "left"
	}
}

func (d *Driver) MouseMoveAbs(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (d *Driver) MouseMoveRel(dx, dy int) error {
	x, y := robotgo.GetMousePos()
	robotgo.Move(x+dx, y+dy)
	return nil
}

func (d *Driver) MouseWheel(dx, dy int16) error {
	if dy != 0 {
		robotgo.Scroll(0, int(dy))
	}
	if dx != 0 {
		robotgo.Scroll(int(dx), 0)
	}
	return nil
}

func (d *Driver) Clipboard(id wire.ClipboardID) (map[wire.FormatID][]byte, error) {
	text, err := robotgo.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("robotgo: read clipboard: %w", err)
	}
	return map[wire.FormatID][]byte{wire.FormatText: []byte(text)}, nil
}

func (d *Driver) SetClipboard(id wire.ClipboardID, data map[wire.FormatID][]byte) error {
	text, ok := data[wire.FormatText]
	if !ok {
		return nil
	}
	if err := robotgo.WriteAll(string(text)); err != nil {
		return fmt.Errorf("robotgo: write clipboard: %w", err)
	}
	return nil
}

func (d *Driver) SetScreensaver(enabled bool) error {
	// robotgo exposes no cross-platform screensaver control; this is a
	// deliberate no-op driver boundary rather than a missing feature.
	return nil
}

func (d *Driver) LayoutChanges() <-chan *keystate.Map {
	return d.layoutCh
}

func (d *Driver) Close() error {
	close(d.layoutCh)
	return nil
}
