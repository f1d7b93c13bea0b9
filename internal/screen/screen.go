// Package screen defines the capability boundary between the client core
// and whatever owns the local display, keyboard, mouse, and clipboard.
// Everything on the wire side of this boundary is platform-independent;
// everything behind it is not, and is deliberately left to a driver.
package screen

import (
	"github.com/synergy-core/synergyc/internal/keystate"
	"github.com/synergy-core/synergyc/internal/wire"
)

// Shape is the local screen's geometry in pixels, origin top-left.
type Shape struct {
	Width, Height int
}

// Screen is the driver contract a platform implementation must satisfy.
// Every method is expected to return promptly; long-running work belongs
// behind a goroutine the driver manages itself, not inside these calls.
type Screen interface {
	// Shape returns the current local screen geometry.
	Shape() (Shape, error)

	// CursorPos returns the current local cursor position.
	CursorPos() (x, y int, err error)

	// KeyMap returns the driver's current keyboard layout. client.New calls
	// it once, when the client is built; the client does not call it again
	// at Enter or after a layout change.
	KeyMap() *keystate.Map

	// Enter is called when this screen becomes the active target: the
	// cursor has just arrived at (x, y) from the server's perspective.
	// seq is the entry's sequence number and forScreensaver reports
	// whether this entry is the server's own screensaver taking over,
	// as opposed to a real cursor hand-off.
	Enter(x, y int, seq uint32, mask wire.ModifierMask, forScreensaver bool) error

	// Leave is called when this screen stops being the active target.
	// It reports whether the screen actually left (false means the
	// driver was not entered and the call had no effect), which the
	// caller uses to decide whether to acknowledge the leave back to
	// the server.
	Leave() (ok bool, err error)

	// SyntheticKey applies one physical keystroke produced by the
	// key-state engine.
	SyntheticKey(button keystate.KeyButton, down bool) error

	// MouseButton presses or releases a mouse button (1=left, 2=middle,
	// 3=right, matching the wire ButtonID).
	MouseButton(button int8, down bool) error

	// MouseMoveAbs moves the cursor to an absolute position.
	MouseMoveAbs(x, y int) error

	// MouseMoveRel moves the cursor by a relative delta.
	MouseMoveRel(dx, dy int) error

	// MouseWheel scrolls by the given deltas (x horizontal, y vertical,
	// in the same units as the wire DMWM message).
	MouseWheel(dx, dy int16) error

	// Clipboard returns the current contents of the given clipboard
	// selection as a set of format -> data pairs.
	Clipboard(id wire.ClipboardID) (map[wire.FormatID][]byte, error)

	// SetClipboard installs new clipboard contents.
	SetClipboard(id wire.ClipboardID, data map[wire.FormatID][]byte) error

	// SetScreensaver enables or disables the local screensaver.
	SetScreensaver(enabled bool) error

	// LayoutChanges returns a channel the driver sends on whenever the
	// local keyboard layout changes. The drivers in this repository return
	// a channel that never sends, and the client does not read it.
	LayoutChanges() <-chan *keystate.Map

	// Close releases any resources the driver holds.
	Close() error
}
