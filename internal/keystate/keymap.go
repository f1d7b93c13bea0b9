// Package keystate implements the key-mapping layer: given a server-origin
// (KeyID, desiredMask) event, it produces the ordered physical keystroke
// program that reproduces the intended character on the local screen,
// tracks a modifier shadow independent of the OS's real state, and handles
// auto-repeat, half-duplex toggle keys, and dead-key composition.
package keystate

import "github.com/synergy-core/synergyc/internal/wire"

// KeyID is the logical character identifier carried on the wire: an
// ISO-10646 code point for printable characters, or a value in Synergy's
// private non-character range for keys like F-keys and arrows (GLOSSARY).
type KeyID int32

// KeyButton is an opaque handle for a physical key on the local keyboard.
// Zero is reserved as "unknown".
type KeyButton uint16

const NoButton KeyButton = 0

// Entry is one candidate keystroke for a KeyID: pressing Button while the
// modifiers in RequiredState are held (a subset of RequiredMask, the
// modifiers the layout actually cares about for this candidate) reproduces
// the intended character.
type Entry struct {
	Button        KeyButton
	RequiredMask  wire.ModifierMask
	RequiredState wire.ModifierMask
}

// Map is a keyboard layout's KeyID -> candidate-keystrokes table. It is
// rebuilt wholesale whenever the screen driver signals a layout change and
// is otherwise immutable, so Engine can swap to a new Map atomically
// without disturbing a sequence in flight.
type Map struct {
	entries  map[KeyID][]Entry
	deadKeys map[KeyID]map[KeyID]KeyID // dead key -> next KeyID -> composed KeyID
}

// NewMap creates an empty Map; callers populate it with Add/AddDeadKey
// before handing it to an Engine.
func NewMap() *Map {
	return &Map{
		entries:  make(map[KeyID][]Entry),
		deadKeys: make(map[KeyID]map[KeyID]KeyID),
	}
}

// Add registers one candidate keystroke for id.
func (m *Map) Add(id KeyID, e Entry) {
	m.entries[id] = append(m.entries[id], e)
}

// AddDeadKey registers that composing dead key `dead` with the following
// `next` KeyID yields `composed`.
func (m *Map) AddDeadKey(dead, next, composed KeyID) {
	inner, ok := m.deadKeys[dead]
	if !ok {
		inner = make(map[KeyID]KeyID)
		m.deadKeys[dead] = inner
	}
	inner[next] = composed
}

// IsDeadKey reports whether id is registered as a dead key in this map.
func (m *Map) IsDeadKey(id KeyID) bool {
	_, ok := m.deadKeys[id]
	return ok
}

// Compose resolves a dead key followed by the next KeyID, returning the
// composed KeyID and true if the pair is registered, or false if the dead
// key does not combine with next (caller then delivers both characters
// separately).
func (m *Map) Compose(dead, next KeyID) (KeyID, bool) {
	inner, ok := m.deadKeys[dead]
	if !ok {
		return 0, false
	}
	composed, ok := inner[next]
	return composed, ok
}

// Lookup returns the candidate keystrokes registered for id.
func (m *Map) Lookup(id KeyID) ([]Entry, bool) {
	e, ok := m.entries[id]
	return e, ok
}
