package keystate

import "github.com/synergy-core/synergyc/internal/wire"

// Non-character KeyIDs occupy Synergy's private range starting at 0xEF00,
// inside the BMP Private Use Area (U+E000..U+F8FF), which holds no
// standard character assignments (GLOSSARY: "KeyID").
const privateKeyIDBase KeyID = 0xEF00

const (
	KeyShiftL KeyID = privateKeyIDBase + iota
	KeyShiftR
	KeyControlL
	KeyControlR
	KeyAltL
	KeyAltR
	KeyMetaL
	KeyMetaR
	KeySuperL
	KeySuperR
	KeyAltGr
	KeyCapsLock
	KeyNumLock
	KeyScrollLock
)

// modifierKeyInfo describes how one physical modifier key participates in
// the ModifierShadow: which bit it asserts, and the button used to
// press/release it.
type modifierKeyInfo struct {
	bit    wire.ModifierMask
	button KeyButton
}

// modifierKeys maps every modifier KeyID to its shadow bit and physical
// button. The Engine always presses and releases modifiers with these
// buttons; Map entries registered for modifier KeyIDs are not consulted.
var modifierKeys = map[KeyID]modifierKeyInfo{
	KeyShiftL:     {wire.ModShift, 1},
	KeyShiftR:     {wire.ModShift, 2},
	KeyControlL:   {wire.ModCtrl, 3},
	KeyControlR:   {wire.ModCtrl, 4},
	KeyAltL:       {wire.ModAlt, 5},
	KeyAltR:       {wire.ModAlt, 6},
	KeyMetaL:      {wire.ModMeta, 7},
	KeyMetaR:      {wire.ModMeta, 8},
	KeySuperL:     {wire.ModSuper, 9},
	KeySuperR:     {wire.ModSuper, 10},
	KeyAltGr:      {wire.ModAltGr, 11},
	KeyCapsLock:   {wire.ModCapsLock, 12},
	KeyNumLock:    {wire.ModNumLock, 13},
	KeyScrollLock: {wire.ModScrollLock, 14},
}

// isModifierKey reports whether id is itself a modifier, and if so its
// shadow bit and physical button.
func isModifierKey(id KeyID) (modifierKeyInfo, bool) {
	info, ok := modifierKeys[id]
	return info, ok
}

// DefaultHalfDuplexMask names the toggles that are half-duplex on a typical
// platform: a press latches the state and there is no separate release. The
// client state machine may narrow this via the half-duplex-*-lock options.
const DefaultHalfDuplexMask = wire.ModCapsLock | wire.ModNumLock | wire.ModScrollLock
