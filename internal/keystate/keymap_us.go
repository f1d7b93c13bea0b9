package keystate

import "github.com/synergy-core/synergyc/internal/wire"

// keyPairs are physical keys that produce two characters depending on
// Shift, keyed by their unshifted ASCII code point. KeyID for printable
// ASCII is the code point itself, matching the Latin-1 range used by
// VNC-family clients (Key_space..Key_asciitilde).
var keyPairs = []struct {
	base, shifted rune
}{
	{'`', '~'}, {'1', '!'}, {'2', '@'}, {'3', '#'}, {'4', '$'}, {'5', '%'},
	{'6', '^'}, {'7', '&'}, {'8', '*'}, {'9', '('}, {'0', ')'},
	{'-', '_'}, {'=', '+'},
	{'[', '{'}, {']', '}'}, {'\\', '|'},
	{';', ':'}, {'\'', '"'},
	{',', '<'}, {'.', '>'}, {'/', '?'},
}

// BuildUSASCII constructs a reference US-QWERTY Map covering the printable
// ASCII range plus the common control characters (space, tab, return,
// backspace, escape). Button numbers are arbitrary but stable identifiers
// for each physical key position; a real screen driver substitutes its own
// Map built from the host's actual layout.
func BuildUSASCII() *Map {
	m := NewMap()
	var nextButton KeyButton = 100

	for _, p := range keyPairs {
		b := nextButton
		nextButton++
		m.Add(KeyID(p.base), Entry{Button: b, RequiredMask: wire.ModShift, RequiredState: 0})
		m.Add(KeyID(p.shifted), Entry{Button: b, RequiredMask: wire.ModShift, RequiredState: wire.ModShift})
	}

	for c := 'a'; c <= 'z'; c++ {
		b := nextButton
		nextButton++
		m.Add(KeyID(c), Entry{Button: b, RequiredMask: wire.ModShift, RequiredState: 0})
		m.Add(KeyID(c-'a'+'A'), Entry{Button: b, RequiredMask: wire.ModShift, RequiredState: wire.ModShift})
	}

	for _, c := range []rune{' ', '\t', '\r', '\b', 0x1b} {
		b := nextButton
		nextButton++
		m.Add(KeyID(c), Entry{Button: b, RequiredMask: 0, RequiredState: 0})
	}

	return m
}
