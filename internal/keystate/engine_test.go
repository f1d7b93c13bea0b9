package keystate

import (
	"reflect"
	"testing"

	"github.com/synergy-core/synergyc/internal/wire"
)

func TestLowercaseLetterNeedsNoModifier(t *testing.T) {
	e := NewEngine(BuildUSASCII())

	ops := e.HandleKeyDown(KeyID('a'), 0)
	if len(ops) != 1 || !ops[0].Down {
		t.Fatalf("got %v, want single button-down op", ops)
	}
	button := ops[0].Button

	up := e.HandleKeyUp(KeyID('a'))
	want := []Op{{Button: button, Down: false}}
	if !reflect.DeepEqual(up, want) {
		t.Fatalf("got %v, want %v", up, want)
	}
}

func TestUppercaseLetterPressesFakeShift(t *testing.T) {
	e := NewEngine(BuildUSASCII())

	down := e.HandleKeyDown(KeyID('A'), wire.ModShift)
	if len(down) != 2 {
		t.Fatalf("got %d ops, want 2 (shift down + button down): %v", len(down), down)
	}
	if down[0].Down != true || down[1].Down != true {
		t.Fatalf("expected both ops to be presses: %v", down)
	}
	if e.Shadow()&wire.ModShift == 0 {
		t.Fatal("shadow should record shift as held after the fake press")
	}

	up := e.HandleKeyUp(KeyID('A'))
	if len(up) != 2 {
		t.Fatalf("got %d ops, want 2 (button up + shift up): %v", len(up), up)
	}
	if up[0].Down || up[1].Down {
		t.Fatalf("expected both ops to be releases: %v", up)
	}
	if e.Shadow()&wire.ModShift != 0 {
		t.Fatal("fake shift should have been released")
	}
}

func TestExplicitShiftIsNotReleasedByFakePath(t *testing.T) {
	e := NewEngine(BuildUSASCII())

	e.HandleKeyDown(KeyShiftL, 0)
	if e.Shadow()&wire.ModShift == 0 {
		t.Fatal("explicit shift down should set the shadow bit")
	}

	down := e.HandleKeyDown(KeyID('A'), wire.ModShift)
	if len(down) != 1 {
		t.Fatalf("got %d ops, want 1 (button down only, shift already held): %v", len(down), down)
	}

	up := e.HandleKeyUp(KeyID('A'))
	if len(up) != 1 {
		t.Fatalf("got %d ops, want 1 (button up only): %v", len(up), up)
	}
	if e.Shadow()&wire.ModShift == 0 {
		t.Fatal("explicit shift should still be held after releasing the fake-shift character")
	}

	e.HandleKeyUp(KeyShiftL)
	if e.Shadow()&wire.ModShift != 0 {
		t.Fatal("shift should clear once explicitly released")
	}
}

func TestCapsLockIsHalfDuplex(t *testing.T) {
	e := NewEngine(BuildUSASCII())

	down := e.HandleKeyDown(KeyCapsLock, 0)
	if len(down) != 1 || !down[0].Down {
		t.Fatalf("got %v, want a single down op", down)
	}
	if e.Shadow()&wire.ModCapsLock == 0 {
		t.Fatal("caps lock bit should toggle on")
	}

	up := e.HandleKeyUp(KeyCapsLock)
	if up != nil {
		t.Fatalf("half-duplex toggle should produce no release op, got %v", up)
	}

	e.HandleKeyDown(KeyCapsLock, 0)
	if e.Shadow()&wire.ModCapsLock != 0 {
		t.Fatal("second press should toggle caps lock back off")
	}
}

func TestDeadKeyComposition(t *testing.T) {
	m := BuildUSASCII()
	const deadGrave KeyID = 0x60
	const composedAGrave KeyID = 0xE0
	m.AddDeadKey(deadGrave, KeyID('a'), composedAGrave)
	m.Add(composedAGrave, Entry{Button: 999})

	e := NewEngine(m)

	if ops := e.HandleKeyDown(deadGrave, 0); ops != nil {
		t.Fatalf("dead key alone should produce no ops yet, got %v", ops)
	}

	ops := e.HandleKeyDown(KeyID('a'), 0)
	if len(ops) != 1 || ops[0].Button != 999 {
		t.Fatalf("got %v, want the composed button", ops)
	}
}

func TestDeadKeyWithoutCompositionDeliversBoth(t *testing.T) {
	m := BuildUSASCII()
	const deadGrave KeyID = 0x60
	m.AddDeadKey(deadGrave, KeyID('a'), 0xE0)

	e := NewEngine(m)

	e.HandleKeyDown(deadGrave, 0)
	ops := e.HandleKeyDown(KeyID('z'), 0)
	if len(ops) != 2 {
		t.Fatalf("got %d ops, want 2 (dead key glyph + 'z'): %v", len(ops), ops)
	}
}
