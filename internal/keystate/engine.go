package keystate

import (
	"sync"

	"github.com/synergy-core/synergyc/internal/wire"
)

// Op is one physical keystroke the caller must synthesize, in order.
type Op struct {
	Button KeyButton
	Down   bool
}

type heldInfo struct {
	button   KeyButton
	fakeMods wire.ModifierMask
}

// Engine turns incoming (KeyID, desired modifier mask) events into ordered
// physical Op sequences, tracking its own modifier shadow rather than
// trusting the OS's live state. A new Map can be installed at any time via
// SetMap; in-flight key presses keep using whatever button they were
// resolved against at press time.
type Engine struct {
	mu sync.Mutex

	table *Map

	shadow   wire.ModifierMask // bits currently considered held, real or fake
	explicit wire.ModifierMask // bits held because of a genuine modifier keyDown
	halfDup  wire.ModifierMask // toggle-style modifiers (caps/num/scroll lock)

	held        map[KeyID]heldInfo
	pendingDead KeyID
	hasDead     bool
}

// NewEngine creates an Engine bound to the given initial layout.
func NewEngine(m *Map) *Engine {
	return &Engine{
		table:   m,
		halfDup: DefaultHalfDuplexMask,
		held:    make(map[KeyID]heldInfo),
	}
}

// SetMap atomically swaps the active layout, e.g. after the local keyboard
// layout changes.
func (e *Engine) SetMap(m *Map) {
	e.mu.Lock()
	e.table = m
	e.mu.Unlock()
}

// SetHalfDuplexMask narrows or widens which modifiers are treated as
// half-duplex toggles, per the half-duplex-*-lock options.
func (e *Engine) SetHalfDuplexMask(mask wire.ModifierMask) {
	e.mu.Lock()
	e.halfDup = mask
	e.mu.Unlock()
}

// Shadow returns the engine's current view of held modifiers.
func (e *Engine) Shadow() wire.ModifierMask {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shadow
}

// HandleKeyDown processes one server-origin key press.
func (e *Engine) HandleKeyDown(id KeyID, desiredMask wire.ModifierMask) []Op {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.keyDownLocked(id, desiredMask)
}

func (e *Engine) keyDownLocked(id KeyID, desiredMask wire.ModifierMask) []Op {
	if info, ok := isModifierKey(id); ok {
		return e.modifierDownLocked(id, info)
	}

	if e.hasDead {
		dead := e.pendingDead
		e.hasDead = false
		if composed, ok := e.table.Compose(dead, id); ok {
			return e.resolveCharLocked(composed, desiredMask)
		}
		// No composition: deliver the dead key's own glyph, then id.
		var ops []Op
		ops = append(ops, e.resolveCharLocked(dead, desiredMask)...)
		ops = append(ops, e.resolveCharLocked(id, desiredMask)...)
		return ops
	}

	if e.table.IsDeadKey(id) {
		e.pendingDead = id
		e.hasDead = true
		return nil
	}

	return e.resolveCharLocked(id, desiredMask)
}

func (e *Engine) modifierDownLocked(id KeyID, info modifierKeyInfo) []Op {
	if e.halfDup&info.bit != 0 {
		e.shadow ^= info.bit
		return []Op{{Button: info.button, Down: true}}
	}
	e.explicit |= info.bit
	e.shadow |= info.bit
	e.held[id] = heldInfo{button: info.button}
	return []Op{{Button: info.button, Down: true}}
}

// resolveCharLocked selects the best candidate for id, presses whatever
// extra modifiers it requires, then presses its button.
func (e *Engine) resolveCharLocked(id KeyID, desiredMask wire.ModifierMask) []Op {
	candidates, ok := e.table.Lookup(id)
	if !ok || len(candidates) == 0 {
		return nil
	}

	best := selectCandidate(candidates, desiredMask)

	var ops []Op
	needed := best.RequiredState & best.RequiredMask
	held := e.shadow & best.RequiredMask
	toPress := needed &^ held
	toRelease := held &^ needed

	var fake wire.ModifierMask
	for bit := wire.ModifierMask(1); bit != 0 && bit <= best.RequiredMask; bit <<= 1 {
		if toPress&bit == 0 {
			continue
		}
		if info, button, found := findModifierForBit(bit); found {
			ops = append(ops, Op{Button: button, Down: true})
			e.shadow |= bit
			if e.explicit&bit == 0 {
				fake |= bit
			}
			_ = info
		}
	}
	for bit := wire.ModifierMask(1); bit != 0 && bit <= best.RequiredMask; bit <<= 1 {
		if toRelease&bit == 0 {
			continue
		}
		if _, button, found := findModifierForBit(bit); found {
			ops = append(ops, Op{Button: button, Down: false})
			e.shadow &^= bit
		}
	}

	ops = append(ops, Op{Button: best.Button, Down: true})
	e.held[id] = heldInfo{button: best.Button, fakeMods: fake}
	return ops
}

// HandleKeyUp releases whatever button and fake modifiers a prior KeyDown
// for id pressed. An id with no matching prior down (e.g. it resolved to a
// pending dead key and nothing was pressed) produces no ops.
func (e *Engine) HandleKeyUp(id KeyID) []Op {
	e.mu.Lock()
	defer e.mu.Unlock()

	if info, ok := isModifierKey(id); ok {
		if e.halfDup&info.bit != 0 {
			return nil // half-duplex toggles have no separate release
		}
		delete(e.held, id)
		e.explicit &^= info.bit
		e.shadow &^= info.bit
		return []Op{{Button: info.button, Down: false}}
	}

	hi, ok := e.held[id]
	if !ok {
		return nil
	}
	delete(e.held, id)

	ops := []Op{{Button: hi.button, Down: false}}
	for bit := wire.ModifierMask(1); bit != 0; bit <<= 1 {
		if hi.fakeMods&bit == 0 {
			continue
		}
		if e.explicit&bit != 0 {
			continue // became a real modifier press meanwhile, leave it held
		}
		if _, button, found := findModifierForBit(bit); found {
			ops = append(ops, Op{Button: button, Down: false})
			e.shadow &^= bit
		}
	}
	return ops
}

// HandleKeyRepeat re-presses the button already down for id, count times,
// without recomputing modifiers: they are assumed still held from the
// initial KeyDown.
func (e *Engine) HandleKeyRepeat(id KeyID, count int) []Op {
	e.mu.Lock()
	defer e.mu.Unlock()

	hi, ok := e.held[id]
	if !ok || count <= 0 {
		return nil
	}
	ops := make([]Op, 0, count*2)
	for i := 0; i < count; i++ {
		ops = append(ops, Op{Button: hi.button, Down: false}, Op{Button: hi.button, Down: true})
	}
	return ops
}

// selectCandidate picks the entry whose RequiredState best matches desired,
// preferring an exact match and otherwise the entry needing fewest
// modifier changes.
func selectCandidate(candidates []Entry, desired wire.ModifierMask) Entry {
	best := candidates[0]
	bestCost := popcount(uint16((best.RequiredState & best.RequiredMask) ^ (desired & best.RequiredMask)))
	for _, c := range candidates[1:] {
		cost := popcount(uint16((c.RequiredState & c.RequiredMask) ^ (desired & c.RequiredMask)))
		if cost < bestCost {
			best, bestCost = c, cost
		}
	}
	return best
}

func popcount(v uint16) int {
	n := 0
	for v != 0 {
		n += int(v & 1)
		v >>= 1
	}
	return n
}

// findModifierForBit returns the first registered modifier key asserting
// bit, preferring the left variant (declared first in modifierKeys).
func findModifierForBit(bit wire.ModifierMask) (KeyID, KeyButton, bool) {
	for _, id := range modifierLookupOrder {
		info := modifierKeys[id]
		if info.bit == bit {
			return id, info.button, true
		}
	}
	return 0, 0, false
}

var modifierLookupOrder = []KeyID{
	KeyShiftL, KeyShiftR,
	KeyControlL, KeyControlR,
	KeyAltL, KeyAltR,
	KeyMetaL, KeyMetaR,
	KeySuperL, KeySuperR,
	KeyAltGr,
	KeyCapsLock, KeyNumLock, KeyScrollLock,
}
