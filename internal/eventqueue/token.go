package eventqueue

import "sync/atomic"

// Token is an opaque handle a component holds for the lifetime of its event
// subscriptions. Handlers are keyed by (EventType, Token) rather than by a
// raw pointer to the component, which would otherwise create an owner/
// handler cycle only breakable by manual removal in a destructor. A
// component drops its subscriptions by calling Unsubscribe with the tokens
// it minted; there is no back-pointer from the queue to the component.
type Token struct {
	id uint64
}

var tokenSeq atomic.Uint64

// NewToken mints a fresh, never-reused token.
func NewToken() Token {
	return Token{id: tokenSeq.Add(1)}
}

// Valid reports whether t was ever minted by NewToken (the zero Token is
// never valid, so a forgotten assignment fails loudly rather than aliasing
// some other component's subscriptions).
func (t Token) Valid() bool { return t.id != 0 }
