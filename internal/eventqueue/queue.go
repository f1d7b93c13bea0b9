// Package eventqueue implements a single-threaded cooperative dispatcher:
// events carry a type tag, a target token, and an optional payload whose
// ownership transfers to whichever handler consumes it; unmatched events are
// discarded; a dedicated Quit event terminates the loop. Timers (one-shot
// and periodic) are the only other source of scheduling besides inbound
// events, and the queue's Dispatch call is the only point that may block.
package eventqueue

import (
	"sync"
	"time"
)

// EventType tags the kind of event being delivered.
type EventType string

// Quit is the reserved event type that terminates Dispatch. It is always
// delivered with the zero Token and is never looked up in the handler table
// — Dispatch intercepts it directly.
const Quit EventType = "quit"

// Event is one unit of work flowing through the queue. Payload, when
// present, is owned by whichever handler receives the event; a handler that
// drops the event without inspecting Payload is responsible for releasing
// it if it holds a resource.
type Event struct {
	Type    EventType
	Target  Token
	Payload interface{}
}

// Handler processes one Event. It must not block on I/O; long-running work
// is expected to post a continuation event instead.
type Handler func(Event)

type handlerKey struct {
	t      EventType
	target Token
}

// Queue is the single cross-thread object in the system: Post is safe to
// call from any goroutine (platform screen drivers run their own thread and
// marshal results in via Post), while Subscribe, Unsubscribe, and Dispatch
// are loop-thread-only.
type Queue struct {
	mu       sync.Mutex
	pending  []Event
	handlers map[handlerKey]Handler
	wake     chan struct{}
	timers   timerHeap
	timerSeq uint64
	quitting bool
}

// New creates an empty, running Queue.
func New() *Queue {
	return &Queue{
		handlers: make(map[handlerKey]Handler),
		wake:     make(chan struct{}, 1),
	}
}

// Subscribe registers fn to handle events of type t addressed to target.
// A second Subscribe for the same (t, target) replaces the prior handler.
func (q *Queue) Subscribe(t EventType, target Token, fn Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[handlerKey{t, target}] = fn
}

// Unsubscribe removes the handler for (t, target), if any. Idempotent.
func (q *Queue) Unsubscribe(t EventType, target Token) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.handlers, handlerKey{t, target})
}

// Post enqueues an event for later delivery on the loop thread. Safe to
// call from any goroutine, including the loop thread itself.
func (q *Queue) Post(e Event) {
	q.mu.Lock()
	q.pending = append(q.pending, e)
	q.mu.Unlock()
	q.signal()
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// RequestQuit posts the reserved Quit event, which causes a running
// Dispatch to return once it reaches the front of the queue.
func (q *Queue) RequestQuit() {
	q.Post(Event{Type: Quit})
}

// Dispatch runs the event loop until a Quit event is processed or stop is
// closed. It is the one function in this package that may block, and it
// must be called from the single dedicated loop thread.
func (q *Queue) Dispatch(stop <-chan struct{}) {
	for {
		e, ok := q.waitNext(stop)
		if !ok {
			return
		}
		if e.Type == Quit {
			return
		}

		q.mu.Lock()
		h, found := q.handlers[handlerKey{e.Type, e.Target}]
		q.mu.Unlock()

		if found {
			h(e)
		}
		// Unmatched events are discarded.
	}
}

// waitNext blocks until an event is ready, a timer fires (which itself
// produces an event), or stop is closed. It is the sole suspension point of
// the loop thread.
func (q *Queue) waitNext(stop <-chan struct{}) (Event, bool) {
	for {
		q.mu.Lock()
		if len(q.pending) > 0 {
			e := q.pending[0]
			q.pending = q.pending[1:]
			q.mu.Unlock()
			return e, true
		}

		var wait *time.Timer
		if q.timers.Len() > 0 {
			d := time.Until(q.timers[0].deadline)
			if d < 0 {
				d = 0
			}
			wait = time.NewTimer(d)
		}
		q.mu.Unlock()

		if wait == nil {
			select {
			case <-q.wake:
				continue
			case <-stop:
				return Event{}, false
			}
		}

		select {
		case <-q.wake:
			wait.Stop()
			continue
		case <-wait.C:
			q.fireDueTimers()
			continue
		case <-stop:
			wait.Stop()
			return Event{}, false
		}
	}
}

func (q *Queue) fireDueTimers() {
	now := time.Now()
	var fired []Event

	q.mu.Lock()
	for q.timers.Len() > 0 && !q.timers[0].deadline.After(now) {
		te := q.timers[0]
		if te.cancelled {
			popTimer(&q.timers)
			continue
		}
		popTimer(&q.timers)
		fired = append(fired, Event{Type: te.eventType, Target: te.token})
		if te.periodic {
			te.deadline = now.Add(te.interval)
			pushTimer(&q.timers, te)
		}
	}
	q.mu.Unlock()

	for _, e := range fired {
		q.Post(e)
	}
}
