package eventqueue

import (
	"container/heap"
	"time"
)

// Timer is the handle returned by NewOneShot/NewPeriodic. It is an error to
// use it after Cancel — Cancel is the only way to invalidate it; firing
// happens only from inside the queue's own loop.
type Timer struct {
	entry *timerEntry
}

// Cancel deregisters the timer. Firing a one-shot also deregisters it, so
// Cancel after a one-shot has already fired is a harmless no-op. Calling
// Cancel on the zero Timer (never scheduled) is also a no-op.
func (t Timer) Cancel() {
	if t.entry == nil {
		return
	}
	t.entry.cancelled = true
}

type timerEntry struct {
	deadline  time.Time
	interval  time.Duration
	periodic  bool
	cancelled bool
	eventType EventType
	token     Token
	heapIndex int
}

// NewOneShot schedules a single event of type "timer" for token at
// now+delay. Firing deregisters it automatically.
func (q *Queue) NewOneShot(delay time.Duration, token Token) Timer {
	return q.newTimer(delay, 0, false, token)
}

// NewPeriodic schedules a recurring event of type "timer" for token every
// interval, starting at now+interval.
func (q *Queue) NewPeriodic(interval time.Duration, token Token) Timer {
	return q.newTimer(interval, interval, true, token)
}

// TimerFired is the event type posted when any Timer created by this queue
// reaches its deadline. The event Target is the token passed at creation.
const TimerFired EventType = "timer"

func (q *Queue) newTimer(delay, interval time.Duration, periodic bool, token Token) Timer {
	te := &timerEntry{
		deadline:  time.Now().Add(delay),
		interval:  interval,
		periodic:  periodic,
		eventType: TimerFired,
		token:     token,
	}

	q.mu.Lock()
	pushTimer(&q.timers, te)
	q.mu.Unlock()
	q.signal()

	return Timer{entry: te}
}

// timerHeap is a min-heap of *timerEntry ordered by deadline, mirroring the
// packetHeap pattern used for sequence reordering elsewhere in this repo.
type timerHeap []*timerEntry

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	return h[i].deadline.Before(h[j].deadline)
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}
func (h *timerHeap) Push(x interface{}) {
	te := x.(*timerEntry)
	te.heapIndex = len(*h)
	*h = append(*h, te)
}
func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

func pushTimer(h *timerHeap, te *timerEntry) { heap.Push(h, te) }
func popTimer(h *timerHeap) *timerEntry      { return heap.Pop(h).(*timerEntry) }
