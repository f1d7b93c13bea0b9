package eventqueue

import (
	"sync"
	"testing"
	"time"
)

func TestDispatchDeliversInEnqueueOrder(t *testing.T) {
	q := New()
	target := NewToken()

	var mu sync.Mutex
	var got []int

	q.Subscribe("tick", target, func(e Event) {
		mu.Lock()
		got = append(got, e.Payload.(int))
		mu.Unlock()
	})

	for i := 0; i < 5; i++ {
		q.Post(Event{Type: "tick", Target: target, Payload: i})
	}
	q.RequestQuit()

	done := make(chan struct{})
	go func() { q.Dispatch(nil); close(done) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Dispatch did not return")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 5 {
		t.Fatalf("got %d events, want 5: %v", len(got), got)
	}
	for i, v := range got {
		if v != i {
			t.Errorf("event %d: got payload %d, want %d", i, v, i)
		}
	}
}

func TestUnmatchedEventsAreDiscarded(t *testing.T) {
	q := New()
	target := NewToken()
	other := NewToken()

	called := false
	q.Subscribe("x", target, func(Event) { called = true })

	q.Post(Event{Type: "x", Target: other})
	q.RequestQuit()
	q.Dispatch(nil)

	if called {
		t.Fatal("handler for a different target should not have been invoked")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	q := New()
	target := NewToken()

	calls := 0
	q.Subscribe("x", target, func(Event) { calls++ })
	q.Unsubscribe("x", target)

	q.Post(Event{Type: "x", Target: target})
	q.RequestQuit()
	q.Dispatch(nil)

	if calls != 0 {
		t.Fatalf("expected 0 calls after Unsubscribe, got %d", calls)
	}
}

func TestOneShotTimerFiresOnce(t *testing.T) {
	q := New()
	target := NewToken()

	fired := make(chan struct{}, 2)
	q.Subscribe(TimerFired, target, func(Event) { fired <- struct{}{} })

	q.NewOneShot(10*time.Millisecond, target)

	go func() {
		time.Sleep(150 * time.Millisecond)
		q.RequestQuit()
	}()
	q.Dispatch(nil)

	close(fired)
	count := 0
	for range fired {
		count++
	}
	if count != 1 {
		t.Fatalf("one-shot timer fired %d times, want 1", count)
	}
}

func TestPeriodicTimerFiresRepeatedly(t *testing.T) {
	q := New()
	target := NewToken()

	var mu sync.Mutex
	count := 0
	q.Subscribe(TimerFired, target, func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	timer := q.NewPeriodic(15*time.Millisecond, target)

	go func() {
		time.Sleep(120 * time.Millisecond)
		timer.Cancel()
		q.RequestQuit()
	}()
	q.Dispatch(nil)

	mu.Lock()
	defer mu.Unlock()
	if count < 2 {
		t.Fatalf("periodic timer fired %d times, want at least 2", count)
	}
}

func TestCancelledTimerNeverFires(t *testing.T) {
	q := New()
	target := NewToken()

	fired := false
	q.Subscribe(TimerFired, target, func(Event) { fired = true })

	timer := q.NewOneShot(20*time.Millisecond, target)
	timer.Cancel()

	go func() {
		time.Sleep(80 * time.Millisecond)
		q.RequestQuit()
	}()
	q.Dispatch(nil)

	if fired {
		t.Fatal("cancelled timer fired")
	}
}

func TestPostIsSafeFromAnotherGoroutine(t *testing.T) {
	q := New()
	target := NewToken()

	var mu sync.Mutex
	total := 0
	q.Subscribe("n", target, func(e Event) {
		mu.Lock()
		total += e.Payload.(int)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			q.Post(Event{Type: "n", Target: target, Payload: 1})
		}(i)
	}

	go func() {
		wg.Wait()
		q.RequestQuit()
	}()

	q.Dispatch(nil)

	mu.Lock()
	defer mu.Unlock()
	if total != 50 {
		t.Fatalf("got total %d, want 50", total)
	}
}
