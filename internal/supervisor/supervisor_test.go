package supervisor

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/synergy-core/synergyc/internal/client"
	"github.com/synergy-core/synergyc/internal/config"
	"github.com/synergy-core/synergyc/internal/keystate"
	"github.com/synergy-core/synergyc/internal/screen"
	"github.com/synergy-core/synergyc/internal/wire"
)

type stubScreen struct{ layoutCh chan *keystate.Map }

func newStubScreen() *stubScreen { return &stubScreen{layoutCh: make(chan *keystate.Map)} }

func (s *stubScreen) Shape() (screen.Shape, error)                 { return screen.Shape{Width: 1, Height: 1}, nil }
func (s *stubScreen) CursorPos() (int, int, error)                 { return 0, 0, nil }
func (s *stubScreen) KeyMap() *keystate.Map                        { return keystate.BuildUSASCII() }
func (s *stubScreen) Enter(x, y int, seq uint32, mask wire.ModifierMask, forScreensaver bool) error {
	return nil
}
func (s *stubScreen) Leave() (bool, error) { return true, nil }
func (s *stubScreen) SyntheticKey(keystate.KeyButton, bool) error  { return nil }
func (s *stubScreen) MouseButton(int8, bool) error                 { return nil }
func (s *stubScreen) MouseMoveAbs(int, int) error                  { return nil }
func (s *stubScreen) MouseMoveRel(int, int) error                  { return nil }
func (s *stubScreen) MouseWheel(int16, int16) error                { return nil }
func (s *stubScreen) Clipboard(wire.ClipboardID) (map[wire.FormatID][]byte, error) {
	return nil, nil
}
func (s *stubScreen) SetClipboard(wire.ClipboardID, map[wire.FormatID][]byte) error { return nil }
func (s *stubScreen) SetScreensaver(bool) error                                     { return nil }
func (s *stubScreen) LayoutChanges() <-chan *keystate.Map                           { return s.layoutCh }
func (s *stubScreen) Close() error                                                  { return nil }

var _ screen.Screen = (*stubScreen)(nil)

// TestSupervisorRetriesOnDialFailure points at a port nothing is listening
// on, so every attempt fails at dial time, and checks that the supervisor
// keeps retrying (rather than giving up after one failure) until ctx is
// cancelled.
func TestSupervisorRetriesOnDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close() // nothing will ever accept on this address again

	cfg := config.New()
	cfg.ServerAddr = addr
	cfg.RetryDelay = 10 * time.Millisecond

	var events []client.StatusEvent
	sup := New(cfg, newStubScreen(), func(ev client.StatusEvent) { events = append(events, ev) })

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	_ = sup.Run(ctx)

	retryCount := 0
	for _, ev := range events {
		if ev.State == client.StateFailedRetryable {
			retryCount++
		}
	}
	if retryCount < 2 {
		t.Fatalf("expected at least 2 retry attempts, got %d (events=%v)", retryCount, events)
	}
}

// TestSupervisorStopsWithoutAutoRestart checks that a single dial failure
// with AutoRestart disabled returns immediately without retrying.
func TestSupervisorStopsWithoutAutoRestart(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	cfg := config.New()
	cfg.ServerAddr = addr
	cfg.AutoRestart = false
	cfg.RetryDelay = 10 * time.Millisecond

	sup := New(cfg, newStubScreen(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err = sup.Run(ctx)
	if err == nil {
		t.Fatal("expected a dial error")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("Run took %s, want it to return immediately after the first failure", elapsed)
	}
}
