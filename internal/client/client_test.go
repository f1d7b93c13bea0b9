package client

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/synergy-core/synergyc/internal/config"
	"github.com/synergy-core/synergyc/internal/eventqueue"
	"github.com/synergy-core/synergyc/internal/keystate"
	"github.com/synergy-core/synergyc/internal/screen"
	"github.com/synergy-core/synergyc/internal/wire"
)

// fakeScreen is a minimal in-memory screen.Screen for exercising Client
// without any real display, mirroring the mockTransport pattern used for
// this repo's adapter tests.
type fakeScreen struct {
	entered    bool
	keyOps     []keystate.Op
	clipboards map[wire.ClipboardID]map[wire.FormatID][]byte
	layoutCh   chan *keystate.Map
}

func newFakeScreen() *fakeScreen {
	return &fakeScreen{
		clipboards: make(map[wire.ClipboardID]map[wire.FormatID][]byte),
		layoutCh:   make(chan *keystate.Map),
	}
}

func (f *fakeScreen) Shape() (screen.Shape, error) {
	return screen.Shape{Width: 1920, Height: 1080}, nil
}
func (f *fakeScreen) CursorPos() (int, int, error) { return 0, 0, nil }
func (f *fakeScreen) KeyMap() *keystate.Map        { return keystate.BuildUSASCII() }
func (f *fakeScreen) Enter(x, y int, seq uint32, mask wire.ModifierMask, forScreensaver bool) error {
	f.entered = true
	return nil
}
func (f *fakeScreen) Leave() (bool, error) {
	if !f.entered {
		return false, nil
	}
	f.entered = false
	return true, nil
}
func (f *fakeScreen) SyntheticKey(button keystate.KeyButton, down bool) error {
	f.keyOps = append(f.keyOps, keystate.Op{Button: button, Down: down})
	return nil
}
func (f *fakeScreen) MouseButton(button int8, down bool) error { return nil }
func (f *fakeScreen) MouseMoveAbs(x, y int) error              { return nil }
func (f *fakeScreen) MouseMoveRel(dx, dy int) error            { return nil }
func (f *fakeScreen) MouseWheel(dx, dy int16) error            { return nil }
func (f *fakeScreen) Clipboard(id wire.ClipboardID) (map[wire.FormatID][]byte, error) {
	return f.clipboards[id], nil
}
func (f *fakeScreen) SetClipboard(id wire.ClipboardID, data map[wire.FormatID][]byte) error {
	f.clipboards[id] = data
	return nil
}
func (f *fakeScreen) SetScreensaver(enabled bool) error   { return nil }
func (f *fakeScreen) LayoutChanges() <-chan *keystate.Map { return f.layoutCh }
func (f *fakeScreen) Close() error                        { return nil }

var _ screen.Screen = (*fakeScreen)(nil)

// fakeServer accepts one connection, sends a Hello, consumes the client's
// reply, then lets the test drive the rest of the exchange via send/recv.
type fakeServer struct {
	ln   net.Listener
	conn net.Conn
}

func startFakeServer(t *testing.T) *fakeServer {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	return &fakeServer{ln: ln}
}

func (s *fakeServer) accept(t *testing.T) {
	conn, err := s.ln.Accept()
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	s.conn = conn
}

func (s *fakeServer) addr() string { return s.ln.Addr().String() }

func (s *fakeServer) close() {
	if s.conn != nil {
		s.conn.Close()
	}
	s.ln.Close()
}

func TestClientGreetsAndBecomesActive(t *testing.T) {
	srv := startFakeServer(t)
	defer srv.close()

	acceptDone := make(chan struct{})
	go func() {
		srv.accept(t)
		close(acceptDone)
	}()

	cfg := config.New()
	cfg.ServerAddr = srv.addr()
	scr := newFakeScreen()
	q := eventqueue.New()

	var states []State
	c := New(cfg, scr, q, func(ev StatusEvent) { states = append(states, ev.State) })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	runDone := make(chan struct{})
	var runState State
	go func() {
		runState, _ = c.Run(ctx)
		close(runDone)
	}()

	<-acceptDone
	if err := wire.WriteMessage(srv.conn, wire.Hello{Major: protocolMajor, Minor: protocolMinor}); err != nil {
		t.Fatalf("write hello: %v", err)
	}
	reply, err := wire.ReadMessage(srv.conn)
	if err != nil {
		t.Fatalf("read client hello reply: %v", err)
	}
	if _, ok := reply.(wire.Hello); !ok {
		t.Fatalf("got %T, want wire.Hello", reply)
	}

	if err := wire.WriteMessage(srv.conn, wire.Enter{X: 10, Y: 20}); err != nil {
		t.Fatalf("write enter: %v", err)
	}
	if err := wire.WriteMessage(srv.conn, wire.KeyDown{KeyID: int32('a')}); err != nil {
		t.Fatalf("write key down: %v", err)
	}
	if err := wire.WriteMessage(srv.conn, wire.Close{}); err != nil {
		t.Fatalf("write close: %v", err)
	}

	select {
	case <-runDone:
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return")
	}

	if runState != StateDisconnected {
		t.Fatalf("got state %v, want StateDisconnected", runState)
	}
	if !scr.entered {
		t.Fatal("expected screen.Enter to have been called")
	}
	if len(scr.keyOps) == 0 {
		t.Fatal("expected at least one synthetic key op from the KeyDown")
	}

	foundActive := false
	for _, s := range states {
		if s == StateActive {
			foundActive = true
		}
	}
	if !foundActive {
		t.Fatalf("status callback never saw StateActive: %v", states)
	}
}

func TestClientRejectsIncompatibleMajorVersion(t *testing.T) {
	srv := startFakeServer(t)
	defer srv.close()

	acceptDone := make(chan struct{})
	go func() {
		srv.accept(t)
		close(acceptDone)
	}()

	cfg := config.New()
	cfg.ServerAddr = srv.addr()
	scr := newFakeScreen()
	q := eventqueue.New()
	c := New(cfg, scr, q, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	runDone := make(chan struct{})
	var runState State
	var runErr error
	go func() {
		runState, runErr = c.Run(ctx)
		close(runDone)
	}()

	<-acceptDone
	if err := wire.WriteMessage(srv.conn, wire.Hello{Major: protocolMajor + 1, Minor: 0}); err != nil {
		t.Fatalf("write hello: %v", err)
	}

	select {
	case <-runDone:
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return")
	}

	if runState != StateFailedFatal {
		t.Fatalf("got state %v, want StateFailedFatal", runState)
	}
	f, ok := runErr.(*Failure)
	if !ok {
		t.Fatalf("got error type %T, want *Failure", runErr)
	}
	if f.Retryable() {
		t.Fatal("version mismatch should not be retryable")
	}
}
