// Package client implements the connection lifecycle state machine for one
// screen's session with a Synergy server: dialing, version greeting,
// heartbeat, option negotiation, and the active exchange of key, mouse,
// and clipboard messages against a local screen.Screen driver.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/synergy-core/synergyc/internal/config"
	"github.com/synergy-core/synergyc/internal/eventqueue"
	"github.com/synergy-core/synergyc/internal/keystate"
	"github.com/synergy-core/synergyc/internal/screen"
	"github.com/synergy-core/synergyc/internal/util"
	"github.com/synergy-core/synergyc/internal/wire"
)

// ConnectionID correlates log lines and status events with one dial
// attempt. It carries no protocol meaning; it exists purely for
// diagnostics (GLOSSARY: "ConnectionID").
type ConnectionID string

func newConnectionID() ConnectionID { return ConnectionID(uuid.NewString()) }

// StatusEvent is emitted on every state transition for the supervisor's
// status sink to consume.
type StatusEvent struct {
	State  State
	Detail string
	ConnID ConnectionID
	At     time.Time
}

// StatusFunc receives every StatusEvent a Client produces.
type StatusFunc func(StatusEvent)

// Client runs one screen's connection lifecycle against a single server
// address. It is not safe for concurrent use from outside its own
// eventqueue.Queue loop thread.
type Client struct {
	cfg    config.Config
	scr    screen.Screen
	status StatusFunc

	q     *eventqueue.Queue
	token eventqueue.Token

	state  State
	connID ConnectionID
	c      *conn

	keys *keystate.Engine

	clipSlots [2]clipboardSlot
	clipSeq   uint32

	heartbeatTimer  eventqueue.Timer
	heartbeatPeriod time.Duration
	resultCh        chan activeResult

	entered      bool
	seenEnterSeq bool
	lastEnterSeq uint32
}

// New creates a Client bound to one screen driver, ready to Run.
func New(cfg config.Config, scr screen.Screen, q *eventqueue.Queue, status StatusFunc) *Client {
	if status == nil {
		status = func(StatusEvent) {}
	}
	return &Client{
		cfg:             cfg,
		scr:             scr,
		status:          status,
		q:               q,
		token:           eventqueue.NewToken(),
		keys:            keystate.NewEngine(scr.KeyMap()),
		heartbeatPeriod: 5 * time.Second,
		resultCh:        make(chan activeResult, 1),
	}
}

func (c *Client) setState(s State, detail string) {
	c.state = s
	util.LogInfo("[%s] %s: %s", c.connID, s, detail)
	c.status(StatusEvent{State: s, Detail: detail, ConnID: c.connID, At: time.Now()})
}

// State returns the client's current lifecycle state.
func (c *Client) State() State { return c.state }

// Run drives one connection attempt to completion: dial, greet, run the
// active session until the peer disconnects or ctx is cancelled, then
// return the resulting State (always Disconnected, FailedRetryable, or
// FailedFatal) and error, if any.
func (c *Client) Run(ctx context.Context) (State, error) {
	c.connID = newConnectionID()
	defer c.unregisterHandlers()

	c.setState(StateResolving, c.cfg.ServerAddr)
	c.setState(StateConnecting, fmt.Sprintf("%s as %q", c.cfg.ServerAddr, c.cfg.ScreenName))

	cn, err := dial(ctx, c.cfg.ServerAddr, c.q, c.token)
	if err != nil {
		f := newFailure(FailureDial, err)
		c.setState(StateFailedRetryable, f.Error())
		return StateFailedRetryable, f
	}
	c.c = cn
	defer c.c.close()

	c.setState(StateGreeting, "")
	if err := c.greet(); err != nil {
		f, ok := err.(*Failure)
		if !ok {
			f = newFailure(FailureHandshake, err)
		}
		state := StateFailedRetryable
		if !f.Retryable() {
			state = StateFailedFatal
		}
		c.setState(state, f.Error())
		return state, f
	}

	c.setState(StateActive, "")
	c.subscribe()
	c.c.start()
	c.armHeartbeat()

	result := c.runActive(ctx)
	c.setState(result.state, result.detail)
	return result.state, result.err
}

// greet performs the version handshake: read the server's Hello, check
// compatibility, and reply with our own.
func (c *Client) greet() error {
	msg, err := c.c.readHello()
	if err != nil {
		return newFailure(FailureHandshake, err)
	}
	hello, ok := msg.(wire.Hello)
	if !ok {
		return newFailure(FailureHandshake, fmt.Errorf("expected Hello, got %T", msg))
	}
	if hello.Major != protocolMajor {
		return newFatalFailure(FailureHandshake, fmt.Errorf("server protocol major version %d incompatible with client %d", hello.Major, protocolMajor))
	}
	return c.c.send(wire.Hello{Major: protocolMajor, Minor: protocolMinor})
}

type activeResult struct {
	state  State
	detail string
	err    error
}

// subscribe wires this Client's handlers into its event queue. Must run
// before conn.start(), so the first inbound message always has a handler
// waiting for it.
func (c *Client) subscribe() {
	c.q.Subscribe(EventMessage, c.token, func(e eventqueue.Event) {
		if res, done := c.handleMessage(e.Payload.(wire.Message)); done {
			select {
			case c.resultCh <- res:
			default:
			}
			c.q.RequestQuit()
		}
	})
	c.q.Subscribe(EventConnError, c.token, func(e eventqueue.Event) {
		err, _ := e.Payload.(error)
		select {
		case c.resultCh <- activeResult{state: StateFailedRetryable, detail: "connection lost", err: newFailure(FailureRemoteClose, err)}:
		default:
		}
		c.q.RequestQuit()
	})
	c.q.Subscribe(eventqueue.TimerFired, c.token, func(eventqueue.Event) {
		c.onHeartbeat()
	})
}

// runActive blocks until the active session ends, either because a
// handler requested Quit (resultCh carries the outcome) or ctx is
// cancelled (a local shutdown). subscribe must already have been called.
func (c *Client) runActive(ctx context.Context) activeResult {
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			close(stop)
		case <-stop:
		}
	}()

	done := make(chan struct{})
	go func() {
		c.q.Dispatch(stop)
		close(done)
	}()

	select {
	case res := <-c.resultCh:
		close(stop)
		<-done
		return res
	case <-ctx.Done():
		<-done
		return activeResult{state: StateDisconnected, detail: "local shutdown"}
	}
}

// handleMessage applies one decoded message to client state, returning
// (result, true) when the active session is over.
func (c *Client) handleMessage(msg wire.Message) (activeResult, bool) {
	switch m := msg.(type) {
	case wire.KeepAlive:
		_ = c.c.send(wire.NoOp{})

	case wire.ResetOptions:
		c.applyOptions(nil)

	case wire.SetOptions:
		c.applyOptions(m.Options)

	case wire.Enter:
		if c.seenEnterSeq && m.SeqNum <= c.lastEnterSeq {
			util.LogWarning("[%s] dropping stale CINN seq %d (last %d)", c.connID, m.SeqNum, c.lastEnterSeq)
			break
		}
		c.seenEnterSeq = true
		c.lastEnterSeq = m.SeqNum
		c.entered = true
		_ = c.scr.Enter(int(m.X), int(m.Y), m.SeqNum, m.Mask, m.ForScreensaver)

	case wire.Leave:
		if c.entered {
			ok, err := c.scr.Leave()
			if err != nil {
				util.LogWarning("[%s] leave: %v", c.connID, err)
			}
			if ok {
				c.entered = false
				_ = c.c.send(wire.NoOp{})
			}
		}

	case wire.KeyDown:
		c.applyOps(c.keys.HandleKeyDown(keystate.KeyID(m.KeyID), m.Mask))

	case wire.KeyRepeat:
		c.applyOps(c.keys.HandleKeyRepeat(keystate.KeyID(m.KeyID), int(m.Count)))

	case wire.KeyUp:
		c.applyOps(c.keys.HandleKeyUp(keystate.KeyID(m.KeyID)))

	case wire.MouseDown:
		_ = c.scr.MouseButton(int8(m.Button), true)

	case wire.MouseUp:
		_ = c.scr.MouseButton(int8(m.Button), false)

	case wire.MouseMove:
		_ = c.scr.MouseMoveAbs(int(m.X), int(m.Y))

	case wire.MouseMoveRel:
		_ = c.scr.MouseMoveRel(int(m.DX), int(m.DY))

	case wire.MouseWheel:
		_ = c.scr.MouseWheel(m.DX, c.scaleWheelY(m.DY))

	case wire.GrabClipboard:
		// The server owns this clipboard slot now; nothing to synthesize
		// until DCLP data actually arrives.

	case wire.ClipboardData:
		c.handleClipboardData(m)

	case wire.Screensaver:
		_ = c.scr.SetScreensaver(m.Active)

	case wire.InfoRequest:
		c.sendInfo()

	case wire.Close:
		return activeResult{state: StateDisconnected, detail: "server sent CBYE"}, true
	}
	return activeResult{}, false
}

// scaleWheelY rescales a wheel delta expressed in the wire protocol's
// standard 120-units-per-notch convention to this screen's configured
// notch size (the -yscroll flag), the way the original client compensates
// for platforms whose native wheel granularity differs from the protocol's.
func (c *Client) scaleWheelY(dy int16) int16 {
	if c.cfg.YScrollDelta <= 0 || c.cfg.YScrollDelta == 120 {
		return dy
	}
	return int16(int(dy) * c.cfg.YScrollDelta / 120)
}

func (c *Client) applyOps(ops []keystate.Op) {
	for _, op := range ops {
		if err := c.scr.SyntheticKey(op.Button, op.Down); err != nil {
			util.LogWarning("[%s] synthetic key failed: %v", c.connID, err)
		}
	}
}

func (c *Client) handleClipboardData(m wire.ClipboardData) {
	data, err := c.clipSlots[m.ID].feed(m)
	if err != nil {
		util.LogWarning("[%s] clipboard assembly: %v", c.connID, err)
		return
	}
	if data == nil && m.Kind != wire.ChunkEnd {
		return
	}
	if err := c.scr.SetClipboard(m.ID, map[wire.FormatID][]byte{wire.FormatText: data}); err != nil {
		util.LogWarning("[%s] set clipboard: %v", c.connID, err)
	}
}

// sendInfo replies to a QINF with the current screen geometry.
func (c *Client) sendInfo() {
	shape, err := c.scr.Shape()
	if err != nil {
		util.LogWarning("[%s] screen shape: %v", c.connID, err)
		return
	}
	_ = c.c.send(wire.Info{
		X: 0, Y: 0,
		W: int16(shape.Width), H: int16(shape.Height),
	})
}

// applyOptions applies a server option dictionary, or restores defaults if
// opts is nil (ResetOptions).
func (c *Client) applyOptions(opts []wire.Option) {
	if opts == nil {
		c.heartbeatPeriod = 5 * time.Second
		c.armHeartbeat()
	}
	halfDup := keystate.DefaultHalfDuplexMask
	for _, o := range opts {
		switch o.Key {
		case "HBRT": // heartbeat rate, milliseconds
			if o.Value > 0 {
				c.heartbeatPeriod = time.Duration(o.Value) * time.Millisecond
				c.armHeartbeat()
			}
		case "LCAP": // half-duplex caps lock
			if o.Value == 0 {
				halfDup &^= wire.ModCapsLock
			}
		case "LNUM": // half-duplex num lock
			if o.Value == 0 {
				halfDup &^= wire.ModNumLock
			}
		case "LSCL": // half-duplex scroll lock
			if o.Value == 0 {
				halfDup &^= wire.ModScrollLock
			}
		}
	}
	c.keys.SetHalfDuplexMask(halfDup)
}

func (c *Client) armHeartbeat() {
	c.heartbeatTimer.Cancel()
	c.heartbeatTimer = c.q.NewPeriodic(c.heartbeatPeriod, c.token)
}

func (c *Client) onHeartbeat() {
	_ = c.c.send(wire.KeepAlive{})
}

func (c *Client) unregisterHandlers() {
	c.heartbeatTimer.Cancel()
	c.q.Unsubscribe(EventMessage, c.token)
	c.q.Unsubscribe(EventConnError, c.token)
	c.q.Unsubscribe(eventqueue.TimerFired, c.token)
}
