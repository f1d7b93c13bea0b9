package client

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/synergy-core/synergyc/internal/eventqueue"
	"github.com/synergy-core/synergyc/internal/util"
	"github.com/synergy-core/synergyc/internal/wire"
)

// protocolMajor/protocolMinor is the version this client advertises during
// the Hello exchange.
const (
	protocolMajor = 1
	protocolMinor = 6
)

// EventMessage is posted to the owning Client's event-queue token whenever
// a complete wire.Message arrives from the server.
const EventMessage eventqueue.EventType = "client.message"

// EventConnError is posted when the read loop or a write fails.
const EventConnError eventqueue.EventType = "client.connerror"

// conn owns one TCP connection to a server and pumps inbound messages onto
// an eventqueue.Queue, mirroring the read-goroutine/event-queue split used
// throughout this repo's transport layer.
type conn struct {
	nc net.Conn

	writeMu sync.Mutex

	q      *eventqueue.Queue
	target eventqueue.Token

	closeOnce sync.Once
	closing   atomic.Bool
	done      chan struct{}

	// admission is a defensive throttle on inbound frames, independent of
	// the protocol's own heartbeat cadence: it exists so a flood of
	// valid-looking frames from a misbehaving or malicious peer cannot pin
	// the single event-loop thread. Exceeding it drops the frame and logs;
	// it never tears down the connection by itself.
	admission *rate.Limiter
}

// inboundRateLimit and inboundBurst size the admission limiter generously
// above anything the protocol's own traffic (key/mouse events, heartbeats)
// would ever produce during normal use.
const (
	inboundRateLimit = 2000 // frames/sec
	inboundBurst     = 4000
)

func dial(ctx context.Context, addr string, q *eventqueue.Queue, target eventqueue.Token) (*conn, error) {
	util.Stats.AddConnectAttempt()
	nc, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return &conn{
		nc:        nc,
		q:         q,
		target:    target,
		done:      make(chan struct{}),
		admission: rate.NewLimiter(rate.Limit(inboundRateLimit), inboundBurst),
	}, nil
}

// readHello blocks for exactly one message, used for the greeting before
// the background read loop takes over.
func (c *conn) readHello() (wire.Message, error) {
	return wire.ReadMessage(c.nc)
}

// start begins pumping inbound messages onto the event queue. Call once,
// after the greeting handshake has consumed the server's Hello directly.
func (c *conn) start() {
	go c.readLoop()
}

func (c *conn) readLoop() {
	defer close(c.done)
	for {
		cr := &countingReader{r: c.nc}
		msg, err := wire.ReadMessage(cr)
		util.Stats.AddRecv(cr.n)
		if err != nil {
			if !c.closing.Load() {
				c.q.Post(eventqueue.Event{Type: EventConnError, Target: c.target, Payload: err})
			}
			return
		}
		if !c.admission.Allow() {
			util.LogWarning("dropping %T: inbound admission limit exceeded", msg)
			continue
		}
		c.q.Post(eventqueue.Event{Type: EventMessage, Target: c.target, Payload: msg})
	}
}

// send writes one message. Safe to call from any goroutine.
func (c *conn) send(msg wire.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	cw := &countingWriter{w: c.nc}
	err := wire.WriteMessage(cw, msg)
	util.Stats.AddSent(cw.n)
	if err != nil {
		return fmt.Errorf("write %T: %w", msg, err)
	}
	return nil
}

// countingReader/countingWriter tally bytes crossing the wire so the
// process-wide stats singleton can report throughput without the codec
// itself needing to know about it.
type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

// close shuts down the connection exactly once; safe to call from any
// goroutine and any number of times.
func (c *conn) close() {
	c.closeOnce.Do(func() {
		c.closing.Store(true)
		util.Stats.AddDisconnect()
		c.nc.Close()
	})
}
