// Package status implements the optional loopback status sink: a tiny
// WebSocket server that broadcasts every client.StatusEvent as JSON to
// whatever's watching (a local dashboard, a test harness).
package status

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/synergy-core/synergyc/internal/client"
	"github.com/synergy-core/synergyc/internal/util"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Sink broadcasts StatusEvents to every connected WebSocket client. The
// zero value is not usable; construct with NewSink.
type Sink struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	server *http.Server
}

// NewSink creates a Sink with no listener yet bound.
func NewSink() *Sink {
	return &Sink{conns: make(map[*websocket.Conn]struct{})}
}

// Listen starts serving on addr (e.g. "127.0.0.1:24801"). The returned
// Func is suitable as a client.StatusFunc / supervisor status callback.
func (s *Sink) Listen(addr string) (client.StatusFunc, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.handleWS)

	srv := &http.Server{Addr: addr, Handler: mux}
	s.server = srv

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.LogWarning("status sink: %v", err)
		}
	}()

	return s.Broadcast, nil
}

func (s *Sink) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	// Drain and discard anything the client sends; this is a one-way
	// broadcast channel. Exit (and deregister) once the peer closes.
	go func() {
		defer s.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Sink) remove(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
}

// statusWire is the JSON shape broadcast for every event.
type statusWire struct {
	State  string `json:"state"`
	Detail string `json:"detail"`
	ConnID string `json:"connId"`
	At     string `json:"at"`
}

// Broadcast sends ev to every currently-connected listener.
func (s *Sink) Broadcast(ev client.StatusEvent) {
	payload, err := json.Marshal(statusWire{
		State:  ev.State.String(),
		Detail: ev.Detail,
		ConnID: string(ev.ConnID),
		At:     ev.At.Format("2006-01-02T15:04:05.000Z07:00"),
	})
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			go s.remove(conn)
		}
	}
}

// Close shuts down the listener and disconnects every client.
func (s *Sink) Close() error {
	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.conns = make(map[*websocket.Conn]struct{})
	s.mu.Unlock()

	if s.server != nil {
		return s.server.Close()
	}
	return nil
}
