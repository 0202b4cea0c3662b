package liveview

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/banshee-data/parking.report/internal/forms"
	"github.com/banshee-data/parking.report/internal/monitoring"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn is the part of *websocket.Conn a client uses.
type wsConn interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// client is one connected page. gorilla connections allow a single
// concurrent writer, hence wmu.
type client struct {
	conn wsConn
	wmu  sync.Mutex
}

func (c *client) write(data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *client) send(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return c.write(data)
}

type hub struct {
	srv *Server

	mu      sync.Mutex
	clients map[*client]struct{}
}

func newHub(srv *Server) *hub {
	return &hub{srv: srv, clients: make(map[*client]struct{})}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// add registers c and reports whether it is the first page.
func (h *hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	return len(h.clients) == 1
}

// remove unregisters c and reports whether it was the last page.
func (h *hub) remove(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	delete(h.clients, c)
	return len(h.clients) == 0
}

func (h *hub) snapshot() []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

func (h *hub) broadcast(ev Event) {
	clients := h.snapshot()
	if len(clients) == 0 {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		monitoring.Logf("liveview: encode %s event: %v", ev.Type, err)
		return
	}
	for _, c := range clients {
		if err := c.write(data); err != nil {
			// the read loop notices the closed conn and unregisters it
			_ = c.conn.Close()
		}
	}
}

func (h *hub) closeAll() {
	for _, c := range h.snapshot() {
		_ = c.conn.Close()
	}
}

// handleWebSocket upgrades the request, sends the current snapshot and
// then serves inbound events until the page goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		monitoring.Logf("liveview: ws upgrade error: %v", err)
		return
	}
	c := &client{conn: conn}
	s.join(c)
	go s.readPump(c)
}

// join registers c and sends it the current snapshot. Holding pub keeps
// every later delta after the snapshot on the wire, and keeps visibility
// calls in join order.
func (s *Server) join(c *client) {
	s.pub.Lock()
	defer s.pub.Unlock()
	first := s.hub.add(c)
	snap := s.Snapshot()
	if err := c.send(Event{Type: EventSnapshot, Snapshot: &snap}); err != nil {
		monitoring.Logf("liveview: send snapshot: %v", err)
	}
	if first {
		s.visibilityChanged(true)
	}
}

// leave unregisters c. Leaving twice is a no-op.
func (s *Server) leave(c *client) {
	s.pub.Lock()
	defer s.pub.Unlock()
	if last := s.hub.remove(c); last {
		s.visibilityChanged(false)
	}
}

func (s *Server) readPump(c *client) {
	defer func() {
		s.leave(c)
		_ = c.conn.Close()
	}()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var in Inbound
		if err := json.Unmarshal(data, &in); err != nil {
			_ = c.send(Event{Type: EventError, Value: "invalid message"})
			continue
		}
		if reply, ok := s.handleInbound(in); ok {
			if err := c.send(reply); err != nil {
				return
			}
		}
	}
}

// handleInbound applies one page event and returns the direct reply, if
// any. Model changes reach every page through broadcasts instead.
func (s *Server) handleInbound(in Inbound) (Event, bool) {
	switch in.Type {
	case InRefresh:
		s.Refresh()
		return Event{}, false
	case InInput:
		if !s.sim.Input(in.Field, in.Value) {
			return Event{Type: EventError, Value: "unknown field " + in.Field}, true
		}
		return Event{}, false
	case InChange:
		if !s.sim.Change(in.Field, in.Value) {
			return Event{Type: EventError, Value: "unknown field " + in.Field}, true
		}
		return Event{}, false
	case InPlate:
		return Event{Type: EventPlate, Value: forms.NormalizePlate(in.Value)}, true
	case InSubmit:
		f := forms.ByName(in.Form)
		if f == nil {
			return Event{Type: EventError, Value: "unknown form " + in.Form}, true
		}
		for name, value := range in.Fields {
			f.Input(name, value)
		}
		res := forms.Submit(f)
		return Event{Type: EventForm, Form: in.Form, Result: &res}, true
	}
	return Event{Type: EventError, Value: "unknown event " + in.Type}, true
}
