package realtime

import (
	"bufio"
	"encoding/json"
	"log"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 2 * time.Second

// envelope is the wire form of every feed message.
type envelope struct {
	Kind string    `json:"type"`
	At   time.Time `json:"at"`
	Data Event     `json:"data"`
}

func marshalEnvelope(ev Event) ([]byte, error) {
	return json.Marshal(envelope{
		Kind: ev.EventKind(),
		At:   time.Now().UTC(),
		Data: ev,
	})
}

// subscriber is one attached feed consumer, TCP or WebSocket.
type subscriber interface {
	deliver(payload []byte) error
	close()
}

type tcpSubscriber struct {
	conn net.Conn
	w    *bufio.Writer
}

func newTCPSubscriber(conn net.Conn) *tcpSubscriber {
	return &tcpSubscriber{conn: conn, w: bufio.NewWriter(conn)}
}

// deliver writes one newline-delimited JSON frame.
func (s *tcpSubscriber) deliver(payload []byte) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if _, err := s.w.Write(payload); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	return s.w.Flush()
}

func (s *tcpSubscriber) close() { _ = s.conn.Close() }

type wsSubscriber struct {
	conn *websocket.Conn
}

func (s *wsSubscriber) deliver(payload []byte) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *wsSubscriber) close() { _ = s.conn.Close() }

// Hub fans typed feed events out to every subscriber. A subscriber is
// dropped on its first failed delivery; there is no replay.
type Hub struct {
	mu      sync.Mutex
	tcp     map[net.Conn]*tcpSubscriber
	ws      map[*websocket.Conn]*wsSubscriber
	dropped int
}

type Stats struct {
	TCPClients int `json:"tcp_clients"`
	WSClients  int `json:"ws_clients"`
	Dropped    int `json:"dropped"`
}

func NewHub() *Hub {
	return &Hub{
		tcp: make(map[net.Conn]*tcpSubscriber),
		ws:  make(map[*websocket.Conn]*wsSubscriber),
	}
}

func (h *Hub) Add(conn net.Conn) {
	h.mu.Lock()
	h.tcp[conn] = newTCPSubscriber(conn)
	h.mu.Unlock()
}

func (h *Hub) Remove(conn net.Conn) {
	h.mu.Lock()
	if sub, ok := h.tcp[conn]; ok {
		sub.close()
		delete(h.tcp, conn)
	}
	h.mu.Unlock()
}

func (h *Hub) AddWS(conn *websocket.Conn) {
	h.mu.Lock()
	h.ws[conn] = &wsSubscriber{conn: conn}
	h.mu.Unlock()
}

func (h *Hub) RemoveWS(conn *websocket.Conn) {
	h.mu.Lock()
	if sub, ok := h.ws[conn]; ok {
		sub.close()
		delete(h.ws, conn)
	}
	h.mu.Unlock()
}

// Broadcast wraps ev in an envelope and delivers it to all subscribers.
func (h *Hub) Broadcast(ev Event) {
	payload, err := marshalEnvelope(ev)
	if err != nil {
		log.Printf("[feed] cannot encode %s event: %v", ev.EventKind(), err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, sub := range h.tcp {
		if err := sub.deliver(payload); err != nil {
			sub.close()
			delete(h.tcp, conn)
			h.dropped++
		}
	}
	for conn, sub := range h.ws {
		if err := sub.deliver(payload); err != nil {
			sub.close()
			delete(h.ws, conn)
			h.dropped++
		}
	}
}

// Welcome greets one TCP subscriber with the current subscriber count.
func (h *Hub) Welcome(conn net.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.tcp[conn]; ok {
		h.greet(sub)
	}
}

// WelcomeWS greets one WebSocket subscriber.
func (h *Hub) WelcomeWS(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.ws[conn]; ok {
		h.greet(sub)
	}
}

// greet runs with the hub lock held.
func (h *Hub) greet(sub subscriber) {
	payload, err := marshalEnvelope(welcomeEvent{Subscribers: len(h.tcp) + len(h.ws)})
	if err != nil {
		return
	}
	_ = sub.deliver(payload)
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.tcp) + len(h.ws)
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		TCPClients: len(h.tcp),
		WSClients:  len(h.ws),
		Dropped:    h.dropped,
	}
}
