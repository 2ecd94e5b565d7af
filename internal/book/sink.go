package book

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// EventSink is the matching core's only outward dependency (spec.md §2:
// "the core depends only on a narrow output interface"). Implementations
// must not block the caller of NewOrder for long, since the core has no
// suspension points of its own (spec.md §5).
type EventSink interface {
	OnTrade(Trade)
	OnReject(Reject)
}

// ChannelSink delivers events over a buffered channel to a consumer
// running on another goroutine. Sends are non-blocking: if the channel
// is full the event is dropped rather than stalling the single writer
// that owns the book.
type ChannelSink struct {
	Trades  chan Trade
	Rejects chan Reject
}

// NewChannelSink creates a sink with the given channel buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{
		Trades:  make(chan Trade, buffer),
		Rejects: make(chan Reject, buffer),
	}
}

func (c *ChannelSink) OnTrade(t Trade) {
	select {
	case c.Trades <- t:
	default:
	}
}

func (c *ChannelSink) OnReject(r Reject) {
	select {
	case c.Rejects <- r:
	default:
	}
}

// MultiSink fans out every event to each of its sinks in order.
type MultiSink struct {
	Sinks []EventSink
}

func (m MultiSink) OnTrade(t Trade) {
	for _, s := range m.Sinks {
		s.OnTrade(t)
	}
}

func (m MultiSink) OnReject(r Reject) {
	for _, s := range m.Sinks {
		s.OnReject(r)
	}
}

// wsMessage is the envelope broadcast to subscribed clients, mirroring
// the api/websocket hub's tagged-message convention.
type wsMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// WebSocketSink broadcasts trade and reject events to connected
// WebSocket clients as JSON. It keeps only the parts of the hub pattern
// the matching core actually needs: client registration and a broadcast
// fan-out; there is no ticker/depth buffering here since those are
// market-data-snapshot concerns, not something the core itself produces.
type WebSocketSink struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

const wsSendBuffer = 64

// NewWebSocketSink creates a sink with permissive origin checking,
// suitable for local development; callers running behind a real
// front-end should replace CheckOrigin before serving traffic.
func NewWebSocketSink() *WebSocketSink {
	return &WebSocketSink{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*wsClient]struct{}),
	}
}

// ServeHTTP upgrades the connection and registers it as a broadcast
// target until it disconnects.
func (s *WebSocketSink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &wsClient{conn: conn, send: make(chan []byte, wsSendBuffer)}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	go s.writePump(c)
}

func (s *WebSocketSink) writePump(c *wsClient) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		c.conn.Close()
	}()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (s *WebSocketSink) broadcast(v wsMessage) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

func (s *WebSocketSink) OnTrade(t Trade) {
	s.broadcast(wsMessage{Type: "trade", Data: t})
}

func (s *WebSocketSink) OnReject(r Reject) {
	s.broadcast(wsMessage{Type: "reject", Data: r})
}
