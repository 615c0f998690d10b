// Package gateway pushes match state, events and buzzer audio to connected displays over WebSocket.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtside/go/internal/events"
)

// FrameType tags every text frame sent to a display
type FrameType string

const (
	FrameState FrameType = "state"
	FrameEvent FrameType = "event"
)

// Frame is the JSON envelope of a text message
type Frame struct {
	Type FrameType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Config holds configuration for display connections
type Config struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBuffer      int
	BroadcastBuffer int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConfig returns default WebSocket configuration
func DefaultConfig() Config {
	return Config{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		SendBuffer:      64,
		BroadcastBuffer: 256,
		CheckOrigin: func(r *http.Request) bool {
			// displays are on the scorer's LAN
			return true
		},
	}
}

type outbound struct {
	messageType int
	data        []byte
	// state frames are remembered and replayed to new connections
	state bool
}

// Hub manages display connections
type Hub struct {
	connections map[*Connection]struct{}
	lastState   []byte
	mu          sync.RWMutex

	upgrader    websocket.Upgrader
	config      Config
	broadcastCh chan outbound
}

// Connection is one connected display
type Connection struct {
	ID   string
	conn *websocket.Conn
	send chan outbound
	hub  *Hub

	ConnectedAt time.Time
}

// NewHub creates a hub. Start must run for broadcasts to be delivered.
func NewHub(config Config) *Hub {
	return &Hub{
		connections: make(map[*Connection]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan outbound, config.BroadcastBuffer),
	}
}

// Start delivers broadcasts until ctx is done, then closes every connection
func (h *Hub) Start(ctx context.Context) {
	log.Info().Msg("display hub started")
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			log.Info().Msg("display hub shutting down")
			return
		case msg := <-h.broadcastCh:
			h.handleBroadcast(msg)
		}
	}
}

// BroadcastState sends a state snapshot to every display. It never blocks.
func (h *Hub) BroadcastState(state any) {
	data, err := encodeFrame(FrameState, state)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal state for broadcast")
		return
	}
	h.enqueue(outbound{messageType: websocket.TextMessage, data: data, state: true})
}

// Publish forwards an event to every display
func (h *Hub) Publish(_ context.Context, event events.Event) error {
	data, err := encodeFrame(FrameEvent, event)
	if err != nil {
		return err
	}
	h.enqueue(outbound{messageType: websocket.TextMessage, data: data})
	return nil
}

// PlayWAV sends a WAV clip to every display as a binary message
func (h *Hub) PlayWAV(_ context.Context, wav []byte) error {
	h.enqueue(outbound{messageType: websocket.BinaryMessage, data: wav})
	return nil
}

// ConnectionCount returns the number of connected displays
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// ServeHTTP upgrades the request and registers the display
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written an error response
		log.Error().Err(err).Str("remote_addr", r.RemoteAddr).Msg("failed to upgrade WebSocket connection")
		return
	}

	c := &Connection{
		ID:          uuid.New().String(),
		conn:        conn,
		send:        make(chan outbound, h.config.SendBuffer),
		hub:         h,
		ConnectedAt: time.Now(),
	}
	h.register(c)

	go c.writePump()
	go c.readPump()

	log.Info().
		Str("connection_id", c.ID).
		Str("remote_addr", r.RemoteAddr).
		Msg("display connected")
}

func (h *Hub) enqueue(msg outbound) {
	select {
	case h.broadcastCh <- msg:
	default:
		log.Warn().Msg("broadcast channel full, dropping message")
	}
}

// register adds a connection and queues the latest state for it
func (h *Hub) register(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = struct{}{}
	if h.lastState != nil {
		c.send <- outbound{messageType: websocket.TextMessage, data: h.lastState}
	}
	log.Debug().
		Str("connection_id", c.ID).
		Int("total_connections", len(h.connections)).
		Msg("connection registered")
}

func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[c]; !ok {
		return
	}
	delete(h.connections, c)
	close(c.send)
	log.Info().Str("connection_id", c.ID).Msg("display disconnected")
}

func (h *Hub) handleBroadcast(msg outbound) {
	if msg.state {
		h.mu.Lock()
		h.lastState = msg.data
		h.mu.Unlock()
	}

	// sends never block, so the read lock keeps unregister from closing a channel mid-send
	var slow []*Connection
	h.mu.RLock()
	for c := range h.connections {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Warn().Str("connection_id", c.ID).Msg("connection send buffer full, closing connection")
		h.unregister(c)
		_ = c.conn.Close()
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	conns := make([]*Connection, 0, len(h.connections))
	for c := range h.connections {
		conns = append(conns, c)
	}
	h.mu.Unlock()
	for _, c := range conns {
		h.unregister(c)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(c.hub.config.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		c.hub.unregister(c)
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(msg.messageType, msg.data); err != nil {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to write message to WebSocket")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump only drains control frames; displays do not send commands.
func (c *Connection) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.hub.config.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("unexpected WebSocket close error")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
	}
}

func encodeFrame(typ FrameType, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s frame: %w", typ, err)
	}
	return json.Marshal(Frame{Type: typ, Data: data})
}
