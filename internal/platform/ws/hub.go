package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/thinkex/clusters-api/internal/events"
)

const (
	// writeWait bounds a single frame write to a subscriber.
	writeWait = 10 * time.Second

	// pongWait is how long a subscriber may stay silent before the
	// connection is considered dead.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBuffer is the per-subscriber outbound frame buffer. A subscriber
	// that falls this far behind starts losing frames.
	sendBuffer = 16
)

// ErrHubClosed is returned by Publish after Close.
var ErrHubClosed = errors.New("broadcast hub closed")

// client is one connected subscriber. Frames are written only by its
// writePump, so conn writes are never concurrent.
type client struct {
	subject string
	conn    *websocket.Conn
	send    chan []byte
}

// Hub fans change events out to connected websocket subscribers. It
// implements events.Publisher so the dispatcher can publish to it directly.
// Delivery is best-effort: a subscriber whose buffer is full misses frames.
type Hub struct {
	channel string
	logger  *slog.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub creates a Hub for the named broadcast channel.
func NewHub(channel string, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}

	return &Hub{
		channel: channel,
		logger:  log.With(slog.String("component", "broadcast_hub")),
		clients: make(map[*client]struct{}),
	}
}

// Publish encodes the event and queues it to every connected subscriber.
// Subscribers with a full buffer are skipped; the event is already committed
// and delivery here is not load-bearing.
func (h *Hub) Publish(ctx context.Context, event *events.ChangeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return ErrHubClosed
	}

	for c := range h.clients {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c.send <- data:
		default:
			h.logger.Warn("subscriber buffer full, skipping frame",
				slog.String("subscriber", c.subject),
				slog.String("event_id", event.ID.String()))
		}
	}

	return nil
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all subscribers and rejects further publishes.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}

	h.logger.Info("broadcast hub closed")
}

// add registers a subscriber. It reports false when the hub is closed.
func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}

	h.clients[c] = struct{}{}
	h.logger.Info("subscriber connected",
		slog.String("subscriber", c.subject),
		slog.Int("subscribers", len(h.clients)))
	return true
}

// remove deregisters a subscriber and closes its send channel.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}

	delete(h.clients, c)
	close(c.send)
	h.logger.Info("subscriber disconnected",
		slog.String("subscriber", c.subject),
		slog.Int("subscribers", len(h.clients)))
}

// writePump drains the client's send channel onto the connection and keeps
// the connection alive with periodic pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames. Subscribers are listen-only; the pump
// exists to surface disconnects and to service pong frames.
func (c *client) readPump(hub *Hub) {
	defer func() {
		hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
