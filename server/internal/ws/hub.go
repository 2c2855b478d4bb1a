package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quickcalc/quickcalc/pkg/types"
	"github.com/quickcalc/quickcalc/server/internal/api"
	"github.com/quickcalc/quickcalc/server/internal/metrics"
	"github.com/quickcalc/quickcalc/server/internal/store"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16

	// publishBufSize is the depth of the queue between Publish and Run.
	publishBufSize = 64

	// maxFrameSize bounds a single client frame; input frames are tiny.
	maxFrameSize = 512

	// PathPrefix is where the hub is mounted.
	PathPrefix = "/ws/sessions/"

	// EventCalculator is the event name of every message the hub sends.
	EventCalculator = "calculator"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Allow all origins; callers should apply CORS at the reverse-proxy level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope sent to clients.
type Message struct {
	Event string               `json:"event"`
	Data  types.CalculatorView `json:"data"`
	Error string               `json:"error,omitempty"`
}

type publication struct {
	sessionID string
	data      []byte
}

// Hub manages WebSocket client connections grouped by session and fans out
// calculator views to every client of a session.
type Hub struct {
	sessions *store.Store
	metrics  *metrics.Registry
	publish  chan publication

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

// client represents one connected WebSocket client.
type client struct {
	sessionID string
	conn      *websocket.Conn
	send      chan []byte
}

// New creates a Hub that applies client input to sessions in st. Input and
// error counts go to m; nil uses a private registry.
func New(st *store.Store, m *metrics.Registry) *Hub {
	if m == nil {
		m = metrics.New()
	}
	return &Hub{
		sessions: st,
		metrics:  m,
		publish:  make(chan publication, publishBufSize),
		clients:  make(map[string]map[*client]struct{}),
	}
}

// Run fans out published views until ctx is cancelled, then closes all
// active connections.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case p := <-h.publish:
			h.broadcast(p)
		}
	}
}

// Publish queues view (and the input error, if any) for every client of the
// session. It never blocks: when the queue is full the view is dropped, and
// the next one supersedes it anyway.
func (h *Hub) Publish(sessionID string, view types.CalculatorView, err error) {
	data, merr := buildMessage(view, err)
	if merr != nil {
		slog.Error("ws: encode message", "err", merr)
		return
	}
	select {
	case h.publish <- publication{sessionID: sessionID, data: data}:
	default:
		slog.Warn("ws: publish queue full, view dropped", "session", sessionID)
	}
}

// ServeHTTP upgrades GET /ws/sessions/{id} to WebSocket and serves the client.
// It sends the session's current view immediately on connect, then applies
// every input frame the client sends. Blocks until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, PathPrefix)
	sess, ok := h.sessions.Get(id)
	if id == "" || !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &client{
		sessionID: id,
		conn:      conn,
		send:      make(chan []byte, sendBufSize),
	}
	// Queue the current view before registering so the client renders right
	// away and sees it ahead of any published update.
	if data, err := buildMessage(sess.View(), nil); err == nil {
		c.send <- data
	}
	h.register(c)
	defer h.unregister(c)
	slog.Debug("ws: client connected", "session", id, "remote", r.RemoteAddr)

	go c.writePump()
	h.readPump(c) // blocks until connection closes
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// CloseSession disconnects every client of the session. The server calls it
// when a session is evicted.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[sessionID] {
		close(c.send)
	}
	delete(h.clients, sessionID)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(c *client) {
	h.mu.Lock()
	set, ok := h.clients[c.sessionID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.sessionID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if set, ok := h.clients[c.sessionID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.clients, c.sessionID)
		}
	}
	h.mu.Unlock()
}

// broadcast sends under the read lock so no send channel can be closed
// mid-send; slow clients are dropped afterwards.
func (h *Hub) broadcast(p publication) {
	var slow []*client
	h.mu.RLock()
	for c := range h.clients[p.sessionID] {
		select {
		case c.send <- p.data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		// Client's outgoing buffer is full; disconnect it.
		h.unregister(c)
	}
}

// reply sends data to c alone, if it is still registered.
func (h *Hub) reply(c *client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c.sessionID][c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.clients {
		for c := range set {
			close(c.send)
		}
		delete(h.clients, id)
	}
}

func buildMessage(view types.CalculatorView, err error) ([]byte, error) {
	msg := Message{Event: EventCalculator, Data: view}
	if err != nil {
		msg.Error = err.Error()
	}
	return json.Marshal(msg)
}

// writePump drains the client's send channel and forwards messages to the
// WebSocket connection. It also sends periodic ping frames. Runs in its own
// goroutine per client.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Channel was closed (hub is shutting down or client removed).
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads input frames, applies them to the client's session and
// publishes the result to every client of the session. Control frames (pong,
// close) are handled by the connection. Blocks until the connection closes
// or the session is gone.
func (h *Hub) readPump(c *client) {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		sess, ok := h.sessions.Get(c.sessionID)
		if !ok {
			slog.Debug("ws: session gone, closing client", "session", c.sessionID)
			break
		}

		var req api.InputRequest
		if err := json.Unmarshal(frame, &req); err != nil {
			if data, err := buildMessage(sess.View(), errInvalidFrame); err == nil {
				h.reply(c, data)
			}
			continue
		}

		view, err := api.ApplyInput(sess, req, h.metrics, h.sessions.Now())
		h.Publish(c.sessionID, view, err)
	}
}
