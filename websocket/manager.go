package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Event is pushed to browsers. Events with an empty Session go to every
// client; the rest only reach clients attached to that editor session.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
	Session string `json:"-"`
}

type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
	Time    int64  `json:"time"`
}

// TokenParser resolves the token a browser connects with to a session ID.
type TokenParser func(token string) (sessionID string, err error)

type Manager struct {
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	log        *zap.Logger
}

type Client struct {
	conn      *websocket.Conn
	sessionID string
	send      chan []byte
	manager   *Manager
}

func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run dispatches events until ctx is cancelled, then disconnects every
// client.
func (m *Manager) Run(ctx context.Context) error {
	defer func() {
		close(m.done)
		m.mu.Lock()
		for client := range m.clients {
			delete(m.clients, client)
			close(client.send)
		}
		m.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case client := <-m.register:
			m.mu.Lock()
			m.clients[client] = true
			n := len(m.clients)
			m.mu.Unlock()
			m.log.Debug("[WebSocket] client registered", zap.Int("clients", n), zap.String("sessionId", client.sessionID))

		case client := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				close(client.send)
			}
			n := len(m.clients)
			m.mu.Unlock()
			m.log.Debug("[WebSocket] client unregistered", zap.Int("clients", n))

		case ev := <-m.broadcast:
			m.dispatch(ev)
		}
	}
}

func (m *Manager) dispatch(ev Event) {
	msg, err := json.Marshal(envelope{Type: ev.Type, Payload: ev.Payload, Time: time.Now().Unix()})
	if err != nil {
		m.log.Error("[WebSocket] marshal event", zap.String("type", ev.Type), zap.Error(err))
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for client := range m.clients {
		if ev.Session != "" && client.sessionID != ev.Session {
			continue
		}
		select {
		case client.send <- msg:
		default:
			// Slow reader; drop it rather than stall everyone else.
			close(client.send)
			delete(m.clients, client)
		}
	}
}

// Publish queues ev for delivery. It returns immediately once the manager
// has stopped.
func (m *Manager) Publish(ev Event) {
	select {
	case m.broadcast <- ev:
	case <-m.done:
	}
}

func (m *Manager) ConnectedClients() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Handler upgrades the request. A "token" query parameter attaches the
// connection to an editor session; without one the client only receives
// landing events.
func (m *Manager) Handler(parse TokenParser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sessionID string
		if token := r.URL.Query().Get("token"); token != "" {
			id, err := parse(token)
			if err != nil {
				m.log.Info("[WebSocket] connection rejected", zap.Error(err))
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}
			sessionID = id
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			m.log.Warn("[WebSocket] upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			conn:      conn,
			sessionID: sessionID,
			send:      make(chan []byte, 256),
			manager:   m,
		}

		welcome, _ := json.Marshal(envelope{
			Type:    "connected",
			Payload: map[string]any{"sessionId": sessionID},
			Time:    time.Now().Unix(),
		})
		client.send <- welcome

		select {
		case m.register <- client:
		case <-m.done:
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.manager.unregister <- c:
		case <-c.manager.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.manager.log.Debug("[WebSocket] read error", zap.Error(err))
			}
			return
		}

		var data struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(message, &data); err != nil {
			continue
		}
		if data.Type == "ping" {
			c.sendPong()
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) sendPong() {
	msg, _ := json.Marshal(envelope{Type: "pong", Payload: map[string]any{}, Time: time.Now().Unix()})

	// send may already be closed by the manager.
	defer func() { _ = recover() }()
	select {
	case c.send <- msg:
	default:
	}
}
