package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jcallahan/tastemap/internal/session"
)

const (
	wsWriteWait  = 5 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10

	// Browser clients never send application data; the read pump only
	// consumes control frames.
	wsReadLimit = 512

	wsClientBuffer = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API already allows cross-origin use for frontend development.
	CheckOrigin: func(*http.Request) bool { return true },
}

// hub fans session updates out to every connected browser session, so an edit
// made in one tab shows up live in all the others.
type hub struct {
	session    *session.Session
	logger     *slog.Logger
	register   chan *wsClient
	unregister chan *wsClient
	clients    map[*wsClient]bool
}

func newHub(sess *session.Session, logger *slog.Logger) *hub {
	return &hub{
		session:    sess,
		logger:     logger,
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		clients:    make(map[*wsClient]bool),
	}
}

func (h *hub) run(ctx context.Context) {
	updates, cancel := h.session.Watch()
	defer cancel()

	for {
		select {
		case c := <-h.register:
			h.clients[c] = true

		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}

		case u, ok := <-updates:
			if !ok {
				// Session closed; nothing more will ever arrive.
				updates = nil
				continue
			}
			payload, err := json.Marshal(u)
			if err != nil {
				h.logger.Error("failed to encode update", "error", err)
				continue
			}
			for c := range h.clients {
				select {
				case c.send <- payload:
				default:
					// Client can't keep up; drop it and let it reconnect.
					delete(h.clients, c)
					close(c.send)
				}
			}

		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return
		}
	}
}

type wsClient struct {
	hub  *hub
	conn *websocket.Conn
	send chan []byte
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &wsClient{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, wsClientBuffer),
	}

	// Seed the new session with the current sync status before any live
	// updates arrive.
	if payload, err := json.Marshal(session.Update{Status: s.session.Status()}); err == nil {
		c.send <- payload
	}

	s.hub.register <- c
	go c.writePump()
	go c.readPump()
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(wsReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
