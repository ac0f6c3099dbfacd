package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

// Handler serves one inbound text message. emit queues a JSON frame and reports false
// once the socket can no longer be written, at which point the handler should stop.
type Handler func(ctx context.Context, message []byte, emit func(frame interface{}) bool)

// Client is a middleman between the websocket connection and the chat handler.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	SessionID uuid.UUID

	// Empty for anonymous sessions
	UserID string

	// Buffered channel of outbound frames.
	Send chan []byte

	handler Handler

	// closed when readPump exits
	quit chan struct{}
	// closed when writePump exits
	gone chan struct{}
}

func newClient(hub *Hub, conn *websocket.Conn, userID string, handler Handler) *Client {
	return &Client{
		Hub:       hub,
		Conn:      conn,
		SessionID: uuid.New(),
		UserID:    userID,
		Send:      make(chan []byte, sendBuffer),
		handler:   handler,
		quit:      make(chan struct{}),
		gone:      make(chan struct{}),
	}
}

func (c *Client) emit(frame interface{}) bool {
	data, err := json.Marshal(frame)
	if err != nil {
		return false
	}
	select {
	case c.Send <- data:
		return true
	case <-c.gone:
		return false
	}
}

// readPump handles one chat request per text message, sequentially.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.Hub.leave(c)
		close(c.quit)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.Hub.logger.Warn("Client", "Unexpected socket close", map[string]interface{}{"session_id": c.SessionID, "error": err.Error()})
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		c.handler(ctx, message, c.emit)
		// a long answer must not trip the read deadline
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

// writePump writes queued frames, one websocket message each, and keeps the peer alive.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.gone)
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.quit:
			return
		}
	}
}
