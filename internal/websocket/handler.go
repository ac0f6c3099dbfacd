package websocket

import (
	"context"

	"github.com/gofiber/websocket/v2"
)

// ServeWs runs one chat session on an upgraded connection and returns when it closes.
func ServeWs(ctx context.Context, hub *Hub, conn *websocket.Conn, userID string, handler Handler) {
	client := newClient(hub, conn, userID, handler)
	if !hub.join(client) {
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump(ctx) // Run readPump in current goroutine (handler)
}
