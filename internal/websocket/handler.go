package websocket

import (
	"context"

	"github.com/gofiber/websocket/v2"
)

// ServeWs registers the connection and serves it until the peer leaves.
func ServeWs(ctx context.Context, hub *Hub, c *websocket.Conn, userID string, turn TurnFunc) {
	client := &Client{Hub: hub, Conn: c, UserID: userID, Send: make(chan []byte, 64), turn: turn}
	client.Hub.register <- client

	go client.writePump()
	client.readPump(ctx)
}
