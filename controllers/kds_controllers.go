package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/restaurant-dashboard/kds"
)

// KDSHandler -> endpoint WebSocket untuk semua dashboard.
// checkOrigin nil berarti origin harus sama dengan host.
func KDSHandler(hub *kds.Hub, checkOrigin func(r *http.Request) bool) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}

	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		client := hub.RegisterClient(ws)

		// Baca pesan sampai client putus; hanya pong yang berarti
		for {
			_, raw, err := ws.ReadMessage()
			if err != nil {
				break
			}
			hub.HandleMessage(client, raw)
		}

		hub.UnregisterClient(client)
	}
}
