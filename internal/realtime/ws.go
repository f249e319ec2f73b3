package realtime

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // OK for demo; restrict in production
	},
}

// WSHandler upgrades the request and attaches the socket to the hub.
// The feed is one-way: incoming frames are read and discarded so the
// connection stays healthy.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[ws] upgrade failed: %v", err)
			return
		}
		defer hub.RemoveWS(ws)

		hub.AddWS(ws)
		hub.WelcomeWS(ws)
		log.Printf("[ws] client connected: %s", ws.RemoteAddr())

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				log.Printf("[ws] client disconnected: %s", ws.RemoteAddr())
				return
			}
		}
	}
}
