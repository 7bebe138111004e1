package notify

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WSHandler streams the session's toasts. sessionOf resolves the session of
// the upgrading request.
func WSHandler(hub *Hub, sessionOf func(*gin.Context) string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := sessionOf(c)
		if sid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		// the welcome frame goes out before the hub can write concurrently
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"welcome","transport":"websocket"}`))

		hub.Add(sid, ws)
		logger.Debug("toast stream connected", zap.String("session", sid))

		// incoming frames are ignored; reading detects the close
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.Remove(sid, ws)
		logger.Debug("toast stream disconnected", zap.String("session", sid))
	}
}
