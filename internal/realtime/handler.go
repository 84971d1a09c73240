package realtime

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Handler struct {
	hub    *Hub
	logger zerolog.Logger
}

func NewHandler(hub *Hub, logger zerolog.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

// Serve upgrades the connection and keeps it subscribed to the caller's
// club channel until the client goes away. The read loop only drains
// control frames; the hub pushes everything.
func (h *Handler) Serve(c *gin.Context) {
	clubID := c.GetString("club_id")
	if clubID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing club scope"},
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("club_id", clubID).Msg("websocket upgrade failed")
		return
	}

	h.hub.Subscribe(clubID, conn)
	defer h.hub.Unsubscribe(clubID, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
