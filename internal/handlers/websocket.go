package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/thereayou/planner-collab/internal/middleware"
	ws "github.com/thereayou/planner-collab/internal/websocket"
)

// WebSocketHandler upgrades authenticated requests and hands the socket to the manager.
type WebSocketHandler struct {
	manager    *ws.Manager
	sendBuffer int
	upgrader   websocket.Upgrader
	log        *zap.Logger
}

// NewWebSocketHandler builds the handler. An empty origins list accepts any origin.
func NewWebSocketHandler(manager *ws.Manager, origins []string, sendBuffer int, log *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		manager:    manager,
		sendBuffer: sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(origins),
		},
		log: log.Named("ws"),
	}
}

func checkOrigin(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(origins) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		// non-browser clients send no Origin
		return origin == "" || lo.Contains(origins, origin)
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID, ok := c.Get(middleware.UserIDKey)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Debug("upgrade failed", zap.Error(err))
		return
	}

	client := ws.NewClient(conn, h.sendBuffer, h.log)
	connection := h.manager.Connect(userID.(uint), client)

	go client.WritePump()
	go client.ReadPump(
		func(raw []byte) { h.manager.HandleMessage(connection, raw) },
		func() { h.manager.Disconnect(connection) },
	)
}
