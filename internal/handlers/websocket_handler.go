package handlers

import (
	"log"
	"net/http"
	"slices"

	"github.com/bpadilla17/radladder-game/internal/game"
	"github.com/bpadilla17/radladder-game/internal/middleware"
	ws "github.com/bpadilla17/radladder-game/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type SessionLookup interface {
	Session(sessionID string) (*game.Session, error)
}

type WebSocketHandler struct {
	hub      *ws.Hub
	games    SessionLookup
	upgrader websocket.Upgrader
}

func NewWebSocketHandler(hub *ws.Hub, games SessionLookup, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:   hub,
		games: games,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// HandleWebSocket expects middleware.SessionAuth to have validated the
// token query parameter.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	sessionID := c.GetString(middleware.ContextSessionID)
	playerName := c.GetString(middleware.ContextPlayerName)

	if _, err := h.games.Session(sessionID); err != nil {
		writeGameError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := ws.NewClient(h.hub, conn, sessionID, playerName)
	if !h.hub.Attach(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
	}
}
