package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/yassinema02/vestiaire-sub000/internal/auth"
	"github.com/yassinema02/vestiaire-sub000/internal/pipeline"
)

// snapshotInterval is how often the progress stream pushes the session
// snapshot to a connected client.
const snapshotInterval = 3 * time.Second

// WebSocketHandler streams extraction pipeline progress to clients
type WebSocketHandler struct {
	authService *auth.Service
	manager     *pipeline.Manager
	upgrader    websocket.Upgrader
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(authService *auth.Service, manager *pipeline.Manager) *WebSocketHandler {
	return &WebSocketHandler{
		authService: authService,
		manager:     manager,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleExtractionProgress upgrades the connection and pushes a session
// snapshot immediately and then every few seconds until the client
// disconnects. Browsers cannot set headers on websocket dials, so the
// JWT arrives as a query parameter.
func (h *WebSocketHandler) HandleExtractionProgress(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return err
	}
	defer conn.Close()

	token := c.QueryParam("token")
	if token == "" {
		conn.WriteJSON(map[string]interface{}{"type": "error", "error": "Missing token"})
		return nil
	}
	claims, err := h.authService.ValidateToken(token)
	if err != nil {
		conn.WriteJSON(map[string]interface{}{"type": "error", "error": "Invalid token"})
		return nil
	}

	session := h.manager.Session(claims.UserID)
	log.Info().
		Str("user_id", claims.UserID.String()).
		Msg("Extraction progress stream connected")

	// Reads only matter for noticing the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.writeSnapshot(conn, session); err != nil {
		return nil
	}

	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			log.Info().
				Str("user_id", claims.UserID.String()).
				Msg("Extraction progress stream closed")
			return nil
		case <-ticker.C:
			if err := h.writeSnapshot(conn, session); err != nil {
				return nil
			}
		}
	}
}

func (h *WebSocketHandler) writeSnapshot(conn *websocket.Conn, session *pipeline.Session) error {
	return conn.WriteJSON(map[string]interface{}{
		"type":    "extraction_progress",
		"session": session.Snapshot(),
	})
}
