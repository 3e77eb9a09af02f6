package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"video-consulta-sync/internal/pkg/logger"
	internalWS "video-consulta-sync/internal/websocket"
)

// RoomHandler upgrades /ws requests into call-room websocket sessions.
type RoomHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewRoomHandler(hub *internalWS.Hub, log logger.ILogger) *RoomHandler {
	return &RoomHandler{
		hub:    hub,
		logger: log,
	}
}

func (h *RoomHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/ws", h.HandleWebSocket)
}

// HandleWebSocket validates the connect query parameters and hands the
// hijacked connection to the hub.
func (h *RoomHandler) HandleWebSocket(c *fiber.Ctx) error {
	roomID := c.Query("roomId")
	if roomID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "roomId is required"})
	}
	role := c.Query("role")
	patientID := c.Query("patientId")

	// Upgrade via Fiber WebSocket Middleware
	// We handle the upgrade here using the helper which automatically hijacks the connection
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("RoomHandler", "Starting WebSocket session", map[string]interface{}{
				"room_id": roomID,
				"role":    role,
			})
			internalWS.ServeWs(h.hub, conn, roomID, role, patientID)
			h.logger.Info("RoomHandler", "WebSocket session ended", map[string]interface{}{
				"room_id": roomID,
			})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}
