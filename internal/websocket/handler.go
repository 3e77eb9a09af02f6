package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs handles one websocket connection for a call room. The identity
// comes from the connect query parameters: roomId, role, patientId.
func ServeWs(hub *Hub, c *websocket.Conn, roomID, role, patientID string) {
	client := &Client{
		Hub:       hub,
		Conn:      c,
		ID:        uuid.New(),
		RoomID:    roomID,
		Role:      role,
		PatientID: patientID,
		Send:      make(chan []byte, 256),
	}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
