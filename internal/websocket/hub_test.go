package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-consulta-sync/internal/pkg/logger"
)

type recordingHandler struct {
	disconnects chan *Client
}

func (r *recordingHandler) HandleConnect(*Client)           {}
func (r *recordingHandler) HandleFrame(*Client, []byte)     {}
func (r *recordingHandler) HandleDisconnect(client *Client) { r.disconnects <- client }

func newHubClient(hub *Hub, roomID, role string, buffer int) *Client {
	return &Client{
		Hub:    hub,
		ID:     uuid.New(),
		RoomID: roomID,
		Role:   role,
		Send:   make(chan []byte, buffer),
	}
}

func TestBroadcastReachesRoomExceptSender(t *testing.T) {
	hub := NewHub(nil, logger.Nop{})
	handler := &recordingHandler{disconnects: make(chan *Client, 2)}
	hub.SetHandler(handler)
	go hub.Run()

	medico := newHubClient(hub, "room-1", "medico", 8)
	paciente := newHubClient(hub, "room-1", "paciente", 8)
	hub.register <- medico
	hub.register <- paciente
	require.Eventually(t, func() bool { return hub.RoomSize("room-1") == 2 }, time.Second, 5*time.Millisecond)

	hub.BroadcastToRoom("room-1", []byte(`{"type":"transcription"}`), medico)

	select {
	case data := <-paciente.Send:
		assert.JSONEq(t, `{"type":"transcription"}`, string(data))
	case <-time.After(time.Second):
		t.Fatal("frame never delivered to the other party")
	}
	assert.Empty(t, medico.Send)
}

func TestSlowClientDroppedWithoutDoubleClose(t *testing.T) {
	hub := NewHub(nil, logger.Nop{})
	handler := &recordingHandler{disconnects: make(chan *Client, 2)}
	hub.SetHandler(handler)
	go hub.Run()

	slow := newHubClient(hub, "room-2", "paciente", 1)
	fast := newHubClient(hub, "room-2", "medico", 8)
	hub.register <- slow
	hub.register <- fast
	require.Eventually(t, func() bool { return hub.RoomSize("room-2") == 2 }, time.Second, 5*time.Millisecond)

	// Saturate the slow client so the next broadcast overflows it.
	slow.Send <- []byte("backlog")
	hub.BroadcastToRoom("room-2", []byte("frame-1"), nil)

	select {
	case c := <-handler.disconnects:
		assert.Same(t, slow, c)
	case <-time.After(time.Second):
		t.Fatal("overflowing client was never unregistered")
	}
	require.Eventually(t, func() bool { return hub.RoomSize("room-2") == 1 }, time.Second, 5*time.Millisecond)

	// The room keeps working for the remaining client.
	hub.BroadcastToRoom("room-2", []byte("frame-2"), nil)
	assert.Equal(t, []byte("frame-1"), <-fast.Send)
	assert.Equal(t, []byte("frame-2"), <-fast.Send)

	// Send was closed exactly once, after draining the backlog.
	assert.Equal(t, []byte("backlog"), <-slow.Send)
	_, open := <-slow.Send
	assert.False(t, open)
}
