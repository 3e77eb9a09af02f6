package store

import "time"

// AgentState mirrors the engine-side agent status for a room.
const (
	AgentIdle      = "IDLE"
	AgentListening = "LISTENING"
	AgentConnected = "CONNECTED"
)

// Room is the active call-room state kept in memory while the call runs.
type Room struct {
	ID        string `json:"id"` // roomId from the connect query
	PatientID string `json:"patient_id"`

	// Agent round-trip tracking
	AgentState   string    `json:"agent_state"`
	LastDispatch time.Time `json:"last_dispatch"`

	// Last known active section, as reported in process_with_agent
	ActiveSection string `json:"active_section"`

	// Streaming flags per role
	AudioStreaming map[string]bool `json:"audio_streaming"`
}

func NewRoom(id, patientID string) *Room {
	return &Room{
		ID:             id,
		PatientID:      patientID,
		AgentState:     AgentIdle,
		AudioStreaming: make(map[string]bool),
	}
}
