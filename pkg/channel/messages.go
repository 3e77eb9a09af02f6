package channel

import "encoding/json"

// Message types exchanged over the channel. Audio types live in pkg/audio
// since the encoder owns their emission.
const (
	TypeTranscription    = "transcription"
	TypeProcessWithAgent = "process_with_agent"
	TypeSectionAction    = "section_action"
	TypeProposal         = "proposal"
	TypeProposalError    = "proposal_error"
)

// Message is the wire envelope: every frame is {type, payload}.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// TranscriptionPayload carries one transcript segment in either direction.
type TranscriptionPayload struct {
	Text        string `json:"text"`
	IsPartial   bool   `json:"isPartial"`
	Participant string `json:"participant,omitempty"`
}

// ProcessWithAgentPayload asks the agent to re-evaluate proposals against
// the accumulated transcript and the current document snapshot.
type ProcessWithAgentPayload struct {
	PatientID       string            `json:"patientId"`
	Transcription   string            `json:"transcription"`
	IsPartial       bool              `json:"isPartial"`
	CurrentSections map[string]string `json:"currentSections,omitempty"`
	ActiveSection   string            `json:"activeSection,omitempty"`
}

// SectionActionPayload records a user decision on a section.
type SectionActionPayload struct {
	Seccion   string `json:"seccion"`
	Accion    string `json:"accion"`
	Contenido string `json:"contenido,omitempty"`
}

// Propuesta is one agent suggestion inside a proposal batch.
type Propuesta struct {
	Seccion   string `json:"seccion"`
	Contenido string `json:"contenido"`
}

// ProposalPayload is the inbound agent response: an optional running summary
// plus a batch of per-section candidates.
type ProposalPayload struct {
	Resumen    string      `json:"resumen,omitempty"`
	Propuestas []Propuesta `json:"propuestas"`
}
