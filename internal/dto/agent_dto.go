package dto

// AgentRequest is the unit of work forwarded to the external agent: one
// process_with_agent payload stamped with the room it came from.
type AgentRequest struct {
	RoomID          string            `json:"room_id"`
	PatientID       string            `json:"patientId"`
	Transcription   string            `json:"transcription"`
	IsPartial       bool              `json:"isPartial"`
	CurrentSections map[string]string `json:"currentSections,omitempty"`
	ActiveSection   string            `json:"activeSection,omitempty"`
}

// AgentProposal is the agent's answer for a room. Error marks a failed run;
// the room then receives proposal_error instead of a proposal frame.
type AgentProposal struct {
	RoomID     string           `json:"room_id"`
	Resumen    string           `json:"resumen,omitempty"`
	Propuestas []AgentPropuesta `json:"propuestas,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// AgentPropuesta is one candidate section value.
type AgentPropuesta struct {
	Seccion   string `json:"seccion"`
	Contenido string `json:"contenido"`
}
