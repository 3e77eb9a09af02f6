package entity

import (
	"time"

	"github.com/google/uuid"
)

// Encounter is one consult's persisted clinical-note record: the room it
// happened in, the patient, and the latest per-section contents keyed by
// section id.
type Encounter struct {
	Id        uuid.UUID
	RoomId    string
	PatientId string
	Sections  map[string]EncounterSection
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// EncounterSection is the stored outcome of one section.
type EncounterSection struct {
	Contenido string `json:"contenido"`
	Accion    string `json:"accion"`
}
