package mapper

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"video-consulta-sync/internal/entity"
)

func TestEncounterMapperRoundTrip(t *testing.T) {
	m := NewEncounterMapper()
	now := time.Now().Truncate(time.Second)

	src := &entity.Encounter{
		Id:        uuid.New(),
		RoomId:    "room-1",
		PatientId: "695bd5e7e2a3a01d24f01186",
		Sections: map[string]entity.EncounterSection{
			"motivoAtencion": {Contenido: "Cefalea de 3 dias.", Accion: "aceptar"},
			"diagnosticos":   {Accion: "rechazar"},
		},
		CreatedAt: now,
	}

	got := m.ToEntity(m.ToModel(src))
	assert.Equal(t, src.Id, got.Id)
	assert.Equal(t, src.RoomId, got.RoomId)
	assert.Equal(t, src.PatientId, got.PatientId)
	assert.Equal(t, src.Sections, got.Sections)
	assert.Nil(t, got.UpdatedAt)
}

func TestEncounterMapperEmptySections(t *testing.T) {
	m := NewEncounterMapper()

	got := m.ToEntity(m.ToModel(&entity.Encounter{Id: uuid.New(), RoomId: "room-2"}))
	assert.NotNil(t, got.Sections)
	assert.Empty(t, got.Sections)
}
