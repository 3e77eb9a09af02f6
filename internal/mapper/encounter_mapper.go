package mapper

import (
	"encoding/json"

	"video-consulta-sync/internal/entity"
	"video-consulta-sync/internal/model"

	"gorm.io/datatypes"
)

type EncounterMapper struct{}

func NewEncounterMapper() *EncounterMapper {
	return &EncounterMapper{}
}

func (m *EncounterMapper) ToModel(e *entity.Encounter) *model.Encounter {
	sections, _ := json.Marshal(e.Sections)
	return &model.Encounter{
		Id:        e.Id,
		RoomId:    e.RoomId,
		PatientId: e.PatientId,
		Sections:  datatypes.JSON(sections),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (m *EncounterMapper) ToEntity(mo *model.Encounter) *entity.Encounter {
	sections := make(map[string]entity.EncounterSection)
	if len(mo.Sections) > 0 {
		_ = json.Unmarshal(mo.Sections, &sections)
	}
	return &entity.Encounter{
		Id:        mo.Id,
		RoomId:    mo.RoomId,
		PatientId: mo.PatientId,
		Sections:  sections,
		CreatedAt: mo.CreatedAt,
		UpdatedAt: mo.UpdatedAt,
	}
}
