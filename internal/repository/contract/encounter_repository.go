package contract

import (
	"context"

	"video-consulta-sync/internal/entity"
)

type EncounterRepository interface {
	Create(ctx context.Context, encounter *entity.Encounter) error
	Update(ctx context.Context, encounter *entity.Encounter) error
	GetByRoomId(ctx context.Context, roomId string) (*entity.Encounter, error)
	GetByPatientId(ctx context.Context, patientId string) ([]entity.Encounter, error)
}
