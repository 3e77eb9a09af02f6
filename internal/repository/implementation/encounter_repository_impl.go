package implementation

import (
	"context"
	"errors"

	"video-consulta-sync/internal/entity"
	"video-consulta-sync/internal/mapper"
	"video-consulta-sync/internal/model"
	"video-consulta-sync/internal/repository/contract"

	"gorm.io/gorm"
)

type EncounterRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EncounterMapper
}

func NewEncounterRepository(db *gorm.DB) contract.EncounterRepository {
	return &EncounterRepositoryImpl{
		db:     db,
		mapper: mapper.NewEncounterMapper(),
	}
}

func (r *EncounterRepositoryImpl) Create(ctx context.Context, encounter *entity.Encounter) error {
	m := r.mapper.ToModel(encounter)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*encounter = *r.mapper.ToEntity(m)
	return nil
}

func (r *EncounterRepositoryImpl) Update(ctx context.Context, encounter *entity.Encounter) error {
	m := r.mapper.ToModel(encounter)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*encounter = *r.mapper.ToEntity(m)
	return nil
}

func (r *EncounterRepositoryImpl) GetByRoomId(ctx context.Context, roomId string) (*entity.Encounter, error) {
	var m model.Encounter
	err := r.db.WithContext(ctx).Where("room_id = ?", roomId).Order("created_at DESC").First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *EncounterRepositoryImpl) GetByPatientId(ctx context.Context, patientId string) ([]entity.Encounter, error) {
	var models []model.Encounter
	err := r.db.WithContext(ctx).Where("patient_id = ?", patientId).Order("created_at DESC").Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]entity.Encounter, 0, len(models))
	for i := range models {
		out = append(out, *r.mapper.ToEntity(&models[i]))
	}
	return out, nil
}
