package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Encounter struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoomId    string    `gorm:"index"`
	PatientId string    `gorm:"index"`
	Sections  datatypes.JSON
	CreatedAt time.Time
	UpdatedAt *time.Time
}
