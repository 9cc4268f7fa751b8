package repository

import (
	"disability-services-api/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OutreachLocationRepository interface {
	Create(db *gorm.DB, location *entity.OutreachLocation) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.OutreachLocation, error)
	FindActive(db *gorm.DB) ([]entity.OutreachLocation, error)
	FindAll(db *gorm.DB) ([]entity.OutreachLocation, error)
	Update(db *gorm.DB, location *entity.OutreachLocation) error
	SetActive(db *gorm.DB, id uuid.UUID, active bool) (int64, error)
}
