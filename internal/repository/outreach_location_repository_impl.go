package repository

import (
	"errors"

	"disability-services-api/internal/domain/entity"
	domainRepo "disability-services-api/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type outreachLocationRepository struct{}

func NewOutreachLocationRepository() domainRepo.OutreachLocationRepository {
	return &outreachLocationRepository{}
}

func (r *outreachLocationRepository) Create(db *gorm.DB, location *entity.OutreachLocation) error {
	return db.Create(location).Error
}

func (r *outreachLocationRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.OutreachLocation, error) {
	var location entity.OutreachLocation
	err := db.Where("id = ?", id).First(&location).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &location, nil
}

func (r *outreachLocationRepository) FindActive(db *gorm.DB) ([]entity.OutreachLocation, error) {
	var locations []entity.OutreachLocation
	err := db.Where("active = ?", true).Order("county ASC, name ASC").Find(&locations).Error
	if err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *outreachLocationRepository) FindAll(db *gorm.DB) ([]entity.OutreachLocation, error) {
	var locations []entity.OutreachLocation
	err := db.Order("county ASC, name ASC").Find(&locations).Error
	if err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *outreachLocationRepository) Update(db *gorm.DB, location *entity.OutreachLocation) error {
	return db.Save(location).Error
}

func (r *outreachLocationRepository) SetActive(db *gorm.DB, id uuid.UUID, active bool) (int64, error) {
	result := db.Model(&entity.OutreachLocation{}).
		Where("id = ?", id).
		Update("active", active)
	return result.RowsAffected, result.Error
}
