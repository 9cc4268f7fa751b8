package repository

import (
	"disability-services-api/internal/domain/entity"
	domainRepo "disability-services-api/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type smsNotificationRepository struct{}

func NewSmsNotificationRepository() domainRepo.SmsNotificationRepository {
	return &smsNotificationRepository{}
}

func (r *smsNotificationRepository) Create(db *gorm.DB, notification *entity.SmsNotification) error {
	return db.Create(notification).Error
}

func (r *smsNotificationRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) ([]entity.SmsNotification, error) {
	var notifications []entity.SmsNotification
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}
