package repository

import (
	"disability-services-api/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SmsNotificationRepository interface {
	Create(db *gorm.DB, notification *entity.SmsNotification) error
	FindByUserID(db *gorm.DB, userID uuid.UUID) ([]entity.SmsNotification, error)
}
