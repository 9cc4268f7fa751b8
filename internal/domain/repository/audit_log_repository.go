package repository

import (
	"disability-services-api/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Create(db *gorm.DB, log *entity.AuditLog) error
	FindRecent(db *gorm.DB, appointmentID *uuid.UUID, limit int) ([]entity.AuditLog, error)
}
