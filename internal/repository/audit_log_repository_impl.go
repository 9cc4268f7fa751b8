package repository

import (
	"disability-services-api/internal/domain/entity"
	domainRepo "disability-services-api/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type auditLogRepository struct{}

func NewAuditLogRepository() domainRepo.AuditLogRepository {
	return &auditLogRepository{}
}

func (r *auditLogRepository) Create(db *gorm.DB, log *entity.AuditLog) error {
	return db.Create(log).Error
}

func (r *auditLogRepository) FindRecent(db *gorm.DB, appointmentID *uuid.UUID, limit int) ([]entity.AuditLog, error) {
	query := db.Order("created_at DESC")
	if appointmentID != nil {
		query = query.Where("appointment_id = ?", *appointmentID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var logs []entity.AuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
