package service

import (
	"disability-services-api/internal/domain/entity"
	"disability-services-api/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuditService interface {
	LogStatusChange(tx *gorm.DB, actorID *uuid.UUID, appointmentID uuid.UUID, oldStatus, newStatus entity.AppointmentStatus) error
	LogReschedule(tx *gorm.DB, actorID *uuid.UUID, appointmentID uuid.UUID, oldDate, oldTime, newDate, newTime string) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) LogStatusChange(tx *gorm.DB, actorID *uuid.UUID, appointmentID uuid.UUID, oldStatus, newStatus entity.AppointmentStatus) error {
	auditLog := &entity.AuditLog{
		ActorID:       actorID,
		AppointmentID: &appointmentID,
		Action:        "appointment.status_change",
		Metadata: entity.JSON{
			"old_status": string(oldStatus),
			"new_status": string(newStatus),
		},
	}

	if err := s.auditRepo.Create(tx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}
	return nil
}

func (s *auditService) LogReschedule(tx *gorm.DB, actorID *uuid.UUID, appointmentID uuid.UUID, oldDate, oldTime, newDate, newTime string) error {
	auditLog := &entity.AuditLog{
		ActorID:       actorID,
		AppointmentID: &appointmentID,
		Action:        "appointment.reschedule",
		Metadata: entity.JSON{
			"old_date": oldDate,
			"old_time": oldTime,
			"new_date": newDate,
			"new_time": newTime,
		},
	}

	if err := s.auditRepo.Create(tx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}
	return nil
}
