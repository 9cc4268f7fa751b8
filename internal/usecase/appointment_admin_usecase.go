package usecase

import (
	"context"
	"errors"
	"time"

	"disability-services-api/config"
	"disability-services-api/internal/converter"
	"disability-services-api/internal/delivery/dto"
	"disability-services-api/internal/delivery/http/middleware"
	"disability-services-api/internal/domain/entity"
	"disability-services-api/internal/domain/repository"
	"disability-services-api/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrStatusConflict = errors.New("appointment status changed concurrently, retry")

type AppointmentAdminUsecase interface {
	UpdateStatus(ctx context.Context, appointmentID uuid.UUID, req *dto.UpdateStatusRequest) (*dto.AppointmentResponse, error)
	FindAll(ctx context.Context, filter *entity.AppointmentFilter) (*dto.AppointmentListResponse, error)
	FindAuditLogs(ctx context.Context, appointmentID *uuid.UUID, limit int) ([]dto.AuditLogResponse, error)
}

type appointmentAdminUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	auditRepo       repository.AuditLogRepository
	slotQuota       SlotQuota
	auditService    service.AuditService
	booking         config.BookingConfig
}

func NewAppointmentAdminUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	auditRepo repository.AuditLogRepository,
	slotQuota SlotQuota,
	auditService service.AuditService,
	booking config.BookingConfig,
) AppointmentAdminUsecase {
	return &appointmentAdminUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		auditRepo:       auditRepo,
		slotQuota:       slotQuota,
		auditService:    auditService,
		booking:         booking,
	}
}

// UpdateStatus moves an appointment along its lifecycle. The transition
// table is the single source of truth; an admin cannot skip states or
// revive a terminal appointment.
func (u *appointmentAdminUsecase) UpdateStatus(ctx context.Context, appointmentID uuid.UUID, req *dto.UpdateStatusRequest) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	newStatus := entity.AppointmentStatus(req.Status)
	oldStatus := appointment.Status
	if !appointment.CanTransitionTo(newStatus) {
		return nil, entity.ErrInvalidTransition
	}

	affected, err := u.appointmentRepo.UpdateStatus(u.db.WithContext(ctx), appointmentID, newStatus, oldStatus)
	if err != nil {
		u.log.Warnf("Failed to update status of %s: %+v", appointmentID, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrStatusConflict
	}

	// Cancellations and no-shows free the slot for someone else.
	if newStatus == entity.StatusCancelled || newStatus == entity.StatusNoShow {
		ref := service.NewSlotRef(
			u.booking,
			appointment.AppointmentDate.Format(entity.DateFormat),
			appointment.AppointmentTime,
			appointment.LocationType,
			appointment.OutreachLocationID,
			appointment.AgeGroup,
		)
		syncCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := u.slotQuota.Restore(syncCtx, ref); err != nil {
			u.log.Warnf("Failed to restore quota after %s -> %s (non-fatal): %+v", appointmentID, newStatus, err)
		}
	}

	var actorID *uuid.UUID
	if id, ok := middleware.GetUserIDFromContext(ctx); ok {
		actorID = &id
	}
	if err := u.auditService.LogStatusChange(u.db.WithContext(ctx), actorID, appointmentID, oldStatus, newStatus); err != nil {
		u.log.Warnf("Failed to audit status change of %s (non-fatal): %+v", appointmentID, err)
	}

	appointment.Status = newStatus
	u.log.Infof("Appointment status updated: id=%s, %s -> %s", appointmentID, oldStatus, newStatus)
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentAdminUsecase) FindAll(ctx context.Context, filter *entity.AppointmentFilter) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentAdminUsecase) FindAuditLogs(ctx context.Context, appointmentID *uuid.UUID, limit int) ([]dto.AuditLogResponse, error) {
	logs, err := u.auditRepo.FindRecent(u.db.WithContext(ctx), appointmentID, limit)
	if err != nil {
		u.log.Warnf("Failed to list audit logs: %+v", err)
		return nil, err
	}
	return converter.AuditLogsToResponses(logs), nil
}
