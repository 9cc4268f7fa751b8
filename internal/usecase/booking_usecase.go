package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"disability-services-api/config"
	"disability-services-api/internal/converter"
	"disability-services-api/internal/delivery/dto"
	"disability-services-api/internal/delivery/http/middleware"
	"disability-services-api/internal/domain/entity"
	"disability-services-api/internal/domain/repository"
	"disability-services-api/internal/service"
	"disability-services-api/pkg/clock"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrEmptyPurpose        = errors.New("purpose must not be empty")
	ErrSlotUnavailable     = errors.New("requested slot is not available")
	ErrAlreadyBooked       = errors.New("you already have an appointment at this time")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrNotReschedulable    = errors.New("appointment can no longer be rescheduled")
	ErrNotOwned            = errors.New("appointment does not belong to you")
	ErrAlreadyCancelled    = errors.New("appointment is already cancelled")
)

type BookingUsecase interface {
	Book(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error)
	Reschedule(ctx context.Context, appointmentID uuid.UUID, req *dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error)
	Cancel(ctx context.Context, appointmentID uuid.UUID) error
	GetMyAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
}

// SlotQuota is the slice of the quota service the booking flows depend on.
type SlotQuota interface {
	Reserve(ctx context.Context, ref service.SlotRef, capacity int) error
	Restore(ctx context.Context, ref service.SlotRef) error
	Resync(ctx context.Context, ref service.SlotRef, capacity int) error
}

// AppointmentNotifier sends lifecycle SMS; delivery is fire-and-forget.
type AppointmentNotifier interface {
	NotifyAppointment(userID uuid.UUID, phone string, kind entity.SmsKind, appointment *entity.Appointment)
}

type bookingUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	locationRepo    repository.OutreachLocationRepository
	availability    AvailabilityUsecase
	slotQuota       SlotQuota
	smsService      AppointmentNotifier
	auditService    service.AuditService
	booking         config.BookingConfig
	clock           clock.Clock
}

func NewBookingUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	locationRepo repository.OutreachLocationRepository,
	availability AvailabilityUsecase,
	slotQuota SlotQuota,
	smsService AppointmentNotifier,
	auditService service.AuditService,
	booking config.BookingConfig,
	clk clock.Clock,
) BookingUsecase {
	return &bookingUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		locationRepo:    locationRepo,
		availability:    availability,
		slotQuota:       slotQuota,
		smsService:      smsService,
		auditService:    auditService,
		booking:         booking,
		clock:           clk,
	}
}

func (u *bookingUsecase) GetMyAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	appointments, err := u.appointmentRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for user %s: %+v", userID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// Book creates a new appointment.
//
// Validation is fail-fast in a fixed order: location type, outreach
// location, date, purpose, slot availability, duplicate booking. Only then
// is a spot reserved atomically in Redis; a failed DB insert compensates
// the reservation.
func (u *bookingUsecase) Book(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	// Step 1: location type must be recognized
	locationType := entity.LocationType(req.LocationType)
	if !locationType.Valid() {
		return nil, ErrInvalidLocation
	}

	// Step 2: outreach bookings need an active location
	var location *entity.OutreachLocation
	if locationType == entity.LocationOutreach {
		id, err := uuid.Parse(req.OutreachLocationID)
		if err != nil {
			return nil, ErrInvalidLocation
		}
		location, err = u.locationRepo.FindByID(u.db.WithContext(ctx), id)
		if err != nil {
			u.log.Warnf("Failed to find outreach location %s: %+v", id, err)
			return nil, err
		}
		if location == nil || !location.Active {
			return nil, ErrInvalidLocation
		}
	}

	// Step 3: date must not be in the past
	date, err := time.Parse(entity.DateFormat, req.Date)
	if err != nil || dateInPast(date, u.clock.Now()) {
		return nil, ErrInvalidDate
	}

	// Step 4: purpose is required
	purpose := strings.TrimSpace(req.Purpose)
	if purpose == "" {
		return nil, ErrEmptyPurpose
	}

	var ageGroup *entity.AgeGroup
	if req.AgeGroup != "" {
		g := entity.AgeGroup(req.AgeGroup)
		ageGroup = &g
	}

	// Step 5: the requested time must be available right now
	day, err := u.availability.DayAvailability(ctx, date, locationType, location, ageGroup)
	if err != nil {
		return nil, err
	}
	if !day.DateAvailable || !slotOpen(day.Slots, req.Time) {
		return nil, ErrSlotUnavailable
	}

	// Step 6: one appointment per user per time
	existing, err := u.appointmentRepo.FindActiveByUserAndSlot(u.db.WithContext(ctx), userID, req.Date, req.Time)
	if err != nil {
		u.log.Warnf("Failed to check existing appointment: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyBooked
	}

	// Atomic slot reservation. This closes the read-then-write race: of two
	// concurrent requests for the last spot, exactly one DECR succeeds.
	var outreachID *uuid.UUID
	if location != nil {
		outreachID = &location.ID
	}
	ref := service.NewSlotRef(u.booking, req.Date, req.Time, locationType, outreachID, ageGroup)
	capacity := slotCapacity(u.booking, locationType, location, ref.AgeGroup)
	if err := u.reserveWithRetry(ctx, ref, capacity); err != nil {
		return nil, err
	}

	appointment := &entity.Appointment{
		UserID:          userID,
		AppointmentDate: date,
		AppointmentTime: req.Time,
		LocationType:    locationType,
		Purpose:         purpose,
		AgeGroup:        ageGroup,
		Status:          entity.StatusPending,
	}
	if req.Notes != "" {
		notes := req.Notes
		appointment.Notes = &notes
	}
	if locationType == entity.LocationResourceCenter {
		appointment.Location = "Resource Center"
		fee := decimal.NewFromInt(u.booking.ResourceCenterFee)
		appointment.ServiceFee = &fee
	} else {
		appointment.OutreachLocationID = &location.ID
		appointment.Location = location.Name
	}

	if err := u.appointmentRepo.Create(u.db.WithContext(ctx), appointment); err != nil {
		u.log.Errorf("Failed to insert appointment, compensating slot reservation: %+v", err)
		u.compensateReservation(ref)
		return nil, err
	}

	full, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointment.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", appointment.ID, err)
		full = appointment
	}

	u.notify(ctx, userID, entity.SmsKindBooked, full)

	u.log.Infof("Appointment booked: id=%s, date=%s, time=%s, location=%s",
		appointment.ID, req.Date, req.Time, locationType)
	return converter.AppointmentToResponse(full), nil
}

// Reschedule moves an existing appointment to a new date/time at the same
// location. Location, purpose and fee are untouched; the freed slot's
// quota is restored.
func (u *bookingUsecase) Reschedule(ctx context.Context, appointmentID uuid.UUID, req *dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.UserID != userID {
		return nil, ErrNotOwned
	}
	if !appointment.CanReschedule() {
		return nil, ErrNotReschedulable
	}

	newDate, err := time.Parse(entity.DateFormat, req.NewDate)
	if err != nil || dateInPast(newDate, u.clock.Now()) {
		return nil, ErrInvalidDate
	}

	// Availability is checked against the appointment's existing location.
	location := appointment.OutreachLocation
	day, err := u.availability.DayAvailability(ctx, newDate, appointment.LocationType, location, appointment.AgeGroup)
	if err != nil {
		return nil, err
	}
	if !day.DateAvailable || !slotOpen(day.Slots, req.NewTime) {
		return nil, ErrSlotUnavailable
	}

	// The target time must not collide with another appointment of the same
	// user. Rescheduling onto the appointment's own slot is allowed.
	existing, err := u.appointmentRepo.FindActiveByUserAndSlot(u.db.WithContext(ctx), userID, req.NewDate, req.NewTime)
	if err != nil {
		u.log.Warnf("Failed to check existing appointment: %+v", err)
		return nil, err
	}
	if existing != nil && existing.ID != appointmentID {
		return nil, ErrAlreadyBooked
	}

	oldDate := appointment.AppointmentDate.Format(entity.DateFormat)
	oldTime := appointment.AppointmentTime
	oldRef := service.NewSlotRef(u.booking, oldDate, oldTime, appointment.LocationType, appointment.OutreachLocationID, appointment.AgeGroup)
	newRef := service.NewSlotRef(u.booking, req.NewDate, req.NewTime, appointment.LocationType, appointment.OutreachLocationID, appointment.AgeGroup)

	capacity := slotCapacity(u.booking, appointment.LocationType, location, newRef.AgeGroup)
	if err := u.reserveWithRetry(ctx, newRef, capacity); err != nil {
		return nil, err
	}

	affected, err := u.appointmentRepo.UpdateSchedule(
		u.db.WithContext(ctx), appointmentID,
		req.NewDate, req.NewTime,
		entity.StatusRescheduled, appointment.Status,
	)
	if err != nil {
		u.log.Errorf("Failed to reschedule appointment %s, compensating reservation: %+v", appointmentID, err)
		u.compensateReservation(newRef)
		return nil, err
	}
	if affected == 0 {
		// A concurrent writer changed the status between our read and the
		// conditional update. Give the spot back and report the state.
		u.compensateReservation(newRef)
		return nil, ErrNotReschedulable
	}

	// Free the old slot. Non-fatal: the startup re-sync repairs drift.
	syncCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := u.slotQuota.Restore(syncCtx, oldRef); err != nil {
		u.log.Warnf("Failed to restore quota for old slot of %s (non-fatal): %+v", appointmentID, err)
	}

	if err := u.auditService.LogReschedule(u.db.WithContext(ctx), &userID, appointmentID, oldDate, oldTime, req.NewDate, req.NewTime); err != nil {
		u.log.Warnf("Failed to audit reschedule of %s (non-fatal): %+v", appointmentID, err)
	}

	full, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", appointmentID, err)
		appointment.AppointmentDate = newDate
		appointment.AppointmentTime = req.NewTime
		appointment.Status = entity.StatusRescheduled
		full = appointment
	}

	u.notify(ctx, userID, entity.SmsKindRescheduled, full)

	u.log.Infof("Appointment rescheduled: id=%s, %s %s -> %s %s",
		appointmentID, oldDate, oldTime, req.NewDate, req.NewTime)
	return converter.AppointmentToResponse(full), nil
}

// Cancel transitions an appointment to CANCELLED and frees its slot. Rows
// are never deleted.
func (u *bookingUsecase) Cancel(ctx context.Context, appointmentID uuid.UUID) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}

	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}
	if appointment.UserID != userID {
		return ErrNotOwned
	}
	if appointment.IsCancelled() {
		return ErrAlreadyCancelled
	}
	if !appointment.CanTransitionTo(entity.StatusCancelled) {
		return entity.ErrInvalidTransition
	}

	affected, err := u.appointmentRepo.UpdateStatus(
		u.db.WithContext(ctx), appointmentID,
		entity.StatusCancelled, appointment.Status,
	)
	if err != nil {
		u.log.Warnf("Failed to cancel appointment %s: %+v", appointmentID, err)
		return err
	}
	if affected == 0 {
		return ErrAlreadyCancelled
	}

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
		u.log.Warnf("Failed to restore quota after cancelling %s (non-fatal): %+v", appointmentID, err)
	}

	appointment.Status = entity.StatusCancelled
	u.notify(ctx, userID, entity.SmsKindCancelled, appointment)

	u.log.Infof("Appointment cancelled: id=%s", appointmentID)
	return nil
}

// reserveWithRetry reserves a spot, re-syncing the quota key from the DB
// and retrying once when the reservation loses a race the availability
// read did not predict. A second failure means the slot is genuinely gone.
func (u *bookingUsecase) reserveWithRetry(ctx context.Context, ref service.SlotRef, capacity int) error {
	err := u.slotQuota.Reserve(ctx, ref, capacity)
	if err == nil {
		return nil
	}
	if !errors.Is(err, service.ErrSlotFull) {
		u.log.Warnf("Slot reservation failed for %s: %+v", ref.Key(), err)
		return err
	}

	if err := u.slotQuota.Resync(ctx, ref, capacity); err != nil {
		u.log.Warnf("Slot quota resync failed for %s: %+v", ref.Key(), err)
		return ErrSlotUnavailable
	}
	if err := u.slotQuota.Reserve(ctx, ref, capacity); err != nil {
		return ErrSlotUnavailable
	}
	return nil
}

// compensateReservation gives a reserved spot back after a failed write.
// Runs on a detached context so a cancelled request still compensates.
func (u *bookingUsecase) compensateReservation(ref service.SlotRef) {
	syncCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := u.slotQuota.Restore(syncCtx, ref); err != nil {
		u.log.Errorf("CRITICAL: failed to compensate slot reservation %s: %+v", ref.Key(), err)
	}
}

func (u *bookingUsecase) notify(ctx context.Context, userID uuid.UUID, kind entity.SmsKind, appointment *entity.Appointment) {
	phone, ok := middleware.GetUserPhoneFromContext(ctx)
	if !ok || phone == "" {
		u.log.Debugf("No phone number in context for user %s, skipping SMS", userID)
		return
	}
	u.smsService.NotifyAppointment(userID, phone, kind, appointment)
}

// slotOpen reports whether the time label appears in the day's slots with
// remaining capacity.
func slotOpen(slots []entity.TimeSlot, timeLabel string) bool {
	for _, s := range slots {
		if s.Time == timeLabel {
			return s.Available
		}
	}
	return false
}
