package repository

import (
	"disability-services-api/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindByUserID(db *gorm.DB, userID uuid.UUID) ([]entity.Appointment, error)
	FindAll(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error)
	// CountActiveForSlot counts non-cancelled appointments occupying the
	// slot. A nil ageGroup counts the whole slot; otherwise only the cohort.
	CountActiveForSlot(db *gorm.DB, date string, timeLabel string, locationType entity.LocationType, outreachLocationID *uuid.UUID, ageGroup *entity.AgeGroup) (int64, error)
	// FindActiveForDate returns all non-cancelled appointments at the
	// location on the date, for in-memory per-slot counting.
	FindActiveForDate(db *gorm.DB, date string, locationType entity.LocationType, outreachLocationID *uuid.UUID) ([]entity.Appointment, error)
	// FindActiveByUserAndSlot returns the user's non-cancelled appointment at
	// date+time, nil when none exists.
	FindActiveByUserAndSlot(db *gorm.DB, userID uuid.UUID, date string, timeLabel string) (*entity.Appointment, error)
	// UpdateSchedule moves the appointment to a new date/time/status in one
	// statement. Returns affected rows so callers can detect lost races.
	UpdateSchedule(db *gorm.DB, id uuid.UUID, date string, timeLabel string, status entity.AppointmentStatus, fromStatus entity.AppointmentStatus) (int64, error)
	UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus, fromStatus entity.AppointmentStatus) (int64, error)
}
