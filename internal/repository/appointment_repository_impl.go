package repository

import (
	"errors"

	"disability-services-api/internal/domain/entity"
	domainRepo "disability-services-api/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Preload("OutreachLocation").Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Preload("OutreachLocation").
		Where("user_id = ?", userID).
		Order("appointment_date DESC, appointment_time DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindAll(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := db.Model(&entity.Appointment{})

	if filter != nil {
		if filter.StartDate != "" {
			query = query.Where("appointment_date >= ?", filter.StartDate)
		}
		if filter.EndDate != "" {
			query = query.Where("appointment_date <= ?", filter.EndDate)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.LocationType != "" {
			query = query.Where("location_type = ?", filter.LocationType)
		}
		if filter.County != "" {
			query = query.
				Joins("JOIN outreach_locations ON outreach_locations.id = appointments.outreach_location_id").
				Where("outreach_locations.county ILIKE ?", "%"+filter.County+"%")
		}
	}

	err := query.
		Preload("OutreachLocation").
		Order("appointment_date ASC, appointment_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) CountActiveForSlot(db *gorm.DB, date string, timeLabel string, locationType entity.LocationType, outreachLocationID *uuid.UUID, ageGroup *entity.AgeGroup) (int64, error) {
	query := db.Model(&entity.Appointment{}).
		Where("appointment_date = ? AND appointment_time = ? AND location_type = ? AND status NOT IN ?",
			date, timeLabel, locationType, []entity.AppointmentStatus{entity.StatusCancelled, entity.StatusNoShow})

	if outreachLocationID != nil {
		query = query.Where("outreach_location_id = ?", *outreachLocationID)
	}
	if ageGroup != nil {
		query = query.Where("age_group = ?", *ageGroup)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *appointmentRepository) FindActiveForDate(db *gorm.DB, date string, locationType entity.LocationType, outreachLocationID *uuid.UUID) ([]entity.Appointment, error) {
	query := db.Where("appointment_date = ? AND location_type = ? AND status NOT IN ?",
		date, locationType, []entity.AppointmentStatus{entity.StatusCancelled, entity.StatusNoShow})
	if outreachLocationID != nil {
		query = query.Where("outreach_location_id = ?", *outreachLocationID)
	}

	var appointments []entity.Appointment
	err := query.Order("appointment_time ASC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindActiveByUserAndSlot(db *gorm.DB, userID uuid.UUID, date string, timeLabel string) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Where("user_id = ? AND appointment_date = ? AND appointment_time = ? AND status NOT IN ?",
		userID, date, timeLabel, []entity.AppointmentStatus{entity.StatusCancelled, entity.StatusNoShow}).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

// UpdateSchedule moves an appointment to a new slot only if it is still in
// fromStatus. Affected rows 0 means a concurrent writer got there first.
func (r *appointmentRepository) UpdateSchedule(db *gorm.DB, id uuid.UUID, date string, timeLabel string, status entity.AppointmentStatus, fromStatus entity.AppointmentStatus) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(map[string]interface{}{
			"appointment_date": date,
			"appointment_time": timeLabel,
			"status":           status,
		})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus, fromStatus entity.AppointmentStatus) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Update("status", status)
	return result.RowsAffected, result.Error
}
