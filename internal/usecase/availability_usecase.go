package usecase

import (
	"context"
	"errors"
	"time"

	"disability-services-api/config"
	"disability-services-api/internal/converter"
	"disability-services-api/internal/delivery/dto"
	"disability-services-api/internal/domain/entity"
	"disability-services-api/internal/domain/repository"
	"disability-services-api/internal/service"
	"disability-services-api/pkg/clock"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrLocationNotFound = errors.New("outreach location not found")
	ErrInvalidLocation  = errors.New("unrecognized or inactive location")
	ErrInvalidDate      = errors.New("invalid or past appointment date")
)

type AvailabilityUsecase interface {
	GetAvailability(ctx context.Context, req *dto.AvailabilityRequest) (*dto.AvailabilityResponse, error)
	// DayAvailability answers availability for one date+location. Shared
	// with the booking flow, which re-checks the requested slot right
	// before reserving it.
	DayAvailability(ctx context.Context, date time.Time, locationType entity.LocationType, outreachLocation *entity.OutreachLocation, ageGroup *entity.AgeGroup) (*entity.DayAvailability, error)
}

type availabilityUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	locationRepo    repository.OutreachLocationRepository
	booking         config.BookingConfig
	clock           clock.Clock
}

func NewAvailabilityUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	locationRepo repository.OutreachLocationRepository,
	booking config.BookingConfig,
	clk clock.Clock,
) AvailabilityUsecase {
	return &availabilityUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		locationRepo:    locationRepo,
		booking:         booking,
		clock:           clk,
	}
}

func (u *availabilityUsecase) GetAvailability(ctx context.Context, req *dto.AvailabilityRequest) (*dto.AvailabilityResponse, error) {
	date, err := time.Parse(entity.DateFormat, req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	locationType := entity.LocationType(req.LocationType)
	if !locationType.Valid() {
		return nil, ErrInvalidLocation
	}

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
		if location == nil {
			return nil, ErrLocationNotFound
		}
	}

	var ageGroup *entity.AgeGroup
	if req.AgeGroup != "" {
		g := entity.AgeGroup(req.AgeGroup)
		ageGroup = &g
	}

	day, err := u.DayAvailability(ctx, date, locationType, location, ageGroup)
	if err != nil {
		return nil, err
	}

	return &dto.AvailabilityResponse{
		Date:          req.Date,
		DateAvailable: day.DateAvailable,
		Reason:        day.Reason,
		Slots:         converter.SlotsToResponses(day.Slots),
	}, nil
}

func (u *availabilityUsecase) DayAvailability(ctx context.Context, date time.Time, locationType entity.LocationType, outreachLocation *entity.OutreachLocation, ageGroup *entity.AgeGroup) (*entity.DayAvailability, error) {
	now := u.clock.Now()

	sched, ok := u.scheduleFor(locationType, outreachLocation)
	if !ok {
		return &entity.DayAvailability{
			DateAvailable: false,
			Reason:        "location is not open for booking",
			Slots:         []entity.TimeSlot{},
		}, nil
	}

	available, reason, nominal := eligibleSlots(date, sched, now)
	if !available {
		return &entity.DayAvailability{
			DateAvailable: false,
			Reason:        reason,
			Slots:         []entity.TimeSlot{},
		}, nil
	}

	var outreachID *uuid.UUID
	if outreachLocation != nil {
		outreachID = &outreachLocation.ID
	}

	dateLabel := date.Format(entity.DateFormat)
	booked, err := u.appointmentRepo.FindActiveForDate(u.db.WithContext(ctx), dateLabel, locationType, outreachID)
	if err != nil {
		u.log.Warnf("Failed to load appointments for %s: %+v", dateLabel, err)
		return nil, err
	}

	slots := make([]entity.TimeSlot, len(nominal))
	for i, timeLabel := range nominal {
		slots[i] = u.slotAvailability(timeLabel, locationType, outreachLocation, ageGroup, booked)
	}

	return &entity.DayAvailability{
		DateAvailable: true,
		Slots:         slots,
	}, nil
}

// scheduleFor resolves the weekly operating pattern. The second return is
// false when the location cannot take bookings at all (inactive outreach
// site or one with no schedule).
func (u *availabilityUsecase) scheduleFor(locationType entity.LocationType, location *entity.OutreachLocation) (weekSchedule, bool) {
	if locationType == entity.LocationResourceCenter {
		return weekSchedule{
			days:            weekdaySet(u.booking.ResourceCenterWeekdays),
			openTime:        u.booking.ResourceCenterOpen,
			closeTime:       u.booking.ResourceCenterClose,
			intervalMinutes: u.booking.SlotIntervalMinutes,
		}, true
	}

	if location == nil || !location.Active || !location.HasSchedule() {
		return weekSchedule{}, false
	}

	interval := location.SlotIntervalMinutes
	if interval <= 0 {
		interval = u.booking.SlotIntervalMinutes
	}
	return weekSchedule{
		days:            outreachWeekdaySet(location),
		openTime:        location.OpenTime,
		closeTime:       location.CloseTime,
		intervalMinutes: interval,
	}, true
}

// slotAvailability computes remaining spots for one slot from the day's
// booked appointments. With an age-group split configured at the Resource
// Center, a requested cohort is counted against its own sub-capacity; with
// no cohort requested the cohorts are summed and AvailableForAgeGroup is
// set when only one of them still has room.
func (u *availabilityUsecase) slotAvailability(timeLabel string, locationType entity.LocationType, location *entity.OutreachLocation, ageGroup *entity.AgeGroup, booked []entity.Appointment) entity.TimeSlot {
	split := service.CohortSplit(u.booking, locationType)

	if split && ageGroup == nil {
		under := slotCapacity(u.booking, locationType, location, ptrAgeGroup(entity.AgeGroupUnder15)) - countForSlot(booked, timeLabel, ptrAgeGroup(entity.AgeGroupUnder15))
		over := slotCapacity(u.booking, locationType, location, ptrAgeGroup(entity.AgeGroup15Plus)) - countForSlot(booked, timeLabel, ptrAgeGroup(entity.AgeGroup15Plus))
		if under < 0 {
			under = 0
		}
		if over < 0 {
			over = 0
		}

		slot := entity.TimeSlot{
			Time:      timeLabel,
			SlotCount: under + over,
			Available: under+over > 0,
		}
		if under > 0 && over == 0 {
			slot.AvailableForAgeGroup = ptrAgeGroup(entity.AgeGroupUnder15)
		}
		if over > 0 && under == 0 {
			slot.AvailableForAgeGroup = ptrAgeGroup(entity.AgeGroup15Plus)
		}
		return slot
	}

	var cohort *entity.AgeGroup
	capacity := slotCapacity(u.booking, locationType, location, nil)
	if split && ageGroup != nil {
		cohort = ageGroup
		capacity = slotCapacity(u.booking, locationType, location, ageGroup)
	}

	remaining := capacity - countForSlot(booked, timeLabel, cohort)
	if remaining < 0 {
		remaining = 0
	}

	return entity.TimeSlot{
		Time:      timeLabel,
		SlotCount: remaining,
		Available: remaining > 0,
	}
}

// countForSlot counts booked appointments at the time label, optionally
// restricted to one age-group cohort.
func countForSlot(booked []entity.Appointment, timeLabel string, ageGroup *entity.AgeGroup) int {
	count := 0
	for _, a := range booked {
		if a.AppointmentTime != timeLabel {
			continue
		}
		if ageGroup != nil && (a.AgeGroup == nil || *a.AgeGroup != *ageGroup) {
			continue
		}
		count++
	}
	return count
}

func ptrAgeGroup(g entity.AgeGroup) *entity.AgeGroup {
	return &g
}
