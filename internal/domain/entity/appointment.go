package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidTransition is returned when a status change is not permitted by
// the lifecycle graph.
var ErrInvalidTransition = errors.New("invalid appointment status transition")

// Date and time formats used for appointment fields throughout the API.
const (
	DateFormat = "2006-01-02"
	TimeFormat = "15:04"
)

// LocationType distinguishes the fixed Resource Center from satellite
// outreach sites.
type LocationType string

const (
	LocationResourceCenter LocationType = "RESOURCE_CENTER"
	LocationOutreach       LocationType = "OUTREACH"
)

func (lt LocationType) Valid() bool {
	return lt == LocationResourceCenter || lt == LocationOutreach
}

// AgeGroup optionally sub-partitions slot capacity into under-15 and
// 15-and-over cohorts.
type AgeGroup string

const (
	AgeGroupUnder15 AgeGroup = "under15"
	AgeGroup15Plus  AgeGroup = "15plus"
)

// AppointmentStatus lifecycle:
//
//	PENDING → CONFIRMED → CHECKED_IN → CHECKED_OUT → COMPLETED
//	PENDING|CONFIRMED|RESCHEDULED → RESCHEDULED (repeat reschedule allowed)
//	PENDING|CONFIRMED|RESCHEDULED|CHECKED_IN → CANCELLED
//	CONFIRMED|RESCHEDULED|CHECKED_IN → NO_SHOW
//
// RESCHEDULED behaves like CONFIRMED for outgoing transitions. COMPLETED
// and CANCELLED are terminal; NO_SHOW and CHECKED_OUT only progress as
// listed above.
type AppointmentStatus string

const (
	StatusPending     AppointmentStatus = "PENDING"
	StatusConfirmed   AppointmentStatus = "CONFIRMED"
	StatusRescheduled AppointmentStatus = "RESCHEDULED"
	StatusCheckedIn   AppointmentStatus = "CHECKED_IN"
	StatusCheckedOut  AppointmentStatus = "CHECKED_OUT"
	StatusCompleted   AppointmentStatus = "COMPLETED"
	StatusCancelled   AppointmentStatus = "CANCELLED"
	StatusNoShow      AppointmentStatus = "NO_SHOW"
)

var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:     {StatusConfirmed, StatusRescheduled, StatusCancelled},
	StatusConfirmed:   {StatusCheckedIn, StatusRescheduled, StatusCancelled, StatusNoShow},
	StatusRescheduled: {StatusConfirmed, StatusCheckedIn, StatusRescheduled, StatusCancelled, StatusNoShow},
	StatusCheckedIn:   {StatusCheckedOut, StatusCancelled, StatusNoShow},
	StatusCheckedOut:  {StatusCompleted},
	StatusCompleted:   {},
	StatusCancelled:   {},
	StatusNoShow:      {},
}

func (s AppointmentStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Appointment represents a booked visit. Rows are never deleted;
// cancellation is a status transition.
type Appointment struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID             uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	AppointmentDate    time.Time         `gorm:"type:date;not null;index" json:"appointment_date"`
	AppointmentTime    string            `gorm:"type:varchar(5);not null" json:"appointment_time"`
	LocationType       LocationType      `gorm:"type:varchar(20);not null;index" json:"location_type"`
	Location           string            `gorm:"type:varchar(255)" json:"location"`
	OutreachLocationID *uuid.UUID        `gorm:"type:uuid;index" json:"outreach_location_id,omitempty"`
	Purpose            string            `gorm:"type:text;not null" json:"purpose"`
	Notes              *string           `gorm:"type:text" json:"notes,omitempty"`
	AgeGroup           *AgeGroup         `gorm:"type:varchar(10)" json:"age_group,omitempty"`
	Status             AppointmentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	ServiceFee         *decimal.Decimal  `gorm:"type:numeric(10,2)" json:"service_fee,omitempty"`
	CreatedAt          time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	OutreachLocation *OutreachLocation `gorm:"foreignKey:OutreachLocationID" json:"outreach_location,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// CanTransitionTo reports whether the lifecycle graph permits moving to
// newStatus from the appointment's current status.
func (a *Appointment) CanTransitionTo(newStatus AppointmentStatus) bool {
	for _, s := range allowedTransitions[a.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

// Transition applies a status change, failing with ErrInvalidTransition if
// the lifecycle graph forbids it. All status mutations go through here.
func (a *Appointment) Transition(newStatus AppointmentStatus) error {
	if !a.CanTransitionTo(newStatus) {
		return ErrInvalidTransition
	}
	a.Status = newStatus
	return nil
}

// CanReschedule reports whether the appointment may move to RESCHEDULED.
func (a *Appointment) CanReschedule() bool {
	return a.CanTransitionTo(StatusRescheduled)
}

// IsTerminal reports whether no transition leaves the current status.
func (a *Appointment) IsTerminal() bool {
	return len(allowedTransitions[a.Status]) == 0
}

func (a *Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}
