package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// OutreachLocation is a satellite site with its own weekly schedule.
// Maintained by admins; the booking core reads it to decide eligibility.
type OutreachLocation struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name                string    `gorm:"type:varchar(255);not null" json:"name"`
	County              string    `gorm:"type:varchar(100);not null;index" json:"county"`
	SubCounty           *string   `gorm:"type:varchar(100)" json:"sub_county,omitempty"`
	Ward                *string   `gorm:"type:varchar(100)" json:"ward,omitempty"`
	Address             *string   `gorm:"type:text" json:"address,omitempty"`
	Weekdays            string    `gorm:"type:varchar(100);not null" json:"weekdays"` // comma-separated weekday names
	OpenTime            string    `gorm:"type:varchar(5);not null" json:"open_time"`
	CloseTime           string    `gorm:"type:varchar(5);not null" json:"close_time"`
	SlotIntervalMinutes int       `gorm:"not null;default:60" json:"slot_interval_minutes"`
	CapacityPerSlot     int       `gorm:"not null;default:0" json:"capacity_per_slot"` // 0 = use configured default
	Active              bool      `gorm:"not null;default:true;index" json:"active"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (OutreachLocation) TableName() string {
	return "outreach_locations"
}

// OperatesOn reports whether the location's schedule includes the weekday.
func (l *OutreachLocation) OperatesOn(day time.Weekday) bool {
	for _, part := range strings.Split(l.Weekdays, ",") {
		if strings.EqualFold(strings.TrimSpace(part), day.String()) {
			return true
		}
	}
	return false
}

// HasSchedule reports whether the location has any bookable schedule at all.
func (l *OutreachLocation) HasSchedule() bool {
	return strings.TrimSpace(l.Weekdays) != "" && l.OpenTime != "" && l.CloseTime != ""
}
