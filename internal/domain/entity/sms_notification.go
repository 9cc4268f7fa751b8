package entity

import (
	"time"

	"github.com/google/uuid"
)

type SmsStatus string

const (
	SmsStatusSent   SmsStatus = "sent"
	SmsStatusFailed SmsStatus = "failed"
)

type SmsKind string

const (
	SmsKindBooked      SmsKind = "appointment_booked"
	SmsKindRescheduled SmsKind = "appointment_rescheduled"
	SmsKindCancelled   SmsKind = "appointment_cancelled"
)

// SmsNotification is a delivery-log row for the (simulated) SMS gateway.
type SmsNotification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Recipient string     `gorm:"type:varchar(20);not null" json:"recipient"`
	Kind      SmsKind    `gorm:"type:varchar(40);not null" json:"kind"`
	Body      string     `gorm:"type:text;not null" json:"body"`
	Status    SmsStatus  `gorm:"type:varchar(10);not null" json:"status"`
	Error     *string    `gorm:"type:text" json:"error,omitempty"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (SmsNotification) TableName() string {
	return "sms_notifications"
}
