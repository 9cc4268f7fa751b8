package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// JSON is a jsonb column helper.
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan JSON: not a byte slice")
	}
	return json.Unmarshal(bytes, j)
}

// AuditLog records admin status changes and reschedules with before/after
// values.
type AuditLog struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorID       *uuid.UUID `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	AppointmentID *uuid.UUID `gorm:"type:uuid;index" json:"appointment_id,omitempty"`
	Action        string     `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata      JSON       `gorm:"type:jsonb" json:"metadata"`
	CreatedAt     time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
