package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditLog is an append-only record of a state change
type AuditLog struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action    string     `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// JSON maps a jsonb column
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONB source type %T", value)
	}

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// Audit actions
const (
	AuditActionUserLogin            = "user.login"
	AuditActionUserLogout           = "user.logout"
	AuditActionUserRegister         = "user.register"
	AuditActionAppointmentBook      = "appointment.book"
	AuditActionAppointmentCancel    = "appointment.cancel"
	AuditActionAppointmentStatus    = "appointment.status"
	AuditActionWeekReplace          = "weekly_schedule.replace"
	AuditActionWeekInitialize       = "weekly_schedule.initialize"
	AuditActionDayOffCreate         = "day_off.create"
	AuditActionDayOffDelete         = "day_off.delete"
	AuditActionExceptionalCreate    = "exceptional_schedule.create"
	AuditActionExceptionalDelete    = "exceptional_schedule.delete"
	AuditActionDoctorCreate         = "doctor_profile.create"
	AuditActionDoctorActive         = "doctor_profile.active"
	AuditActionDoctorProfileUpdate  = "doctor_profile.update"
	AuditActionPatientProfileUpdate = "patient_profile.update"
)

// AuditLogFilter narrows the admin audit listing.
type AuditLogFilter struct {
	UserID *uuid.UUID
	Action string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}
