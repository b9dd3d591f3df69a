package entity

import (
	"time"

	"github.com/google/uuid"
)

// ExceptionalSchedule replaces the weekly entry for one specific date.
type ExceptionalSchedule struct {
	ID                  int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID            uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_exceptional_schedules_doctor_date" json:"doctor_id"`
	Date                time.Time  `gorm:"type:date;not null;uniqueIndex:idx_exceptional_schedules_doctor_date" json:"date"`
	MorningStart        *TimeOfDay `gorm:"type:time" json:"morning_start"`
	MorningEnd          *TimeOfDay `gorm:"type:time" json:"morning_end"`
	AfternoonStart      *TimeOfDay `gorm:"type:time" json:"afternoon_start"`
	AfternoonEnd        *TimeOfDay `gorm:"type:time" json:"afternoon_end"`
	AppointmentDuration int        `gorm:"not null;default:30" json:"appointment_duration"`
	Reason              string     `gorm:"type:varchar(200)" json:"reason,omitempty"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (ExceptionalSchedule) TableName() string {
	return "exceptional_schedules"
}

// AsWeekly projects the override onto a weekly entry for slot generation.
func (e *ExceptionalSchedule) AsWeekly() WeeklySchedule {
	w := WeeklySchedule{
		DoctorID:            e.DoctorID,
		DayOfWeek:           DayOfWeekFromTime(e.Date),
		MorningStart:        e.MorningStart,
		MorningEnd:          e.MorningEnd,
		AfternoonStart:      e.AfternoonStart,
		AfternoonEnd:        e.AfternoonEnd,
		AppointmentDuration: e.AppointmentDuration,
	}
	w.IsAvailable = w.HasSession(SessionMorning) || w.HasSession(SessionAfternoon)
	return w
}
