package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is one of the two bookable blocks of a working day.
type Session string

const (
	SessionMorning   Session = "morning"
	SessionAfternoon Session = "afternoon"
)

func (s Session) Valid() bool {
	return s == SessionMorning || s == SessionAfternoon
}

// Appointment duration bounds in minutes.
const (
	DefaultAppointmentDuration = 30
	MinAppointmentDuration     = 15
	MaxAppointmentDuration     = 120
)

// WeeklySchedule is a doctor's recurring availability for one day of the week.
// Session bounds are optional; a session exists only when both are set.
type WeeklySchedule struct {
	ID                  int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID            uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_weekly_schedules_doctor_day" json:"doctor_id"`
	DayOfWeek           DayOfWeek  `gorm:"type:smallint;not null;uniqueIndex:idx_weekly_schedules_doctor_day" json:"day_of_week"`
	IsAvailable         bool       `gorm:"not null;default:false" json:"is_available"`
	MorningStart        *TimeOfDay `gorm:"type:time" json:"morning_start"`
	MorningEnd          *TimeOfDay `gorm:"type:time" json:"morning_end"`
	AfternoonStart      *TimeOfDay `gorm:"type:time" json:"afternoon_start"`
	AfternoonEnd        *TimeOfDay `gorm:"type:time" json:"afternoon_end"`
	AppointmentDuration int        `gorm:"not null;default:30" json:"appointment_duration"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WeeklySchedule) TableName() string {
	return "weekly_schedules"
}

// DefaultWeeklySchedule is the entry assumed for a day with nothing stored.
func DefaultWeeklySchedule(doctorID uuid.UUID, day DayOfWeek) WeeklySchedule {
	return WeeklySchedule{
		DoctorID:            doctorID,
		DayOfWeek:           day,
		IsAvailable:         false,
		AppointmentDuration: DefaultAppointmentDuration,
	}
}

// Bounds returns the start and end of the given session.
func (w *WeeklySchedule) Bounds(s Session) (start, end *TimeOfDay) {
	if s == SessionMorning {
		return w.MorningStart, w.MorningEnd
	}
	return w.AfternoonStart, w.AfternoonEnd
}

// SetBounds replaces both bounds of a session.
func (w *WeeklySchedule) SetBounds(s Session, start, end *TimeOfDay) {
	if s == SessionMorning {
		w.MorningStart, w.MorningEnd = start, end
		return
	}
	w.AfternoonStart, w.AfternoonEnd = start, end
}

// HasSession reports whether both bounds of s are set.
func (w *WeeklySchedule) HasSession(s Session) bool {
	start, end := w.Bounds(s)
	return start != nil && end != nil
}

// ClearSessions drops every session bound, used when a day is marked unavailable.
func (w *WeeklySchedule) ClearSessions() {
	w.MorningStart, w.MorningEnd = nil, nil
	w.AfternoonStart, w.AfternoonEnd = nil, nil
}

// SameAvailability compares the user-editable fields only.
func (w WeeklySchedule) SameAvailability(o WeeklySchedule) bool {
	return w.DoctorID == o.DoctorID &&
		w.DayOfWeek == o.DayOfWeek &&
		w.IsAvailable == o.IsAvailable &&
		w.AppointmentDuration == o.AppointmentDuration &&
		equalTime(w.MorningStart, o.MorningStart) &&
		equalTime(w.MorningEnd, o.MorningEnd) &&
		equalTime(w.AfternoonStart, o.AfternoonStart) &&
		equalTime(w.AfternoonEnd, o.AfternoonEnd)
}

func equalTime(a, b *TimeOfDay) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
