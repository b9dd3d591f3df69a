package entity

import (
	"time"

	"github.com/google/uuid"
)

// DayOff blocks a doctor's schedule on a date, either entirely or for the
// range [UnavailableStart, UnavailableEnd).
type DayOff struct {
	ID               int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_day_offs_doctor_date" json:"doctor_id"`
	Date             time.Time  `gorm:"type:date;not null;uniqueIndex:idx_day_offs_doctor_date" json:"date"`
	Reason           string     `gorm:"type:varchar(100)" json:"reason,omitempty"`
	IsFullDay        bool       `gorm:"not null;default:true" json:"is_full_day"`
	UnavailableStart *TimeOfDay `gorm:"type:time" json:"unavailable_start,omitempty"`
	UnavailableEnd   *TimeOfDay `gorm:"type:time" json:"unavailable_end,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (DayOff) TableName() string {
	return "day_offs"
}

// Blocks reports whether the window [start, end) falls inside the absence.
func (d *DayOff) Blocks(start, end TimeOfDay) bool {
	if d.IsFullDay || d.UnavailableStart == nil || d.UnavailableEnd == nil {
		return true
	}
	return start < *d.UnavailableEnd && *d.UnavailableStart < end
}
