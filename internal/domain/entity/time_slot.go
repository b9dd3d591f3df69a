package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
)

// TimeSlot is a bookable window derived from a schedule. It is never persisted.
type TimeSlot struct {
	ID              string
	DoctorID        uuid.UUID
	DoctorName      string
	Date            time.Time
	StartTime       TimeOfDay
	EndTime         TimeOfDay
	IsAvailable     bool
	Status          SlotStatus
	Session         Session
	DurationMinutes int
}

// SlotID encodes the natural key of a virtual slot.
func SlotID(doctorID uuid.UUID, date time.Time, start TimeOfDay) string {
	return fmt.Sprintf("%s_%s_%s", doctorID, date.Format(DateLayout), start.Clock())
}

// BookedWindow identifies an occupied slot by its natural key.
type BookedWindow struct {
	DoctorID  uuid.UUID
	Date      time.Time
	StartTime TimeOfDay
	EndTime   TimeOfDay
}

// Matches reports whether the slot occupies the same window.
func (b BookedWindow) Matches(s TimeSlot) bool {
	return b.DoctorID == s.DoctorID &&
		sameDate(b.Date, s.Date) &&
		b.StartTime == s.StartTime &&
		b.EndTime == s.EndTime
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
