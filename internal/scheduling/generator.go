package scheduling

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

var ErrInvalidSlotID = errors.New("invalid slot id")

// Doctor carries the identity stamped on generated slots.
type Doctor struct {
	ID   uuid.UUID
	Name string
}

// GenerateSlots expands one weekly entry for one calendar date.
//
// Morning windows come before afternoon windows, each session is cut into
// back-to-back windows of the entry's duration and a trailing remainder
// shorter than that is dropped. A window matching a booking is kept but
// marked unavailable. Windows starting before now are left out: all of them
// when date is before now's date, those starting before now, to the second, when
// date is now's date. The date is compared in now's location, so callers pass now
// in the clinic's time zone.
func GenerateSlots(doc Doctor, entry entity.WeeklySchedule, date time.Time, booked []entity.BookedWindow, now time.Time) []entity.TimeSlot {
	if !entry.IsAvailable || entry.AppointmentDuration <= 0 {
		return []entity.TimeSlot{}
	}
	if entry.DayOfWeek != entity.DayOfWeekFromTime(date) {
		return []entity.TimeSlot{}
	}

	day := entity.DateOf(date)
	today := entity.DateOf(now)
	if day.Before(today) {
		return []entity.TimeSlot{}
	}
	var cutoff entity.TimeOfDay
	if day.Equal(today) {
		cutoff = entity.TimeOfDayFrom(now)
		// A window starting in the current minute already started once any
		// second of that minute has passed.
		if now.Second() > 0 || now.Nanosecond() > 0 {
			cutoff++
		}
	}

	slots := []entity.TimeSlot{}
	for _, s := range []entity.Session{entity.SessionMorning, entity.SessionAfternoon} {
		start, end := entry.Bounds(s)
		if start == nil || end == nil {
			continue
		}
		for _, w := range windows(*start, *end, entry.AppointmentDuration) {
			if w[0] < cutoff {
				continue
			}
			slot := entity.TimeSlot{
				ID:              entity.SlotID(doc.ID, day, w[0]),
				DoctorID:        doc.ID,
				DoctorName:      doc.Name,
				Date:            day,
				StartTime:       w[0],
				EndTime:         w[1],
				IsAvailable:     true,
				Status:          entity.SlotStatusAvailable,
				Session:         s,
				DurationMinutes: entry.AppointmentDuration,
			}
			if isBooked(slot, booked) {
				slot.IsAvailable = false
				slot.Status = entity.SlotStatusBooked
			}
			slots = append(slots, slot)
		}
	}
	return slots
}

// windows partitions [start, end) into full windows of d minutes.
func windows(start, end entity.TimeOfDay, d int) [][2]entity.TimeOfDay {
	var out [][2]entity.TimeOfDay
	for cur := start; ; {
		next, ok := cur.AddMinutes(d)
		if !ok || next > end {
			return out
		}
		out = append(out, [2]entity.TimeOfDay{cur, next})
		cur = next
	}
}

func isBooked(slot entity.TimeSlot, booked []entity.BookedWindow) bool {
	for _, b := range booked {
		if b.Matches(slot) {
			return true
		}
	}
	return false
}

// Overrides are the date-specific changes to a weekly pattern.
type Overrides struct {
	DaysOff     []entity.DayOff
	Exceptional []entity.ExceptionalSchedule
}

func (o Overrides) dayOff(date time.Time) *entity.DayOff {
	for i := range o.DaysOff {
		if entity.DateOf(o.DaysOff[i].Date).Equal(date) {
			return &o.DaysOff[i]
		}
	}
	return nil
}

func (o Overrides) exceptional(date time.Time) *entity.ExceptionalSchedule {
	for i := range o.Exceptional {
		if entity.DateOf(o.Exceptional[i].Date).Equal(date) {
			return &o.Exceptional[i]
		}
	}
	return nil
}

// EntryFor resolves which weekly entry applies on date: a single-date
// override replaces the weekly pattern for that day.
func EntryFor(week WeekModel, ov Overrides, date time.Time) entity.WeeklySchedule {
	day := entity.DateOf(date)
	if ex := ov.exceptional(day); ex != nil {
		return ex.AsWeekly()
	}
	return week.Entry(entity.DayOfWeekFromTime(day))
}

// ExpandRange generates slots for every date in [from, to], inclusive. A
// full-day absence empties its date and a partial one removes the windows it
// overlaps. The result is ordered by date, then start time.
func ExpandRange(doc Doctor, week WeekModel, ov Overrides, from, to time.Time, booked []entity.BookedWindow, now time.Time) []entity.TimeSlot {
	out := []entity.TimeSlot{}
	last := entity.DateOf(to)
	for d := entity.DateOf(from); !d.After(last); d = d.AddDate(0, 0, 1) {
		off := ov.dayOff(d)
		if off != nil && off.IsFullDay {
			continue
		}
		for _, slot := range GenerateSlots(doc, EntryFor(week, ov, d), d, booked, now) {
			if off != nil && off.Blocks(slot.StartTime, slot.EndTime) {
				continue
			}
			out = append(out, slot)
		}
	}
	return out
}

// Available keeps only bookable slots.
func Available(slots []entity.TimeSlot) []entity.TimeSlot {
	out := make([]entity.TimeSlot, 0, len(slots))
	for _, s := range slots {
		if s.IsAvailable {
			out = append(out, s)
		}
	}
	return out
}

// FindWindow returns the generated slot with exactly this start and end.
func FindWindow(slots []entity.TimeSlot, start, end entity.TimeOfDay) (entity.TimeSlot, bool) {
	for _, s := range slots {
		if s.StartTime == start && s.EndTime == end {
			return s, true
		}
	}
	return entity.TimeSlot{}, false
}

// ParseSlotID decodes an ID produced by entity.SlotID.
func ParseSlotID(id string) (uuid.UUID, time.Time, entity.TimeOfDay, error) {
	parts := strings.Split(id, "_")
	if len(parts) != 3 {
		return uuid.Nil, time.Time{}, 0, fmt.Errorf("%w: %q", ErrInvalidSlotID, id)
	}
	doctorID, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, time.Time{}, 0, fmt.Errorf("%w: %q", ErrInvalidSlotID, id)
	}
	date, err := entity.ParseDate(parts[1])
	if err != nil {
		return uuid.Nil, time.Time{}, 0, fmt.Errorf("%w: %q", ErrInvalidSlotID, id)
	}
	start, err := entity.ParseTimeOfDay(parts[2])
	if err != nil {
		return uuid.Nil, time.Time{}, 0, fmt.Errorf("%w: %q", ErrInvalidSlotID, id)
	}
	return doctorID, date, start, nil
}
