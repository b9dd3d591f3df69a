// Package scheduling turns a doctor's recurring weekly availability into
// concrete bookable slots. Everything here is pure: no I/O, no clock reads.
package scheduling

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

// Field names an editable attribute of a weekly entry.
type Field string

const (
	FieldIsAvailable         Field = "is_available"
	FieldMorningStart        Field = "morning_start"
	FieldMorningEnd          Field = "morning_end"
	FieldAfternoonStart      Field = "afternoon_start"
	FieldAfternoonEnd        Field = "afternoon_end"
	FieldAppointmentDuration Field = "appointment_duration"
)

var (
	ErrUnknownField = errors.New("unknown schedule field")
	ErrInvalidValue = errors.New("invalid schedule field value")
	ErrInvalidDay   = errors.New("invalid day of week")
	ErrForeignEntry = errors.New("entry belongs to another doctor")
)

// WeekModel holds a doctor's weekly availability while it is being edited.
// Entries may be missing or inconsistent; Validate is the gate before saving.
// The zero value is an empty week for uuid.Nil.
type WeekModel struct {
	doctorID uuid.UUID
	entries  [entity.DaysPerWeek]*entity.WeeklySchedule
}

// NewWeekModel wraps stored entries. Unknown days and entries for other
// doctors are rejected; a later duplicate day replaces an earlier one.
func NewWeekModel(doctorID uuid.UUID, entries []entity.WeeklySchedule) (WeekModel, error) {
	m := WeekModel{doctorID: doctorID}
	for i := range entries {
		e := entries[i]
		if !e.DayOfWeek.Valid() {
			return WeekModel{}, fmt.Errorf("%w: %d", ErrInvalidDay, e.DayOfWeek)
		}
		if e.DoctorID != doctorID {
			return WeekModel{}, ErrForeignEntry
		}
		m.entries[e.DayOfWeek] = &e
	}
	return m, nil
}

// SeedDefaults is the canonical starting week: Monday to Friday 09:00-12:00
// and 13:00-17:00, weekends off, 30 minute appointments.
func SeedDefaults(doctorID uuid.UUID) WeekModel {
	m := WeekModel{doctorID: doctorID}
	for _, day := range entity.AllDays() {
		e := entity.DefaultWeeklySchedule(doctorID, day)
		if day <= entity.Friday {
			e.IsAvailable = true
			e.MorningStart = entity.TimePtr(entity.MustParseTimeOfDay("09:00"))
			e.MorningEnd = entity.TimePtr(entity.MustParseTimeOfDay("12:00"))
			e.AfternoonStart = entity.TimePtr(entity.MustParseTimeOfDay("13:00"))
			e.AfternoonEnd = entity.TimePtr(entity.MustParseTimeOfDay("17:00"))
		}
		m.entries[day] = &e
	}
	return m
}

func (m WeekModel) DoctorID() uuid.UUID {
	return m.doctorID
}

// Entry never fails: a day with nothing stored reads as unavailable with the
// default duration.
func (m WeekModel) Entry(day entity.DayOfWeek) entity.WeeklySchedule {
	if day.Valid() && m.entries[day] != nil {
		return *m.entries[day]
	}
	return entity.DefaultWeeklySchedule(m.doctorID, day)
}

// Stored reports whether day has an entry of its own.
func (m WeekModel) Stored(day entity.DayOfWeek) bool {
	return day.Valid() && m.entries[day] != nil
}

// Entries returns all seven days in order, synthesizing missing ones. This is
// the payload of a bulk replace.
func (m WeekModel) Entries() []entity.WeeklySchedule {
	out := make([]entity.WeeklySchedule, 0, entity.DaysPerWeek)
	for _, day := range entity.AllDays() {
		out = append(out, m.Entry(day))
	}
	return out
}

// SetField returns a copy of m with one field of one day changed. Values use
// the form encoding: "true"/"false", "HH:MM" or "" to clear a time, and whole
// minutes for the duration. On error m is returned unchanged.
func (m WeekModel) SetField(day entity.DayOfWeek, field Field, value string) (WeekModel, error) {
	if !day.Valid() {
		return m, fmt.Errorf("%w: %d", ErrInvalidDay, day)
	}

	e := m.Entry(day)
	value = strings.TrimSpace(value)

	switch field {
	case FieldIsAvailable:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return m, fmt.Errorf("%w: %s=%q", ErrInvalidValue, field, value)
		}
		e.IsAvailable = b
	case FieldAppointmentDuration:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return m, fmt.Errorf("%w: %s=%q", ErrInvalidValue, field, value)
		}
		e.AppointmentDuration = n
	case FieldMorningStart, FieldMorningEnd, FieldAfternoonStart, FieldAfternoonEnd:
		var t *entity.TimeOfDay
		if value != "" {
			parsed, err := entity.ParseTimeOfDay(value)
			if err != nil {
				return m, fmt.Errorf("%w: %s=%q", ErrInvalidValue, field, value)
			}
			t = &parsed
		}
		setTime(&e, field, t)
	default:
		return m, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	return m.with(e), nil
}

// SetTime is SetField for an already-parsed bound; nil clears it.
func (m WeekModel) SetTime(day entity.DayOfWeek, field Field, t *entity.TimeOfDay) (WeekModel, error) {
	if !day.Valid() {
		return m, fmt.Errorf("%w: %d", ErrInvalidDay, day)
	}
	if _, ok := sessionOf(field); !ok {
		return m, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	e := m.Entry(day)
	setTime(&e, field, t)
	return m.with(e), nil
}

// Equal compares the editable content of two weeks; callers use it to track
// whether the editor has unsaved changes.
func (m WeekModel) Equal(o WeekModel) bool {
	if m.doctorID != o.doctorID {
		return false
	}
	for _, day := range entity.AllDays() {
		if !m.Entry(day).SameAvailability(o.Entry(day)) {
			return false
		}
	}
	return true
}

func (m WeekModel) with(e entity.WeeklySchedule) WeekModel {
	next := m
	next.entries[e.DayOfWeek] = &e
	return next
}

func setTime(e *entity.WeeklySchedule, field Field, t *entity.TimeOfDay) {
	switch field {
	case FieldMorningStart:
		e.MorningStart = t
	case FieldMorningEnd:
		e.MorningEnd = t
	case FieldAfternoonStart:
		e.AfternoonStart = t
	case FieldAfternoonEnd:
		e.AfternoonEnd = t
	}
}

func sessionOf(field Field) (entity.Session, bool) {
	switch field {
	case FieldMorningStart, FieldMorningEnd:
		return entity.SessionMorning, true
	case FieldAfternoonStart, FieldAfternoonEnd:
		return entity.SessionAfternoon, true
	}
	return "", false
}
