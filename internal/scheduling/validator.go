package scheduling

import (
	"fmt"
	"sort"

	"clinic-scheduling/internal/domain/entity"
)

// ViolationKind labels why a schedule was rejected.
type ViolationKind string

const (
	NoSessionDefined    ViolationKind = "no_session_defined"
	IncompleteSession   ViolationKind = "incomplete_session"
	InvalidSessionOrder ViolationKind = "invalid_session_order"
	SessionsOverlap     ViolationKind = "sessions_overlap"
	InvalidDuration     ViolationKind = "invalid_duration"
	IncompleteWeek      ViolationKind = "incomplete_week"
	DuplicateDay        ViolationKind = "duplicate_day"
)

// ValidationError is the first violation found in a schedule.
type ValidationError struct {
	Kind    ViolationKind
	Day     entity.DayOfWeek
	Session entity.Session
	Detail  string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case NoSessionDefined:
		return fmt.Sprintf("%s: available but no morning or afternoon session is set", e.Day)
	case IncompleteSession:
		return fmt.Sprintf("%s: %s session needs both a start and an end time", e.Day, e.Session)
	case InvalidSessionOrder:
		return fmt.Sprintf("%s: %s session must start before it ends", e.Day, e.Session)
	case SessionsOverlap:
		return fmt.Sprintf("%s: morning session must end no later than the afternoon session starts", e.Day)
	case InvalidDuration:
		return fmt.Sprintf("%s: appointment duration must be between %d and %d minutes",
			e.Day, entity.MinAppointmentDuration, entity.MaxAppointmentDuration)
	case IncompleteWeek:
		return "weekly schedule must contain exactly one entry per day: " + e.Detail
	case DuplicateDay:
		return fmt.Sprintf("%s appears more than once in the weekly schedule", e.Day)
	}
	return string(e.Kind)
}

// Validate checks the per-day rules Monday through Sunday and returns the
// first violation, or nil. Unavailable days are skipped whatever their times.
func Validate(entries []entity.WeeklySchedule) error {
	sorted := make([]entity.WeeklySchedule, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].DayOfWeek < sorted[j].DayOfWeek })

	for i := range sorted {
		if err := ValidateDay(sorted[i]); err != nil {
			return err
		}
	}
	return nil
}

// ValidateModel runs Validate over all seven days of m.
func ValidateModel(m WeekModel) error {
	return Validate(m.Entries())
}

// ValidateDay applies the rules to one entry.
func ValidateDay(e entity.WeeklySchedule) error {
	if !e.IsAvailable {
		return nil
	}
	return ValidateSessions(e.DayOfWeek, e.MorningStart, e.MorningEnd, e.AfternoonStart, e.AfternoonEnd)
}

// ValidateSessions holds the session rules shared by weekly entries and
// single-date overrides, in order: at least one complete session, then the
// morning and then the afternoon each checked for a half-set pair and for
// start before end, and last the morning not running past the afternoon.
func ValidateSessions(day entity.DayOfWeek, morningStart, morningEnd, afternoonStart, afternoonEnd *entity.TimeOfDay) error {
	hasMorning := morningStart != nil && morningEnd != nil
	hasAfternoon := afternoonStart != nil && afternoonEnd != nil

	if !hasMorning && !hasAfternoon {
		return &ValidationError{Kind: NoSessionDefined, Day: day}
	}
	if err := validateSession(day, entity.SessionMorning, morningStart, morningEnd); err != nil {
		return err
	}
	if err := validateSession(day, entity.SessionAfternoon, afternoonStart, afternoonEnd); err != nil {
		return err
	}
	if hasMorning && hasAfternoon && *morningEnd > *afternoonStart {
		return &ValidationError{Kind: SessionsOverlap, Day: day}
	}
	return nil
}

func validateSession(day entity.DayOfWeek, s entity.Session, start, end *entity.TimeOfDay) error {
	switch {
	case start == nil && end == nil:
		return nil
	case start == nil || end == nil:
		return &ValidationError{Kind: IncompleteSession, Day: day, Session: s}
	case *start >= *end:
		return &ValidationError{Kind: InvalidSessionOrder, Day: day, Session: s}
	}
	return nil
}

// ValidateDuration bounds the appointment length of an available day.
func ValidateDuration(day entity.DayOfWeek, minutes int) error {
	if minutes < entity.MinAppointmentDuration || minutes > entity.MaxAppointmentDuration {
		return &ValidationError{Kind: InvalidDuration, Day: day}
	}
	return nil
}

// ValidateWeekShape checks what a bulk replace needs beyond the day rules:
// seven entries, each day exactly once, sane durations on working days.
func ValidateWeekShape(entries []entity.WeeklySchedule) error {
	var seen [entity.DaysPerWeek]bool
	for _, e := range entries {
		if !e.DayOfWeek.Valid() {
			return &ValidationError{Kind: IncompleteWeek, Day: e.DayOfWeek, Detail: fmt.Sprintf("unknown day %d", e.DayOfWeek)}
		}
		if seen[e.DayOfWeek] {
			return &ValidationError{Kind: DuplicateDay, Day: e.DayOfWeek}
		}
		seen[e.DayOfWeek] = true
	}
	if len(entries) != entity.DaysPerWeek {
		return &ValidationError{Kind: IncompleteWeek, Detail: fmt.Sprintf("got %d entries", len(entries))}
	}
	for _, e := range entries {
		if e.IsAvailable {
			if err := ValidateDuration(e.DayOfWeek, e.AppointmentDuration); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateForSave is the full gate run before a bulk replace.
func ValidateForSave(entries []entity.WeeklySchedule) error {
	if err := ValidateWeekShape(entries); err != nil {
		return err
	}
	return Validate(entries)
}
