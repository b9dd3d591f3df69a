package scheduling

import (
	"errors"
	"fmt"

	"clinic-scheduling/internal/domain/entity"
)

// Session bounds are picked from a half-hour grid.
const pickerStep = 30

var (
	ErrTimeNotOffered = errors.New("time is not offered for this session")
	ErrUnknownSession = errors.New("unknown session")
)

var pickerRanges = map[entity.Session][2]entity.TimeOfDay{
	entity.SessionMorning:   {entity.MustParseTimeOfDay("07:00"), entity.MustParseTimeOfDay("12:00")},
	entity.SessionAfternoon: {entity.MustParseTimeOfDay("13:00"), entity.MustParseTimeOfDay("19:00")},
}

// CandidateTimes lists every selectable bound for a session, both ends
// inclusive: 07:00..12:00 for the morning and 13:00..19:00 for the afternoon.
func CandidateTimes(s entity.Session) []entity.TimeOfDay {
	r, ok := pickerRanges[s]
	if !ok {
		return nil
	}
	out := make([]entity.TimeOfDay, 0, int(r[1]-r[0])/pickerStep+1)
	for t := r[0]; t <= r[1]; t += pickerStep {
		out = append(out, t)
	}
	return out
}

// IsCandidate reports whether t is on the grid for s.
func IsCandidate(s entity.Session, t entity.TimeOfDay) bool {
	r, ok := pickerRanges[s]
	if !ok {
		return false
	}
	return t >= r[0] && t <= r[1] && int(t-r[0])%pickerStep == 0
}

// Picker is the selection state of one session bound.
type Picker struct {
	session entity.Session
	value   *entity.TimeOfDay
}

func NewPicker(s entity.Session, current *entity.TimeOfDay) (*Picker, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSession, s)
	}
	p := &Picker{session: s}
	if err := p.Select(current); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Picker) Session() entity.Session {
	return p.session
}

func (p *Picker) Options() []entity.TimeOfDay {
	return CandidateTimes(p.session)
}

// Select sets the bound; nil clears it. Off-grid values leave the picker
// unchanged.
func (p *Picker) Select(t *entity.TimeOfDay) error {
	if t == nil {
		p.value = nil
		return nil
	}
	if !IsCandidate(p.session, *t) {
		return fmt.Errorf("%w: %s in %s", ErrTimeNotOffered, t, p.session)
	}
	v := *t
	p.value = &v
	return nil
}

func (p *Picker) Value() *entity.TimeOfDay {
	if p.value == nil {
		return nil
	}
	v := *p.value
	return &v
}

// PickTime writes a picked bound into the week. The field decides which
// session grid applies; nil clears just that bound.
func PickTime(m WeekModel, day entity.DayOfWeek, field Field, t *entity.TimeOfDay) (WeekModel, error) {
	s, ok := sessionOf(field)
	if !ok {
		return m, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	p := &Picker{session: s}
	if err := p.Select(t); err != nil {
		return m, err
	}
	return m.SetTime(day, field, p.Value())
}

// ClearSession removes both bounds of a session together so the entry never
// holds half a session because of a clear.
func ClearSession(m WeekModel, day entity.DayOfWeek, s entity.Session) (WeekModel, error) {
	if !s.Valid() {
		return m, fmt.Errorf("%w: %q", ErrUnknownSession, s)
	}
	startField, endField := FieldMorningStart, FieldMorningEnd
	if s == entity.SessionAfternoon {
		startField, endField = FieldAfternoonStart, FieldAfternoonEnd
	}
	next, err := m.SetTime(day, startField, nil)
	if err != nil {
		return m, err
	}
	return next.SetTime(day, endField, nil)
}
