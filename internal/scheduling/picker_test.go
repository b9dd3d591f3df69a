package scheduling

import (
	"errors"
	"testing"

	"clinic-scheduling/internal/domain/entity"
)

func TestCandidateTimes(t *testing.T) {
	morning := CandidateTimes(entity.SessionMorning)
	if len(morning) != 11 || morning[0].String() != "07:00" || morning[10].String() != "12:00" {
		t.Errorf("morning grid = %v", morning)
	}
	afternoon := CandidateTimes(entity.SessionAfternoon)
	if len(afternoon) != 13 || afternoon[0].String() != "13:00" || afternoon[12].String() != "19:00" {
		t.Errorf("afternoon grid = %v", afternoon)
	}
	for i := 1; i < len(afternoon); i++ {
		if afternoon[i]-afternoon[i-1] != 30 {
			t.Fatalf("step between %s and %s", afternoon[i-1], afternoon[i])
		}
	}
	if CandidateTimes(entity.Session("evening")) != nil {
		t.Error("unknown session should have no candidates")
	}
}

func TestPicker_SelectAndClear(t *testing.T) {
	p, err := NewPicker(entity.SessionMorning, nil)
	if err != nil {
		t.Fatalf("new picker: %v", err)
	}

	if err := p.Select(tod("08:30")); err != nil {
		t.Fatalf("select: %v", err)
	}
	if p.Value().String() != "08:30" {
		t.Errorf("value = %s", p.Value())
	}

	for _, bad := range []string{"06:30", "08:15", "13:00"} {
		if err := p.Select(tod(bad)); !errors.Is(err, ErrTimeNotOffered) {
			t.Errorf("select %s: err = %v", bad, err)
		}
	}
	if p.Value().String() != "08:30" {
		t.Error("rejected selection changed the value")
	}

	if err := p.Select(nil); err != nil || p.Value() != nil {
		t.Errorf("clear failed: %v %v", err, p.Value())
	}
}

func TestNewPicker_RejectsOffGridCurrent(t *testing.T) {
	if _, err := NewPicker(entity.SessionAfternoon, tod("12:30")); !errors.Is(err, ErrTimeNotOffered) {
		t.Errorf("err = %v", err)
	}
	if _, err := NewPicker(entity.Session("night"), nil); !errors.Is(err, ErrUnknownSession) {
		t.Errorf("err = %v", err)
	}
}

func TestPickTimeAndClearSession(t *testing.T) {
	m := SeedDefaults(testDoctor.ID)

	m, err := PickTime(m, entity.Monday, FieldAfternoonEnd, tod("18:30"))
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if m.Entry(entity.Monday).AfternoonEnd.String() != "18:30" {
		t.Error("pick not applied")
	}
	if _, err := PickTime(m, entity.Monday, FieldMorningStart, tod("13:00")); !errors.Is(err, ErrTimeNotOffered) {
		t.Errorf("afternoon time accepted for morning: %v", err)
	}

	m, err = ClearSession(m, entity.Monday, entity.SessionMorning)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	e := m.Entry(entity.Monday)
	if e.MorningStart != nil || e.MorningEnd != nil || !e.HasSession(entity.SessionAfternoon) {
		t.Errorf("unexpected entry after clear: %+v", e)
	}
	if err := ValidateDay(e); err != nil {
		t.Errorf("afternoon-only day should validate: %v", err)
	}
}
