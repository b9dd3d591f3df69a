package scheduling

import (
	"time"

	"clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	testDoctor = Doctor{ID: uuid.MustParse("7b0c6a3e-2f1d-4c8e-9a55-0d3c1e2f4a6b"), Name: "Dr. Siti Rahma"}

	// 2025-06-02 is a Monday.
	monday = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
)

func tod(s string) *entity.TimeOfDay {
	return entity.TimePtr(entity.MustParseTimeOfDay(s))
}

func entry(day entity.DayOfWeek, ms, me, as, ae string, duration int) entity.WeeklySchedule {
	e := entity.WeeklySchedule{
		DoctorID:            testDoctor.ID,
		DayOfWeek:           day,
		IsAvailable:         true,
		AppointmentDuration: duration,
	}
	if ms != "" {
		e.MorningStart = tod(ms)
	}
	if me != "" {
		e.MorningEnd = tod(me)
	}
	if as != "" {
		e.AfternoonStart = tod(as)
	}
	if ae != "" {
		e.AfternoonEnd = tod(ae)
	}
	return e
}

// longBefore is a query time well before any test date.
var longBefore = time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
