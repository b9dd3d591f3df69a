package entity

import (
	"errors"
	"testing"
	"time"
)

func TestAppointment_Lifecycle(t *testing.T) {
	a := &Appointment{Status: AppointmentStatusScheduled}
	if !a.Occupies() || a.IsTerminal() {
		t.Fatal("scheduled appointment should occupy its slot")
	}

	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	if err := a.Cancel("travel", now); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if a.Occupies() || !a.IsTerminal() || a.CancelledAt == nil || a.CancellationReason != "travel" {
		t.Errorf("unexpected state after cancel: %+v", a)
	}
	if err := a.Cancel("again", now); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("double cancel: %v", err)
	}
}

func TestAppointment_TransitionTo(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		ok       bool
	}{
		{AppointmentStatusScheduled, AppointmentStatusConfirmed, true},
		{AppointmentStatusConfirmed, AppointmentStatusInProgress, true},
		{AppointmentStatusInProgress, AppointmentStatusCompleted, true},
		{AppointmentStatusInProgress, AppointmentStatusCancelled, false},
		{AppointmentStatusCompleted, AppointmentStatusScheduled, false},
		{AppointmentStatusNoShow, AppointmentStatusConfirmed, false},
	}
	for _, tt := range tests {
		a := &Appointment{Status: tt.from}
		err := a.TransitionTo(tt.to)
		if (err == nil) != tt.ok {
			t.Errorf("%s -> %s: err = %v", tt.from, tt.to, err)
		}
	}
}

func TestDayOff_Blocks(t *testing.T) {
	full := &DayOff{IsFullDay: true}
	if !full.Blocks(MustParseTimeOfDay("09:00"), MustParseTimeOfDay("09:30")) {
		t.Error("full day should block everything")
	}

	partial := &DayOff{
		UnavailableStart: TimePtr(MustParseTimeOfDay("10:00")),
		UnavailableEnd:   TimePtr(MustParseTimeOfDay("11:00")),
	}
	tests := []struct {
		start, end string
		want       bool
	}{
		{"09:30", "10:00", false},
		{"09:45", "10:15", true},
		{"10:30", "11:00", true},
		{"11:00", "11:30", false},
	}
	for _, tt := range tests {
		if got := partial.Blocks(MustParseTimeOfDay(tt.start), MustParseTimeOfDay(tt.end)); got != tt.want {
			t.Errorf("Blocks(%s,%s) = %v", tt.start, tt.end, got)
		}
	}
}
