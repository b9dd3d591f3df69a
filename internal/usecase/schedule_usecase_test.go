package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/scheduling"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

// fullWeekRequest is Monday 09:00-12:00/13:00-17:00 and every other day off.
func fullWeekRequest() *dto.ReplaceWeeklyScheduleRequest {
	req := &dto.ReplaceWeeklyScheduleRequest{}
	for d := 0; d < entity.DaysPerWeek; d++ {
		req.Entries = append(req.Entries, dto.WeeklyScheduleEntryRequest{DayOfWeek: intPtr(d)})
	}
	req.Entries[0] = dto.WeeklyScheduleEntryRequest{
		DayOfWeek:           intPtr(0),
		IsAvailable:         true,
		MorningStart:        strPtr("09:00"),
		MorningEnd:          strPtr("12:00"),
		AfternoonStart:      strPtr("13:00"),
		AfternoonEnd:        strPtr("17:00:00"),
		AppointmentDuration: 30,
	}
	return req
}

func newWeeklyFixture(t *testing.T) (WeeklyScheduleUsecase, *mockWeeklyRepo, *mockAuditService) {
	t.Helper()
	weekly := newMockWeeklyRepo()
	audit := &mockAuditService{}
	uc := newWeeklyUsecase(t, weekly, newMockAppointmentRepo(), newMockExceptionalRepo(), audit)
	return uc, weekly, audit
}

func newWeeklyUsecase(t *testing.T, weekly *mockWeeklyRepo, appointments *mockAppointmentRepo, exceptional *mockExceptionalRepo, audit *mockAuditService) *weeklyScheduleUsecase {
	t.Helper()
	uc := NewWeeklyScheduleUsecase(newTestDB(t), testLogger(), weekly,
		newMockDoctorProfileRepo(activeDoctor(testDoctorID, "Ada Lovelace")),
		appointments, exceptional, audit, time.UTC).(*weeklyScheduleUsecase)
	uc.now = func() time.Time { return testNow }
	return uc
}

// tuesdayWeekRequest is Tuesday morning only, every other day off.
func tuesdayWeekRequest(available bool, morningStart, morningEnd string, duration int) *dto.ReplaceWeeklyScheduleRequest {
	req := &dto.ReplaceWeeklyScheduleRequest{}
	for d := 0; d < entity.DaysPerWeek; d++ {
		req.Entries = append(req.Entries, dto.WeeklyScheduleEntryRequest{DayOfWeek: intPtr(d)})
	}
	if available {
		req.Entries[entity.Tuesday] = dto.WeeklyScheduleEntryRequest{
			DayOfWeek:           intPtr(int(entity.Tuesday)),
			IsAvailable:         true,
			MorningStart:        strPtr(morningStart),
			MorningEnd:          strPtr(morningEnd),
			AppointmentDuration: duration,
		}
	}
	return req
}

func TestReplaceMyWeek_StoresAllSevenDays(t *testing.T) {
	uc, weekly, audit := newWeeklyFixture(t)
	ctx := asUser(testDoctorID, entity.RoleIDDoctor)

	resp, err := uc.ReplaceMyWeek(ctx, fullWeekRequest())
	if err != nil {
		t.Fatalf("ReplaceMyWeek: %v", err)
	}
	if len(resp.Entries) != entity.DaysPerWeek || !resp.Entries[0].IsAvailable || resp.Entries[1].IsAvailable {
		t.Fatalf("unexpected week: %+v", resp.Entries)
	}
	if got := resp.Entries[0].AfternoonEnd.String(); got != "17:00" {
		t.Errorf("afternoon end = %s", got)
	}
	if len(weekly.entries[testDoctorID]) != entity.DaysPerWeek || weekly.replaces != 1 {
		t.Errorf("stored %d entries in %d writes", len(weekly.entries[testDoctorID]), weekly.replaces)
	}
	if !audit.has(entity.AuditActionWeekReplace) {
		t.Error("replace was not audited")
	}

	// Reading back returns the same week.
	again, err := uc.GetDoctorWeek(ctx, testDoctorID)
	if err != nil {
		t.Fatalf("GetDoctorWeek: %v", err)
	}
	if *again.Entries[0].MorningStart != *resp.Entries[0].MorningStart {
		t.Errorf("read back differs")
	}
}

func TestReplaceMyWeek_RejectsWithoutWriting(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.ReplaceWeeklyScheduleRequest)
		kind   scheduling.ViolationKind
	}{
		{
			name: "overlapping sessions",
			mutate: func(r *dto.ReplaceWeeklyScheduleRequest) {
				r.Entries[0].MorningEnd = strPtr("13:00")
				r.Entries[0].AfternoonStart = strPtr("12:00")
			},
			kind: scheduling.SessionsOverlap,
		},
		{
			name: "half a session",
			mutate: func(r *dto.ReplaceWeeklyScheduleRequest) {
				r.Entries[0].MorningEnd = nil
			},
			kind: scheduling.IncompleteSession,
		},
		{
			name: "available without sessions",
			mutate: func(r *dto.ReplaceWeeklyScheduleRequest) {
				r.Entries[2].IsAvailable = true
			},
			kind: scheduling.NoSessionDefined,
		},
		{
			name: "duplicate day",
			mutate: func(r *dto.ReplaceWeeklyScheduleRequest) {
				r.Entries[6].DayOfWeek = intPtr(5)
			},
			kind: scheduling.DuplicateDay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, weekly, _ := newWeeklyFixture(t)
			req := fullWeekRequest()
			tt.mutate(req)

			_, err := uc.ReplaceMyWeek(asUser(testDoctorID, entity.RoleIDDoctor), req)
			var verr *scheduling.ValidationError
			if !errors.As(err, &verr) || verr.Kind != tt.kind {
				t.Fatalf("err = %v, want %s", err, tt.kind)
			}
			if weekly.replaces != 0 {
				t.Error("an invalid week must not be written")
			}
		})
	}
}

func TestReplaceMyWeek_AdjacentSessionsAccepted(t *testing.T) {
	uc, _, _ := newWeeklyFixture(t)
	req := fullWeekRequest()
	req.Entries[0].AfternoonStart = strPtr("12:00")

	if _, err := uc.ReplaceMyWeek(asUser(testDoctorID, entity.RoleIDDoctor), req); err != nil {
		t.Fatalf("ReplaceMyWeek: %v", err)
	}
}

func TestReplaceMyWeek_UpcomingAppointmentsMustStillFit(t *testing.T) {
	booked := entity.Appointment{
		PatientID:       testPatientID,
		DoctorID:        testDoctorID,
		AppointmentDate: testTuesday,
		StartTime:       entity.MustParseTimeOfDay("09:30"),
		EndTime:         entity.MustParseTimeOfDay("10:00"),
		Status:          entity.AppointmentStatusScheduled,
	}

	tests := []struct {
		name        string
		req         *dto.ReplaceWeeklyScheduleRequest
		appointment func() entity.Appointment
		exceptional *entity.ExceptionalSchedule
		wantErr     error
	}{
		{
			name:    "longer appointments shift the grid",
			req:     tuesdayWeekRequest(true, "09:00", "12:00", 45),
			wantErr: ErrScheduleStrandsAppointments,
		},
		{
			name:    "day switched off",
			req:     tuesdayWeekRequest(false, "", "", 0),
			wantErr: ErrScheduleStrandsAppointments,
		},
		{
			name:    "session no longer covers the booking",
			req:     tuesdayWeekRequest(true, "10:00", "12:00", 30),
			wantErr: ErrScheduleStrandsAppointments,
		},
		{
			name: "same grid with a later start",
			req:  tuesdayWeekRequest(true, "09:30", "12:00", 30),
		},
		{
			name: "cancelled appointment is ignored",
			req:  tuesdayWeekRequest(true, "09:00", "12:00", 45),
			appointment: func() entity.Appointment {
				a := booked
				a.Status = entity.AppointmentStatusCancelled
				return a
			},
		},
		{
			name: "past appointment is ignored",
			req:  tuesdayWeekRequest(false, "", "", 0),
			appointment: func() entity.Appointment {
				a := booked
				a.AppointmentDate = testTuesday.AddDate(0, 0, -7)
				return a
			},
		},
		{
			name: "exceptional schedule keeps the date",
			req:  tuesdayWeekRequest(false, "", "", 0),
			exceptional: &entity.ExceptionalSchedule{
				DoctorID:            testDoctorID,
				Date:                testTuesday,
				MorningStart:        tod("09:00"),
				MorningEnd:          tod("12:00"),
				AppointmentDuration: 30,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weekly := newMockWeeklyRepo()
			weekly.entries[testDoctorID] = tuesdayWeek(testDoctorID)
			appointments := newMockAppointmentRepo()
			exceptional := newMockExceptionalRepo()
			uc := newWeeklyUsecase(t, weekly, appointments, exceptional, &mockAuditService{})

			a := booked
			if tt.appointment != nil {
				a = tt.appointment()
			}
			appointments.add(a)
			if tt.exceptional != nil {
				exceptional.Create(context.Background(), nil, tt.exceptional)
			}

			_, err := uc.ReplaceMyWeek(asUser(testDoctorID, entity.RoleIDDoctor), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil && weekly.replaces != 0 {
				t.Error("a week that strands appointments must not be written")
			}
		})
	}
}

func TestReplaceMyWeek_StrandedBookingStaysBooked(t *testing.T) {
	weekly := newMockWeeklyRepo()
	weekly.entries[testDoctorID] = tuesdayWeek(testDoctorID)
	appointments := newMockAppointmentRepo()
	appointments.add(entity.Appointment{
		PatientID:       testPatientID,
		DoctorID:        testDoctorID,
		AppointmentDate: testTuesday,
		StartTime:       entity.MustParseTimeOfDay("09:30"),
		EndTime:         entity.MustParseTimeOfDay("10:00"),
		Status:          entity.AppointmentStatusScheduled,
	})
	uc := newWeeklyUsecase(t, weekly, appointments, newMockExceptionalRepo(), &mockAuditService{})
	doctor := asUser(testDoctorID, entity.RoleIDDoctor)

	if _, err := uc.ReplaceMyWeek(doctor, tuesdayWeekRequest(true, "09:00", "12:00", 45)); !errors.Is(err, ErrScheduleStrandsAppointments) {
		t.Fatalf("err = %v", err)
	}

	slots := NewSlotUsecase(newTestDB(t), testLogger(), newMockDoctorProfileRepo(activeDoctor(testDoctorID, "Ada Lovelace")),
		weekly, newMockDayOffRepo(), newMockExceptionalRepo(), appointments, testBooking, time.UTC).(*slotUsecase)
	slots.now = func() time.Time { return testNow }

	resp, err := slots.GetDoctorSlots(context.Background(), testDoctorID, &dto.SlotQuery{StartDate: "2026-10-20", EndDate: "2026-10-20"})
	if err != nil {
		t.Fatalf("GetDoctorSlots: %v", err)
	}
	for _, s := range resp.Slots {
		if s.StartTime.String() == "09:30" && s.IsAvailable {
			t.Fatalf("booked 09:30 window offered again: %+v", s)
		}
		if s.DurationMinutes != 30 {
			t.Fatalf("week was changed: %+v", s)
		}
	}
}

func TestInitializeMyWeek(t *testing.T) {
	uc, weekly, _ := newWeeklyFixture(t)
	ctx := asUser(testDoctorID, entity.RoleIDDoctor)

	resp, err := uc.InitializeMyWeek(ctx)
	if err != nil {
		t.Fatalf("InitializeMyWeek: %v", err)
	}
	if len(resp.Entries) != entity.DaysPerWeek || len(weekly.entries[testDoctorID]) != entity.DaysPerWeek {
		t.Fatalf("seeded %d entries", len(weekly.entries[testDoctorID]))
	}

	if _, err := uc.InitializeMyWeek(ctx); !errors.Is(err, ErrWeekAlreadyInitialized) {
		t.Fatalf("second initialize: err = %v", err)
	}
}

func TestGetMyWeek_DefaultsMissingDays(t *testing.T) {
	uc, weekly, _ := newWeeklyFixture(t)
	weekly.entries[testDoctorID] = tuesdayWeek(testDoctorID)

	resp, err := uc.GetMyWeek(asUser(testDoctorID, entity.RoleIDDoctor))
	if err != nil {
		t.Fatalf("GetMyWeek: %v", err)
	}
	if len(resp.Entries) != entity.DaysPerWeek {
		t.Fatalf("entries = %d", len(resp.Entries))
	}
	for i, e := range resp.Entries {
		if e.IsAvailable != (i == int(entity.Tuesday)) {
			t.Errorf("%s available = %v", e.DayName, e.IsAvailable)
		}
	}
}

func newDayOffFixture(t *testing.T) (*dayOffUsecase, *mockDayOffRepo, *mockAppointmentRepo) {
	t.Helper()
	dayOffs := newMockDayOffRepo()
	appointments := newMockAppointmentRepo()
	uc := NewDayOffUsecase(newTestDB(t), testLogger(), dayOffs, appointments,
		newMockDoctorProfileRepo(activeDoctor(testDoctorID, "Ada Lovelace")), &mockAuditService{}, time.UTC).(*dayOffUsecase)
	uc.now = func() time.Time { return testNow }
	return uc, dayOffs, appointments
}

func TestDayOffCreate(t *testing.T) {
	yes, no := true, false
	tests := []struct {
		name    string
		req     dto.CreateDayOffRequest
		booked  string
		wantErr error
	}{
		{"full day", dto.CreateDayOffRequest{Date: "2026-10-20", Reason: "conference"}, "", nil},
		{"partial", dto.CreateDayOffRequest{Date: "2026-10-20", IsFullDay: &no, UnavailableStart: strPtr("13:00"), UnavailableEnd: strPtr("15:00")}, "09:00", nil},
		{"partial without range", dto.CreateDayOffRequest{Date: "2026-10-20", IsFullDay: &no}, "", ErrDayOffInvalidRange},
		{"partial reversed", dto.CreateDayOffRequest{Date: "2026-10-20", UnavailableStart: strPtr("15:00"), UnavailableEnd: strPtr("13:00")}, "", ErrDayOffInvalidRange},
		{"in the past", dto.CreateDayOffRequest{Date: "2026-10-18"}, "", ErrDayOffInPast},
		{"swallows a booking", dto.CreateDayOffRequest{Date: "2026-10-20", IsFullDay: &yes}, "09:00", ErrDayOffHasAppointments},
		{"partial covers a booking", dto.CreateDayOffRequest{Date: "2026-10-20", UnavailableStart: strPtr("08:00"), UnavailableEnd: strPtr("10:00")}, "09:00", ErrDayOffHasAppointments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, dayOffs, appointments := newDayOffFixture(t)
			if tt.booked != "" {
				start := entity.MustParseTimeOfDay(tt.booked)
				end, _ := start.AddMinutes(30)
				appointments.add(entity.Appointment{
					PatientID:       testPatientID,
					DoctorID:        testDoctorID,
					AppointmentDate: testTuesday,
					StartTime:       start,
					EndTime:         end,
					Status:          entity.AppointmentStatusScheduled,
				})
			}

			resp, err := uc.Create(asUser(testDoctorID, entity.RoleIDDoctor), &tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if len(dayOffs.items) != 0 {
					t.Error("nothing should be stored")
				}
				return
			}
			if resp.Date != "2026-10-20" || len(dayOffs.items) != 1 {
				t.Errorf("unexpected result %+v", resp)
			}
		})
	}
}

func TestDayOffDeleteAndCheck(t *testing.T) {
	uc, dayOffs, _ := newDayOffFixture(t)
	doctor := asUser(testDoctorID, entity.RoleIDDoctor)

	created, err := uc.Create(doctor, &dto.CreateDayOffRequest{Date: "2026-10-20"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	check, err := uc.CheckMine(doctor, "2026-10-20")
	if err != nil || !check.IsDayOff || check.DayOff == nil {
		t.Fatalf("check = %+v, err = %v", check, err)
	}

	// Another doctor cannot remove it.
	if err := uc.Delete(asUser(otherPatient, entity.RoleIDDoctor), created.ID); !errors.Is(err, ErrDayOffNotFound) {
		t.Fatalf("foreign delete: err = %v", err)
	}
	if err := uc.Delete(doctor, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(dayOffs.items) != 0 {
		t.Error("day off still stored")
	}

	check, err = uc.CheckMine(doctor, "2026-10-20")
	if err != nil || check.IsDayOff {
		t.Fatalf("check after delete = %+v, err = %v", check, err)
	}
}

func newExceptionalFixture(t *testing.T) (*exceptionalScheduleUsecase, *mockExceptionalRepo, *mockAppointmentRepo) {
	t.Helper()
	exceptional := newMockExceptionalRepo()
	appointments := newMockAppointmentRepo()
	uc := NewExceptionalScheduleUsecase(newTestDB(t), testLogger(), exceptional, appointments,
		newMockDoctorProfileRepo(activeDoctor(testDoctorID, "Ada Lovelace")), &mockAuditService{}, time.UTC).(*exceptionalScheduleUsecase)
	uc.now = func() time.Time { return testNow }
	return uc, exceptional, appointments
}

func TestExceptionalScheduleCreate(t *testing.T) {
	morningOnly := dto.CreateExceptionalScheduleRequest{
		Date:                "2026-10-20",
		MorningStart:        strPtr("08:00"),
		MorningEnd:          strPtr("11:00"),
		AppointmentDuration: 30,
	}

	t.Run("valid", func(t *testing.T) {
		uc, items, _ := newExceptionalFixture(t)
		resp, err := uc.Create(asUser(testDoctorID, entity.RoleIDDoctor), &morningOnly)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if resp.Date != "2026-10-20" || len(items.items) != 1 {
			t.Errorf("unexpected result %+v", resp)
		}
	})

	t.Run("no session", func(t *testing.T) {
		uc, _, _ := newExceptionalFixture(t)
		req := dto.CreateExceptionalScheduleRequest{Date: "2026-10-20"}
		_, err := uc.Create(asUser(testDoctorID, entity.RoleIDDoctor), &req)
		var verr *scheduling.ValidationError
		if !errors.As(err, &verr) || verr.Kind != scheduling.NoSessionDefined {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("strands a booking", func(t *testing.T) {
		uc, items, appointments := newExceptionalFixture(t)
		appointments.add(entity.Appointment{
			PatientID:       testPatientID,
			DoctorID:        testDoctorID,
			AppointmentDate: testTuesday,
			StartTime:       entity.MustParseTimeOfDay("14:00"),
			EndTime:         entity.MustParseTimeOfDay("14:30"),
			Status:          entity.AppointmentStatusScheduled,
		})
		if _, err := uc.Create(asUser(testDoctorID, entity.RoleIDDoctor), &morningOnly); !errors.Is(err, ErrScheduleStrandsAppointments) {
			t.Fatalf("err = %v", err)
		}
		if len(items.items) != 0 {
			t.Error("nothing should be stored")
		}
	})

	t.Run("keeps aligned bookings", func(t *testing.T) {
		uc, _, appointments := newExceptionalFixture(t)
		appointments.add(entity.Appointment{
			PatientID:       testPatientID,
			DoctorID:        testDoctorID,
			AppointmentDate: testTuesday,
			StartTime:       entity.MustParseTimeOfDay("09:00"),
			EndTime:         entity.MustParseTimeOfDay("09:30"),
			Status:          entity.AppointmentStatusConfirmed,
		})
		if _, err := uc.Create(asUser(testDoctorID, entity.RoleIDDoctor), &morningOnly); err != nil {
			t.Fatalf("Create: %v", err)
		}
	})
}

func TestExceptionalScheduleOverridesSlots(t *testing.T) {
	weekly := newMockWeeklyRepo()
	weekly.entries[testDoctorID] = tuesdayWeek(testDoctorID)
	exceptional := newMockExceptionalRepo()
	exceptional.Create(context.Background(), nil, &entity.ExceptionalSchedule{
		DoctorID:            testDoctorID,
		Date:                testTuesday,
		MorningStart:        tod("08:00"),
		MorningEnd:          tod("10:00"),
		AppointmentDuration: 60,
	})

	uc := NewSlotUsecase(newTestDB(t), testLogger(), newMockDoctorProfileRepo(activeDoctor(testDoctorID, "Ada Lovelace")),
		weekly, newMockDayOffRepo(), exceptional, newMockAppointmentRepo(), testBooking, time.UTC).(*slotUsecase)
	uc.now = func() time.Time { return testNow }

	resp, err := uc.GetDoctorSlots(context.Background(), testDoctorID, &dto.SlotQuery{StartDate: "2026-10-20", EndDate: "2026-10-20"})
	if err != nil {
		t.Fatalf("GetDoctorSlots: %v", err)
	}
	if resp.Total != 2 || resp.Slots[0].StartTime.String() != "08:00" || resp.Slots[1].DurationMinutes != 60 {
		t.Fatalf("slots = %+v", resp.Slots)
	}
}
