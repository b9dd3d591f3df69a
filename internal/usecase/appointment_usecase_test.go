package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/service"

	"github.com/google/uuid"
)

type bookingFixture struct {
	uc           *appointmentUsecase
	appointments *mockAppointmentRepo
	dayOffs      *mockDayOffRepo
	audit        *mockAuditService
	lock         *service.SlotLockService
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	client, _ := newTestRedis(t)
	log := testLogger()

	weekly := newMockWeeklyRepo()
	weekly.entries[testDoctorID] = tuesdayWeek(testDoctorID)

	f := &bookingFixture{
		appointments: newMockAppointmentRepo(),
		dayOffs:      newMockDayOffRepo(),
		audit:        &mockAuditService{},
		lock:         service.NewSlotLockService(client, log, testBooking.LockTTL),
	}
	f.uc = NewAppointmentUsecase(
		newTestDB(t), log,
		f.appointments,
		newMockDoctorProfileRepo(activeDoctor(testDoctorID, "Ada Lovelace")),
		weekly, f.dayOffs, newMockExceptionalRepo(),
		f.lock, f.audit, testBooking, time.UTC,
	).(*appointmentUsecase)
	f.uc.now = func() time.Time { return testNow }
	return f
}

func bookingRequest(start, end string) *dto.BookingRequest {
	return &dto.BookingRequest{
		DoctorID:         testDoctorID,
		Date:             "2026-10-20",
		StartTime:        start,
		EndTime:          end,
		ConsultationType: "general",
		ReasonForVisit:   "Persistent cough",
	}
}

func TestBookVirtualSlot_Confirms(t *testing.T) {
	f := newBookingFixture(t)

	resp, err := f.uc.BookVirtualSlot(asUser(testPatientID, entity.RoleIDPatient), bookingRequest("09:30", "10:00"))
	if err != nil {
		t.Fatalf("BookVirtualSlot: %v", err)
	}

	if resp.Status != string(entity.AppointmentStatusScheduled) {
		t.Errorf("status = %s", resp.Status)
	}
	if !strings.HasPrefix(resp.BookingCode, "BK-20261020-") || len(resp.BookingCode) != len("BK-20261020-ABCDEF") {
		t.Errorf("booking code = %s", resp.BookingCode)
	}
	if resp.Fee.String() != "150000" {
		t.Errorf("fee = %s, want the doctor's consultation fee", resp.Fee)
	}
	if resp.DoctorName != "Dr. Ada Lovelace" || resp.DurationMinutes != 30 || resp.Priority != "medium" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if f.appointments.count() != 1 {
		t.Errorf("appointments stored = %d", f.appointments.count())
	}
	if !f.audit.has(entity.AuditActionAppointmentBook) {
		t.Error("booking was not audited")
	}

	// The reservation is released once the row exists.
	r, err := f.lock.Reserve(context.Background(), testDoctorID, testTuesday, entity.MustParseTimeOfDay("09:30"))
	if err != nil {
		t.Fatalf("reservation still held after booking: %v", err)
	}
	_ = f.lock.Release(context.Background(), r)
}

func TestBookVirtualSlot_RejectsWindowsTheEngineDoesNotGenerate(t *testing.T) {
	tests := []struct {
		name       string
		date       string
		start, end string
	}{
		{"lunch break", "2026-10-20", "12:00", "12:30"},
		{"misaligned end", "2026-10-20", "09:00", "09:45"},
		{"off grid start", "2026-10-20", "09:10", "09:40"},
		{"unavailable weekday", "2026-10-21", "09:00", "09:30"},
		{"past date", "2026-10-13", "09:00", "09:30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(t)
			req := bookingRequest(tt.start, tt.end)
			req.Date = tt.date

			_, err := f.uc.BookVirtualSlot(asUser(testPatientID, entity.RoleIDPatient), req)
			if !errors.Is(err, ErrDoctorUnavailable) {
				t.Fatalf("err = %v, want ErrDoctorUnavailable", err)
			}
			if f.appointments.count() != 0 {
				t.Error("nothing should be stored")
			}
		})
	}
}

func TestBookVirtualSlot_DayOffMakesDoctorUnavailable(t *testing.T) {
	f := newBookingFixture(t)
	f.dayOffs.Create(context.Background(), nil, &entity.DayOff{
		DoctorID:  testDoctorID,
		Date:      testTuesday,
		IsFullDay: true,
	})

	_, err := f.uc.BookVirtualSlot(asUser(testPatientID, entity.RoleIDPatient), bookingRequest("09:30", "10:00"))
	if !errors.Is(err, ErrDoctorUnavailable) {
		t.Fatalf("err = %v, want ErrDoctorUnavailable", err)
	}
}

func TestBookVirtualSlot_SlotTaken(t *testing.T) {
	t.Run("already booked", func(t *testing.T) {
		f := newBookingFixture(t)
		f.appointments.add(entity.Appointment{
			PatientID:       otherPatient,
			DoctorID:        testDoctorID,
			AppointmentDate: testTuesday,
			StartTime:       entity.MustParseTimeOfDay("09:30"),
			EndTime:         entity.MustParseTimeOfDay("10:00"),
			Status:          entity.AppointmentStatusConfirmed,
		})

		_, err := f.uc.BookVirtualSlot(asUser(testPatientID, entity.RoleIDPatient), bookingRequest("09:30", "10:00"))
		if !errors.Is(err, ErrSlotTaken) {
			t.Fatalf("err = %v, want ErrSlotTaken", err)
		}
	})

	t.Run("reservation in flight", func(t *testing.T) {
		f := newBookingFixture(t)
		if _, err := f.lock.Reserve(context.Background(), testDoctorID, testTuesday, entity.MustParseTimeOfDay("09:30")); err != nil {
			t.Fatalf("reserve: %v", err)
		}

		_, err := f.uc.BookVirtualSlot(asUser(testPatientID, entity.RoleIDPatient), bookingRequest("09:30", "10:00"))
		if !errors.Is(err, ErrSlotTaken) {
			t.Fatalf("err = %v, want ErrSlotTaken", err)
		}
	})

	t.Run("unique index violation", func(t *testing.T) {
		f := newBookingFixture(t)
		f.appointments.createErr = uniqueViolation("idx_appointments_active_slot")

		_, err := f.uc.BookVirtualSlot(asUser(testPatientID, entity.RoleIDPatient), bookingRequest("09:30", "10:00"))
		if !errors.Is(err, ErrSlotTaken) {
			t.Fatalf("err = %v, want ErrSlotTaken", err)
		}
	})

	t.Run("cancelled booking frees the slot", func(t *testing.T) {
		f := newBookingFixture(t)
		f.appointments.add(entity.Appointment{
			PatientID:       otherPatient,
			DoctorID:        testDoctorID,
			AppointmentDate: testTuesday,
			StartTime:       entity.MustParseTimeOfDay("09:30"),
			EndTime:         entity.MustParseTimeOfDay("10:00"),
			Status:          entity.AppointmentStatusCancelled,
		})

		if _, err := f.uc.BookVirtualSlot(asUser(testPatientID, entity.RoleIDPatient), bookingRequest("09:30", "10:00")); err != nil {
			t.Fatalf("BookVirtualSlot: %v", err)
		}
	})
}

func TestBookVirtualSlot_InfrastructureErrorPassesThrough(t *testing.T) {
	f := newBookingFixture(t)
	f.appointments.createErr = errBoom

	_, err := f.uc.BookVirtualSlot(asUser(testPatientID, entity.RoleIDPatient), bookingRequest("09:30", "10:00"))
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want errBoom", err)
	}
}

func TestBookVirtualSlot_BookingCodeCollision(t *testing.T) {
	collision := uniqueViolation("idx_appointments_booking_code")

	t.Run("regenerates once", func(t *testing.T) {
		f := newBookingFixture(t)
		f.appointments.failNext = []error{collision}

		resp, err := f.uc.BookVirtualSlot(asUser(testPatientID, entity.RoleIDPatient), bookingRequest("09:30", "10:00"))
		if err != nil {
			t.Fatalf("BookVirtualSlot: %v", err)
		}
		if !strings.HasPrefix(resp.BookingCode, "BK-20261020-") {
			t.Errorf("booking code = %s", resp.BookingCode)
		}
		if f.appointments.creates != 2 || f.appointments.count() != 1 {
			t.Errorf("creates = %d, stored = %d", f.appointments.creates, f.appointments.count())
		}
	})

	t.Run("gives up after a second collision", func(t *testing.T) {
		f := newBookingFixture(t)
		f.appointments.failNext = []error{collision, collision}

		_, err := f.uc.BookVirtualSlot(asUser(testPatientID, entity.RoleIDPatient), bookingRequest("09:30", "10:00"))
		if !isDuplicateKeyError(err, constraintBookingCode) || errors.Is(err, ErrSlotTaken) {
			t.Fatalf("err = %v, want the booking code violation", err)
		}
		if f.appointments.creates != 2 {
			t.Errorf("creates = %d, want 2", f.appointments.creates)
		}
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errBoom }

func TestBookVirtualSlot_BookingCodeEntropyFailure(t *testing.T) {
	f := newBookingFixture(t)
	saved := bookingCodeEntropy
	bookingCodeEntropy = failingReader{}
	t.Cleanup(func() { bookingCodeEntropy = saved })

	_, err := f.uc.BookVirtualSlot(asUser(testPatientID, entity.RoleIDPatient), bookingRequest("09:30", "10:00"))
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want errBoom", err)
	}
	if f.appointments.creates != 0 {
		t.Error("nothing should be inserted without a booking code")
	}
}

func TestBookVirtualSlot_IdempotentReplay(t *testing.T) {
	f := newBookingFixture(t)
	ctx := asUser(testPatientID, entity.RoleIDPatient)
	key := uuid.New()

	req := bookingRequest("10:00", "10:30")
	req.IdempotencyKey = &key

	first, err := f.uc.BookVirtualSlot(ctx, req)
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second, err := f.uc.BookVirtualSlot(ctx, req)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}

	if first.ID != second.ID || first.BookingCode != second.BookingCode {
		t.Errorf("resubmit created a different booking: %s vs %s", first.ID, second.ID)
	}
	if f.appointments.count() != 1 {
		t.Errorf("appointments stored = %d, want 1", f.appointments.count())
	}

	// Same key, different slot.
	other := bookingRequest("11:00", "11:30")
	other.IdempotencyKey = &key
	if _, err := f.uc.BookVirtualSlot(ctx, other); !errors.Is(err, ErrIdempotencyKeyReused) {
		t.Errorf("err = %v, want ErrIdempotencyKeyReused", err)
	}
}

func TestBookVirtualSlot_ConcurrentSubmitsConfirmExactlyOne(t *testing.T) {
	f := newBookingFixture(t)

	const n = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		confirmed int
		taken     int
		other     []error
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := asUser(uuid.New(), entity.RoleIDPatient)
			<-start
			_, err := f.uc.BookVirtualSlot(ctx, bookingRequest("14:00", "14:30"))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				confirmed++
			case errors.Is(err, ErrSlotTaken):
				taken++
			default:
				other = append(other, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if confirmed != 1 || taken != n-1 || len(other) != 0 {
		t.Fatalf("confirmed=%d taken=%d other=%v", confirmed, taken, other)
	}
	if f.appointments.count() != 1 {
		t.Errorf("appointments stored = %d", f.appointments.count())
	}
}

func TestBookVirtualSlot_RequiresIdentity(t *testing.T) {
	f := newBookingFixture(t)
	if _, err := f.uc.BookVirtualSlot(context.Background(), bookingRequest("09:30", "10:00")); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v", err)
	}
}

func TestBookVirtualSlot_UnknownDoctor(t *testing.T) {
	f := newBookingFixture(t)
	req := bookingRequest("09:30", "10:00")
	req.DoctorID = uuid.New()

	if _, err := f.uc.BookVirtualSlot(asUser(testPatientID, entity.RoleIDPatient), req); !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("err = %v, want ErrDoctorNotFound", err)
	}
}

func TestCancelAppointment(t *testing.T) {
	tomorrow := entity.Appointment{
		PatientID:       testPatientID,
		DoctorID:        testDoctorID,
		AppointmentDate: testTuesday,
		StartTime:       entity.MustParseTimeOfDay("09:30"),
		EndTime:         entity.MustParseTimeOfDay("10:00"),
		Status:          entity.AppointmentStatusScheduled,
	}
	// Seven hours after testNow.
	today := tomorrow
	today.AppointmentDate = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	today.StartTime = entity.MustParseTimeOfDay("15:00")
	today.EndTime = entity.MustParseTimeOfDay("15:30")

	tests := []struct {
		name    string
		appt    entity.Appointment
		userID  uuid.UUID
		roleID  int
		wantErr error
	}{
		{"patient with notice", tomorrow, testPatientID, entity.RoleIDPatient, nil},
		{"patient too late", today, testPatientID, entity.RoleIDPatient, ErrCancelTooLate},
		{"doctor ignores notice", today, testDoctorID, entity.RoleIDDoctor, nil},
		{"admin", tomorrow, uuid.New(), entity.RoleIDAdmin, nil},
		{"another patient", tomorrow, otherPatient, entity.RoleIDPatient, ErrAppointmentNotOwned},
		{"another doctor", tomorrow, uuid.New(), entity.RoleIDDoctor, ErrAppointmentNotOwned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(t)
			stored := f.appointments.add(tt.appt)

			resp, err := f.uc.CancelAppointment(asUser(tt.userID, tt.roleID), stored.ID, &dto.CancelAppointmentRequest{Reason: "travel"})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if resp.Status != string(entity.AppointmentStatusCancelled) || resp.CancellationReason != "travel" || resp.CancelledAt == nil {
				t.Errorf("unexpected response: %+v", resp)
			}
			if !f.audit.has(entity.AuditActionAppointmentCancel) {
				t.Error("cancellation was not audited")
			}
		})
	}
}

func TestCancelAppointment_Twice(t *testing.T) {
	f := newBookingFixture(t)
	ctx := asUser(testPatientID, entity.RoleIDPatient)

	resp, err := f.uc.BookVirtualSlot(ctx, bookingRequest("15:00", "15:30"))
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := f.uc.CancelAppointment(ctx, resp.ID, &dto.CancelAppointmentRequest{}); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if _, err := f.uc.CancelAppointment(ctx, resp.ID, &dto.CancelAppointmentRequest{}); !errors.Is(err, ErrAppointmentNotCancellable) {
		t.Fatalf("second cancel: err = %v", err)
	}

	// The slot can be booked again.
	if _, err := f.uc.BookVirtualSlot(asUser(otherPatient, entity.RoleIDPatient), bookingRequest("15:00", "15:30")); err != nil {
		t.Fatalf("rebook: %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	f := newBookingFixture(t)
	stored := f.appointments.add(entity.Appointment{
		PatientID:       testPatientID,
		DoctorID:        testDoctorID,
		AppointmentDate: testTuesday,
		StartTime:       entity.MustParseTimeOfDay("09:30"),
		EndTime:         entity.MustParseTimeOfDay("10:00"),
		Status:          entity.AppointmentStatusScheduled,
	})
	doctor := asUser(testDoctorID, entity.RoleIDDoctor)

	resp, err := f.uc.UpdateStatus(doctor, stored.ID, &dto.UpdateAppointmentStatusRequest{Status: "confirmed"})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if resp.Status != "confirmed" {
		t.Errorf("status = %s", resp.Status)
	}

	if _, err := f.uc.UpdateStatus(doctor, stored.ID, &dto.UpdateAppointmentStatusRequest{Status: "scheduled"}); !errors.Is(err, entity.ErrInvalidStatusTransition) {
		t.Errorf("backwards move: err = %v", err)
	}
	if _, err := f.uc.UpdateStatus(asUser(testPatientID, entity.RoleIDPatient), stored.ID, &dto.UpdateAppointmentStatusRequest{Status: "completed"}); !errors.Is(err, ErrAppointmentNotOwned) {
		t.Errorf("patient move: err = %v", err)
	}
}

func TestGetMyAppointments_ByRole(t *testing.T) {
	f := newBookingFixture(t)
	if _, err := f.uc.BookVirtualSlot(asUser(testPatientID, entity.RoleIDPatient), bookingRequest("09:00", "09:30")); err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := f.uc.BookVirtualSlot(asUser(otherPatient, entity.RoleIDPatient), bookingRequest("09:30", "10:00")); err != nil {
		t.Fatalf("book: %v", err)
	}

	mine, err := f.uc.GetMyAppointments(asUser(testPatientID, entity.RoleIDPatient), "", "", "")
	if err != nil || mine.Total != 1 {
		t.Fatalf("patient list: total=%v err=%v", mine, err)
	}
	doctors, err := f.uc.GetMyAppointments(asUser(testDoctorID, entity.RoleIDDoctor), "scheduled", "2026-10-20", "2026-10-20")
	if err != nil || doctors.Total != 2 {
		t.Fatalf("doctor list: total=%v err=%v", doctors, err)
	}
	if _, err := f.uc.GetMyAppointments(asUser(testDoctorID, entity.RoleIDDoctor), "", "2026-10-21", "2026-10-20"); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("reversed range: err = %v", err)
	}
}
