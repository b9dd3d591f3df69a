package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"clinic-scheduling/config"
	"clinic-scheduling/internal/delivery/http/middleware"
	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/domain/repository"
	"clinic-scheduling/internal/service"
	"clinic-scheduling/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// -- Shared fixtures --

var (
	testDoctorID  = uuid.MustParse("6b1f3a52-0c7e-4d8e-9a43-5f2b1c7d9e01")
	testPatientID = uuid.MustParse("0d9c4e7a-3b21-4f6a-8c5d-7e2f1a9b3c02")
	otherPatient  = uuid.MustParse("a4e8b2c6-9d13-4a7f-b5e0-1c3d6f8a2b03")

	// Monday 2026-10-19 08:00 UTC; bookings target Tuesday 2026-10-20.
	testNow     = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	testTuesday = time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

	testBooking = config.BookingConfig{
		LockTTL:      10 * time.Second,
		DaysAhead:    7,
		MaxRangeDays: 31,
		CancelNotice: 24 * time.Hour,
	}
)

func tod(s string) *entity.TimeOfDay {
	t := entity.MustParseTimeOfDay(s)
	return &t
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newTestDB returns a handle that never connects; mock repositories ignore it.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}
	return db
}

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func asUser(userID uuid.UUID, roleID int) context.Context {
	return middleware.WithClaims(context.Background(), &jwt.Claims{
		UserID:  userID,
		Email:   userID.String() + "@clinic.test",
		RoleID:  roleID,
		TokenID: "token-" + userID.String()[:8],
	})
}

func activeDoctor(id uuid.UUID, name string) *entity.DoctorProfile {
	active := true
	return &entity.DoctorProfile{
		UserID:          id,
		LicenseNumber:   "LIC-" + id.String()[:6],
		Specialization:  "General Practice",
		ConsultationFee: decimal.RequireFromString("150000"),
		User: entity.User{
			ID:       id,
			RoleID:   entity.RoleIDDoctor,
			FullName: name,
			IsActive: &active,
		},
	}
}

// tuesdayWeek is available Tuesday 09:00-12:00 and 13:00-17:00 at 30 minutes.
func tuesdayWeek(doctorID uuid.UUID) []entity.WeeklySchedule {
	return []entity.WeeklySchedule{{
		ID:                  1,
		DoctorID:            doctorID,
		DayOfWeek:           entity.Tuesday,
		IsAvailable:         true,
		MorningStart:        tod("09:00"),
		MorningEnd:          tod("12:00"),
		AfternoonStart:      tod("13:00"),
		AfternoonEnd:        tod("17:00"),
		AppointmentDuration: 30,
	}}
}

// -- Mock repositories --

type mockDoctorProfileRepo struct {
	profiles map[uuid.UUID]*entity.DoctorProfile
}

func newMockDoctorProfileRepo(profiles ...*entity.DoctorProfile) *mockDoctorProfileRepo {
	m := &mockDoctorProfileRepo{profiles: make(map[uuid.UUID]*entity.DoctorProfile)}
	for _, p := range profiles {
		m.profiles[p.UserID] = p
	}
	return m
}

func (m *mockDoctorProfileRepo) Create(_ context.Context, _ *gorm.DB, p *entity.DoctorProfile) error {
	if p.UserID == uuid.Nil {
		p.UserID = uuid.New()
		p.User.ID = p.UserID
	}
	m.profiles[p.UserID] = p
	return nil
}

func (m *mockDoctorProfileRepo) FindByUserID(_ context.Context, _ *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockDoctorProfileRepo) FindActive(_ context.Context, _ *gorm.DB, _ repository.DoctorFilter) ([]entity.DoctorProfile, error) {
	var out []entity.DoctorProfile
	for _, p := range m.profiles {
		if p.User.Active() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockDoctorProfileRepo) Update(_ context.Context, _ *gorm.DB, p *entity.DoctorProfile) error {
	m.profiles[p.UserID] = p
	return nil
}

type mockWeeklyRepo struct {
	mu       sync.Mutex
	entries  map[uuid.UUID][]entity.WeeklySchedule
	replaces int
}

func newMockWeeklyRepo() *mockWeeklyRepo {
	return &mockWeeklyRepo{entries: make(map[uuid.UUID][]entity.WeeklySchedule)}
}

func (m *mockWeeklyRepo) FindByDoctorID(_ context.Context, _ *gorm.DB, doctorID uuid.UUID) ([]entity.WeeklySchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.WeeklySchedule(nil), m.entries[doctorID]...), nil
}

func (m *mockWeeklyRepo) ReplaceWeek(_ context.Context, _ *gorm.DB, doctorID uuid.UUID, entries []entity.WeeklySchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaces++
	m.entries[doctorID] = append([]entity.WeeklySchedule(nil), entries...)
	return nil
}

type mockDayOffRepo struct {
	items  map[int64]*entity.DayOff
	nextID int64
}

func newMockDayOffRepo() *mockDayOffRepo {
	return &mockDayOffRepo{items: make(map[int64]*entity.DayOff)}
}

func (m *mockDayOffRepo) Create(_ context.Context, _ *gorm.DB, d *entity.DayOff) error {
	m.nextID++
	d.ID = m.nextID
	m.items[d.ID] = d
	return nil
}

func (m *mockDayOffRepo) FindByID(_ context.Context, _ *gorm.DB, id int64) (*entity.DayOff, error) {
	return m.items[id], nil
}

func (m *mockDayOffRepo) FindByDoctorAndDate(_ context.Context, _ *gorm.DB, doctorID uuid.UUID, date time.Time) (*entity.DayOff, error) {
	for _, d := range m.items {
		if d.DoctorID == doctorID && d.Date.Equal(date) {
			return d, nil
		}
	}
	return nil, nil
}

func (m *mockDayOffRepo) FindByDoctorID(_ context.Context, _ *gorm.DB, doctorID uuid.UUID, from, to *time.Time) ([]entity.DayOff, error) {
	var out []entity.DayOff
	for _, d := range m.items {
		if d.DoctorID != doctorID || !inRange(d.Date, from, to) {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *mockDayOffRepo) Delete(_ context.Context, _ *gorm.DB, id int64, doctorID uuid.UUID) (int64, error) {
	d, ok := m.items[id]
	if !ok || d.DoctorID != doctorID {
		return 0, nil
	}
	delete(m.items, id)
	return 1, nil
}

type mockExceptionalRepo struct {
	items  map[int64]*entity.ExceptionalSchedule
	nextID int64
}

func newMockExceptionalRepo() *mockExceptionalRepo {
	return &mockExceptionalRepo{items: make(map[int64]*entity.ExceptionalSchedule)}
}

func (m *mockExceptionalRepo) Create(_ context.Context, _ *gorm.DB, s *entity.ExceptionalSchedule) error {
	m.nextID++
	s.ID = m.nextID
	m.items[s.ID] = s
	return nil
}

func (m *mockExceptionalRepo) FindByID(_ context.Context, _ *gorm.DB, id int64) (*entity.ExceptionalSchedule, error) {
	return m.items[id], nil
}

func (m *mockExceptionalRepo) FindByDoctorID(_ context.Context, _ *gorm.DB, doctorID uuid.UUID, from, to *time.Time) ([]entity.ExceptionalSchedule, error) {
	var out []entity.ExceptionalSchedule
	for _, s := range m.items {
		if s.DoctorID == doctorID && inRange(s.Date, from, to) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockExceptionalRepo) Delete(_ context.Context, _ *gorm.DB, id int64, doctorID uuid.UUID) (int64, error) {
	s, ok := m.items[id]
	if !ok || s.DoctorID != doctorID {
		return 0, nil
	}
	delete(m.items, id)
	return 1, nil
}

// mockAppointmentRepo enforces the same uniqueness as the migrations: one
// occupying appointment per (doctor, date, start) and unique idempotency keys.
type mockAppointmentRepo struct {
	mu        sync.Mutex
	items     map[uuid.UUID]*entity.Appointment
	createErr error
	// failNext is returned by the next Create calls, one error per call.
	failNext []error
	creates  int
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{items: make(map[uuid.UUID]*entity.Appointment)}
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func (m *mockAppointmentRepo) Create(_ context.Context, _ *gorm.DB, a *entity.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if len(m.failNext) > 0 {
		err := m.failNext[0]
		m.failNext = m.failNext[1:]
		return err
	}
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.items {
		if existing.Occupies() && existing.DoctorID == a.DoctorID &&
			existing.AppointmentDate.Equal(a.AppointmentDate) && existing.StartTime == a.StartTime {
			return uniqueViolation("idx_appointments_active_slot")
		}
		if a.IdempotencyKey != nil && existing.IdempotencyKey != nil && *existing.IdempotencyKey == *a.IdempotencyKey {
			return uniqueViolation("idx_appointments_idempotency_key")
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = testNow
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *mockAppointmentRepo) add(a entity.Appointment) *entity.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.items[a.ID] = &a
	return &a
}

func (m *mockAppointmentRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *mockAppointmentRepo) FindByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *mockAppointmentRepo) FindByIdempotencyKey(_ context.Context, _ *gorm.DB, key uuid.UUID) (*entity.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.items {
		if a.IdempotencyKey != nil && *a.IdempotencyKey == key {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockAppointmentRepo) list(match func(*entity.Appointment) bool, filter repository.AppointmentFilter) []entity.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Appointment
	for _, a := range m.items {
		if !match(a) || !inRange(a.AppointmentDate, filter.FromDate, filter.ToDate) {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, *a)
	}
	return out
}

func (m *mockAppointmentRepo) FindByPatientID(_ context.Context, _ *gorm.DB, patientID uuid.UUID, filter repository.AppointmentFilter) ([]entity.Appointment, error) {
	return m.list(func(a *entity.Appointment) bool { return a.PatientID == patientID }, filter), nil
}

func (m *mockAppointmentRepo) FindByDoctorID(_ context.Context, _ *gorm.DB, doctorID uuid.UUID, filter repository.AppointmentFilter) ([]entity.Appointment, error) {
	return m.list(func(a *entity.Appointment) bool { return a.DoctorID == doctorID }, filter), nil
}

func (m *mockAppointmentRepo) FindOccupied(_ context.Context, _ *gorm.DB, doctorID uuid.UUID, from, to time.Time) ([]entity.Appointment, error) {
	return m.list(func(a *entity.Appointment) bool {
		return a.DoctorID == doctorID && a.Occupies()
	}, repository.AppointmentFilter{FromDate: &from, ToDate: &to}), nil
}

func (m *mockAppointmentRepo) FindOccupiedFrom(_ context.Context, _ *gorm.DB, doctorID uuid.UUID, from time.Time) ([]entity.Appointment, error) {
	return m.list(func(a *entity.Appointment) bool {
		return a.DoctorID == doctorID && a.Occupies()
	}, repository.AppointmentFilter{FromDate: &from}), nil
}

func (m *mockAppointmentRepo) Cancel(_ context.Context, _ *gorm.DB, id uuid.UUID, reason string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok || !a.Occupies() {
		return 0, nil
	}
	a.Status = entity.AppointmentStatusCancelled
	a.CancellationReason = reason
	a.CancelledAt = &at
	return 1, nil
}

func (m *mockAppointmentRepo) UpdateStatus(_ context.Context, _ *gorm.DB, id uuid.UUID, from, to entity.AppointmentStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok || a.Status != from {
		return 0, nil
	}
	a.Status = to
	return 1, nil
}

func inRange(d time.Time, from, to *time.Time) bool {
	if from != nil && d.Before(*from) {
		return false
	}
	if to != nil && d.After(*to) {
		return false
	}
	return true
}

// -- Mock audit service --

type mockAuditService struct {
	mu      sync.Mutex
	actions []string
	err     error
}

func (m *mockAuditService) record(action string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, action)
	return m.err
}

func (m *mockAuditService) LogCreate(_ context.Context, _ *gorm.DB, _ *uuid.UUID, action string, _ string, _ string, _ interface{}) error {
	return m.record(action)
}

func (m *mockAuditService) LogUpdate(_ context.Context, _ *gorm.DB, _ *uuid.UUID, action string, _ string, _ string, _, _ interface{}) error {
	return m.record(action)
}

func (m *mockAuditService) LogDelete(_ context.Context, _ *gorm.DB, _ *uuid.UUID, action string, _ string, _ string, _ interface{}) error {
	return m.record(action)
}

func (m *mockAuditService) LogEvent(_ context.Context, _ *gorm.DB, _ *uuid.UUID, action string, _ entity.JSON) error {
	return m.record(action)
}

func (m *mockAuditService) has(action string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.actions {
		if a == action {
			return true
		}
	}
	return false
}

var _ service.AuditService = (*mockAuditService)(nil)

var errBoom = errors.New("boom")
